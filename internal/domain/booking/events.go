package booking

import (
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/domain/user"
)

// BookingSettled is recorded once the charge and every ledger write of a
// settlement have completed.
type BookingSettled struct {
	BookingID ID
	ListingID listing.ID
	TenantID  user.ID
	HostID    user.ID
	Range     daterange.DateRange
	Total     money.Money
	At        time.Time
}

func (e BookingSettled) EventName() string     { return "booking.settled" }
func (e BookingSettled) AggregateID() string   { return string(e.BookingID) }
func (e BookingSettled) OccurredAt() time.Time { return e.At }
