package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
	"stayhub/internal/domain/user"
)

var (
	ErrNotFound       = errors.New("booking: not found")
	ErrTenantRequired = errors.New("booking: tenant is required")
)

type ID string

// Booking is the durable record of one reservation. Created exactly once as
// the terminal step of a successful settlement, never mutated afterwards.
// There is no cancellation flow; the range the booking covers stays booked.
type Booking struct {
	ID        ID
	ListingID listing.ID
	TenantID  user.ID
	Range     daterange.DateRange
	Total     money.Money
	CreatedAt time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Booking, error)
	Insert(ctx context.Context, b *Booking) error
	ByIDs(ctx context.Context, ids []ID, page listing.Page) (Collection, error)
}

type Collection struct {
	Total  int64
	Result []*Booking
}

type CreateParams struct {
	ID        ID
	ListingID listing.ID
	TenantID  user.ID
	Range     daterange.DateRange
	Total     money.Money
	CreatedAt time.Time
}

func New(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("booking: id is required")
	}
	if strings.TrimSpace(string(params.TenantID)) == "" {
		return nil, ErrTenantRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	return &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		TenantID:  params.TenantID,
		Range:     params.Range,
		Total:     params.Total,
		CreatedAt: params.CreatedAt.UTC(),
	}, nil
}

// Quote computes the total charge for a stay: nightly price times the
// inclusive night count (both boundary nights are charged).
func Quote(nightlyPrice int64, currency string, dr daterange.DateRange) (money.Money, error) {
	nightly, err := money.New(nightlyPrice, currency)
	if err != nil {
		return money.Money{}, err
	}
	return nightly.Multiply(dr.Nights()), nil
}
