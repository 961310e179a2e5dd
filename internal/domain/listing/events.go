package listing

import (
	"time"

	"stayhub/internal/domain/user"
)

type ListingCreatedEvent struct {
	ListingID ID
	HostID    user.ID
	At        time.Time
}

func (e ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ListingCreatedEvent) OccurredAt() time.Time { return e.At }

func newListingCreatedEvent(id ID, host user.ID, at time.Time) ListingCreatedEvent {
	return ListingCreatedEvent{ListingID: id, HostID: host, At: at}
}
