package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/shared/events"
	"stayhub/internal/domain/user"
)

var (
	ErrNotFound        = errors.New("listing: not found")
	ErrTitleTooLong    = errors.New("listing: title must be under 100 characters")
	ErrDescriptionLong = errors.New("listing: description must be under 5000 characters")
	ErrInvalidType     = errors.New("listing: type must be either apartment or house")
	ErrInvalidPrice    = errors.New("listing: price per night must be positive")
	ErrHostRequired    = errors.New("listing: host is required")
	ErrAddressRequired = errors.New("listing: address is required")
	ErrVersionConflict = errors.New("listing: concurrent update detected")
)

type ID string

type Type string

const (
	TypeApartment Type = "APARTMENT"
	TypeHouse     Type = "HOUSE"
)

// Listing is the authoritative owner of its availability index. Bookings is
// the append-only list of booking references; the index is a derived
// projection of those bookings' date ranges.
type Listing struct {
	ID          ID
	Host        user.ID
	Title       string
	Description string
	Type        Type
	ImageURL    string
	Address     string
	Country     string
	Admin       string
	City        string
	Price       int64 // minor units per night
	NumOfGuests int
	Bookings    []string
	Index       availability.Index
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

// Reservation is the listing-side mutation of a settlement: the recomputed
// index plus the booking reference, applied together against an expected
// version stamp.
type Reservation struct {
	ListingID  ID
	Version    int64
	Index      availability.Index
	BookingRef string
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	Insert(ctx context.Context, l *Listing) error
	// CommitReservation applies the reservation only when the stored version
	// still matches Reservation.Version; a stale version returns
	// ErrVersionConflict so the caller can re-read and retry.
	CommitReservation(ctx context.Context, r Reservation) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
	ByIDs(ctx context.Context, ids []ID, page Page) (SearchResult, error)
}

type CreateParams struct {
	ID          ID
	Host        user.ID
	Title       string
	Description string
	Type        Type
	ImageURL    string
	Address     string
	Country     string
	Admin       string
	City        string
	Price       int64
	NumOfGuests int
	Now         time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listing: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	title := strings.TrimSpace(params.Title)
	if len(title) > 100 {
		return nil, ErrTitleTooLong
	}
	if len(params.Description) > 5000 {
		return nil, ErrDescriptionLong
	}
	if params.Type != TypeApartment && params.Type != TypeHouse {
		return nil, ErrInvalidType
	}
	if params.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if strings.TrimSpace(params.Address) == "" {
		return nil, ErrAddressRequired
	}
	now := params.Now.UTC()

	l := &Listing{
		ID:          params.ID,
		Host:        params.Host,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		Type:        params.Type,
		ImageURL:    strings.TrimSpace(params.ImageURL),
		Address:     strings.TrimSpace(params.Address),
		Country:     params.Country,
		Admin:       params.Admin,
		City:        params.City,
		Price:       params.Price,
		NumOfGuests: params.NumOfGuests,
		Index:       availability.Index{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	l.Record(newListingCreatedEvent(l.ID, l.Host, now))
	return l, nil
}

// OwnedBy reports whether the given viewer is the listing's host.
func (l *Listing) OwnedBy(viewer user.ID) bool {
	return viewer != "" && l.Host == viewer
}
