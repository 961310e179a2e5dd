package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayhub/internal/domain/shared/money"
)

var (
	ErrNotFound      = errors.New("user: not found")
	ErrIDRequired    = errors.New("user: id is required")
	ErrNameRequired  = errors.New("user: name is required")
	ErrEmailRequired = errors.New("user: email is required")
)

type ID string

// User holds both sides of the marketplace: Listings for the hosting side and
// Bookings for the tenant side. Income only ever grows, and only through
// settlements where the user is the host.
type User struct {
	ID           ID
	Name         string
	Avatar       string
	Contact      string
	PasswordHash string
	WalletID     string
	Income       money.Money
	Bookings     []string
	Listings     []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasWallet reports payment-receiving capability; a user without a connected
// wallet cannot host paid bookings.
func (u *User) HasWallet() bool {
	return strings.TrimSpace(u.WalletID) != ""
}

// Repository exposes single-document atomic mutations. The increment and
// append operations are commutative, so concurrent settlements touching the
// same user need no locking beyond the store's own update primitive.
type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByContact(ctx context.Context, contact string) (*User, error)
	Insert(ctx context.Context, u *User) error
	CreditIncome(ctx context.Context, id ID, amount money.Money) error
	AppendBooking(ctx context.Context, id ID, bookingRef string) error
	AppendListing(ctx context.Context, id ID, listingRef string) error
	SetWallet(ctx context.Context, id ID, walletID string) error
}

type CreateParams struct {
	ID           ID
	Name         string
	Avatar       string
	Contact      string
	PasswordHash string
	WalletID     string
	Currency     string
	CreatedAt    time.Time
}

func New(params CreateParams) (*User, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	contact := strings.ToLower(strings.TrimSpace(params.Contact))
	if contact == "" {
		return nil, ErrEmailRequired
	}
	currency := params.Currency
	if currency == "" {
		currency = "USD"
	}
	income, err := money.New(0, currency)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &User{
		ID:           ID(strings.TrimSpace(string(params.ID))),
		Name:         name,
		Avatar:       strings.TrimSpace(params.Avatar),
		Contact:      contact,
		PasswordHash: params.PasswordHash,
		WalletID:     strings.TrimSpace(params.WalletID),
		Income:       income,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
