package users

import (
	"context"
	"errors"
	"testing"
	"time"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type fakeUsers struct {
	byID map[domainuser.ID]*domainuser.User
}

func (f *fakeUsers) ByID(_ context.Context, id domainuser.ID) (*domainuser.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUsers) ByContact(_ context.Context, contact string) (*domainuser.User, error) {
	for _, u := range f.byID {
		if u.Contact == contact {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainuser.ErrNotFound
}

func (f *fakeUsers) Insert(_ context.Context, u *domainuser.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) CreditIncome(context.Context, domainuser.ID, money.Money) error { return nil }
func (f *fakeUsers) AppendBooking(context.Context, domainuser.ID, string) error     { return nil }
func (f *fakeUsers) AppendListing(context.Context, domainuser.ID, string) error     { return nil }
func (f *fakeUsers) SetWallet(context.Context, domainuser.ID, string) error         { return nil }

type fakeBookings struct {
	byID map[domainbooking.ID]*domainbooking.Booking
}

func (f *fakeBookings) ByID(_ context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) Insert(_ context.Context, b *domainbooking.Booking) error {
	f.byID[b.ID] = b
	return nil
}

func (f *fakeBookings) ByIDs(_ context.Context, ids []domainbooking.ID, _ domainlisting.Page) (domainbooking.Collection, error) {
	col := domainbooking.Collection{Total: int64(len(ids))}
	for _, id := range ids {
		if b, ok := f.byID[id]; ok {
			col.Result = append(col.Result, b)
		}
	}
	return col, nil
}

type fakeListings struct {
	byID map[domainlisting.ID]*domainlisting.Listing
}

func (f *fakeListings) ByID(_ context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return l, nil
}

func (f *fakeListings) Insert(_ context.Context, l *domainlisting.Listing) error {
	f.byID[l.ID] = l
	return nil
}

func (f *fakeListings) CommitReservation(context.Context, domainlisting.Reservation) error {
	return nil
}

func (f *fakeListings) Search(context.Context, domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	return domainlisting.SearchResult{}, nil
}

func (f *fakeListings) ByIDs(_ context.Context, ids []domainlisting.ID, _ domainlisting.Page) (domainlisting.SearchResult, error) {
	res := domainlisting.SearchResult{Total: int64(len(ids))}
	for _, id := range ids {
		if l, ok := f.byID[id]; ok {
			res.Result = append(res.Result, l)
		}
	}
	return res, nil
}

func seedProfile(t *testing.T) (*fakeUsers, *fakeBookings, *fakeListings) {
	t.Helper()
	u, err := domainuser.New(domainuser.CreateParams{
		ID:       "host-1",
		Name:     "Ada",
		Contact:  "ada@example.com",
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("user.New: %v", err)
	}
	income, _ := money.New(36000, "USD")
	u.Income = income
	u.WalletID = "acct_1"
	u.Bookings = []string{"booking-1"}
	u.Listings = []string{"listing-1"}

	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          "listing-1",
		Host:        "host-1",
		Title:       "Downtown loft",
		Type:        domainlisting.TypeApartment,
		Address:     "2 Main St",
		Country:     "Canada",
		Admin:       "Ontario",
		City:        "Toronto",
		Price:       9000,
		NumOfGuests: 2,
	})
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}

	dr, err := daterange.New(
		time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 12, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	total, _ := money.New(27000, "USD")
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        "booking-1",
		ListingID: "listing-2",
		TenantID:  "host-1",
		Range:     dr,
		Total:     total,
	})
	if err != nil {
		t.Fatalf("booking.New: %v", err)
	}

	users := &fakeUsers{byID: map[domainuser.ID]*domainuser.User{u.ID: u}}
	bookings := &fakeBookings{byID: map[domainbooking.ID]*domainbooking.Booking{b.ID: b}}
	listings := &fakeListings{byID: map[domainlisting.ID]*domainlisting.Listing{l.ID: l}}
	return users, bookings, listings
}

func TestGetUserHidesIncomeAndBookingsFromStrangers(t *testing.T) {
	users, bookings, listings := seedProfile(t)
	h := &GetUserHandler{Users: users, Bookings: bookings, Listings: listings}

	view, err := h.Handle(context.Background(), GetUserQuery{UserID: "host-1", ViewerID: "someone-else"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if view.Income != nil {
		t.Error("income should be hidden from other viewers")
	}
	if view.Bookings != nil {
		t.Error("booking history should be hidden from other viewers")
	}
	if view.Listings == nil || view.Listings.Total != 1 {
		t.Errorf("listings should stay public, got %+v", view.Listings)
	}
	if !view.HasWallet {
		t.Error("wallet capability flag should be public")
	}
}

func TestGetUserExposesPrivateFieldsToSelf(t *testing.T) {
	users, bookings, listings := seedProfile(t)
	h := &GetUserHandler{Users: users, Bookings: bookings, Listings: listings}

	view, err := h.Handle(context.Background(), GetUserQuery{
		UserID:        "host-1",
		ViewerID:      "host-1",
		BookingsLimit: 10,
		BookingsPage:  1,
		ListingsLimit: 10,
		ListingsPage:  1,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if view.Income == nil || *view.Income != 36000 {
		t.Errorf("income = %v, want 36000", view.Income)
	}
	if view.Bookings == nil || len(view.Bookings.Result) != 1 {
		t.Fatalf("bookings = %+v, want own booking history", view.Bookings)
	}
	if view.Bookings.Result[0].ID != "booking-1" {
		t.Errorf("booking id = %s", view.Bookings.Result[0].ID)
	}
}

func TestGetUserNotFound(t *testing.T) {
	users, bookings, listings := seedProfile(t)
	h := &GetUserHandler{Users: users, Bookings: bookings, Listings: listings}

	_, err := h.Handle(context.Background(), GetUserQuery{UserID: "missing"})
	if !errors.Is(err, domainuser.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
