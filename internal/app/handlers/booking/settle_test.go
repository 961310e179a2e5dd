package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayhub/internal/domain/availability"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/money"
	domainuser "stayhub/internal/domain/user"
)

type fakeListings struct {
	byID       map[domainlisting.ID]*domainlisting.Listing
	commitErrs []error // consumed per CommitReservation call, nil = apply
	commits    int
}

func (f *fakeListings) ByID(_ context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	clone := *l
	return &clone, nil
}

func (f *fakeListings) Insert(_ context.Context, l *domainlisting.Listing) error {
	f.byID[l.ID] = l
	return nil
}

func (f *fakeListings) CommitReservation(_ context.Context, r domainlisting.Reservation) error {
	f.commits++
	if len(f.commitErrs) > 0 {
		err := f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
		if err != nil {
			return err
		}
	}
	l, ok := f.byID[r.ListingID]
	if !ok {
		return domainlisting.ErrNotFound
	}
	if l.Version != r.Version {
		return domainlisting.ErrVersionConflict
	}
	l.Index = r.Index
	l.Bookings = append(l.Bookings, r.BookingRef)
	l.Version++
	return nil
}

func (f *fakeListings) Search(context.Context, domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	return domainlisting.SearchResult{}, nil
}

func (f *fakeListings) ByIDs(context.Context, []domainlisting.ID, domainlisting.Page) (domainlisting.SearchResult, error) {
	return domainlisting.SearchResult{}, nil
}

type fakeUsers struct {
	byID         map[domainuser.ID]*domainuser.User
	creditErr    error
	appendErr    error
	appendedRefs map[domainuser.ID][]string
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

func (f *fakeUsers) CreditIncome(_ context.Context, id domainuser.ID, amount money.Money) error {
	if f.creditErr != nil {
		return f.creditErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	sum, err := u.Income.Add(amount)
	if err != nil {
		return err
	}
	u.Income = sum
	return nil
}

func (f *fakeUsers) AppendBooking(_ context.Context, id domainuser.ID, ref string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	u, ok := f.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.Bookings = append(u.Bookings, ref)
	if f.appendedRefs == nil {
		f.appendedRefs = make(map[domainuser.ID][]string)
	}
	f.appendedRefs[id] = append(f.appendedRefs[id], ref)
	return nil
}

func (f *fakeUsers) AppendListing(_ context.Context, id domainuser.ID, ref string) error {
	u, ok := f.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.Listings = append(u.Listings, ref)
	return nil
}

func (f *fakeUsers) SetWallet(_ context.Context, id domainuser.ID, walletID string) error {
	u, ok := f.byID[id]
	if !ok {
		return domainuser.ErrNotFound
	}
	u.WalletID = walletID
	return nil
}

type fakeBookings struct {
	inserted  []*domainbooking.Booking
	insertErr error
}

func (f *fakeBookings) ByID(_ context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	for _, b := range f.inserted {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, domainbooking.ErrNotFound
}

func (f *fakeBookings) Insert(_ context.Context, b *domainbooking.Booking) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, b)
	return nil
}

func (f *fakeBookings) ByIDs(context.Context, []domainbooking.ID, domainlisting.Page) (domainbooking.Collection, error) {
	return domainbooking.Collection{}, nil
}

type fakeGateway struct {
	chargeErr error
	charges   []chargeCall
}

type chargeCall struct {
	amount      money.Money
	source      string
	destination string
}

func (f *fakeGateway) Charge(_ context.Context, amount money.Money, source, destination string) error {
	if f.chargeErr != nil {
		return f.chargeErr
	}
	f.charges = append(f.charges, chargeCall{amount: amount, source: source, destination: destination})
	return nil
}

func (f *fakeGateway) Connect(context.Context, string) (string, error) { return "", nil }

func (f *fakeGateway) Disconnect(context.Context, string) error { return nil }

type fixture struct {
	listings *fakeListings
	users    *fakeUsers
	bookings *fakeBookings
	gateway  *fakeGateway
	handler  *SettleBookingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	host := &domainuser.User{ID: "host-1", Name: "Hana Host", Contact: "hana@example.com", WalletID: "acct_1", Income: money.Must(0, "USD")}
	tenant := &domainuser.User{ID: "tenant-1", Name: "Theo Tenant", Contact: "theo@example.com", Income: money.Must(0, "USD")}
	l := &domainlisting.Listing{
		ID:    "listing-1",
		Host:  host.ID,
		Title: "Canal loft",
		Type:  domainlisting.TypeApartment,
		Price: 10000,
		Index: availability.Index{},
	}

	f := &fixture{
		listings: &fakeListings{byID: map[domainlisting.ID]*domainlisting.Listing{l.ID: l}},
		users:    &fakeUsers{byID: map[domainuser.ID]*domainuser.User{host.ID: host, tenant.ID: tenant}},
		bookings: &fakeBookings{},
		gateway:  &fakeGateway{},
	}
	f.handler = &SettleBookingHandler{
		Listings: f.listings,
		Users:    f.users,
		Bookings: f.bookings,
		Payments: f.gateway,
		Currency: "USD",
		Now:      func() time.Time { return time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC) },
	}
	return f
}

func (f *fixture) command() SettleBookingCommand {
	return SettleBookingCommand{
		CommandID: "booking-1",
		ListingID: "listing-1",
		ViewerID:  "tenant-1",
		Source:    "tok_visa",
		CheckIn:   "2024-03-01",
		CheckOut:  "2024-03-03",
	}
}

func TestSettleSuccess(t *testing.T) {
	f := newFixture(t)
	res, err := f.handler.Handle(context.Background(), f.command())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if res.BookingID != "booking-1" || res.CheckIn != "2024-03-01" || res.CheckOut != "2024-03-03" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Total != 30000 {
		t.Errorf("total = %d, want 30000 (10000 x 3 nights)", res.Total)
	}

	if len(f.gateway.charges) != 1 {
		t.Fatalf("charges = %d, want 1", len(f.gateway.charges))
	}
	charge := f.gateway.charges[0]
	if charge.amount.Amount != 30000 || charge.source != "tok_visa" || charge.destination != "acct_1" {
		t.Errorf("unexpected charge: %+v", charge)
	}

	l := f.listings.byID["listing-1"]
	for d := 1; d <= 3; d++ {
		if !l.Index.IsBooked(time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("2024-03-%02d not booked after settlement", d)
		}
	}
	if len(l.Bookings) != 1 || l.Bookings[0] != "booking-1" {
		t.Errorf("listing booking refs = %v", l.Bookings)
	}
	if got := f.users.byID["host-1"].Income.Amount; got != 30000 {
		t.Errorf("host income = %d, want 30000", got)
	}
	if refs := f.users.byID["tenant-1"].Bookings; len(refs) != 1 || refs[0] != "booking-1" {
		t.Errorf("tenant booking refs = %v", refs)
	}
	if len(f.bookings.inserted) != 1 {
		t.Errorf("bookings inserted = %d, want 1", len(f.bookings.inserted))
	}
}

func TestSettlePaymentFailureLeavesNothingCommitted(t *testing.T) {
	f := newFixture(t)
	f.gateway.chargeErr = errors.New("card declined")

	_, err := f.handler.Handle(context.Background(), f.command())
	var perr *PaymentError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PaymentError, got %v", err)
	}

	l := f.listings.byID["listing-1"]
	if len(l.Index.BookedDays()) != 0 {
		t.Error("index mutated despite failed charge")
	}
	if len(l.Bookings) != 0 {
		t.Error("booking ref appended despite failed charge")
	}
	if len(f.bookings.inserted) != 0 {
		t.Error("booking persisted despite failed charge")
	}
	if f.users.byID["host-1"].Income.Amount != 0 {
		t.Error("host income changed despite failed charge")
	}
	if len(f.users.byID["tenant-1"].Bookings) != 0 {
		t.Error("tenant ledger changed despite failed charge")
	}
}

func TestSettleDateConflictBeforeCharge(t *testing.T) {
	f := newFixture(t)
	f.listings.byID["listing-1"].Index = availability.Index{2024: {2: {2: true}}}

	_, err := f.handler.Handle(context.Background(), f.command())
	var conflict *availability.DateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected DateConflictError, got %v", err)
	}
	want := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	if !conflict.Day.Equal(want) {
		t.Errorf("conflict day = %s, want 2024-03-02", conflict.Day.Format(time.DateOnly))
	}
	if len(f.gateway.charges) != 0 {
		t.Error("gateway charged despite date conflict")
	}
}

func TestSettleSelfBookingForbidden(t *testing.T) {
	f := newFixture(t)
	cmd := f.command()
	cmd.ViewerID = "host-1"
	// invalid dates as well: the self-booking check must win regardless
	cmd.CheckIn = "2024-03-05"
	cmd.CheckOut = "2024-03-01"

	_, err := f.handler.Handle(context.Background(), cmd)
	if !errors.Is(err, ErrSelfBooking) {
		t.Fatalf("err = %v, want ErrSelfBooking", err)
	}
}

func TestSettlePreconditionOrder(t *testing.T) {
	f := newFixture(t)

	t.Run("unauthenticated", func(t *testing.T) {
		cmd := f.command()
		cmd.ViewerID = ""
		if _, err := f.handler.Handle(context.Background(), cmd); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("err = %v, want ErrUnauthenticated", err)
		}
		cmd.ViewerID = "ghost"
		if _, err := f.handler.Handle(context.Background(), cmd); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("unknown viewer: err = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("listing not found", func(t *testing.T) {
		cmd := f.command()
		cmd.ListingID = "missing"
		if _, err := f.handler.Handle(context.Background(), cmd); !errors.Is(err, ErrListingNotFound) {
			t.Errorf("err = %v, want ErrListingNotFound", err)
		}
	})

	t.Run("invalid range", func(t *testing.T) {
		cmd := f.command()
		cmd.CheckIn = "2024-03-05"
		cmd.CheckOut = "2024-03-01"
		if _, err := f.handler.Handle(context.Background(), cmd); !errors.Is(err, ErrInvalidDateRange) {
			t.Errorf("err = %v, want ErrInvalidDateRange", err)
		}
	})

	t.Run("host without wallet", func(t *testing.T) {
		f.users.byID["host-1"].WalletID = ""
		defer func() { f.users.byID["host-1"].WalletID = "acct_1" }()
		if _, err := f.handler.Handle(context.Background(), f.command()); !errors.Is(err, ErrHostPaymentUnavailable) {
			t.Errorf("err = %v, want ErrHostPaymentUnavailable", err)
		}
		if len(f.gateway.charges) != 0 {
			t.Error("gateway charged without payable host")
		}
	})
}

func TestSettleRetriesReservationOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	// First conditional write loses the race; the handler must re-read,
	// re-extend and try again.
	f.listings.commitErrs = []error{domainlisting.ErrVersionConflict}

	res, err := f.handler.Handle(context.Background(), f.command())
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if f.listings.commits != 2 {
		t.Errorf("commit attempts = %d, want 2", f.listings.commits)
	}
	if res.Total != 30000 {
		t.Errorf("total = %d, want 30000", res.Total)
	}
}

func TestSettlePostChargeFailureIsPersistenceError(t *testing.T) {
	f := newFixture(t)
	f.bookings.insertErr = errors.New("primary stepped down")

	_, err := f.handler.Handle(context.Background(), f.command())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if perr.Step != "booking insert" {
		t.Errorf("step = %q", perr.Step)
	}
	// The charge went through: that is exactly what makes this fatal.
	if len(f.gateway.charges) != 1 {
		t.Errorf("charges = %d, want 1", len(f.gateway.charges))
	}
}

func TestSettleExhaustedReservationRetries(t *testing.T) {
	f := newFixture(t)
	f.listings.commitErrs = []error{
		domainlisting.ErrVersionConflict,
		domainlisting.ErrVersionConflict,
		domainlisting.ErrVersionConflict,
	}

	_, err := f.handler.Handle(context.Background(), f.command())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError after retry exhaustion, got %v", err)
	}
	if f.listings.commits != reservationAttempts {
		t.Errorf("commit attempts = %d, want %d", f.listings.commits, reservationAttempts)
	}
}

func TestSettleNoOverlapAcrossSequentialBookings(t *testing.T) {
	f := newFixture(t)
	if _, err := f.handler.Handle(context.Background(), f.command()); err != nil {
		t.Fatalf("first settlement: %v", err)
	}

	second := f.command()
	second.CommandID = "booking-2"
	second.CheckIn = "2024-03-03"
	second.CheckOut = "2024-03-05"
	_, err := f.handler.Handle(context.Background(), second)
	var conflict *availability.DateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("overlapping second settlement: err = %v, want DateConflictError", err)
	}

	third := f.command()
	third.CommandID = "booking-3"
	third.CheckIn = "2024-03-04"
	third.CheckOut = "2024-03-05"
	if _, err := f.handler.Handle(context.Background(), third); err != nil {
		t.Fatalf("adjacent non-overlapping settlement: %v", err)
	}
}
