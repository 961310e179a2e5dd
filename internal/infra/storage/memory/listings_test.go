package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainlisting "stayhub/internal/domain/listing"
	"stayhub/internal/domain/shared/daterange"
)

func newListing(t *testing.T, id domainlisting.ID, city string, price int64) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          id,
		Host:        "host-1",
		Title:       "Test stay",
		Type:        domainlisting.TypeApartment,
		Address:     "1 Main St",
		Country:     "Canada",
		Admin:       "Ontario",
		City:        city,
		Price:       price,
		NumOfGuests: 2,
	})
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}
	return l
}

func TestCommitReservationRejectsStaleVersion(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, newListing(t, "listing-1", "Toronto", 9000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// Both writers read version 0; only the first commit may land.
	first, err := repo.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	second, err := repo.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}

	dr1, _ := daterange.New(
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
	)
	idx1, err := first.Index.Extend(dr1)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if err := repo.CommitReservation(ctx, domainlisting.Reservation{
		ListingID:  "listing-1",
		Version:    first.Version,
		Index:      idx1,
		BookingRef: "booking-1",
	}); err != nil {
		t.Fatalf("first commit: %v", err)
	}

	dr2, _ := daterange.New(
		time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC),
	)
	idx2, err := second.Index.Extend(dr2)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	err = repo.CommitReservation(ctx, domainlisting.Reservation{
		ListingID:  "listing-1",
		Version:    second.Version,
		Index:      idx2,
		BookingRef: "booking-2",
	})
	if !errors.Is(err, domainlisting.ErrVersionConflict) {
		t.Fatalf("stale commit err = %v, want ErrVersionConflict", err)
	}

	stored, err := repo.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if stored.Version != first.Version+1 {
		t.Errorf("version = %d, want %d", stored.Version, first.Version+1)
	}
	if len(stored.Bookings) != 1 || stored.Bookings[0] != "booking-1" {
		t.Errorf("bookings = %v, want only the first commit", stored.Bookings)
	}
	if !stored.Index.IsBooked(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("committed day should be booked")
	}
	if stored.Index.IsBooked(time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)) {
		t.Error("rejected reservation must not reach the index")
	}
}

func TestByIDReturnsIsolatedClone(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, newListing(t, "listing-1", "Toronto", 9000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	dr, _ := daterange.New(
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	)
	extended, err := got.Index.Extend(dr)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	got.Index = extended
	got.Bookings = append(got.Bookings, "booking-x")

	fresh, err := repo.ByID(ctx, "listing-1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if fresh.Index.IsBooked(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("mutating a read result must not leak into the store")
	}
	if len(fresh.Bookings) != 0 {
		t.Errorf("bookings = %v, want none", fresh.Bookings)
	}
}

func TestSearchFiltersAndSorts(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()
	for _, l := range []*domainlisting.Listing{
		newListing(t, "listing-a", "Toronto", 15000),
		newListing(t, "listing-b", "Toronto", 8000),
		newListing(t, "listing-c", "Ottawa", 5000),
	} {
		if err := repo.Insert(ctx, l); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	res, err := repo.Search(ctx, domainlisting.SearchParams{
		Country: "canada",
		City:    "toronto",
		Sort:    domainlisting.SortPriceLowToHigh,
		Page:    domainlisting.Page{Limit: 10, Page: 1},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 {
		t.Fatalf("total = %d, want 2", res.Total)
	}
	if res.Result[0].ID != "listing-b" || res.Result[1].ID != "listing-a" {
		t.Errorf("sort order = %s, %s", res.Result[0].ID, res.Result[1].ID)
	}
}

func TestSearchPagesPastTotal(t *testing.T) {
	repo := NewListingRepository()
	ctx := context.Background()
	if err := repo.Insert(ctx, newListing(t, "listing-a", "Toronto", 9000)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	res, err := repo.Search(ctx, domainlisting.SearchParams{
		Page: domainlisting.Page{Limit: 10, Page: 3},
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 1 {
		t.Errorf("total = %d, want 1", res.Total)
	}
	if len(res.Result) != 0 {
		t.Errorf("page past the end returned %d items", len(res.Result))
	}
}
