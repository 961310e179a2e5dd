package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"stayhub/internal/domain/availability"
	domainlisting "stayhub/internal/domain/listing"
)

// ListingRepository is an in-memory implementation for dev and tests. It
// honors the same version guard the Mongo repository enforces.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[domainlisting.ID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{
		items: make(map[domainlisting.ID]*domainlisting.Listing),
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) Insert(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[l.ID] = cloneListing(l)
	return nil
}

func (r *ListingRepository) CommitReservation(ctx context.Context, res domainlisting.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[res.ListingID]
	if !ok {
		return domainlisting.ErrNotFound
	}
	if l.Version != res.Version {
		return domainlisting.ErrVersionConflict
	}
	l.Index = res.Index
	l.Bookings = append(l.Bookings, res.BookingRef)
	l.Version++
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		if params.Country != "" && !strings.EqualFold(l.Country, params.Country) {
			continue
		}
		if params.Admin != "" && !strings.EqualFold(l.Admin, params.Admin) {
			continue
		}
		if params.City != "" && !strings.EqualFold(l.City, params.City) {
			continue
		}
		matches = append(matches, cloneListing(l))
	}
	switch params.Sort {
	case domainlisting.SortPriceLowToHigh:
		sort.Slice(matches, func(i, j int) bool { return matches[i].Price < matches[j].Price })
	case domainlisting.SortPriceHighToLow:
		sort.Slice(matches, func(i, j int) bool { return matches[i].Price > matches[j].Price })
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	}
	total := int64(len(matches))
	matches = pageSlice(matches, params.Page)
	return domainlisting.SearchResult{Total: total, Result: matches}, nil
}

func (r *ListingRepository) ByIDs(ctx context.Context, ids []domainlisting.ID, page domainlisting.Page) (domainlisting.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(len(ids))
	ids = pageSlice(ids, page)
	result := make([]*domainlisting.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.items[id]; ok {
			result = append(result, cloneListing(l))
		}
	}
	return domainlisting.SearchResult{Total: total, Result: result}, nil
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	cp := *l
	cp.Bookings = append([]string(nil), l.Bookings...)
	if l.Index != nil {
		if index, err := availability.FromWire(l.Index.ToWire()); err == nil {
			cp.Index = index
		}
	}
	return &cp
}

func pageSlice[T any](items []T, page domainlisting.Page) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
