package memory

import (
	"context"
	"sync"

	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
)

type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.ID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.ID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.ID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *BookingRepository) ByIDs(ctx context.Context, ids []domainbooking.ID, page domainlisting.Page) (domainbooking.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := int64(len(ids))
	ids = pageSlice(ids, page)
	result := make([]*domainbooking.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.items[id]; ok {
			cp := *b
			result = append(result, &cp)
		}
	}
	return domainbooking.Collection{Total: total, Result: result}, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
