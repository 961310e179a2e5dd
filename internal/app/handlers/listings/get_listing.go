package listings

import (
	"context"
	"errors"
	"fmt"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	domainbooking "stayhub/internal/domain/booking"
	domainlisting "stayhub/internal/domain/listing"
	domainuser "stayhub/internal/domain/user"
)

const getListingKey = "listings.get"

type GetListingQuery struct {
	ListingID string
	ViewerID  string
	// Paging for the bookings sub-collection, only consulted when the viewer
	// owns the listing.
	BookingsLimit int
	BookingsPage  int
}

func (q GetListingQuery) Key() string { return getListingKey }

// GetListingHandler loads one listing. The embedded availability index always
// crosses the boundary in its wire form; the booking list is private to the
// host, mirroring who may see whom a listing was rented to.
type GetListingHandler struct {
	Listings domainlisting.Repository
	Bookings domainbooking.Repository
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (dto.ListingView, error) {
	l, err := h.Listings.ByID(ctx, domainlisting.ID(q.ListingID))
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			return dto.ListingView{}, err
		}
		return dto.ListingView{}, fmt.Errorf("failed to query listing: %w", err)
	}

	view := dto.MapListing(l)
	if !l.OwnedBy(domainuser.ID(q.ViewerID)) {
		return view, nil
	}

	ids := make([]domainbooking.ID, 0, len(l.Bookings))
	for _, ref := range l.Bookings {
		ids = append(ids, domainbooking.ID(ref))
	}
	page, err := h.Bookings.ByIDs(ctx, ids, domainlisting.Page{Limit: q.BookingsLimit, Page: q.BookingsPage})
	if err != nil {
		return dto.ListingView{}, fmt.Errorf("failed to query listing's bookings: %w", err)
	}
	mapped := dto.MapBookingPage(page)
	view.Bookings = &mapped
	return view, nil
}

var _ queries.Handler[GetListingQuery, dto.ListingView] = (*GetListingHandler)(nil)
