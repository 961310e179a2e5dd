package users

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

const getUserKey = "users.get"

type GetUserQuery struct {
	UserID        string
	ViewerID      string
	BookingsLimit int
	BookingsPage  int
	ListingsLimit int
	ListingsPage  int
}

func (q GetUserQuery) Key() string { return getUserKey }

// GetUserHandler builds a user profile. Listings are public; income and the
// booking history are only disclosed to the user themselves.
type GetUserHandler struct {
	Users    domainuser.Repository
	Bookings domainbooking.Repository
	Listings domainlisting.Repository
}

func (h *GetUserHandler) Handle(ctx context.Context, q GetUserQuery) (dto.UserView, error) {
	u, err := h.Users.ByID(ctx, domainuser.ID(q.UserID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return dto.UserView{}, err
		}
		return dto.UserView{}, fmt.Errorf("failed to query user: %w", err)
	}

	authorized := q.ViewerID != "" && q.ViewerID == q.UserID
	view := dto.MapUser(u, authorized)

	if authorized {
		ids := make([]domainbooking.ID, 0, len(u.Bookings))
		for _, ref := range u.Bookings {
			ids = append(ids, domainbooking.ID(ref))
		}
		bookings, err := h.Bookings.ByIDs(ctx, ids, domainlisting.Page{Limit: q.BookingsLimit, Page: q.BookingsPage})
		if err != nil {
			return dto.UserView{}, fmt.Errorf("failed to query user bookings: %w", err)
		}
		page := dto.MapBookingPage(bookings)
		view.Bookings = &page
	}

	listingIDs := make([]domainlisting.ID, 0, len(u.Listings))
	for _, ref := range u.Listings {
		listingIDs = append(listingIDs, domainlisting.ID(ref))
	}
	listings, err := h.Listings.ByIDs(ctx, listingIDs, domainlisting.Page{Limit: q.ListingsLimit, Page: q.ListingsPage})
	if err != nil {
		return dto.UserView{}, fmt.Errorf("failed to query user listings: %w", err)
	}
	catalog := dto.MapCatalog("", listings)
	view.Listings = &catalog

	return view, nil
}

var _ queries.Handler[GetUserQuery, dto.UserView] = (*GetUserHandler)(nil)
