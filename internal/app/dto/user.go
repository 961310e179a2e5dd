package dto

import (
	domainuser "stayhub/internal/domain/user"
)

type UserView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Contact   string `json:"contact"`
	HasWallet bool   `json:"hasWallet"`
	// Income is private: populated only when the viewer is the user.
	Income   *int64       `json:"income,omitempty"`
	Bookings *BookingPage `json:"bookings,omitempty"`
	Listings *ListingCatalog `json:"listings,omitempty"`
}

func MapUser(u *domainuser.User, authorized bool) UserView {
	view := UserView{
		ID:        string(u.ID),
		Name:      u.Name,
		Avatar:    u.Avatar,
		Contact:   u.Contact,
		HasWallet: u.HasWallet(),
	}
	if authorized {
		income := u.Income.Amount
		view.Income = &income
	}
	return view
}
