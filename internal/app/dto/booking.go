package dto

import (
	"time"

	domainbooking "stayhub/internal/domain/booking"
)

type BookingView struct {
	ID        string `json:"id"`
	ListingID string `json:"listing"`
	TenantID  string `json:"tenant"`
	CheckIn   string `json:"checkIn"`
	CheckOut  string `json:"checkOut"`
	Total     int64  `json:"total"`
	Currency  string `json:"currency"`
}

type BookingPage struct {
	Total  int64         `json:"total"`
	Result []BookingView `json:"result"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	return BookingView{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		TenantID:  string(b.TenantID),
		CheckIn:   b.Range.CheckIn.Format(time.DateOnly),
		CheckOut:  b.Range.CheckOut.Format(time.DateOnly),
		Total:     b.Total.Amount,
		Currency:  b.Total.Currency,
	}
}

func MapBookingPage(c domainbooking.Collection) BookingPage {
	page := BookingPage{Total: c.Total, Result: make([]BookingView, 0, len(c.Result))}
	for _, b := range c.Result {
		page.Result = append(page.Result, MapBooking(b))
	}
	return page
}
