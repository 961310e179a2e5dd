package dto

import (
	"stayhub/internal/domain/availability"
	domainlisting "stayhub/internal/domain/listing"
)

type ListingView struct {
	ID            string            `json:"id"`
	Host          string            `json:"host"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Type          string            `json:"type"`
	Image         string            `json:"image"`
	Address       string            `json:"address"`
	Country       string            `json:"country"`
	Admin         string            `json:"admin"`
	City          string            `json:"city"`
	Price         int64             `json:"price"`
	NumOfGuests   int               `json:"numOfGuests"`
	BookingsIndex availability.Wire `json:"bookingsIndex"`
	// Bookings is only populated for the listing's own host.
	Bookings *BookingPage `json:"bookings,omitempty"`
}

type ListingCatalog struct {
	Region string        `json:"region,omitempty"`
	Total  int64         `json:"total"`
	Result []ListingView `json:"result"`
}

func MapListing(l *domainlisting.Listing) ListingView {
	return ListingView{
		ID:            string(l.ID),
		Host:          string(l.Host),
		Title:         l.Title,
		Description:   l.Description,
		Type:          string(l.Type),
		Image:         l.ImageURL,
		Address:       l.Address,
		Country:       l.Country,
		Admin:         l.Admin,
		City:          l.City,
		Price:         l.Price,
		NumOfGuests:   l.NumOfGuests,
		BookingsIndex: l.Index.ToWire(),
	}
}

func MapCatalog(region string, res domainlisting.SearchResult) ListingCatalog {
	catalog := ListingCatalog{Region: region, Total: res.Total, Result: make([]ListingView, 0, len(res.Result))}
	for _, l := range res.Result {
		catalog.Result = append(catalog.Result, MapListing(l))
	}
	return catalog
}
