package policies

import "context"

// Region is the parsed result of geocoding a free-text location.
type Region struct {
	Country string
	Admin   string
	City    string
}

// Geocoder resolves free-text locations; a wrapper around a third-party API.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Region, error)
}
