package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"stayhub/internal/app/policies"
)

// GoogleGeocoder resolves free-text locations with the Google Geocoding API,
// extracting the country, administrative area and city components.
type GoogleGeocoder struct {
	Client  *http.Client
	APIBase string
	APIKey  string
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (policies.Region, error) {
	if g.Client == nil || g.APIKey == "" {
		return policies.Region{}, errors.New("geo: geocoder not configured")
	}
	endpoint := fmt.Sprintf("%s/json?address=%s&key=%s",
		strings.TrimRight(g.apiBase(), "/"), url.QueryEscape(address), url.QueryEscape(g.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return policies.Region{}, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return policies.Region{}, fmt.Errorf("geo: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return policies.Region{}, fmt.Errorf("geo: read response: %w", err)
	}
	var decoded geocodeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return policies.Region{}, fmt.Errorf("geo: decode response: %w", err)
	}
	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return policies.Region{}, nil
	default:
		return policies.Region{}, fmt.Errorf("geo: geocoding failed with status %s", decoded.Status)
	}
	if len(decoded.Results) == 0 {
		return policies.Region{}, nil
	}
	var region policies.Region
	for _, component := range decoded.Results[0].AddressComponents {
		for _, t := range component.Types {
			switch t {
			case "country":
				region.Country = component.LongName
			case "administrative_area_level_1":
				region.Admin = component.LongName
			case "locality", "postal_town":
				if region.City == "" {
					region.City = component.LongName
				}
			}
		}
	}
	return region, nil
}

func (g *GoogleGeocoder) apiBase() string {
	if g.APIBase != "" {
		return g.APIBase
	}
	return "https://maps.googleapis.com/maps/api/geocode"
}

var _ policies.Geocoder = (*GoogleGeocoder)(nil)
