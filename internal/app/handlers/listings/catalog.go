package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/policies"
	"stayhub/internal/app/queries"
	domainlisting "stayhub/internal/domain/listing"
)

const searchCatalogKey = "listings.catalog"

var ErrRegionNotFound = errors.New("listings: no country found for location")

type SearchCatalogQuery struct {
	Location string
	Sort     string
	Limit    int
	Page     int
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

// SearchCatalogHandler returns a paginated catalog page. A free-text location
// is resolved through the geocoder into country/admin/city filters; the
// response echoes the resolved region so clients can label the results.
type SearchCatalogHandler struct {
	Listings domainlisting.Repository
	Geocoder policies.Geocoder
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) (dto.ListingCatalog, error) {
	params := domainlisting.SearchParams{
		Sort: domainlisting.Sort(q.Sort),
		Page: domainlisting.Page{Limit: q.Limit, Page: q.Page},
	}

	var region string
	if loc := strings.TrimSpace(q.Location); loc != "" {
		if h.Geocoder == nil {
			return dto.ListingCatalog{}, errors.New("listings: geocoder not configured")
		}
		resolved, err := h.Geocoder.Geocode(ctx, loc)
		if err != nil {
			return dto.ListingCatalog{}, fmt.Errorf("failed to geocode location: %w", err)
		}
		if resolved.Country == "" {
			return dto.ListingCatalog{}, ErrRegionNotFound
		}
		params.Country = resolved.Country
		params.Admin = resolved.Admin
		params.City = resolved.City
		region = formatRegion(resolved)
	}

	result, err := h.Listings.Search(ctx, params)
	if err != nil {
		return dto.ListingCatalog{}, fmt.Errorf("failed to query listings: %w", err)
	}
	return dto.MapCatalog(region, result), nil
}

func formatRegion(r policies.Region) string {
	parts := make([]string, 0, 3)
	if r.City != "" {
		parts = append(parts, r.City)
	}
	if r.Admin != "" {
		parts = append(parts, r.Admin)
	}
	parts = append(parts, r.Country)
	return strings.Join(parts, ", ")
}

var _ queries.Handler[SearchCatalogQuery, dto.ListingCatalog] = (*SearchCatalogHandler)(nil)
