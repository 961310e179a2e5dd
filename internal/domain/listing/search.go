package listing

// Page is a 1-based page selector; page 0 is treated as the first page.
type Page struct {
	Limit int
	Page  int
}

// Offset converts the page selector into a skip count.
func (p Page) Offset() int {
	if p.Page > 0 {
		return (p.Page - 1) * p.Limit
	}
	return 0
}

type Sort string

const (
	SortNone            Sort = ""
	SortPriceLowToHigh  Sort = "PRICE_LOW_TO_HIGH"
	SortPriceHighToLow  Sort = "PRICE_HIGH_TO_LOW"
)

// SearchParams filter the catalog. Location fields are the already-geocoded
// components; free-text location resolution happens in the application layer.
type SearchParams struct {
	Country string
	Admin   string
	City    string
	Sort    Sort
	Page    Page
}

type SearchResult struct {
	Total  int64
	Result []*Listing
}
