package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	listingapp "stayhub/internal/app/handlers/listings"
	"stayhub/internal/app/queries"
	domainlisting "stayhub/internal/domain/listing"
)

type ListingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createListingRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Address     string `json:"address"`
	Price       int64  `json:"price"`
	NumOfGuests int    `json:"num_of_guests"`
	Image       string `json:"image"`
}

func (h ListingHandler) Catalog(c *gin.Context) {
	q := listingapp.SearchCatalogQuery{
		Location: c.Query("location"),
		Sort:     c.Query("sort"),
		Limit:    intQuery(c, "limit", 10),
		Page:     intQuery(c, "page", 1),
	}
	result, err := queries.Ask[listingapp.SearchCatalogQuery, dto.ListingCatalog](c.Request.Context(), h.Queries, q)
	if err != nil {
		if errors.Is(err, listingapp.ErrRegionNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.respondInternal(c, "catalog query failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Get(c *gin.Context) {
	viewerID := ""
	if p, ok := currentPrincipal(c); ok {
		viewerID = p.ID
	}
	q := listingapp.GetListingQuery{
		ListingID:     c.Param("id"),
		ViewerID:      viewerID,
		BookingsLimit: intQuery(c, "bookings_limit", 10),
		BookingsPage:  intQuery(c, "bookings_page", 1),
	}
	result, err := queries.Ask[listingapp.GetListingQuery, dto.ListingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		if errors.Is(err, domainlisting.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing can't be found"})
			return
		}
		h.respondInternal(c, "listing query failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) Create(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := listingapp.HostListingCommand{
		CommandID:       generateCommandID(),
		ViewerID:        viewer.ID,
		Title:           req.Title,
		Description:     req.Description,
		Type:            req.Type,
		Address:         req.Address,
		Price:           req.Price,
		NumOfGuests:     req.NumOfGuests,
		ImageBase64:     req.Image,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[listingapp.HostListingCommand, *listingapp.HostListingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		switch {
		case errors.Is(err, listingapp.ErrViewerRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, listingapp.ErrInvalidAddress),
			errors.Is(err, domainlisting.ErrTitleTooLong),
			errors.Is(err, domainlisting.ErrDescriptionLong),
			errors.Is(err, domainlisting.ErrInvalidType),
			errors.Is(err, domainlisting.ErrInvalidPrice):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ListingHandler) respondInternal(c *gin.Context, msg string, err error) {
	if h.Logger != nil {
		h.Logger.Error(msg, "error", err)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

var _ ListingHTTP = ListingHandler{}
