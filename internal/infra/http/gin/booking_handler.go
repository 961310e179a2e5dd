package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stayhub/internal/app/commands"
	bookingapp "stayhub/internal/app/handlers/booking"
	"stayhub/internal/domain/availability"
	domainlisting "stayhub/internal/domain/listing"
)

type BookingHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ListingID string `json:"listing_id"`
	Source    string `json:"source"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	viewerID := ""
	if p, ok := currentPrincipal(c); ok {
		viewerID = p.ID
	}
	cmd := bookingapp.SettleBookingCommand{
		CommandID:       generateCommandID(),
		ListingID:       req.ListingID,
		ViewerID:        viewerID,
		Source:          req.Source,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.SettleBookingCommand, *bookingapp.SettleBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondSettleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) respondSettleError(c *gin.Context, err error) {
	var conflict *availability.DateConflictError
	var paymentErr *bookingapp.PaymentError
	var persistErr *bookingapp.PersistenceError
	switch {
	case errors.Is(err, bookingapp.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrSelfBooking):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, bookingapp.ErrInvalidDateRange),
		errors.Is(err, bookingapp.ErrHostPaymentUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.Is(err, domainlisting.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "listing was updated concurrently, retry the booking"})
	case errors.As(err, &paymentErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": paymentErr.Error()})
	case errors.As(err, &persistErr):
		if h.Logger != nil {
			h.Logger.Error("settlement persistence failure", "step", persistErr.Step, "booking_id", persistErr.BookingID, "error", persistErr.Err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking settled partially, support has been notified"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ BookingHTTP = BookingHandler{}
