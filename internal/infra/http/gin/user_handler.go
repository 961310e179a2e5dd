package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	userapp "stayhub/internal/app/handlers/users"
	"stayhub/internal/app/queries"
	domainuser "stayhub/internal/domain/user"
)

type UserHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type connectWalletRequest struct {
	Code string `json:"code"`
}

func (h UserHandler) Get(c *gin.Context) {
	viewerID := ""
	if p, ok := currentPrincipal(c); ok {
		viewerID = p.ID
	}
	q := userapp.GetUserQuery{
		UserID:        c.Param("id"),
		ViewerID:      viewerID,
		BookingsLimit: intQuery(c, "bookings_limit", 10),
		BookingsPage:  intQuery(c, "bookings_page", 1),
		ListingsLimit: intQuery(c, "listings_limit", 10),
		ListingsPage:  intQuery(c, "listings_page", 1),
	}
	result, err := queries.Ask[userapp.GetUserQuery, dto.UserView](c.Request.Context(), h.Queries, q)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user can't be found"})
			return
		}
		if h.Logger != nil {
			h.Logger.Error("user query failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) ConnectWallet(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	var req connectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := userapp.ConnectWalletCommand{ViewerID: viewer.ID, Code: req.Code}
	result, err := commands.Dispatch[userapp.ConnectWalletCommand, *userapp.WalletResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) DisconnectWallet(c *gin.Context) {
	viewer, ok := requireViewer(c)
	if !ok {
		return
	}
	cmd := userapp.DisconnectWalletCommand{ViewerID: viewer.ID}
	result, err := commands.Dispatch[userapp.DisconnectWalletCommand, *userapp.WalletResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		h.respondWalletError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h UserHandler) respondWalletError(c *gin.Context, err error) {
	if errors.Is(err, userapp.ErrViewerRequired) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if h.Logger != nil {
		h.Logger.Error("wallet operation failed", "error", err)
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": "wallet operation failed"})
}

var _ UserHTTP = UserHandler{}
