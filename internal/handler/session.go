package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kiddeo/kiddeo-core/internal/utils"
)

// SessionHandler issues guest cart tokens.
type SessionHandler struct {
	JWTSecret string
	GuestTTL  time.Duration
	Log       *slog.Logger
}

// CreateGuest handles POST /api/cart/session.  Every call starts a new,
// empty guest cart.
func (h *SessionHandler) CreateGuest(c echo.Context) error {
	owner := uuid.NewString()
	tok, err := utils.NewAccessToken(h.JWTSecret, owner, utils.RoleGuest, h.GuestTTL)
	if err != nil {
		h.Log.Error("sign guest token", "err", err)
		return c.JSON(http.StatusInternalServerError, internalError)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"ownerId":   owner,
		"token":     tok.Token,
		"expiresAt": tok.Exp,
	})
}
