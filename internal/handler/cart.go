package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kiddeo/kiddeo-core/internal/cart"
	"github.com/kiddeo/kiddeo-core/internal/middleware"
	"github.com/kiddeo/kiddeo-core/internal/model"
)

// CartService is the cart use-case surface consumed by the HTTP layer.
type CartService interface {
	Cart(ctx context.Context, ownerID string) (model.Cart, error)
	GetLineItem(ctx context.Context, ownerID, eventID string) (*model.CartLineItem, error)
	SetTierQuantity(ctx context.Context, ownerID, eventID, ticketID string, quantity int) (*model.CartLineItem, error)
	IncrementTier(ctx context.Context, ownerID, eventID, ticketID string) (*model.CartLineItem, error)
	DecrementTier(ctx context.Context, ownerID, eventID, ticketID string) (*model.CartLineItem, error)
	RemoveEvent(ctx context.Context, ownerID, eventID string) error
	AddMerchandise(ctx context.Context, ownerID, productID string, quantity int) (*model.CartLineItem, error)
	SetMerchandiseQuantity(ctx context.Context, ownerID, productID string, quantity int) (*model.CartLineItem, error)
	RemoveItem(ctx context.Context, ownerID, itemID string) error
	Checkout(ctx context.Context, ownerID string, req cart.CheckoutRequest) (*cart.Order, error)
}

// CartHandler serves /api/cart.  Every route runs behind JWTAuth; the token
// subject is the cart owner.
type CartHandler struct {
	Cart CartService
	Log  *slog.Logger
}

// quantityBody accepts {"quantity": ...} where the value may be a number or
// a numeric string.
type quantityBody struct {
	Quantity json.RawMessage `json:"quantity"`
}

// decodeQuantity coerces any malformed, fractional or negative value to 0.
func decodeQuantity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil || n > math.MaxInt32 {
			return 0
		}
		return cart.ClampQuantity(int(n))
	case string:
		return cart.ParseQuantity(t)
	}
	return 0
}

func readQuantity(c echo.Context) int {
	var body quantityBody
	b, err := io.ReadAll(io.LimitReader(c.Request().Body, 4096))
	if err != nil || json.Unmarshal(b, &body) != nil {
		return 0
	}
	return decodeQuantity(body.Quantity)
}

// fail maps cart errors onto HTTP statuses.
func (h *CartHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, cart.ErrTicketTypeNotFound), errors.Is(err, cart.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, cart.ErrTicketTypeInactive), errors.Is(err, cart.ErrProductInactive), errors.Is(err, cart.ErrEmptyCart):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, cart.ErrPaymentMethodRequired), errors.Is(err, cart.ErrUnknownPaymentMethod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	h.Log.Error("cart operation failed",
		"request_id", middleware.RequestID(c),
		"owner_id", middleware.OwnerID(c),
		"path", c.Path(),
		"err", err,
	)
	return c.JSON(http.StatusInternalServerError, internalError)
}

func itemResponse(c echo.Context, item *model.CartLineItem) error {
	return c.JSON(http.StatusOK, echo.Map{"item": item})
}

func (h *CartHandler) Get(c echo.Context) error {
	snapshot, err := h.Cart.Cart(c.Request().Context(), middleware.OwnerID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *CartHandler) GetEvent(c echo.Context) error {
	item, err := h.Cart.GetLineItem(c.Request().Context(), middleware.OwnerID(c), c.Param("eventId"))
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

func (h *CartHandler) RemoveEvent(c echo.Context) error {
	if err := h.Cart.RemoveEvent(c.Request().Context(), middleware.OwnerID(c), c.Param("eventId")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SetTier handles PUT /api/cart/events/:eventId/tickets/:ticketId.
func (h *CartHandler) SetTier(c echo.Context) error {
	item, err := h.Cart.SetTierQuantity(c.Request().Context(), middleware.OwnerID(c),
		c.Param("eventId"), c.Param("ticketId"), readQuantity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

func (h *CartHandler) IncrementTier(c echo.Context) error {
	item, err := h.Cart.IncrementTier(c.Request().Context(), middleware.OwnerID(c), c.Param("eventId"), c.Param("ticketId"))
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

func (h *CartHandler) DecrementTier(c echo.Context) error {
	item, err := h.Cart.DecrementTier(c.Request().Context(), middleware.OwnerID(c), c.Param("eventId"), c.Param("ticketId"))
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

// AddMerchandise handles POST /api/cart/merchandise with
// {"productId": "...", "quantity": n}.  A missing quantity adds one unit.
func (h *CartHandler) AddMerchandise(c echo.Context) error {
	var body struct {
		ProductID string          `json:"productId"`
		Quantity  json.RawMessage `json:"quantity"`
	}
	if err := json.NewDecoder(io.LimitReader(c.Request().Body, 4096)).Decode(&body); err != nil || body.ProductID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId is required"})
	}
	qty := 1
	if len(body.Quantity) > 0 {
		qty = decodeQuantity(body.Quantity)
	}
	item, err := h.Cart.AddMerchandise(c.Request().Context(), middleware.OwnerID(c), body.ProductID, qty)
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

func (h *CartHandler) SetMerchandise(c echo.Context) error {
	item, err := h.Cart.SetMerchandiseQuantity(c.Request().Context(), middleware.OwnerID(c), c.Param("productId"), readQuantity(c))
	if err != nil {
		return h.fail(c, err)
	}
	return itemResponse(c, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	if err := h.Cart.RemoveItem(c.Request().Context(), middleware.OwnerID(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout handles POST /api/cart/checkout with
// {"quick": bool, "paymentMethod": "card"|"sbp", "eventId": "..."}.
func (h *CartHandler) Checkout(c echo.Context) error {
	var body struct {
		Quick         bool   `json:"quick"`
		PaymentMethod string `json:"paymentMethod"`
		EventID       string `json:"eventId"`
	}
	if c.Request().ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(c.Request().Body, 4096)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
	}
	order, err := h.Cart.Checkout(c.Request().Context(), middleware.OwnerID(c), cart.CheckoutRequest{
		Quick:         body.Quick,
		PaymentMethod: body.PaymentMethod,
		EventID:       body.EventID,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}
