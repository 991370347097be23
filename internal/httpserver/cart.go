package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toolmarketplace/server/internal/service/cart"
)

type CartHandler struct {
	Svc *cart.Service
}

type cartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  uint `json:"quantity"`
}

func cartError(err error) error {
	switch {
	case errors.Is(err, cart.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *CartHandler) Get(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	lines, err := h.Svc.Snapshot(c.Request().Context(), uid)
	if err != nil {
		return cartError(err)
	}

	var total float64
	for _, l := range lines {
		total += l.LineTotal
	}
	return c.JSON(http.StatusOK, map[string]any{
		"items": lines,
		"total": total,
	})
}

func (h *CartHandler) AddItem(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddItem(c.Request().Context(), uid, req.ProductID, req.Quantity)
	if err != nil {
		return cartError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.SetQuantity(c.Request().Context(), uid, uint(productID), req.Quantity)
	if err != nil {
		return cartError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil || productID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.RemoveItem(c.Request().Context(), uid, uint(productID)); err != nil {
		return cartError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHandler) Clear(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(c.Request().Context(), uid); err != nil {
		return cartError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
