package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/toolmarketplace/server/internal/service/order"
)

type OrderHandler struct {
	Svc *order.Service
}

type placeOrderRequest struct {
	DeliveryAddress string     `json:"delivery_address"`
	PaymentMethod   string     `json:"payment_method"`
	OrderType       string     `json:"order_type"`
	RentalStartDate *time.Time `json:"rental_start_date"`
	RentalEndDate   *time.Time `json:"rental_end_date"`
	DiscountPoints  int        `json:"discount_points"`
}

func orderError(err error) error {
	switch {
	case errors.Is(err, order.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ord, err := h.Svc.PlaceOrder(c.Request().Context(), uid, order.PlaceOrderInput{
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		OrderType:       req.OrderType,
		RentalStartDate: req.RentalStartDate,
		RentalEndDate:   req.RentalEndDate,
		DiscountPoints:  req.DiscountPoints,
	})
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusCreated, ord)
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ord, err := h.Svc.GetOrder(c.Request().Context(), uint(id))
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListUserOrders(c.Request().Context(), uid)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListForToolseller(c echo.Context) error {
	sellerID, err := toolsellerID(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListToolsellerOrders(c.Request().Context(), sellerID)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	if _, err := toolsellerID(c); err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	ord, err := h.Svc.UpdateStatus(c.Request().Context(), uint(id), req.Status)
	if err != nil {
		return orderError(err)
	}
	return c.JSON(http.StatusOK, ord)
}

func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req order.Requester
	if uid, err := userID(c); err == nil {
		req.UserID = uid
	}
	if sid, err := toolsellerID(c); err == nil {
		req.ToolsellerID = sid
	}
	if req.UserID == 0 && req.ToolsellerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.Svc.DeleteOrder(c.Request().Context(), uint(id), req); err != nil {
		return orderError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
