package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toolmarketplace/server/internal/service/catalog"
	"github.com/toolmarketplace/server/internal/util"
)

type ProductHandler struct {
	Svc *catalog.Service
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Condition   string  `json:"condition"`
	Warranty    string  `json:"warranty"`
	Stock       uint    `json:"stock"`
}

func (r productRequest) input() catalog.ProductInput {
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Brand:       r.Brand,
		Model:       r.Model,
		Condition:   r.Condition,
		Warranty:    r.Warranty,
		Stock:       r.Stock,
	}
}

func catalogError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	product, err := h.Svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	products, total, err := h.Svc.List(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": products,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) Create(c echo.Context) error {
	sellerID, err := toolsellerID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.Create(c.Request().Context(), sellerID, req.input())
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Update(c echo.Context) error {
	sellerID, err := toolsellerID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.Update(c.Request().Context(), sellerID, uint(id), req.input())
	if err != nil {
		return catalogError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	sellerID, err := toolsellerID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.Delete(c.Request().Context(), sellerID, uint(id)); err != nil {
		return catalogError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
