package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/toolmarketplace/server/internal/service/review"
)

type ReviewHandler struct {
	Svc *review.Service
}

func reviewError(err error) error {
	switch {
	case errors.Is(err, review.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, review.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, review.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}

	var req struct {
		OrderID     uint   `json:"order_id"`
		Rating      int    `json:"rating"`
		ShortReview string `json:"short_review"`
		ReviewText  string `json:"review_text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rev, err := h.Svc.Submit(c.Request().Context(), uid, review.SubmitInput{
		OrderID:     req.OrderID,
		Rating:      req.Rating,
		ShortReview: req.ShortReview,
		ReviewText:  req.ReviewText,
	})
	if err != nil {
		return reviewError(err)
	}
	return c.JSON(http.StatusCreated, rev)
}

func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	rev, err := h.Svc.Get(c.Request().Context(), uint(id))
	if err != nil {
		return reviewError(err)
	}
	return c.JSON(http.StatusOK, rev)
}

func (h *ReviewHandler) List(c echo.Context) error {
	if seller := c.QueryParam("toolseller_id"); seller != "" {
		id, err := strconv.Atoi(seller)
		if err != nil || id <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid toolseller_id")
		}
		reviews, err := h.Svc.ListByToolseller(c.Request().Context(), uint(id))
		if err != nil {
			return reviewError(err)
		}
		return c.JSON(http.StatusOK, reviews)
	}

	reviews, err := h.Svc.ListAll(c.Request().Context())
	if err != nil {
		return reviewError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Rating      int    `json:"rating"`
		ShortReview string `json:"short_review"`
		ReviewText  string `json:"review_text"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rev, err := h.Svc.Update(c.Request().Context(), uint(id), uid, review.UpdateInput{
		Rating:      req.Rating,
		ShortReview: req.ShortReview,
		ReviewText:  req.ReviewText,
	})
	if err != nil {
		return reviewError(err)
	}
	return c.JSON(http.StatusOK, rev)
}

func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.Delete(c.Request().Context(), uint(id), uid); err != nil {
		return reviewError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
