package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/hash"
	"github.com/toolmarketplace/server/internal/models"
	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/util"
)

type ToolsellerHandler struct {
	DB   *gorm.DB
	Repo *repo.GormRepo
}

func (h *ToolsellerHandler) List(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	minRating := 0.0
	if v := c.QueryParam("average_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid average_rating")
		}
		minRating = r
	}

	listings, err := h.Repo.ListToolsellers(c.Request().Context(), repo.ToolsellerFilter{
		Name:      c.QueryParam("name"),
		Address:   c.QueryParam("address"),
		MinRating: minRating,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"toolsellers": listings,
		"total":       len(listings),
	})
}

func (h *ToolsellerHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ctx := c.Request().Context()
	seller, err := h.Repo.GetToolseller(ctx, uint(id))
	if err != nil {
		if repo.IsNotFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, "toolseller not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	products, err := h.Repo.ListToolsellerProducts(ctx, seller.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	reviews, err := h.Repo.ListToolsellerReviews(ctx, seller.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"toolseller": seller,
		"products":   products,
		"reviews":    reviews,
	})
}

type updateToolsellerRequest struct {
	CompanyName        string `json:"company_name"`
	ContactPerson      string `json:"contact_person"`
	RegistrationNumber string `json:"registration_number"`
	Phone              string `json:"phone"`
	Description        string `json:"description"`
	Address            string `json:"address"`
	EstablishedYear    *int   `json:"established_year"`
	Password           string `json:"password"`
}

func (h *ToolsellerHandler) Update(c echo.Context) error {
	id, err := toolsellerID(c)
	if err != nil {
		return err
	}

	var req updateToolsellerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var seller models.Toolseller
	if err := h.DB.First(&seller, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "toolseller not found")
	}

	seller.CompanyName = req.CompanyName
	seller.ContactPerson = req.ContactPerson
	seller.RegistrationNumber = req.RegistrationNumber
	seller.Phone = req.Phone
	seller.Description = req.Description
	seller.Address = req.Address
	if req.EstablishedYear != nil {
		seller.EstablishedYear = req.EstablishedYear
	}
	if req.Password != "" {
		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		seller.PasswordHash = pwHash
	}

	if err := h.DB.Save(&seller).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, seller)
}

func (h *ToolsellerHandler) Delete(c echo.Context) error {
	id, err := toolsellerID(c)
	if err != nil {
		return err
	}

	if err := h.DB.Delete(&models.Toolseller{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "toolseller deleted"})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
