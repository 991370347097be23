package httpserver

import (
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/toolmarketplace/server/internal/service/search"
	"github.com/toolmarketplace/server/internal/util"
)

type SearchHandler struct {
	ES *elasticsearch.Client
}

func (h *SearchHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, search.ProductIndex, query, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": products,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}
