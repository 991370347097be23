package httpserver

import (
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/toolmarketplace/server/internal/repo"
	"github.com/toolmarketplace/server/internal/service/cart"
	"github.com/toolmarketplace/server/internal/service/catalog"
	"github.com/toolmarketplace/server/internal/service/order"
	"github.com/toolmarketplace/server/internal/service/review"
)

// Deps collects everything the route tree needs. Optional backends
// (ES) may be nil; the handlers degrade gracefully.
type Deps struct {
	DB        *gorm.DB
	Repo      *repo.GormRepo
	JWTSecret []byte

	Cart    *cart.Service
	Catalog *catalog.Service
	Orders  *order.Service
	Reviews *review.Service
	ES      *elasticsearch.Client
}

func Register(e *echo.Echo, d Deps) {
	auth := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret}
	sellers := &ToolsellerHandler{DB: d.DB, Repo: d.Repo}
	products := &ProductHandler{Svc: d.Catalog}
	carts := &CartHandler{Svc: d.Cart}
	orders := &OrderHandler{Svc: d.Orders}
	reviews := &ReviewHandler{Svc: d.Reviews}
	searcher := &SearchHandler{ES: d.ES}

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		sqlDB, err := d.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// public
	api.POST("/auth/register", auth.RegisterUser)
	api.POST("/auth/login", auth.LoginUser)
	api.POST("/auth/toolseller/register", auth.RegisterToolseller)
	api.POST("/auth/toolseller/login", auth.LoginToolseller)

	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.GET("/products/search", searcher.Search)

	api.GET("/toolsellers", sellers.List)
	api.GET("/toolsellers/:id", sellers.Get)

	api.GET("/reviews", reviews.List)
	api.GET("/reviews/:id", reviews.Get)

	// buyer routes
	user := api.Group("", RequireRole(d.JWTSecret, roleUser))
	user.GET("/me", auth.Me)
	user.PUT("/me", auth.UpdateUser)

	user.GET("/cart", carts.Get)
	user.POST("/cart/items", carts.AddItem)
	user.PUT("/cart/items/:productId", carts.SetQuantity)
	user.DELETE("/cart/items/:productId", carts.RemoveItem)
	user.DELETE("/cart", carts.Clear)

	user.POST("/orders", orders.Create)
	user.GET("/orders", orders.ListMine)

	user.POST("/reviews", reviews.Create)
	user.PUT("/reviews/:id", reviews.Update)
	user.DELETE("/reviews/:id", reviews.Delete)

	// seller routes
	seller := api.Group("", RequireRole(d.JWTSecret, roleToolseller))
	seller.POST("/products", products.Create)
	seller.PUT("/products/:id", products.Update)
	seller.DELETE("/products/:id", products.Delete)

	seller.PUT("/toolsellers/:id", sellers.Update)
	seller.DELETE("/toolsellers/:id", sellers.Delete)

	seller.GET("/toolseller/orders", orders.ListForToolseller)
	seller.PATCH("/orders/:id/status", orders.UpdateStatus)

	// either party
	any := api.Group("", RequireAny(d.JWTSecret))
	any.GET("/orders/:id", orders.Get)
	any.DELETE("/orders/:id", orders.Delete)
}
