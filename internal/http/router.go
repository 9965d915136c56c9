package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/internal/http/controller"
)

type Router struct {
	Controllers Controllers
	conf        config.AppConfig
}

type Controllers struct {
	ShiftController    controller.ShiftController
	DeliveryController controller.DeliveryController
	ExpenseController  controller.ExpenseController
	RouteController    controller.RouteController
	ShareController    controller.ShareController
}

func NewRouter(cs Controllers, conf config.AppConfig) *Router {
	return &Router{
		Controllers: cs,
		conf:        conf,
	}
}

func (r Router) SetupRoutes(e *echo.Echo) {

	e.GET("/ping", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "pong")
	})

	// public report, the token is the credential
	e.GET("/share/:token", r.Controllers.ShareController.Report)
	e.GET("/share/:token/export.xlsx", r.Controllers.ShareController.Export)

	api := e.Group("/api", OwnerAuth(r.conf.JWTSecret))
	if !r.conf.IsTest() {
		api.Use(middleware.RateLimiterWithConfig(RatelimiterConfig()))
	}

	// shift methods
	api.POST("/shifts/start", r.Controllers.ShiftController.Start)
	api.POST("/shifts/end", r.Controllers.ShiftController.End)
	api.GET("/shifts/current", r.Controllers.ShiftController.Current)
	api.GET("/shifts/history", r.Controllers.ShiftController.History)

	// delivery methods
	api.POST("/deliveries", r.Controllers.DeliveryController.Create)
	api.POST("/deliveries/ocr", r.Controllers.DeliveryController.CreateFromOCR)
	api.GET("/deliveries", r.Controllers.DeliveryController.GetAll)
	api.GET("/deliveries/pending", r.Controllers.DeliveryController.Pending)
	api.GET("/deliveries/:id", r.Controllers.DeliveryController.GetByID)
	api.PUT("/deliveries/:id", r.Controllers.DeliveryController.Update)
	api.DELETE("/deliveries/:id", r.Controllers.DeliveryController.Delete)
	api.POST("/deliveries/:id/status", r.Controllers.DeliveryController.SetStatus)
	api.GET("/stats", r.Controllers.DeliveryController.Stats)

	// expense methods
	api.POST("/expenses", r.Controllers.ExpenseController.Create)
	api.GET("/expenses", r.Controllers.ExpenseController.GetAll)
	api.DELETE("/expenses/:id", r.Controllers.ExpenseController.Delete)

	// route methods
	api.GET("/route/start", r.Controllers.RouteController.Start)
}

func RatelimiterConfig() middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: 10, Burst: 0, ExpiresIn: time.Minute},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			if owner, ok := ctx.Get(controller.OwnerKey).(string); ok && owner != "" {
				return owner, nil
			}
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, nil)
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, nil)
		},
	}
}
