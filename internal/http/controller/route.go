package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DrkBotBase/delivery/internal/usecase/route"
)

type RouteController struct {
	uc *route.RouteUseCase
}

func NewRouteController(uc *route.RouteUseCase) RouteController {
	return RouteController{
		uc: uc,
	}
}

// ==========================================
// ========== GET /api/route/start ==========
// ==========================================

type RouteOriginDto struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type RouteStopDto struct {
	DeliveryDto
	RouteOrder    int    `json:"route_order"`
	EstimatedTime int    `json:"estimated_time"`
	Distance      string `json:"distance"`
	FullAddress   string `json:"full_address"`
}

type RouteStartResponse struct {
	Restaurant         RouteOriginDto `json:"restaurant"`
	Deliveries         []RouteStopDto `json:"deliveries"`
	TotalDeliveries    int            `json:"total_deliveries"`
	TotalEstimatedTime int            `json:"total_estimated_time"`
	TotalDistance      string         `json:"total_distance"`
	PendingCount       int            `json:"pending_count"`
	Message            string         `json:"message"`
}

func (c *RouteController) Start(ctx echo.Context) error {

	r, err := c.uc.Start(ctx.Request().Context(), ownerID(ctx))
	if err != nil {
		return err
	}

	res := RouteStartResponse{
		Restaurant: RouteOriginDto{
			Name:    r.Restaurant.Name,
			Address: r.Restaurant.Address,
		},
		Deliveries:         []RouteStopDto{},
		TotalDeliveries:    r.TotalDeliveries,
		TotalEstimatedTime: r.TotalEstimatedTime,
		TotalDistance:      r.TotalDistance.StringFixed(1),
		PendingCount:       len(r.Stops),
		Message:            r.Message,
	}
	for _, s := range r.Stops {
		res.Deliveries = append(res.Deliveries, RouteStopDto{
			DeliveryDto:   toDeliveryDto(s.Delivery),
			RouteOrder:    s.RouteOrder,
			EstimatedTime: s.EstimatedTime,
			Distance:      s.Distance.StringFixed(1),
			FullAddress:   s.FullAddress,
		})
	}

	return ctx.JSON(http.StatusOK, res)
}
