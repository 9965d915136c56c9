package route

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/pkg/ocrtext"
)

// Every stop gets the same estimate; no distances are computed.
const MinutesPerStop = 5

var KilometersPerStop = decimal.RequireFromString("0.5")

type PendingLister interface {
	PendingToday(ctx context.Context, ownerID string) ([]entity.Delivery, error)
}

type Config struct {
	RestaurantName    string
	RestaurantAddress string
	CitySuffix        string
}

type Origin struct {
	Name    string
	Address string
}

type Stop struct {
	Delivery      entity.Delivery
	RouteOrder    int
	EstimatedTime int
	Distance      decimal.Decimal
	FullAddress   string
}

type Route struct {
	Restaurant         Origin
	Stops              []Stop
	TotalDeliveries    int
	TotalEstimatedTime int
	TotalDistance      decimal.Decimal
	Message            string
}

type RouteUseCase struct {
	conf       Config
	Deliveries PendingLister
}

func New(deliveries PendingLister, conf Config) *RouteUseCase {
	return &RouteUseCase{
		conf:       conf,
		Deliveries: deliveries,
	}
}

// Start walks today's pending deliveries in the order they were registered.
func (uc *RouteUseCase) Start(ctx context.Context, ownerID string) (*Route, error) {
	op := "usecase.route.RouteUseCase.Start"

	pending, err := uc.Deliveries.PendingToday(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return uc.Build(pending), nil
}

func (uc *RouteUseCase) Build(deliveries []entity.Delivery) *Route {
	stops := make([]Stop, 0, len(deliveries))
	for i, d := range deliveries {
		stops = append(stops, Stop{
			Delivery:      d,
			RouteOrder:    i + 1,
			EstimatedTime: MinutesPerStop,
			Distance:      KilometersPerStop,
			FullAddress:   ocrtext.WithCity(d.Address, uc.conf.CitySuffix),
		})
	}

	n := len(stops)

	return &Route{
		Restaurant: Origin{
			Name:    uc.conf.RestaurantName,
			Address: uc.conf.RestaurantAddress,
		},
		Stops:              stops,
		TotalDeliveries:    n,
		TotalEstimatedTime: n * MinutesPerStop,
		TotalDistance:      KilometersPerStop.Mul(decimal.NewFromInt(int64(n))).Round(1),
		Message:            fmt.Sprintf("Ruta con %d entregas", n),
	}
}
