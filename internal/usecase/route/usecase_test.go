package route

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrkBotBase/delivery/internal/entity"
)

type pendingStub struct {
	deliveries []entity.Delivery
	err        error
}

func (p pendingStub) PendingToday(ctx context.Context, ownerID string) ([]entity.Delivery, error) {
	return p.deliveries, p.err
}

var conf = Config{
	RestaurantName:    "El Sabor",
	RestaurantAddress: "Eduardo Santos, Barranquilla, Atlántico",
	CitySuffix:        "Riomar, Barranquilla, Atlántico",
}

func TestStartWalksPendingInOrder(t *testing.T) {
	uc := New(pendingStub{deliveries: []entity.Delivery{
		{ID: 7, Address: "CL 80 # 45-12"},
		{ID: 3, Address: "CRA 52 # 76-31 BARRANQUILLA"},
		{ID: 9, Address: "AV 30 # 10-20"},
	}}, conf)

	r, err := uc.Start(context.Background(), "courier-1")
	require.NoError(t, err)

	assert.Equal(t, "El Sabor", r.Restaurant.Name)
	require.Len(t, r.Stops, 3)
	assert.Equal(t, 3, r.TotalDeliveries)
	assert.Equal(t, 15, r.TotalEstimatedTime)
	assert.True(t, decimal.RequireFromString("1.5").Equal(r.TotalDistance), r.TotalDistance.String())
	assert.Equal(t, "Ruta con 3 entregas", r.Message)

	for i, stop := range r.Stops {
		assert.Equal(t, i+1, stop.RouteOrder)
		assert.Equal(t, MinutesPerStop, stop.EstimatedTime)
		assert.True(t, KilometersPerStop.Equal(stop.Distance))
	}

	assert.Equal(t, uint64(7), r.Stops[0].Delivery.ID)
	assert.Equal(t, "CL 80 # 45-12, Riomar, Barranquilla, Atlántico", r.Stops[0].FullAddress)
	assert.Equal(t, "CRA 52 # 76-31 BARRANQUILLA", r.Stops[1].FullAddress)
}

func TestStartWithoutPending(t *testing.T) {
	uc := New(pendingStub{}, conf)

	r, err := uc.Start(context.Background(), "courier-1")
	require.NoError(t, err)

	assert.Empty(t, r.Stops)
	assert.Equal(t, 0, r.TotalDeliveries)
	assert.Equal(t, 0, r.TotalEstimatedTime)
	assert.True(t, r.TotalDistance.IsZero())
	assert.Equal(t, "Ruta con 0 entregas", r.Message)
}

func TestStartPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	uc := New(pendingStub{err: boom}, conf)

	_, err := uc.Start(context.Background(), "courier-1")
	assert.ErrorIs(t, err, boom)
}
