package entity

import (
	"time"

	"github.com/DrkBotBase/delivery"
	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftActive ShiftStatus = "active"
	ShiftClosed ShiftStatus = "closed"
)

// Shift is one courier's continuous cash-handling session.
type Shift struct {
	ID                  uint64
	OwnerID             string
	StartTime           time.Time
	EndTime             *time.Time
	BaseMoney           decimal.Decimal
	Status              ShiftStatus
	ShareToken          string
	TotalDeliveryAmount decimal.Decimal
	Note                *string
}

func (s *Shift) IsActive() bool {
	return s.Status == ShiftActive
}

// Close is the only transition of the shift state machine: active -> closed.
// deliveryTotal is frozen on the shift and never recomputed.
func (s *Shift) Close(at time.Time, deliveryTotal decimal.Decimal) error {
	if !s.IsActive() {
		return &delivery.Error{
			Code:    delivery.ECONFLICT,
			Message: "shift is already closed",
			Fields:  map[string]interface{}{"shift_id": s.ID},
		}
	}

	s.Status = ShiftClosed
	s.EndTime = &at
	s.TotalDeliveryAmount = deliveryTotal

	return nil
}

// SharedUntil reports until when the share token of a closed shift stays
// readable. A zero ttl or an active shift never expires.
func (s *Shift) SharedUntil(ttl time.Duration) (time.Time, bool) {
	if ttl <= 0 || s.IsActive() || s.EndTime == nil {
		return time.Time{}, false
	}
	return s.EndTime.Add(ttl), true
}
