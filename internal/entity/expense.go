package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uint64
	OwnerID     string
	ShiftID     *uint64
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}
