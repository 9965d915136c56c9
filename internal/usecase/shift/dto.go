package shift

import (
	"github.com/DrkBotBase/delivery/internal/entity"
)

type StartShiftDTO struct {
	// Empty means no starting cash.
	BaseMoney string  `validate:"omitempty,money"`
	Note      *string `validate:"omitempty,max=500"`
}

// Snapshot is the live cash position of the active shift.
type Snapshot struct {
	Shift entity.Shift
	entity.Reconciliation
}

// Report is the read-only view of a shift addressed by its share token.
type Report struct {
	Shift entity.Shift
	entity.Reconciliation
	Entries []entity.LedgerEntry
}
