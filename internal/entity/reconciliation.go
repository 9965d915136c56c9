package entity

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Reconciliation is the cash position of a shift at one point in time.
type Reconciliation struct {
	TotalDeliveries decimal.Decimal
	TotalExpenses   decimal.Decimal
	GrandTotal      decimal.Decimal
	DeliveryCount   int
}

// Reconcile computes baseMoney + deliveries - expenses. Records are expected
// to be exactly the ones attached to the shift.
func Reconcile(baseMoney decimal.Decimal, deliveries []Delivery, expenses []Expense) Reconciliation {
	res := Reconciliation{
		TotalDeliveries: SumDeliveries(deliveries),
		TotalExpenses:   SumExpenses(expenses),
		DeliveryCount:   len(deliveries),
	}
	res.GrandTotal = baseMoney.Add(res.TotalDeliveries).Sub(res.TotalExpenses)

	return res
}

func SumDeliveries(deliveries []Delivery) decimal.Decimal {
	total := decimal.Zero
	for _, d := range deliveries {
		total = total.Add(d.Amount)
	}
	return total
}

func SumExpenses(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

type EntryKind string

const (
	EntryDelivery EntryKind = "delivery"
	EntryExpense  EntryKind = "expense"
)

// LedgerEntry is one movement of a shift report.
type LedgerEntry struct {
	Kind        EntryKind
	ID          uint64
	Description string
	Amount      decimal.Decimal
	At          time.Time
}

// MergeEntries lists deliveries and expenses together, most recent first.
func MergeEntries(deliveries []Delivery, expenses []Expense) []LedgerEntry {
	res := make([]LedgerEntry, 0, len(deliveries)+len(expenses))

	for _, d := range deliveries {
		at := d.Date
		if at.IsZero() {
			at = d.CreatedAt
		}

		res = append(res, LedgerEntry{
			Kind:        EntryDelivery,
			ID:          d.ID,
			Description: d.Address,
			Amount:      d.Amount,
			At:          at,
		})
	}

	for _, e := range expenses {
		res = append(res, LedgerEntry{
			Kind:        EntryExpense,
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			At:          e.Date,
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].At.After(res[j].At)
	})

	return res
}
