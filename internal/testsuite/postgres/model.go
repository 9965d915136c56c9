package postgres

import "time"

// Numeric columns are read back as text so assertions compare exact values.

type Shift struct {
	ID                  uint64     `db:"id"`
	OwnerID             string     `db:"owner_id"`
	StartTime           time.Time  `db:"start_time"`
	EndTime             *time.Time `db:"end_time"`
	BaseMoney           string     `db:"base_money"`
	Status              string     `db:"status"`
	ShareToken          string     `db:"share_token"`
	TotalDeliveryAmount string     `db:"total_delivery_amount"`
}

type Delivery struct {
	ID             uint64    `db:"id"`
	OwnerID        string    `db:"owner_id"`
	ShiftID        *uint64   `db:"shift_id"`
	InvoiceNumber  string    `db:"invoice_number"`
	Date           time.Time `db:"date"`
	Address        string    `db:"address"`
	Amount         *string   `db:"amount"`
	DeliveryStatus string    `db:"delivery_status"`
}

type Expense struct {
	ID          uint64    `db:"id"`
	OwnerID     string    `db:"owner_id"`
	ShiftID     *uint64   `db:"shift_id"`
	Description string    `db:"description"`
	Amount      *string   `db:"amount"`
	Date        time.Time `db:"date"`
}
