package postgres

import (
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
)

func (s *Suite) InsertShift(shift Shift) uint64 {

	var id uint64
	query := `INSERT INTO shifts
		(owner_id, start_time, end_time, base_money, status, share_token, total_delivery_amount)
		VALUES
		($1, $2, $3, $4::numeric, $5, $6, $7::numeric)
	RETURNING "id"`

	err := s.Pgx.QueryRow(
		s.Ctx,
		query,
		shift.OwnerID,
		shift.StartTime,
		shift.EndTime,
		orZero(shift.BaseMoney),
		shift.Status,
		shift.ShareToken,
		orZero(shift.TotalDeliveryAmount),
	).Scan(&id)

	if err != nil {
		panic(fmt.Errorf("error in insert: %w", err))
	}

	return id
}

func (s *Suite) InsertDelivery(d Delivery) uint64 {

	status := d.DeliveryStatus
	if status == "" {
		status = "pendiente"
	}

	var id uint64
	query := `INSERT INTO deliveries
		(owner_id, shift_id, invoice_number, date, address, amount, delivery_status)
		VALUES
		($1, $2, $3, $4, $5, $6::numeric, $7)
	RETURNING "id"`

	err := s.Pgx.QueryRow(
		s.Ctx,
		query,
		d.OwnerID,
		d.ShiftID,
		d.InvoiceNumber,
		d.Date,
		d.Address,
		d.Amount,
		status,
	).Scan(&id)

	if err != nil {
		panic(fmt.Errorf("error in insert: %w", err))
	}

	return id
}

func (s *Suite) InsertExpense(e Expense) uint64 {

	var id uint64
	query := `INSERT INTO expenses
		(owner_id, shift_id, description, amount, date)
		VALUES
		($1, $2, $3, $4::numeric, $5)
	RETURNING "id"`

	err := s.Pgx.QueryRow(
		s.Ctx, query, e.OwnerID, e.ShiftID, e.Description, e.Amount, e.Date,
	).Scan(&id)

	if err != nil {
		panic(fmt.Errorf("error in insert: %w", err))
	}

	return id
}

func (s *Suite) Shifts(ownerID string) []Shift {

	res := []Shift{}
	query := `SELECT id, owner_id, start_time, end_time, base_money::text AS base_money,
		status, share_token, total_delivery_amount::text AS total_delivery_amount
		FROM shifts WHERE owner_id = $1 ORDER BY id`

	if err := pgxscan.Select(s.Ctx, s.Pgx, &res, query, ownerID); err != nil {
		panic(fmt.Errorf("error in select: %w", err))
	}

	return res
}

func (s *Suite) Deliveries(ownerID string) []Delivery {

	res := []Delivery{}
	query := `SELECT id, owner_id, shift_id, invoice_number, date, address,
		amount::text AS amount, delivery_status
		FROM deliveries WHERE owner_id = $1 ORDER BY id`

	if err := pgxscan.Select(s.Ctx, s.Pgx, &res, query, ownerID); err != nil {
		panic(fmt.Errorf("error in select: %w", err))
	}

	return res
}

func orZero(v string) string {
	if v == "" {
		return "0"
	}
	return v
}
