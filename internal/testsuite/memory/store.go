// Package memory keeps the ledger in process memory. It mirrors the
// constraints of the postgres schema so use cases can be tested without a
// database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
)

type Store struct {
	mu         sync.Mutex
	lastID     uint64
	shifts     []entity.Shift
	deliveries []entity.Delivery
	expenses   []entity.Expense
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetClock overrides the clock stamping created_at and updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) nextID() uint64 {
	s.lastID++
	return s.lastID
}

// TxManager runs fn directly. The store serializes every call itself.
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ==================
// ===== shifts =====
// ==================

type ShiftRepo struct {
	*Store
}

func (s *Store) Shifts() *ShiftRepo {
	return &ShiftRepo{s}
}

func (r *ShiftRepo) Create(_ context.Context, dto repositories.ShiftToCreateDTO) (*entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sh := range r.shifts {
		if sh.OwnerID == dto.OwnerID && sh.IsActive() {
			return nil, repositories.ErrShiftAlreadyActive(dto.OwnerID, nil)
		}
	}

	sh := entity.Shift{
		ID:                  r.nextID(),
		OwnerID:             dto.OwnerID,
		StartTime:           dto.StartTime,
		BaseMoney:           dto.BaseMoney,
		Status:              entity.ShiftActive,
		ShareToken:          dto.ShareToken,
		TotalDeliveryAmount: decimal.Zero,
		Note:                dto.Note,
	}
	r.shifts = append(r.shifts, sh)

	return &sh, nil
}

func (r *ShiftRepo) ActiveByOwner(_ context.Context, ownerID string) (*entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sh := range r.shifts {
		if sh.OwnerID == ownerID && sh.IsActive() {
			return &sh, nil
		}
	}

	return nil, nil
}

// ShareActiveByOwner and LockActiveByOwner need no row lock here, every
// access already goes through the store mutex.
func (r *ShiftRepo) ShareActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error) {
	return r.ActiveByOwner(ctx, ownerID)
}

func (r *ShiftRepo) LockActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error) {
	return r.ActiveByOwner(ctx, ownerID)
}

func (r *ShiftRepo) Close(_ context.Context, shift *entity.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.shifts {
		if r.shifts[i].ID == shift.ID && r.shifts[i].IsActive() {
			r.shifts[i].Status = entity.ShiftClosed
			r.shifts[i].EndTime = shift.EndTime
			r.shifts[i].TotalDeliveryAmount = shift.TotalDeliveryAmount
			return nil
		}
	}

	return repositories.ErrNoActiveShift(shift.OwnerID)
}

func (r *ShiftRepo) FindByShareToken(_ context.Context, token string) (*entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sh := range r.shifts {
		if sh.ShareToken == token {
			return &sh, nil
		}
	}

	return nil, repositories.ErrShiftNotFound(nil)
}

func (r *ShiftRepo) HistoryByOwner(_ context.Context, ownerID string, limit int) ([]entity.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []entity.Shift{}
	for _, sh := range r.shifts {
		if sh.OwnerID == ownerID {
			res = append(res, sh)
		}
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].StartTime.Equal(res[j].StartTime) {
			return res[i].ID > res[j].ID
		}
		return res[i].StartTime.After(res[j].StartTime)
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}

	return res, nil
}

// ======================
// ===== deliveries =====
// ======================

type DeliveryRepo struct {
	*Store
}

func (s *Store) Deliveries() *DeliveryRepo {
	return &DeliveryRepo{s}
}

func (r *DeliveryRepo) Create(_ context.Context, dto repositories.DeliveryToCreateDTO) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	d := entity.Delivery{
		ID:            r.nextID(),
		OwnerID:       dto.OwnerID,
		ShiftID:       dto.ShiftID,
		InvoiceNumber: dto.InvoiceNumber,
		Date:          dto.Date,
		Phone:         dto.Phone,
		PhoneStatus:   dto.PhoneStatus,
		Address:       dto.Address,
		Amount:        dto.Amount,
		CustomerName:  dto.CustomerName,
		Subtotal:      dto.Subtotal,
		Total:         dto.Total,
		ImageURL:      dto.ImageURL,
		OCRText:       dto.OCRText,
		Notes:         dto.Notes,
		Status:        entity.DeliveryPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.deliveries = append(r.deliveries, d)

	return &d, nil
}

func (r *DeliveryRepo) FindByID(_ context.Context, ownerID string, id uint64) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrDeliveryNotFound(id, nil)
	}

	d := r.deliveries[i]
	return &d, nil
}

func (r *DeliveryRepo) AllByOwner(_ context.Context, ownerID string) ([]entity.Delivery, error) {
	res := r.filter(func(d entity.Delivery) bool {
		return d.OwnerID == ownerID
	})

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].ID > res[j].ID
	})

	return res, nil
}

func (r *DeliveryRepo) AllByShift(_ context.Context, shiftID uint64) ([]entity.Delivery, error) {
	res := r.filter(func(d entity.Delivery) bool {
		return d.ShiftID != nil && *d.ShiftID == shiftID
	})

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})

	return res, nil
}

func (r *DeliveryRepo) SumAmountByShift(ctx context.Context, shiftID uint64) (decimal.Decimal, error) {
	deliveries, _ := r.AllByShift(ctx, shiftID)
	return entity.SumDeliveries(deliveries), nil
}

func (r *DeliveryRepo) PendingBetween(_ context.Context, ownerID string, from, to time.Time) ([]entity.Delivery, error) {
	res := r.filter(func(d entity.Delivery) bool {
		return d.OwnerID == ownerID &&
			d.Status == entity.DeliveryPending &&
			!d.Date.Before(from) &&
			d.Date.Before(to)
	})

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})

	return res, nil
}

func (r *DeliveryRepo) Update(_ context.Context, ownerID string, id uint64, dto repositories.DeliveryToUpdateDTO) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrDeliveryNotFound(id, nil)
	}

	d := &r.deliveries[i]
	if dto.InvoiceNumber != nil {
		d.InvoiceNumber = *dto.InvoiceNumber
	}
	if dto.Phone != nil {
		d.Phone = *dto.Phone
	}
	if dto.PhoneStatus != nil {
		d.PhoneStatus = *dto.PhoneStatus
	}
	if dto.Address != nil {
		d.Address = *dto.Address
	}
	if dto.Amount != nil {
		d.Amount = *dto.Amount
	}
	if dto.CustomerName != nil {
		d.CustomerName = *dto.CustomerName
	}
	if dto.Notes != nil {
		d.Notes = dto.Notes
	}
	d.UpdatedAt = r.now()

	res := *d
	return &res, nil
}

func (r *DeliveryRepo) SetStatus(_ context.Context, ownerID string, id uint64, status entity.DeliveryStatus, deliveryTime *time.Time) (*entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return nil, repositories.ErrDeliveryNotFound(id, nil)
	}

	d := &r.deliveries[i]
	d.Status = status
	if deliveryTime != nil {
		t := *deliveryTime
		d.DeliveryTime = &t
	}
	d.UpdatedAt = r.now()

	res := *d
	return &res, nil
}

func (r *DeliveryRepo) Delete(_ context.Context, ownerID string, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(ownerID, id)
	if i < 0 {
		return repositories.ErrDeliveryNotFound(id, nil)
	}

	r.deliveries = append(r.deliveries[:i], r.deliveries[i+1:]...)
	return nil
}

func (r *DeliveryRepo) DailyStats(_ context.Context, ownerID string, loc *time.Location) ([]entity.DailyTotal, error) {
	byDay := map[string]*entity.DailyTotal{}

	for _, d := range r.filter(func(d entity.Delivery) bool { return d.OwnerID == ownerID }) {
		day := d.Date.In(loc).Format(time.DateOnly)
		t, ok := byDay[day]
		if !ok {
			t = &entity.DailyTotal{Day: day, Total: decimal.Zero}
			byDay[day] = t
		}
		t.Total = t.Total.Add(d.Amount)
		t.Count++
	}

	res := make([]entity.DailyTotal, 0, len(byDay))
	for _, t := range byDay {
		res = append(res, *t)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Day > res[j].Day
	})

	return res, nil
}

func (r *DeliveryRepo) indexOf(ownerID string, id uint64) int {
	for i, d := range r.deliveries {
		if d.ID == id && d.OwnerID == ownerID {
			return i
		}
	}
	return -1
}

func (r *DeliveryRepo) filter(keep func(d entity.Delivery) bool) []entity.Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []entity.Delivery{}
	for _, d := range r.deliveries {
		if keep(d) {
			res = append(res, d)
		}
	}
	return res
}

// ====================
// ===== expenses =====
// ====================

type ExpenseRepo struct {
	*Store
}

func (s *Store) Expenses() *ExpenseRepo {
	return &ExpenseRepo{s}
}

func (r *ExpenseRepo) Create(_ context.Context, dto repositories.ExpenseToCreateDTO) (*entity.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := entity.Expense{
		ID:          r.nextID(),
		OwnerID:     dto.OwnerID,
		ShiftID:     dto.ShiftID,
		Description: dto.Description,
		Amount:      dto.Amount,
		Date:        dto.Date,
	}
	r.expenses = append(r.expenses, e)

	return &e, nil
}

func (r *ExpenseRepo) AllByOwner(_ context.Context, ownerID string, shiftID *uint64) ([]entity.Expense, error) {
	res := r.filter(func(e entity.Expense) bool {
		if e.OwnerID != ownerID {
			return false
		}
		return shiftID == nil || (e.ShiftID != nil && *e.ShiftID == *shiftID)
	})

	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.After(res[j].Date)
		}
		return res[i].ID > res[j].ID
	})

	return res, nil
}

func (r *ExpenseRepo) AllByShift(_ context.Context, shiftID uint64) ([]entity.Expense, error) {
	res := r.filter(func(e entity.Expense) bool {
		return e.ShiftID != nil && *e.ShiftID == shiftID
	})

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})

	return res, nil
}

func (r *ExpenseRepo) Delete(_ context.Context, ownerID string, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.expenses {
		if e.ID == id && e.OwnerID == ownerID {
			r.expenses = append(r.expenses[:i], r.expenses[i+1:]...)
			return nil
		}
	}

	return repositories.ErrExpenseNotFound(id)
}

func (r *ExpenseRepo) filter(keep func(e entity.Expense) bool) []entity.Expense {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []entity.Expense{}
	for _, e := range r.expenses {
		if keep(e) {
			res = append(res, e)
		}
	}
	return res
}
