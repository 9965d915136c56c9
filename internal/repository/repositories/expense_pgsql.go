package repositories

import (
	"context"
	"time"

	trmgorm "github.com/avito-tech/go-transaction-manager/gorm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
)

// @migration
type Expense struct {
	ID          uint64 `gorm:"primaryKey"`
	OwnerID     string `gorm:"not null"`
	ShiftID     *uint64
	Description string              `gorm:"not null"`
	Amount      decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	Date        time.Time           `gorm:"not null"`
}

type ExpenseRepo struct {
	gorm   *gorm.DB
	getter *trmgorm.CtxGetter
}

func NewExpenseRepo(grm *gorm.DB, c *trmgorm.CtxGetter) *ExpenseRepo {
	return &ExpenseRepo{
		gorm:   grm,
		getter: c,
	}
}

func (s *ExpenseRepo) db(ctx context.Context) *gorm.DB {
	return s.getter.DefaultTrOrDB(ctx, s.gorm).WithContext(ctx)
}

type ExpenseToCreateDTO struct {
	OwnerID     string
	ShiftID     *uint64
	Description string
	Amount      decimal.Decimal
	Date        time.Time
}

func (s *ExpenseRepo) Create(ctx context.Context, dto ExpenseToCreateDTO) (*entity.Expense, error) {

	e := Expense{
		OwnerID:     dto.OwnerID,
		ShiftID:     dto.ShiftID,
		Description: dto.Description,
		Amount:      decimal.NewNullDecimal(dto.Amount),
		Date:        dto.Date,
	}

	if err := s.db(ctx).Create(&e).Error; err != nil {
		return nil, err
	}

	res := e.toEntity()
	return &res, nil
}

// AllByOwner lists the owner's expenses, newest first. A non-nil shiftID
// narrows the list to that shift.
func (s *ExpenseRepo) AllByOwner(ctx context.Context, ownerID string, shiftID *uint64) ([]entity.Expense, error) {

	expenses := []Expense{}

	q := s.db(ctx).Where("owner_id = ?", ownerID)
	if shiftID != nil {
		q = q.Where("shift_id = ?", *shiftID)
	}

	err := q.Order("date DESC").Order("id DESC").Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	return expensesToEntities(expenses), nil
}

func (s *ExpenseRepo) AllByShift(ctx context.Context, shiftID uint64) ([]entity.Expense, error) {

	expenses := []Expense{}

	err := s.db(ctx).
		Where("shift_id = ?", shiftID).
		Order("date DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	return expensesToEntities(expenses), nil
}

func (s *ExpenseRepo) Delete(ctx context.Context, ownerID string, id uint64) error {

	res := s.db(ctx).Where("owner_id = ?", ownerID).Delete(&Expense{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrExpenseNotFound(id)
	}

	return nil
}

func (m Expense) toEntity() entity.Expense {
	amount := decimal.Zero
	if m.Amount.Valid {
		amount = m.Amount.Decimal
	}

	return entity.Expense{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		ShiftID:     m.ShiftID,
		Description: m.Description,
		Amount:      amount,
		Date:        m.Date,
	}
}

func expensesToEntities(expenses []Expense) []entity.Expense {
	res := make([]entity.Expense, 0, len(expenses))
	for _, e := range expenses {
		res = append(res, e.toEntity())
	}
	return res
}

func ErrExpenseNotFound(id uint64) error {
	return &delivery.Error{
		Code:    delivery.ENOTFOUND,
		Message: "Expense not found",
		Fields:  map[string]interface{}{"expense_id": id},
	}
}
