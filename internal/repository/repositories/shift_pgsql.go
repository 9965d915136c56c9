package repositories

import (
	"context"
	"errors"
	"time"

	trmgorm "github.com/avito-tech/go-transaction-manager/gorm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
)

// @migration
type Shift struct {
	ID                  uint64          `gorm:"primaryKey"`
	OwnerID             string          `gorm:"not null"`
	StartTime           time.Time       `gorm:"not null"`
	EndTime             *time.Time
	BaseMoney           decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Status              string          `gorm:"not null"`
	ShareToken          string          `gorm:"not null;uniqueIndex"`
	TotalDeliveryAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Note                *string
}

type ShiftRepo struct {
	gorm   *gorm.DB
	getter *trmgorm.CtxGetter
}

func NewShiftRepo(grm *gorm.DB, c *trmgorm.CtxGetter) *ShiftRepo {
	return &ShiftRepo{
		gorm:   grm,
		getter: c,
	}
}

func (s *ShiftRepo) db(ctx context.Context) *gorm.DB {
	return s.getter.DefaultTrOrDB(ctx, s.gorm).WithContext(ctx)
}

type ShiftToCreateDTO struct {
	OwnerID    string
	StartTime  time.Time
	BaseMoney  decimal.Decimal
	ShareToken string
	Note       *string
}

func (s *ShiftRepo) Create(ctx context.Context, dto ShiftToCreateDTO) (*entity.Shift, error) {

	shift := Shift{
		OwnerID:             dto.OwnerID,
		StartTime:           dto.StartTime,
		BaseMoney:           dto.BaseMoney,
		Status:              string(entity.ShiftActive),
		ShareToken:          dto.ShareToken,
		TotalDeliveryAmount: decimal.Zero,
		Note:                dto.Note,
	}

	err := s.db(ctx).Create(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrShiftAlreadyActive(dto.OwnerID, err)
		}
		return nil, err
	}

	res := shift.toEntity()
	return &res, nil
}

// ActiveByOwner returns the owner's active shift, or nil when there is none.
func (s *ShiftRepo) ActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error) {
	return s.activeByOwner(ctx, ownerID, nil)
}

// ShareActiveByOwner is ActiveByOwner holding a FOR SHARE lock on the row
// until the surrounding transaction ends. A concurrent close waits for it.
func (s *ShiftRepo) ShareActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error) {
	return s.activeByOwner(ctx, ownerID, &clause.Locking{Strength: "SHARE"})
}

// LockActiveByOwner is ActiveByOwner holding a FOR UPDATE lock on the row.
// It waits for transactions that attach records to the shift.
func (s *ShiftRepo) LockActiveByOwner(ctx context.Context, ownerID string) (*entity.Shift, error) {
	return s.activeByOwner(ctx, ownerID, &clause.Locking{Strength: "UPDATE"})
}

func (s *ShiftRepo) activeByOwner(ctx context.Context, ownerID string, locking *clause.Locking) (*entity.Shift, error) {

	var shifts []Shift

	q := s.db(ctx).
		Where("owner_id = ? AND status = ?", ownerID, string(entity.ShiftActive)).
		Limit(1)
	if locking != nil {
		q = q.Clauses(*locking)
	}

	if err := q.Find(&shifts).Error; err != nil {
		return nil, err
	}

	if len(shifts) == 0 {
		return nil, nil
	}

	res := shifts[0].toEntity()
	return &res, nil
}

// Close stores the closing snapshot. Only an active shift can be closed; a
// shift closed concurrently is reported as not found.
func (s *ShiftRepo) Close(ctx context.Context, shift *entity.Shift) error {

	res := s.db(ctx).
		Model(&Shift{}).
		Where("id = ? AND status = ?", shift.ID, string(entity.ShiftActive)).
		Updates(map[string]interface{}{
			"status":                string(entity.ShiftClosed),
			"end_time":              shift.EndTime,
			"total_delivery_amount": shift.TotalDeliveryAmount,
		})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNoActiveShift(shift.OwnerID)
	}

	return nil
}

func (s *ShiftRepo) FindByShareToken(ctx context.Context, token string) (*entity.Shift, error) {

	var shift Shift

	err := s.db(ctx).Where("share_token = ?", token).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound(err)
		}
		return nil, err
	}

	res := shift.toEntity()
	return &res, nil
}

func (s *ShiftRepo) HistoryByOwner(ctx context.Context, ownerID string, limit int) ([]entity.Shift, error) {

	shifts := []Shift{}

	err := s.db(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_time DESC").
		Order("id DESC").
		Limit(limit).
		Find(&shifts).Error
	if err != nil {
		return nil, err
	}

	res := make([]entity.Shift, 0, len(shifts))
	for _, sh := range shifts {
		res = append(res, sh.toEntity())
	}

	return res, nil
}

func (m Shift) toEntity() entity.Shift {
	return entity.Shift{
		ID:                  m.ID,
		OwnerID:             m.OwnerID,
		StartTime:           m.StartTime,
		EndTime:             m.EndTime,
		BaseMoney:           m.BaseMoney,
		Status:              entity.ShiftStatus(m.Status),
		ShareToken:          m.ShareToken,
		TotalDeliveryAmount: m.TotalDeliveryAmount,
		Note:                m.Note,
	}
}

func ErrShiftAlreadyActive(ownerID string, cause error) error {
	return &delivery.Error{
		Code:    delivery.ECONFLICT,
		Message: "A shift is already open",
		Err:     cause,
		Fields:  map[string]interface{}{"owner_id": ownerID},
	}
}

func ErrNoActiveShift(ownerID string) error {
	return &delivery.Error{
		Code:    delivery.ENOTFOUND,
		Message: "There is no open shift",
		Fields:  map[string]interface{}{"owner_id": ownerID},
	}
}

func ErrShiftNotFound(cause error) error {
	return &delivery.Error{
		Code:    delivery.ENOTFOUND,
		Message: "Shift not found",
		Err:     cause,
	}
}
