package repositories

import (
	"context"
	"errors"
	"time"

	trmgorm "github.com/avito-tech/go-transaction-manager/gorm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
)

// @migration
type Delivery struct {
	ID            uint64 `gorm:"primaryKey"`
	OwnerID       string `gorm:"not null"`
	ShiftID       *uint64
	InvoiceNumber string    `gorm:"not null"`
	Date          time.Time `gorm:"not null"`
	Phone         string
	PhoneStatus   string
	Address       string              `gorm:"not null"`
	Amount        decimal.NullDecimal `gorm:"type:numeric(14,2)"`
	CustomerName  string
	Subtotal      decimal.Decimal `gorm:"type:numeric(14,2)"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2)"`
	ImageURL      string          `gorm:"column:image_url"`
	OCRText       *string         `gorm:"column:ocr_text"`
	Notes         *string
	Status        string `gorm:"column:delivery_status"`
	DeliveryTime  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type DeliveryRepo struct {
	gorm   *gorm.DB
	getter *trmgorm.CtxGetter
}

func NewDeliveryRepo(grm *gorm.DB, c *trmgorm.CtxGetter) *DeliveryRepo {
	return &DeliveryRepo{
		gorm:   grm,
		getter: c,
	}
}

func (s *DeliveryRepo) db(ctx context.Context) *gorm.DB {
	return s.getter.DefaultTrOrDB(ctx, s.gorm).WithContext(ctx)
}

type DeliveryToCreateDTO struct {
	OwnerID       string
	ShiftID       *uint64
	InvoiceNumber string
	Date          time.Time
	Phone         string
	PhoneStatus   entity.PhoneStatus
	Address       string
	Amount        decimal.Decimal
	CustomerName  string
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	ImageURL      string
	OCRText       *string
	Notes         *string
}

// DeliveryToUpdateDTO holds the editable fields; nil fields are left as is.
type DeliveryToUpdateDTO struct {
	InvoiceNumber *string
	Phone         *string
	PhoneStatus   *entity.PhoneStatus
	Address       *string
	Amount        *decimal.Decimal
	CustomerName  *string
	Notes         *string
}

func (s *DeliveryRepo) Create(ctx context.Context, dto DeliveryToCreateDTO) (*entity.Delivery, error) {

	d := Delivery{
		OwnerID:       dto.OwnerID,
		ShiftID:       dto.ShiftID,
		InvoiceNumber: dto.InvoiceNumber,
		Date:          dto.Date,
		Phone:         dto.Phone,
		PhoneStatus:   string(dto.PhoneStatus),
		Address:       dto.Address,
		Amount:        decimal.NewNullDecimal(dto.Amount),
		CustomerName:  dto.CustomerName,
		Subtotal:      dto.Subtotal,
		Total:         dto.Total,
		ImageURL:      dto.ImageURL,
		OCRText:       dto.OCRText,
		Notes:         dto.Notes,
		Status:        string(entity.DeliveryPending),
	}

	if err := s.db(ctx).Create(&d).Error; err != nil {
		return nil, err
	}

	res := d.toEntity()
	return &res, nil
}

func (s *DeliveryRepo) FindByID(ctx context.Context, ownerID string, id uint64) (*entity.Delivery, error) {

	var d Delivery

	err := s.db(ctx).Where("owner_id = ?", ownerID).First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeliveryNotFound(id, err)
		}
		return nil, err
	}

	res := d.toEntity()
	return &res, nil
}

func (s *DeliveryRepo) AllByOwner(ctx context.Context, ownerID string) ([]entity.Delivery, error) {

	deliveries := []Delivery{}

	err := s.db(ctx).
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Order("id DESC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}

	return deliveriesToEntities(deliveries), nil
}

func (s *DeliveryRepo) AllByShift(ctx context.Context, shiftID uint64) ([]entity.Delivery, error) {

	deliveries := []Delivery{}

	err := s.db(ctx).
		Where("shift_id = ?", shiftID).
		Order("date DESC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}

	return deliveriesToEntities(deliveries), nil
}

// SumAmountByShift sums the amount of every delivery attached to the shift,
// whatever its delivery status. Missing amounts count as zero.
func (s *DeliveryRepo) SumAmountByShift(ctx context.Context, shiftID uint64) (decimal.Decimal, error) {

	var row struct {
		Total decimal.Decimal
	}

	err := s.db(ctx).
		Model(&Delivery{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("shift_id = ?", shiftID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}

	return row.Total, nil
}

// PendingBetween lists pending deliveries dated in [from, to), oldest first.
func (s *DeliveryRepo) PendingBetween(ctx context.Context, ownerID string, from, to time.Time) ([]entity.Delivery, error) {

	deliveries := []Delivery{}

	err := s.db(ctx).
		Where("owner_id = ? AND delivery_status = ?", ownerID, string(entity.DeliveryPending)).
		Where("date >= ? AND date < ?", from, to).
		Order("created_at ASC").
		Order("id ASC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}

	return deliveriesToEntities(deliveries), nil
}

func (s *DeliveryRepo) Update(ctx context.Context, ownerID string, id uint64, dto DeliveryToUpdateDTO) (*entity.Delivery, error) {

	values := map[string]interface{}{}
	if dto.InvoiceNumber != nil {
		values["invoice_number"] = *dto.InvoiceNumber
	}
	if dto.Phone != nil {
		values["phone"] = *dto.Phone
	}
	if dto.PhoneStatus != nil {
		values["phone_status"] = string(*dto.PhoneStatus)
	}
	if dto.Address != nil {
		values["address"] = *dto.Address
	}
	if dto.Amount != nil {
		values["amount"] = decimal.NewNullDecimal(*dto.Amount)
	}
	if dto.CustomerName != nil {
		values["customer_name"] = *dto.CustomerName
	}
	if dto.Notes != nil {
		values["notes"] = *dto.Notes
	}

	if len(values) > 0 {
		res := s.db(ctx).
			Model(&Delivery{}).
			Where("id = ? AND owner_id = ?", id, ownerID).
			Updates(values)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrDeliveryNotFound(id, nil)
		}
	}

	return s.FindByID(ctx, ownerID, id)
}

// SetStatus changes the delivery status. deliveryTime is stored only when
// it is not nil.
func (s *DeliveryRepo) SetStatus(ctx context.Context, ownerID string, id uint64, status entity.DeliveryStatus, deliveryTime *time.Time) (*entity.Delivery, error) {

	values := map[string]interface{}{
		"delivery_status": string(status),
	}
	if deliveryTime != nil {
		values["delivery_time"] = *deliveryTime
	}

	res := s.db(ctx).
		Model(&Delivery{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrDeliveryNotFound(id, nil)
	}

	return s.FindByID(ctx, ownerID, id)
}

func (s *DeliveryRepo) Delete(ctx context.Context, ownerID string, id uint64) error {

	res := s.db(ctx).Where("owner_id = ?", ownerID).Delete(&Delivery{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDeliveryNotFound(id, nil)
	}

	return nil
}

type dailyTotalRow struct {
	Day   string
	Total decimal.Decimal
	Count int64
}

// DailyStats groups the owner's deliveries by calendar day in the given
// timezone, most recent day first.
func (s *DeliveryRepo) DailyStats(ctx context.Context, ownerID string, loc *time.Location) ([]entity.DailyTotal, error) {

	rows := []dailyTotalRow{}

	err := s.db(ctx).
		Model(&Delivery{}).
		Select("to_char(date AT TIME ZONE ?, 'YYYY-MM-DD') AS day, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count", loc.String()).
		Where("owner_id = ?", ownerID).
		Group("day").
		Order("day DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	res := make([]entity.DailyTotal, 0, len(rows))
	for _, r := range rows {
		res = append(res, entity.DailyTotal{
			Day:   r.Day,
			Total: r.Total,
			Count: r.Count,
		})
	}

	return res, nil
}

func (m Delivery) toEntity() entity.Delivery {
	amount := decimal.Zero
	if m.Amount.Valid {
		amount = m.Amount.Decimal
	}

	return entity.Delivery{
		ID:            m.ID,
		OwnerID:       m.OwnerID,
		ShiftID:       m.ShiftID,
		InvoiceNumber: m.InvoiceNumber,
		Date:          m.Date,
		Phone:         m.Phone,
		PhoneStatus:   entity.PhoneStatus(m.PhoneStatus),
		Address:       m.Address,
		Amount:        amount,
		CustomerName:  m.CustomerName,
		Subtotal:      m.Subtotal,
		Total:         m.Total,
		ImageURL:      m.ImageURL,
		OCRText:       m.OCRText,
		Notes:         m.Notes,
		Status:        entity.DeliveryStatus(m.Status),
		DeliveryTime:  m.DeliveryTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func deliveriesToEntities(deliveries []Delivery) []entity.Delivery {
	res := make([]entity.Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		res = append(res, d.toEntity())
	}
	return res
}

func ErrDeliveryNotFound(id uint64, cause error) error {
	return &delivery.Error{
		Code:    delivery.ENOTFOUND,
		Message: "Delivery not found",
		Err:     cause,
		Fields:  map[string]interface{}{"delivery_id": id},
	}
}
