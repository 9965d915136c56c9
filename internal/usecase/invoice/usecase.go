package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
	"gopkg.in/go-playground/validator.v9"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/entity"
	"github.com/DrkBotBase/delivery/internal/repository/repositories"
	"github.com/DrkBotBase/delivery/pkg/ocrtext"
	"github.com/DrkBotBase/delivery/pkg/validations"
)

type Repository interface {
	Create(ctx context.Context, dto repositories.DeliveryToCreateDTO) (*entity.Delivery, error)
	FindByID(ctx context.Context, ownerID string, id uint64) (*entity.Delivery, error)
	AllByOwner(ctx context.Context, ownerID string) ([]entity.Delivery, error)
	Update(ctx context.Context, ownerID string, id uint64, dto repositories.DeliveryToUpdateDTO) (*entity.Delivery, error)
	SetStatus(ctx context.Context, ownerID string, id uint64, status entity.DeliveryStatus, deliveryTime *time.Time) (*entity.Delivery, error)
	Delete(ctx context.Context, ownerID string, id uint64) error
	PendingBetween(ctx context.Context, ownerID string, from, to time.Time) ([]entity.Delivery, error)
	DailyStats(ctx context.Context, ownerID string, loc *time.Location) ([]entity.DailyTotal, error)
}

// AttachmentPolicy picks the shift a new record belongs to.
type AttachmentPolicy interface {
	AttachmentFor(ctx context.Context, ownerID string) (*uint64, error)
}

type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type Config struct {
	Timezone    *time.Location
	PhoneRegion string
	CitySuffix  string
}

type InvoiceUseCase struct {
	trm          TxManager
	validator    *validator.Validate
	attachment   AttachmentPolicy
	conf         Config
	now          func() time.Time
	DeliveryRepo Repository
}

func New(trm TxManager, repo Repository, attachment AttachmentPolicy, conf Config) *InvoiceUseCase {

	if conf.Timezone == nil {
		conf.Timezone = time.UTC
	}

	v := validations.New()
	v.RegisterValidation("delivery_status", delivery_status)

	return &InvoiceUseCase{
		trm:          trm,
		validator:    v,
		attachment:   attachment,
		conf:         conf,
		now:          time.Now,
		DeliveryRepo: repo,
	}
}

// SetClock replaces the clock used for dates and "today".
func (uc *InvoiceUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *InvoiceUseCase) Create(ctx context.Context, ownerID string, dto DeliveryToCreateDTO) (*entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.Create"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	phone, phoneStatus := uc.normalizePhone(dto.Phone)

	customerName := dto.CustomerName
	if customerName == "" {
		customerName = entity.DefaultCustomerName
	}

	created, err := uc.create(ctx, repositories.DeliveryToCreateDTO{
		OwnerID:       ownerID,
		InvoiceNumber: uc.invoiceNumber(dto.InvoiceNumber),
		Date:          uc.now(),
		Phone:         phone,
		PhoneStatus:   phoneStatus,
		Address:       uc.normalizeAddress(dto.Address),
		Amount:        amount,
		CustomerName:  customerName,
		Subtotal:      optionalMoney(dto.Subtotal),
		Total:         optionalMoney(dto.Total),
		ImageURL:      dto.ImageURL,
		Notes:         dto.Notes,
	})
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return created, nil
}

// CreateFromOCRText registers a delivery read from an invoice photo. The
// delivery fee is the delivery amount and must be present.
func (uc *InvoiceUseCase) CreateFromOCRText(ctx context.Context, ownerID string, dto OCRDeliveryDTO) (*entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.CreateFromOCRText"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	data := ocrtext.ExtractDeliveryData(dto.Text)
	if !data.DeliveryFee.IsPositive() {
		return nil, &delivery.Error{
			Op:      op,
			Code:    delivery.EINVALID,
			Message: "Delivery fee not detected",
		}
	}

	for _, v := range []decimal.Decimal{data.DeliveryFee, data.Subtotal, data.Total} {
		if !validations.MoneyInRange(v) {
			return nil, &delivery.Error{
				Op:      op,
				Code:    delivery.EINVALID,
				Message: "Amount out of range",
				Fields:  map[string]interface{}{"amount": v.String()},
			}
		}
	}

	phone, phoneStatus := uc.normalizePhone(data.Phone)
	text := dto.Text

	created, err := uc.create(ctx, repositories.DeliveryToCreateDTO{
		OwnerID:       ownerID,
		InvoiceNumber: uc.invoiceNumber(data.InvoiceNumber),
		Date:          uc.now(),
		Phone:         phone,
		PhoneStatus:   phoneStatus,
		Address:       ocrtext.WithCity(data.Address, uc.conf.CitySuffix),
		Amount:        data.DeliveryFee,
		CustomerName:  data.CustomerName,
		Subtotal:      data.Subtotal,
		Total:         data.Total,
		ImageURL:      dto.ImageURL,
		OCRText:       &text,
		Notes:         dto.Notes,
	})
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return created, nil
}

func (uc *InvoiceUseCase) create(ctx context.Context, dto repositories.DeliveryToCreateDTO) (*entity.Delivery, error) {
	var created *entity.Delivery

	err := uc.trm.Do(ctx, func(ctx context.Context) error {
		shiftID, err := uc.attachment.AttachmentFor(ctx, dto.OwnerID)
		if err != nil {
			return err
		}
		dto.ShiftID = shiftID

		created, err = uc.DeliveryRepo.Create(ctx, dto)
		return err
	})

	return created, err
}

func (uc *InvoiceUseCase) GetByID(ctx context.Context, ownerID string, id uint64) (*entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.GetByID"

	d, err := uc.DeliveryRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return d, nil
}

func (uc *InvoiceUseCase) AllByOwner(ctx context.Context, ownerID string) ([]entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.AllByOwner"

	deliveries, err := uc.DeliveryRepo.AllByOwner(ctx, ownerID)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return deliveries, nil
}

// Update edits a delivery. The shift it is attached to never changes.
func (uc *InvoiceUseCase) Update(ctx context.Context, ownerID string, id uint64, dto DeliveryToUpdateDTO) (*entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.Update"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	upd := repositories.DeliveryToUpdateDTO{
		InvoiceNumber: dto.InvoiceNumber,
		CustomerName:  dto.CustomerName,
		Notes:         dto.Notes,
	}

	if dto.Amount != nil {
		amount, err := decimal.NewFromString(*dto.Amount)
		if err != nil {
			return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
		}
		upd.Amount = &amount
	}

	if dto.Address != nil && *dto.Address != "" {
		address := uc.normalizeAddress(*dto.Address)
		upd.Address = &address
	}

	if dto.Phone != nil {
		phone, status := uc.normalizePhone(*dto.Phone)
		upd.Phone = &phone
		upd.PhoneStatus = &status
	}

	d, err := uc.DeliveryRepo.Update(ctx, ownerID, id, upd)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return d, nil
}

// SetStatus moves a delivery between pendiente and entregado. Delivering
// stamps the delivery time.
func (uc *InvoiceUseCase) SetStatus(ctx context.Context, ownerID string, id uint64, dto StatusDTO) (*entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.SetStatus"

	if err := uc.validator.Struct(dto); err != nil {
		return nil, delivery.OpError(op, delivery.ErrorWithCode(err, delivery.EINVALID))
	}

	status := entity.DeliveryStatus(dto.Status)

	var deliveredAt *time.Time
	if status == entity.DeliveryDelivered {
		t := uc.now()
		deliveredAt = &t
	}

	d, err := uc.DeliveryRepo.SetStatus(ctx, ownerID, id, status, deliveredAt)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return d, nil
}

func (uc *InvoiceUseCase) Delete(ctx context.Context, ownerID string, id uint64) error {
	op := "usecase.invoice.InvoiceUseCase.Delete"

	if err := uc.DeliveryRepo.Delete(ctx, ownerID, id); err != nil {
		return delivery.OpError(op, err)
	}

	return nil
}

// PendingToday lists today's pending deliveries, oldest first.
func (uc *InvoiceUseCase) PendingToday(ctx context.Context, ownerID string) ([]entity.Delivery, error) {
	op := "usecase.invoice.InvoiceUseCase.PendingToday"

	from, to := uc.today()

	deliveries, err := uc.DeliveryRepo.PendingBetween(ctx, ownerID, from, to)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	return deliveries, nil
}

func (uc *InvoiceUseCase) DailyStats(ctx context.Context, ownerID string) (*Stats, error) {
	op := "usecase.invoice.InvoiceUseCase.DailyStats"

	days, err := uc.DeliveryRepo.DailyStats(ctx, ownerID, uc.conf.Timezone)
	if err != nil {
		return nil, delivery.OpError(op, err)
	}

	todayKey := uc.now().In(uc.conf.Timezone).Format(time.DateOnly)

	res := Stats{
		Total:   decimal.Zero,
		Today:   entity.DailyTotal{Day: todayKey, Total: decimal.Zero},
		History: days,
	}

	for _, d := range days {
		res.Total = res.Total.Add(d.Total)
		if d.Day == todayKey {
			res.Today = d
		}
	}

	return &res, nil
}

func (uc *InvoiceUseCase) today() (time.Time, time.Time) {
	now := uc.now().In(uc.conf.Timezone)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, uc.conf.Timezone)
	return from, from.AddDate(0, 0, 1)
}

func (uc *InvoiceUseCase) invoiceNumber(n string) string {
	if n != "" {
		return n
	}
	return fmt.Sprintf("FAC-%d", uc.now().UnixMilli())
}

func (uc *InvoiceUseCase) normalizeAddress(address string) string {
	return ocrtext.WithCity(ocrtext.FixAddress(address), uc.conf.CitySuffix)
}

// normalizePhone keeps the raw digits unless the number is complete and
// valid for the configured region, in which case it is stored as E.164.
func (uc *InvoiceUseCase) normalizePhone(raw string) (string, entity.PhoneStatus) {
	status := entity.ClassifyPhone(raw)

	switch status {
	case entity.PhoneMissing:
		return entity.UndetectedPhone, status
	case entity.PhoneOK:
		p, err := libphonenumber.Parse(raw, uc.conf.PhoneRegion)
		if err != nil || !libphonenumber.IsValidNumber(p) {
			return raw, status
		}
		return libphonenumber.Format(p, libphonenumber.E164), status
	default:
		return raw, status
	}
}

func optionalMoney(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
