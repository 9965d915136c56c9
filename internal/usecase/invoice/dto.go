package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/DrkBotBase/delivery/internal/entity"
)

type DeliveryToCreateDTO struct {
	// Empty gets a generated "FAC-<unix millis>" number.
	InvoiceNumber string  `validate:"omitempty,max=64"`
	Address       string  `validate:"required,max=300"`
	Phone         string  `validate:"omitempty,max=32"`
	Amount        string  `validate:"required,money"`
	CustomerName  string  `validate:"omitempty,max=120"`
	Subtotal      string  `validate:"omitempty,money"`
	Total         string  `validate:"omitempty,money"`
	ImageURL      string  `validate:"omitempty,max=500"`
	Notes         *string `validate:"omitempty,max=1000"`
}

type OCRDeliveryDTO struct {
	Text     string  `validate:"required"`
	ImageURL string  `validate:"omitempty,max=500"`
	Notes    *string `validate:"omitempty,max=1000"`
}

// DeliveryToUpdateDTO changes only the non-nil fields.
type DeliveryToUpdateDTO struct {
	InvoiceNumber *string `validate:"omitempty,min=1,max=64"`
	Address       *string `validate:"omitempty,min=1,max=300"`
	Phone         *string `validate:"omitempty,max=32"`
	Amount        *string `validate:"omitempty,money"`
	CustomerName  *string `validate:"omitempty,max=120"`
	Notes         *string `validate:"omitempty,max=1000"`
}

type StatusDTO struct {
	Status string `validate:"required,delivery_status"`
}

// Stats are the owner's delivery revenue per day in the configured timezone.
type Stats struct {
	Total   decimal.Decimal
	Today   entity.DailyTotal
	History []entity.DailyTotal
}
