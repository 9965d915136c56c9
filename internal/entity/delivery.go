package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pendiente"
	DeliveryDelivered DeliveryStatus = "entregado"
)

func ValidDeliveryStatuses() []string {
	return []string{
		string(DeliveryPending),
		string(DeliveryDelivered),
	}
}

func IsValidDeliveryStatus(s string) bool {
	for _, validStatus := range ValidDeliveryStatuses() {
		if validStatus == s {
			return true
		}
	}
	return false
}

type PhoneStatus string

const (
	PhoneOK         PhoneStatus = "ok"
	PhoneIncomplete PhoneStatus = "numero incompleto"
	PhoneTooLong    PhoneStatus = "numero de mas"
	PhoneMissing    PhoneStatus = "no detectado"
)

const (
	DefaultCustomerName = "cliente"
	UndetectedPhone     = "No detectado"
)

// Delivery is one invoice handled by a courier. ShiftID is set once, when the
// record is created, to the owner's active shift.
type Delivery struct {
	ID            uint64
	OwnerID       string
	ShiftID       *uint64
	InvoiceNumber string
	Date          time.Time
	Phone         string
	PhoneStatus   PhoneStatus
	Address       string
	Amount        decimal.Decimal
	CustomerName  string
	Subtotal      decimal.Decimal
	Total         decimal.Decimal
	ImageURL      string
	OCRText       *string
	Notes         *string
	Status        DeliveryStatus
	DeliveryTime  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DailyTotal is the delivery revenue of one calendar day.
type DailyTotal struct {
	Day   string
	Total decimal.Decimal
	Count int64
}

// ClassifyPhone grades a detected phone number by its digit count. Colombian
// mobile numbers have ten digits.
func ClassifyPhone(phone string) PhoneStatus {
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}

	switch {
	case digits == 0:
		return PhoneMissing
	case digits == 10:
		return PhoneOK
	case digits < 10:
		return PhoneIncomplete
	default:
		return PhoneTooLong
	}
}
