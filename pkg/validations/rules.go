package validations

import (
	"reflect"
	"regexp"

	"github.com/shopspring/decimal"
	"gopkg.in/go-playground/validator.v9"
)

// Money columns are NUMERIC(14,2): twelve integer digits at most.
var moneyRx = regexp.MustCompile(`^[0-9]{1,12}(\.[0-9]{1,2})?$`)

// Money accepts non-negative decimal strings with at most two fraction digits.
func Money(fl validator.FieldLevel) bool {

	if fl.Field().Type().Kind() != reflect.String {
		return false
	}

	s := fl.Field().String()
	if !moneyRx.MatchString(s) {
		return false
	}

	_, err := decimal.NewFromString(s)
	return err == nil
}

// MaxMoney is the largest amount a money column can hold.
var MaxMoney = decimal.RequireFromString("999999999999.99")

// MoneyInRange reports whether d can be stored in a money column.
func MoneyInRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(MaxMoney)
}

// New returns a validator with the project rules registered.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("money", Money)
	return v
}
