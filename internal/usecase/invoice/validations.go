package invoice

import (
	"reflect"

	"gopkg.in/go-playground/validator.v9"

	"github.com/DrkBotBase/delivery/internal/entity"
)

func delivery_status(fl validator.FieldLevel) bool {
	if fl.Field().Type().Kind() != reflect.String {
		return false
	}

	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return entity.IsValidDeliveryStatus(s)
}
