package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "electric-service/pkg/errors"
)

// Validator - адаптер go-playground/validator под echo.Validator.
type Validator struct {
	validator *validator.Validate
}

func NewValidator(v *validator.Validate) *Validator {
	return &Validator{validator: v}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		message := "Validation error"
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, fe := range invalid {
				fields = append(fields, snakeCase(fe.Field()))
			}
			message = fmt.Sprintf("Missing or invalid fields: %s", strings.Join(fields, ", "))
		}
		return apperrors.NewHttpError(http.StatusBadRequest, message, err, nil)
	}
	return nil
}

// snakeCase приводит имя поля структуры к виду, в котором оно приходит в JSON.
func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
