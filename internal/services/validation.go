package services

import (
	"errors"
	"reflect"
	"strings"

	"budgetflow/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and reports the first failing field as
// a domain.ValidationError.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.ValidationError{Msg: err.Error(), Err: err}
	}
	fe := fieldErrs[0]
	msg := fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "excludesall":
		msg = "contains forbidden characters"
	}
	return domain.ValidationError{Field: fe.Field(), Msg: msg, Err: err}
}

func validatePositiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ValidationError{Field: field, Msg: "must be greater than zero"}
	}
	return nil
}
