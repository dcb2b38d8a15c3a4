package validation

import (
	"errors"
	"reflect"
	"strings"

	"spending-backend/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s. The first failing field becomes an invalid input error
// whose message names the field path with "|" separators.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Invalid("Invalid request: %v", err)
	}
	return describe(fieldErrs[0])
}

func path(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	return strings.ReplaceAll(ns, ".", "|")
}

func describe(fe validator.FieldError) error {
	field := path(fe)
	switch fe.Tag() {
	case "required":
		return apperr.Invalid("Missing value: '%s' is a required field", field)
	case "oneof":
		return apperr.Invalid("Field '%s' is outside valid values [%s]", field, fe.Param())
	case "min", "gte":
		return apperr.Invalid("Field '%s' value is below min '%s'", field, fe.Param())
	case "max", "lte":
		return apperr.Invalid("Field '%s' value is above max '%s'", field, fe.Param())
	}
	return apperr.Invalid("Field '%s' failed '%s' validation", field, fe.Tag())
}
