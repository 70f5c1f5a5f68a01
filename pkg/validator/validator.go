package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so messages match the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ValidateFields validates i and returns every failing field with its message,
// or nil when i is valid.
func (cv *CustomValidator) ValidateFields(i interface{}) map[string]string {
	err := cv.Validate(i)
	if err == nil {
		return nil
	}
	return cv.FormatValidationErrors(err)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["request"] = err.Error()
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		errs[field] = message(field, e)
	}

	return errs
}

func message(field string, e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "uuid", "uuid4":
		return field + " must be a valid UUID"
	case "oneof":
		return field + " must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	case "datetime":
		if e.Param() == "2006-01-02" {
			return field + " must be a date in YYYY-MM-DD format"
		}
		return field + " must match the format " + e.Param()
	case "numeric":
		return field + " must be a number"
	case "min":
		if e.Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + " must be at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "gte":
		return field + " must be greater than or equal to " + e.Param()
	case "lte":
		return field + " must be less than or equal to " + e.Param()
	case "eqfield":
		return field + " must match " + e.Param()
	default:
		return field + " is invalid"
	}
}
