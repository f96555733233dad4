package httputil

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
	"github.com/pulsmedic/pulsmedic-backend/pkg/i18n"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate validates a struct using go-playground/validator, with English messages.
func Validate(v interface{}) error {
	return ValidateLocalized(i18n.NewLocalizer(i18n.DefaultLocale), v)
}

// ValidateLocalized validates a struct and renders field messages with l.
func ValidateLocalized(l *i18n.Localizer, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest(err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[e.Field()] = formatValidationError(l, e)
	}
	return errors.Validation(details)
}

func formatValidationError(l *i18n.Localizer, e validator.FieldError) string {
	params := map[string]string{"param": e.Param()}
	switch e.Tag() {
	case "required", "email", "uuid", "min", "max", "gte", "lte", "datetime":
		return l.T("validation."+e.Tag(), params)
	case "oneof":
		params["param"] = strings.ReplaceAll(e.Param(), " ", ", ")
		return l.T("validation.oneof", params)
	default:
		return l.T("validation.invalid")
	}
}
