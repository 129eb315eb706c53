// Package validation wraps go-playground/validator with messages fit for
// an HTTP 400 body.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names rather than Go ones.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates s by its `validate` tags.
func Struct(s any) error {
	return format(validate.Struct(s))
}

// Var validates a single value against a tag expression, reporting it as field.
func Var(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			return fmt.Errorf("%s: %s", field, describe(ves[0]))
		}
		return err
	}
	return nil
}

func format(err error) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	msgs := make([]string, 0, len(ves))
	for _, e := range ves {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), describe(e)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + e.Param()
	}
	return "failed " + e.Tag()
}
