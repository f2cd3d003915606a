// Package validate checks engine inputs against struct tags and reports
// failures as validation errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/domaindeck/internal/apperr"
)

// FieldError describes one failed rule on one field.
type FieldError struct {
	Field string
	Rule  string
}

// Validator wraps the underlying validator library.
type Validator struct {
	cli *validator.Validate
}

// New initializes and returns a new Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
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
	return &Validator{cli: v}
}

// Fields validates s and returns the failing fields.
func (v *Validator) Fields(s any) []FieldError {
	err := v.cli.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Rule: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// Struct validates s and returns an apperr validation error describing the
// first failure, or nil.
func (v *Validator) Struct(s any) error {
	fields := v.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	f := fields[0]
	return apperr.Validation("%s", describe(f))
}

func describe(f FieldError) string {
	switch f.Rule {
	case "required":
		return fmt.Sprintf("%s is required", f.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", f.Field)
	case "oneof":
		return fmt.Sprintf("%s has an unsupported value", f.Field)
	}
	return fmt.Sprintf("%s failed %s validation", f.Field, f.Rule)
}

var std = New()

// Struct validates s with the package-level validator.
func Struct(s any) error {
	return std.Struct(s)
}
