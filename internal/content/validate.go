package content

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance. Field names in errors are
// the JSON names clients send.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
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
	return &Validator{validate: v}
}

// Check validates s and records every failing field in verr. The returned
// error is only non-nil when s cannot be validated at all.
func (v *Validator) Check(s interface{}, verr *ValidationError) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "http_url", "url":
		return fmt.Sprintf("%s must be an absolute http(s) URL", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

type presence struct {
	field string
	value *string
}

// requirePresent records "is required" for every nil or blank value
func requirePresent(verr *ValidationError, fields ...presence) {
	for _, f := range fields {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			verr.Add(f.field, fmt.Sprintf("%s is required", f.field))
		}
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func blank(s *string) bool {
	return trimmed(s) == ""
}

// supplied cleans one text field. Blank input counts as not sent; input that
// only cleans down to nothing is rejected.
func supplied(verr *ValidationError, field string, raw *string, clean func(*string) string) *string {
	if blank(raw) {
		return nil
	}
	v := clean(raw)
	if v == "" {
		verr.Add(field, fmt.Sprintf("%s must not be empty", field))
		return nil
	}
	return &v
}

// present treats a blank value as not sent, the way HTML forms submit
// untouched fields
func present(s *string) *string {
	if blank(s) {
		return nil
	}
	return s
}
