// Package validation checks form payloads before they reach the backend.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
	"orderdesk/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{3,18}$`)

// FieldErrors maps JSON field names to user-facing messages.
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}

func (e *FieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) Is(target error) bool {
	return target == domain.ErrValidation
}

// Field builds a single-field error for checks done outside struct tags.
func Field(name, message string) *FieldErrors {
	return &FieldErrors{Fields: map[string]string{name: message}}
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "orderstatus", func(fl validator.FieldLevel) bool {
		return domain.OrderStatus(fl.Field().String()).Valid()
	})
	v.RegisterStructValidation(overrideAboveMinimum, domain.OverrideInput{})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func overrideAboveMinimum(sl validator.StructLevel) {
	in := sl.Current().Interface().(domain.OverrideInput)
	if in.MinimumPrice != nil && in.OverridePrice.LessThan(*in.MinimumPrice) {
		sl.ReportError(in.OverridePrice, "overridePrice", "OverridePrice", "gteminimum", in.MinimumPrice.String())
	}
}

// Validate returns *FieldErrors when v breaks a rule.
func (v *Validator) Validate(in any) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &FieldErrors{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "orderstatus":
		return "must be one of " + statusList()
	case "gteminimum":
		return "must not be below the minimum price " + fe.Param()
	}
	return "is invalid"
}

func statusList() string {
	names := make([]string, len(domain.OrderStatuses))
	for i, s := range domain.OrderStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
