package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"bakereserve-storefront/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("pickupslot", func(fl validator.FieldLevel) bool {
		return domain.IsPickupSlot(fl.Field().String())
	})
	return v
}

// PasswordSymbols are the special characters a registration password must use.
const PasswordSymbols = "!@#$%^&*"

// StrongPassword reports whether p mixes ASCII letters, digits and one of PasswordSymbols.
func StrongPassword(p string) bool {
	var letter, digit, symbol bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return letter && digit && symbol
}

// Struct validates dest and reports the first failing field as a domain.ValidationError.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		return domain.Invalid(fe.Field(), message(fe))
	}
	return domain.Invalid("", err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "password":
		return "must contain letters, numbers and one of " + PasswordSymbols
	case "number":
		return "must contain only numbers"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "pickupslot":
		return "must be one of " + strings.Join(domain.PickupSlots, ", ")
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return "is invalid"
}
