// Package validate holds the field level checks shared by the CRM operations.
// Every check is pure: it returns the accepted value or a *domain.ValidationError
// (or *domain.ConflictError for uniqueness).
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/talkincode/toughcrm/internal/domain"
)

const maxEmailLength = 254

var (
	intlPhone   = regexp.MustCompile(`^\+\d{10,15}$`)
	dashedPhone = regexp.MustCompile(`^\d{3}-\d{3}-\d{4}$`)

	// decimal(10,2)
	maxPrice = decimal.New(1, 8)

	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared go-playground validator
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

// Struct runs the struct tag rules of v and reports the first failing field.
// A failed "required" rule reads "missing field".
func Struct(v interface{}) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		if fe.Tag() == "required" {
			return domain.NewValidationError(fe.Field(), "missing field")
		}
		return domain.NewValidationError(fe.Field(), "failed "+fe.Tag()+" rule")
	}
	return err
}

// Name trims raw and requires it to be non-empty
func Name(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.NewValidationError(field, "required")
	}
	if len(name) > 255 {
		return "", domain.NewValidationError(field, "too long")
	}
	return name, nil
}

// Email returns the lower-cased address or a validation error when it is
// missing or malformed.
func Email(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.NewValidationError("email", "required")
	}
	if len(email) > maxEmailLength {
		return "", domain.NewValidationError("email", "too long")
	}
	if err := Validator().Var(email, "email"); err != nil {
		return "", domain.NewValidationError("email", "invalid format")
	}
	return email, nil
}

// EmailAvailable rejects a normalized email another customer already holds
func EmailAvailable(email string, taken bool) (string, error) {
	if taken {
		return "", domain.NewConflictError("email", "already exists")
	}
	return email, nil
}

// Phone accepts an empty value, "+" followed by 10-15 digits, or DDD-DDD-DDDD
func Phone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", nil
	}
	if intlPhone.MatchString(phone) || dashedPhone.MatchString(phone) {
		return phone, nil
	}
	return "", domain.NewValidationError("phone", "invalid format")
}

// Price requires a positive amount that fits decimal(10,2)
func Price(price decimal.Decimal) (decimal.Decimal, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.NewValidationError("price", "must be positive")
	}
	if !price.Equal(price.Round(2)) {
		return decimal.Zero, domain.NewValidationError("price", "at most two decimal places")
	}
	if price.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, domain.NewValidationError("price", "too large")
	}
	return price, nil
}

// Stock rejects negative quantities
func Stock(stock int) (int, error) {
	if stock < 0 {
		return 0, domain.NewValidationError("stock", "cannot be negative")
	}
	return stock, nil
}

// ProductIDSet checks that at least one product was requested and that every
// requested id was found. Duplicate ids count once in found, so they fail too.
func ProductIDSet(ids []int64, found int) error {
	if len(ids) == 0 {
		return domain.NewValidationError("product_ids", "at least one product must be selected")
	}
	if found != len(ids) {
		return domain.NewValidationError("product_ids", "one or more product IDs are invalid")
	}
	return nil
}
