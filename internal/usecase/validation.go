package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
)

const (
	minPasswordLength = 6
	maxNameLength     = 100
	maxTextLength     = 1000
	maxProductLines   = 50
)

var phonePattern = regexp.MustCompile(`^05\d{8}$`)

// ValidatePhone reports whether phone has the local mobile format 05XXXXXXXX.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func validateCredentials(phone, password string) error {
	if phone == "" || password == "" {
		return fmt.Errorf("%w: phone and password are required", domainErrors.ErrValidation)
	}
	if !ValidatePhone(phone) {
		return fmt.Errorf("%w: phone must start with 05 and have 10 digits", domainErrors.ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domainErrors.ErrValidation, minPasswordLength)
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name is too long", domainErrors.ErrValidation)
	}
	return name, nil
}

func validateText(field, value string, required bool) (string, error) {
	value = strings.TrimSpace(value)
	if required && value == "" {
		return "", fmt.Errorf("%w: %s is required", domainErrors.ErrValidation, field)
	}
	if utf8.RuneCountInString(value) > maxTextLength {
		return "", fmt.Errorf("%w: %s is too long", domainErrors.ErrValidation, field)
	}
	return value, nil
}

func validateFuelDetails(d model.OrderDetails) (model.OrderDetails, error) {
	var err error
	if d.Address, err = validateText("address", d.Address, true); err != nil {
		return d, err
	}
	if d.Notes, err = validateText("notes", d.Notes, false); err != nil {
		return d, err
	}
	if d.FuelType, err = validateText("fuel type", d.FuelType, true); err != nil {
		return d, err
	}
	if d.Liters <= 0 {
		return d, fmt.Errorf("%w: liters must be positive", domainErrors.ErrValidation)
	}
	d.Products = nil
	return d, nil
}

func validateProductDetails(d model.OrderDetails) (model.OrderDetails, error) {
	var err error
	if d.Address, err = validateText("address", d.Address, true); err != nil {
		return d, err
	}
	if d.Notes, err = validateText("notes", d.Notes, false); err != nil {
		return d, err
	}
	if len(d.Products) == 0 {
		return d, fmt.Errorf("%w: at least one product is required", domainErrors.ErrValidation)
	}
	if len(d.Products) > maxProductLines {
		return d, fmt.Errorf("%w: too many products", domainErrors.ErrValidation)
	}
	lines := make([]model.ProductLine, 0, len(d.Products))
	for i, line := range d.Products {
		name, err := validateText(fmt.Sprintf("product %d name", i+1), line.Name, true)
		if err != nil {
			return d, err
		}
		if line.Quantity <= 0 {
			return d, fmt.Errorf("%w: product %d quantity must be positive", domainErrors.ErrValidation, i+1)
		}
		lines = append(lines, model.ProductLine{Name: name, Quantity: line.Quantity})
	}
	d.Products = lines
	d.FuelType = ""
	d.Liters = 0
	return d, nil
}

// requireRole returns ErrForbidden unless actor has one of roles.
func requireRole(actor model.Actor, roles ...model.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s is not allowed", domainErrors.ErrForbidden, actor.Role)
}
