package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// customerRules carries the field constraints of a customer. Field names in
// violations come from the json tags.
type customerRules struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Email      string  `json:"email" validate:"required,max=254,email"`
	Phone      string  `json:"phone" validate:"required,min=10,max=15,phone"`
	Street     *string `json:"street" validate:"omitempty,max=200"`
	City       *string `json:"city" validate:"omitempty,max=100"`
	State      *string `json:"state" validate:"omitempty,max=100"`
	PostalCode *string `json:"postalCode" validate:"omitempty,max=20"`
	Country    *string `json:"country" validate:"omitempty,max=100"`
}

var phonePattern = regexp.MustCompile(`^[0-9+\-(). ]+$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func customerValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return phonePattern.MatchString(s) && strings.ContainsAny(s, "0123456789")
		})
		validate = v
	})
	return validate
}

// ValidateCustomerInput checks a normalized input against the customer field
// constraints and returns every violation found, or nil.
func ValidateCustomerInput(in CustomerInput) ValidationErrors {
	rules := customerRules{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}

	var out ValidationErrors
	err := customerValidator().Struct(rules)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		out.Add("", err.Error())
		return out
	}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be %s characters or less", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "phone":
		return "Phone may only contain digits, spaces and + - ( ) ."
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

var fieldLabels = map[string]string{
	"name":       "Name",
	"email":      "Email",
	"phone":      "Phone",
	"street":     "Street",
	"city":       "City",
	"state":      "State",
	"postalCode": "Postal code",
	"country":    "Country",
}
