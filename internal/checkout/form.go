package checkout

import (
	"fmt"
	"strings"

	"github.com/apexfit/storefront/internal/payment"
)

type DeliveryMethod string

const (
	DeliveryMethodDelivery DeliveryMethod = "delivery"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
)

type PickupLocation string

const (
	PickupMainBranch PickupLocation = "main-branch"
	PickupWestlands  PickupLocation = "westlands"
	PickupKaren      PickupLocation = "karen"
)

func (l PickupLocation) Valid() bool {
	return l == PickupMainBranch || l == PickupWestlands || l == PickupKaren
}

// Form accumulates the wizard's fields across steps. It lives only as long
// as the checkout is open and is zeroed on close and on completion.
type Form struct {
	// Identity
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// Delivery
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Address        string         `json:"address"`
	City           string         `json:"city"`
	Zip            string         `json:"zip"`
	PickupLocation PickupLocation `json:"pickup_location"`

	// Payment
	PaymentMethod payment.Method `json:"payment_method"`
	CardNumber    string         `json:"card_number"`
	CardName      string         `json:"card_name"`
	CardExpiry    string         `json:"card_expiry"`
	CardCVV       string         `json:"card_cvv"`
	MpesaPhone    string         `json:"mpesa_phone"`
}

// FieldError points at one missing or invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	fields := make([]string, len(v))
	for i, fe := range v {
		fields[i] = fe.Field
	}
	return fmt.Sprintf("invalid fields: %s", strings.Join(fields, ", "))
}

// ValidateStep checks the fields the given step is responsible for. Steps
// the form has not reached yet are not checked.
func (f *Form) ValidateStep(step Step) error {
	var errs ValidationErrors

	switch step {
	case StepDelivery:
		errs = append(errs, f.validateIdentity()...)
		errs = append(errs, f.validateDelivery()...)
	case StepPayment:
		errs = append(errs, f.validatePayment()...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (f *Form) validateIdentity() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{"name", "name is required"})
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		errs = append(errs, FieldError{"email", "email is required"})
	} else if !strings.Contains(email, "@") {
		errs = append(errs, FieldError{"email", "email is invalid"})
	}
	if strings.TrimSpace(f.Phone) == "" {
		errs = append(errs, FieldError{"phone", "phone is required"})
	}
	return errs
}

func (f *Form) validateDelivery() ValidationErrors {
	var errs ValidationErrors
	switch f.DeliveryMethod {
	case DeliveryMethodDelivery:
		if strings.TrimSpace(f.Address) == "" {
			errs = append(errs, FieldError{"address", "address is required"})
		}
		if strings.TrimSpace(f.City) == "" {
			errs = append(errs, FieldError{"city", "city is required"})
		}
		if strings.TrimSpace(f.Zip) == "" {
			errs = append(errs, FieldError{"zip", "zip code is required"})
		}
	case DeliveryMethodPickup:
		if !f.PickupLocation.Valid() {
			errs = append(errs, FieldError{"pickup_location", "choose a pickup location"})
		}
	default:
		errs = append(errs, FieldError{"delivery_method", "choose delivery or pickup"})
	}
	return errs
}

func (f *Form) validatePayment() ValidationErrors {
	var errs ValidationErrors
	switch f.PaymentMethod {
	case payment.MethodCard:
		if strings.TrimSpace(f.CardNumber) == "" {
			errs = append(errs, FieldError{"card_number", "card number is required"})
		}
		if strings.TrimSpace(f.CardName) == "" {
			errs = append(errs, FieldError{"card_name", "name on card is required"})
		}
		if strings.TrimSpace(f.CardExpiry) == "" {
			errs = append(errs, FieldError{"card_expiry", "expiry is required"})
		}
		if strings.TrimSpace(f.CardCVV) == "" {
			errs = append(errs, FieldError{"card_cvv", "cvv is required"})
		}
	case payment.MethodMpesa:
		if strings.TrimSpace(f.MpesaPhone) == "" {
			errs = append(errs, FieldError{"mpesa_phone", "m-pesa phone number is required"})
		}
	default:
		errs = append(errs, FieldError{"payment_method", "choose card or m-pesa"})
	}
	return errs
}
