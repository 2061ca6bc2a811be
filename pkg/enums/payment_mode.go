package enums

import "fmt"

// PaymentMode selects how a bulk payment is spread across open transactions.
type PaymentMode string

const (
	PaymentModeFIFO   PaymentMode = "fifo"
	PaymentModeManual PaymentMode = "manual"
)

var validPaymentModes = []PaymentMode{
	PaymentModeFIFO,
	PaymentModeManual,
}

// String implements fmt.Stringer.
func (p PaymentMode) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMode.
func (p PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMode converts raw input into a PaymentMode.
func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
