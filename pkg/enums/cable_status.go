package enums

import (
	"fmt"
	"strings"
)

// CableStatus is the lifecycle state of a cable quote. Values match the
// strings the storefront renders.
type CableStatus string

const (
	CableStatusStarted        CableStatus = "Started"
	CableStatusQuoteRequested CableStatus = "Quote Requested"
	CableStatusQuoteReady     CableStatus = "Quote Ready"
	CableStatusNeedsReview    CableStatus = "Needs Review"
	CableStatusQuoteExpired   CableStatus = "Quote Expired"
)

var validCableStatuses = []CableStatus{
	CableStatusStarted,
	CableStatusQuoteRequested,
	CableStatusQuoteReady,
	CableStatusNeedsReview,
	CableStatusQuoteExpired,
}

// String implements fmt.Stringer.
func (c CableStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CableStatus.
func (c CableStatus) IsValid() bool {
	for _, candidate := range validCableStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCableStatus converts raw input into a CableStatus. Matching ignores
// case and surrounding whitespace so query filters like "quote ready" work.
func ParseCableStatus(value string) (CableStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validCableStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cable status %q", value)
}
