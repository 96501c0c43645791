package enums

import "fmt"

// QuoteEventType names the lifecycle notifications published for cables.
type QuoteEventType string

const (
	QuoteEventRequested   QuoteEventType = "quote.requested"
	QuoteEventReady       QuoteEventType = "quote.ready"
	QuoteEventNeedsReview QuoteEventType = "quote.needs_review"
	QuoteEventExpired     QuoteEventType = "quote.expired"
	QuoteEventFileRevised QuoteEventType = "quote.file_revised"
)

var validQuoteEventTypes = []QuoteEventType{
	QuoteEventRequested,
	QuoteEventReady,
	QuoteEventNeedsReview,
	QuoteEventExpired,
	QuoteEventFileRevised,
}

// String implements fmt.Stringer.
func (e QuoteEventType) String() string {
	return string(e)
}

// IsValid reports whether the event type is known.
func (e QuoteEventType) IsValid() bool {
	for _, candidate := range validQuoteEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseQuoteEventType converts raw input into a QuoteEventType.
func ParseQuoteEventType(value string) (QuoteEventType, error) {
	for _, candidate := range validQuoteEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quote event type %q", value)
}

// QuoteEventForStatus maps a status a cable just entered to its notification.
func QuoteEventForStatus(status CableStatus) (QuoteEventType, bool) {
	switch status {
	case CableStatusQuoteRequested:
		return QuoteEventRequested, true
	case CableStatusQuoteReady:
		return QuoteEventReady, true
	case CableStatusNeedsReview:
		return QuoteEventNeedsReview, true
	case CableStatusQuoteExpired:
		return QuoteEventExpired, true
	default:
		return "", false
	}
}
