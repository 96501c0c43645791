package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

var leadTimePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+))?\s*(day|days|week|weeks|wk|wks|month|months)?`)

// LeadTimeDays converts free-text lead times such as "10 days", "3 weeks" or
// "2-3 weeks" into days, using the upper bound of a range. Values without a
// unit are read as days.
func LeadTimeDays(leadTime string) (int, bool) {
	match := leadTimePattern.FindStringSubmatch(strings.TrimSpace(leadTime))
	if match == nil {
		return 0, false
	}
	raw := match[1]
	if match[2] != "" {
		raw = match[2]
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(match[3]) {
	case "week", "weeks", "wk", "wks":
		return n * 7, true
	case "month", "months":
		return n * 30, true
	default:
		return n, true
	}
}

// LongestLeadTime returns the lead time text with the largest duration.
// Unparseable values only win when nothing parses.
func LongestLeadTime(leadTimes ...string) string {
	best := ""
	bestDays := -1
	for _, lt := range leadTimes {
		trimmed := strings.TrimSpace(lt)
		if trimmed == "" {
			continue
		}
		days, ok := LeadTimeDays(trimmed)
		if !ok {
			if best == "" {
				best = trimmed
			}
			continue
		}
		if days > bestDays {
			best = trimmed
			bestDays = days
		}
	}
	return best
}
