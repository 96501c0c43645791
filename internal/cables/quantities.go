package cables

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseQuantities reads the storefront's free-text quantity field, e.g.
// "5, 25, 100". Separators may be commas, semicolons or whitespace. Duplicates
// are dropped and the original order is kept.
func ParseQuantities(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one quantity is required")
	}
	out := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("quantity %q must be a positive whole number", field)
		}
		out = append(out, n)
	}
	return normalizeQuantities(out)
}

func normalizeQuantities(values []int) ([]int, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one quantity is required")
	}
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v < 1 {
			return nil, fmt.Errorf("quantity %d must be positive", v)
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// Quantities accepts either a JSON array of integers or the storefront's
// comma separated string.
type Quantities []int

func (q *Quantities) UnmarshalJSON(data []byte) error {
	var list []int
	if err := json.Unmarshal(data, &list); err == nil {
		*q = list
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("quantities must be a list of integers or a comma separated string")
	}
	parsed, err := ParseQuantities(text)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
