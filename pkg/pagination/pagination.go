// Package pagination implements keyset pages ordered by (created_at, id)
// descending, with opaque cursors.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var errBadCursor = errors.New("invalid cursor")

type Params struct {
	Limit  int
	Cursor string
}

// Cursor names the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        uuid.UUID `json:"id"`
}

// ParseParams validates raw limit and cursor query values.
func ParseParams(limit, cursor string) (Params, error) {
	p := Params{Cursor: strings.TrimSpace(cursor)}
	if raw := strings.TrimSpace(limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Params{}, errors.New("limit must be a non-negative integer")
		}
		p.Limit = n
	}
	if _, err := ParseCursor(p.Cursor); err != nil {
		return Params{}, err
	}
	return p, nil
}

// NormalizeLimit maps 0 to DefaultLimit and clamps to MaxLimit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer fetches one extra row to learn whether a next page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

func EncodeCursor(c Cursor) string {
	c.CreatedAt = c.CreatedAt.UTC()
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseCursor returns nil for an empty value.
func ParseCursor(value string) (*Cursor, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadCursor, err)
	}
	if c.CreatedAt.IsZero() || c.ID == uuid.Nil {
		return nil, errBadCursor
	}
	return &c, nil
}

// Scope applies ordering, the cursor seek and the buffered limit. table
// qualifies the columns when the query joins.
func Scope(params Params, table string) func(*gorm.DB) *gorm.DB {
	col := func(name string) string {
		if table == "" {
			return name
		}
		return table + "." + name
	}
	createdAt, id := col("created_at"), col("id")

	return func(q *gorm.DB) *gorm.DB {
		if c, err := ParseCursor(params.Cursor); err == nil && c != nil {
			q = q.Where(
				fmt.Sprintf("(%[1]s < ? OR (%[1]s = ? AND %[2]s < ?))", createdAt, id),
				c.CreatedAt, c.CreatedAt, c.ID,
			)
		}
		return q.Order(createdAt + " DESC").Order(id + " DESC").Limit(LimitWithBuffer(params.Limit))
	}
}

// Trim drops the look-ahead row fetched by Scope and returns the cursor of
// the next page, or "" on the last page.
func Trim[T any](rows []T, limit int, cursorOf func(T) Cursor) ([]T, string) {
	limit = NormalizeLimit(limit)
	if len(rows) <= limit {
		return rows, ""
	}
	page := rows[:limit]
	return page, EncodeCursor(cursorOf(page[len(page)-1]))
}
