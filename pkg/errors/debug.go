package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

// ErrorDump flattens an error chain for structured logs.
type ErrorDump struct {
	TopMessage   string   `json:"top_message"`
	Code         Code     `json:"code,omitempty"`
	Chain        []string `json:"chain,omitempty"`
	PGCode       string   `json:"pg_code,omitempty"`
	PGConstraint string   `json:"pg_constraint,omitempty"`
	PGTable      string   `json:"pg_table,omitempty"`
	PGColumn     string   `json:"pg_column,omitempty"`
	PGDetail     string   `json:"pg_detail,omitempty"`
	PGMessage    string   `json:"pg_message,omitempty"`
}

// Fields returns the non-empty parts of the dump as log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{"error": d.TopMessage}
	add := func(key, value string) {
		if value != "" {
			fields[key] = value
		}
	}
	add("error_code", string(d.Code))
	add("pg_code", d.PGCode)
	add("pg_constraint", d.PGConstraint)
	add("pg_table", d.PGTable)
	add("pg_column", d.PGColumn)
	add("pg_detail", d.PGDetail)
	add("pg_message", d.PGMessage)
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	if pg, ok := postgresError(err); ok {
		d.PGCode = pg.Code
		d.PGConstraint = pg.ConstraintName
		d.PGTable = pg.TableName
		d.PGColumn = pg.ColumnName
		d.PGDetail = pg.Detail
		d.PGMessage = pg.Message
	}
	return d
}

// IsUniqueViolation detects unique constraint failures from pgx, lib/pq and sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if pg, ok := postgresError(err); ok {
		return pg.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// postgresError normalizes lib/pq errors to the pgx shape.
func postgresError(err error) (*pgconn.PgError, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr, true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &pgconn.PgError{
			Code:           string(pqErr.Code),
			ConstraintName: pqErr.Constraint,
			TableName:      pqErr.Table,
			ColumnName:     pqErr.Column,
			Detail:         pqErr.Detail,
			Message:        pqErr.Message,
		}, true
	}
	return nil, false
}
