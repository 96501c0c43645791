package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeNotQuotable, status: http.StatusUnprocessableEntity, publicMsg: "quantity cannot be priced", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "drawing is required")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "drawing is required" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	base.WithDetails(map[string]any{"field": "drawing"})
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsAndIsCodeFollowWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotQuotable, "below minimum tier"))
	if got := As(err); got == nil || got.Code() != CodeNotQuotable {
		t.Fatalf("As failed to return typed error")
	}
	if !IsCode(err, CodeNotQuotable) {
		t.Fatalf("IsCode should match wrapped code")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatalf("IsCode should not match a different code")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_subject_key"})
	if !IsUniqueViolation(pgErr) {
		t.Fatalf("expected pg unique violation to be detected")
	}
	if !IsUniqueViolation(stdErrors.New("UNIQUE constraint failed: users.subject")) {
		t.Fatalf("expected sqlite unique violation to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation should not count as unique")
	}
	if IsUniqueViolation(nil) {
		t.Fatalf("nil error is not a violation")
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	err := Wrap(CodeInternal, &pgconn.PgError{Code: "23505", TableName: "cart_items", Message: "dup"}, "add cart item")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if dump.PGCode != "23505" || dump.PGTable != "cart_items" {
		t.Fatalf("unexpected pg fields %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %v", dump.Chain)
	}
}

func TestPublicMessageHidesServerSideText(t *testing.T) {
	if got := New(CodeDependency, "redis dial tcp 10.0.0.4:6379").PublicMessage(); got != "dependency unavailable" {
		t.Fatalf("dependency message leaked: %q", got)
	}
	if got := New(CodeStateConflict, "cable is Ordered").PublicMessage(); got != "cable is Ordered" {
		t.Fatalf("expected caller message, got %q", got)
	}
	if got := New(CodeNotFound, "").PublicMessage(); got != "resource not found" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestDumpFieldsSkipEmptyPostgresFields(t *testing.T) {
	fields := Dump(New(CodeValidation, "bad tier")).Fields()
	if fields["error_code"] != "VALIDATION_ERROR" {
		t.Fatalf("unexpected fields %v", fields)
	}
	for _, key := range []string{"pg_code", "pg_table", "error_chain"} {
		if _, ok := fields[key]; ok {
			t.Fatalf("expected %s to be omitted, got %v", key, fields)
		}
	}
}
