package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

type profilePayload struct {
	FirstName string `json:"first_name" validate:"required,max=5"`
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"first_name":""}`))
	var payload profilePayload
	err := DecodeJSONBody(req, &payload)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := pkgerrors.As(err).Details().(map[string]string)
	if details["first_name"] != "is required" {
		t.Fatalf("unexpected details %v", details)
	}

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"first_name":"Ada","extra":1}`))
	if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("unknown fields must be rejected, got %v", err)
	}
}

func TestProjectAttributesTags(t *testing.T) {
	var payload struct {
		Attributes types.ProjectAttributes `json:"attributes"`
	}
	err := DecodeJSONBytes([]byte(`{"attributes":{"temp_range":{"min":10,"max":-5,"unit":"C"}}}`), &payload)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected inverted range to fail, got %v", err)
	}

	err = DecodeJSONBytes([]byte(`{"attributes":{"temp_range":{"min":-40,"max":85,"unit":"C"},"ip_rating":"67"}}`), &payload)
	if err != nil {
		t.Fatalf("valid attributes rejected: %v", err)
	}

	err = DecodeJSONBytes([]byte(`{"attributes":{"ip_rating":"6"}}`), &payload)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected short ip rating to fail, got %v", err)
	}
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	params, err := ParsePagination(req)
	if err != nil || params.Limit != 10 {
		t.Fatalf("unexpected params %+v err=%v", params, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?limit=1000", nil)
	if _, err := ParsePagination(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected limit above %d to fail, got %v", pagination.MaxLimit, err)
	}

	req = httptest.NewRequest(http.MethodGet, "/?cursor=not-a-cursor", nil)
	if _, err := ParsePagination(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected bad cursor to fail, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc.def": "abc.def",
		"bearer  xyz ":   "xyz",
		"raw-token":      "raw-token",
	}
	for in, want := range cases {
		got, err := BearerToken(in)
		if err != nil || got != want {
			t.Fatalf("BearerToken(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "Bearer ", "Bearer a b"} {
		if _, err := BearerToken(in); err == nil {
			t.Fatalf("expected %q to be rejected", in)
		}
	}
}

func TestCleanSearch(t *testing.T) {
	cases := map[string]string{
		"  harness   A\t12 ": "harness A 12",
		"m12\x00\x07 cable":   "m12 cable",
		"ÄÖÜ connector":       "ÄÖÜ",
	}
	for input, want := range cases {
		limit := 0
		if strings.HasPrefix(input, "Ä") {
			limit = 3
		}
		if got := CleanSearch(input, limit); got != want {
			t.Fatalf("CleanSearch(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"first_name":"Ada"}{"first_name":"Bob"}`))
	var payload profilePayload
	if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected trailing object to be rejected, got %v", err)
	}
}
