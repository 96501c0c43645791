package cables

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/api/middleware"
	"github.com/cableflow/cableflow-backend/api/validators"
	cablesvc "github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/internal/files"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
)

// multipartOverhead leaves room for the metadata part and boundaries.
const multipartOverhead = 1 << 20

func viewerFromRequest(r *http.Request) (cablesvc.Viewer, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return cablesvc.Viewer{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return cablesvc.Viewer{
		UserID: userID,
		Admin:  middleware.RoleFromContext(r.Context()) == enums.UserRoleAdmin,
	}, nil
}

func cableIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "cableId"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cable id").WithDetails(map[string]any{"cable_id": raw})
	}
	return id, nil
}

func fileKindParam(r *http.Request) (enums.FileKind, error) {
	kind, err := enums.ParseFileKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file kind")
	}
	return kind, nil
}

func parseListFilters(r *http.Request) (cablesvc.ListFilters, error) {
	q := r.URL.Query()
	filters := cablesvc.ListFilters{Query: validators.CleanSearch(q.Get("q"), 200)}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := enums.ParseCableStatus(raw)
		if err != nil {
			return cablesvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	limit := maxBytes*int64(len(enums.FileKinds())) + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "request too large").WithDetails(map[string]any{"limit_bytes": limit})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	return nil
}

// parseQuoteRequest reads the "metadata" JSON part and any file parts named
// drawing, bom or from_to_table.
func parseQuoteRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (cablesvc.CreateInput, []files.Upload, func(), error) {
	if err := parseMultipart(w, r, maxBytes); err != nil {
		return cablesvc.CreateInput{}, nil, func() {}, err
	}
	form := r.MultipartForm
	cleanup := func() { _ = form.RemoveAll() }

	raw := form.Value["metadata"]
	if len(raw) != 1 {
		cleanup()
		return cablesvc.CreateInput{}, nil, func() {}, pkgerrors.New(pkgerrors.CodeValidation, "exactly one metadata part is required")
	}
	var input cablesvc.CreateInput
	if err := validators.DecodeJSONBytes([]byte(raw[0]), &input); err != nil {
		cleanup()
		return cablesvc.CreateInput{}, nil, func() {}, err
	}

	var uploads []files.Upload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
		cleanup()
	}
	for field, headers := range form.File {
		kind, err := enums.ParseFileKind(field)
		if err != nil {
			closeAll()
			return cablesvc.CreateInput{}, nil, func() {}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unexpected file part %q", field))
		}
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				closeAll()
				return cablesvc.CreateInput{}, nil, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open upload")
			}
			opened = append(opened, f)
			uploads = append(uploads, files.Upload{Kind: kind, FileName: header.Filename, Body: f})
		}
	}
	return input, uploads, closeAll, nil
}

// parseRevision reads the single "file" part of a revised attachment.
func parseRevision(w http.ResponseWriter, r *http.Request, kind enums.FileKind, maxBytes int64) (files.Upload, func(), error) {
	if err := parseMultipart(w, r, maxBytes); err != nil {
		return files.Upload{}, func() {}, err
	}
	form := r.MultipartForm
	headers := form.File["file"]
	if len(headers) != 1 {
		_ = form.RemoveAll()
		return files.Upload{}, func() {}, pkgerrors.New(pkgerrors.CodeValidation, "exactly one file part is required")
	}
	f, err := headers[0].Open()
	if err != nil {
		_ = form.RemoveAll()
		return files.Upload{}, func() {}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open upload")
	}
	done := func() {
		_ = f.Close()
		_ = form.RemoveAll()
	}
	return files.Upload{Kind: kind, FileName: headers[0].Filename, Body: f}, done, nil
}
