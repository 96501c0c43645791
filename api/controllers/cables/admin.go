package cables

import (
	"net/http"

	"github.com/cableflow/cableflow-backend/api/responses"
	"github.com/cableflow/cableflow-backend/api/validators"
	cablesvc "github.com/cableflow/cableflow-backend/internal/cables"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/logger"
)

// AdminPublishQuote stores the quoting team's tier table.
func AdminPublishQuote(svc cablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cableIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cablesvc.QuoteInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.PublishQuote(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			ctx := logg.WithCableID(r.Context(), detail.Code)
			ctx = logg.WithFields(ctx, map[string]any{"status": detail.Status, "tiers": len(detail.QuoteTiers)})
			logg.Info(ctx, "cable.quote_published")
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminSetStatus applies a manual lifecycle transition.
func AdminSetStatus(svc cablesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cableIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload cablesvc.StatusInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseCableStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		detail, err := svc.SetStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// AdminReviseFile replaces an attachment and flags it as modified.
func AdminReviseFile(svc cablesvc.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := cableIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := fileKindParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		upload, done, err := parseRevision(w, r, kind, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer done()

		detail, err := svc.ReviseFile(r.Context(), id, upload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
