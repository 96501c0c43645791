package cables

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/internal/files"
	"github.com/cableflow/cableflow-backend/internal/notifications"
	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/lifecycle"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
	"github.com/cableflow/cableflow-backend/pkg/pricing"
	"github.com/cableflow/cableflow-backend/pkg/types"
)

const defaultQuoteValidity = 30 * 24 * time.Hour

type cableRepository interface {
	Create(ctx context.Context, cable *models.Cable) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cable, error)
	List(ctx context.Context, owner *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Cable, string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.CableStatus, at time.Time) (bool, error)
	SaveQuote(ctx context.Context, cable *models.Cable, from enums.CableStatus) (bool, error)
	UpsertFile(ctx context.Context, file *models.CableFile) error
	MarkFileViewed(ctx context.Context, fileID uuid.UUID, at time.Time) error
	FindExpiredQuotes(ctx context.Context, now time.Time, limit int) ([]models.Cable, error)
}

type projectLookup interface {
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
}

type fileStore interface {
	Store(ctx context.Context, cableID uuid.UUID, upload files.Upload) (*files.Stored, error)
	Read(ctx context.Context, file *models.CableFile) (*files.Payload, error)
	Remove(ctx context.Context, keys ...string) error
}

// Service covers the customer quote flow and the quoting team's tools.
type Service interface {
	List(ctx context.Context, viewer Viewer, filters ListFilters, params pagination.Params) (*types.Page[CableSummary], error)
	Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*CableDetail, error)
	RequestQuote(ctx context.Context, userID uuid.UUID, input CreateInput, uploads []files.Upload) (*CableDetail, error)
	Requote(ctx context.Context, viewer Viewer, id uuid.UUID) (*CableDetail, error)
	Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error
	ReadFile(ctx context.Context, viewer Viewer, id uuid.UUID, kind enums.FileKind) (*files.Payload, error)
	PublishQuote(ctx context.Context, id uuid.UUID, input QuoteInput) (*CableDetail, error)
	SetStatus(ctx context.Context, id uuid.UUID, to enums.CableStatus) (*CableDetail, error)
	ReviseFile(ctx context.Context, id uuid.UUID, upload files.Upload) (*CableDetail, error)
	ExpiredQuotes(ctx context.Context, now time.Time, limit int) ([]models.Cable, error)
	ExpireQuote(ctx context.Context, cable *models.Cable, now time.Time) error
}

// ServiceParams bundles the cables service dependencies.
type ServiceParams struct {
	Repo          cableRepository
	Projects      projectLookup
	Files         fileStore
	Publisher     notifications.Publisher
	Logger        *logger.Logger
	QuoteValidity time.Duration
	Now           func() time.Time
}

type service struct {
	repo      cableRepository
	projects  projectLookup
	files     fileStore
	publisher notifications.Publisher
	logg      *logger.Logger
	validity  time.Duration
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cables repository required")
	}
	if params.Projects == nil {
		return nil, fmt.Errorf("projects lookup required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("file store required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("notifications publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	validity := params.QuoteValidity
	if validity <= 0 {
		validity = defaultQuoteValidity
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		projects:  params.Projects,
		files:     params.Files,
		publisher: params.Publisher,
		logg:      params.Logger,
		validity:  validity,
		now:       func() time.Time { return now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, viewer Viewer, filters ListFilters, params pagination.Params) (*types.Page[CableSummary], error) {
	var owner *uuid.UUID
	if !viewer.Admin {
		owner = &viewer.UserID
	}
	rows, next, err := s.repo.List(ctx, owner, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cables")
	}
	now := s.now()
	items := make([]CableSummary, 0, len(rows))
	for i := range rows {
		items = append(items, summaryFromModel(&rows[i], now))
	}
	return &types.Page[CableSummary]{Items: items, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, id uuid.UUID) (*CableDetail, error) {
	cable, err := s.loadVisible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return detailFromModel(cable, s.now()), nil
}

// RequestQuote stores the uploaded files and records the cable as a submitted
// quote request.
func (s *service) RequestQuote(ctx context.Context, userID uuid.UUID, input CreateInput, uploads []files.Upload) (*CableDetail, error) {
	name := strings.TrimSpace(input.CableName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cable name is required")
	}
	quantities, err := normalizeQuantities(input.Quantities)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	deliveryDate, err := parseDeliveryDate(input.DeliveryDate)
	if err != nil {
		return nil, err
	}
	if err := checkUploads(uploads); err != nil {
		return nil, err
	}
	if input.ProjectID != nil {
		if _, err := s.projects.FindOwned(ctx, userID, *input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "project not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
	}

	status := enums.CableStatusStarted
	if err := lifecycle.Transition(status, enums.CableStatusQuoteRequested); err != nil {
		return nil, err
	}

	cable := &models.Cable{
		ID:                  uuid.New(),
		UserID:              userID,
		ProjectID:           input.ProjectID,
		Name:                name,
		Description:         strings.TrimSpace(input.CableDescription),
		Status:              enums.CableStatusQuoteRequested,
		RequestedQuantities: toInt64Array(quantities),
		DeliveryDate:        deliveryDate,
		Notes:               strings.TrimSpace(input.Notes),
	}

	var storedKeys []string
	for _, upload := range uploads {
		stored, err := s.files.Store(ctx, cable.ID, upload)
		if err != nil {
			s.cleanup(ctx, storedKeys)
			return nil, err
		}
		storedKeys = append(storedKeys, stored.ObjectKey)
		cable.Files = append(cable.Files, fileModel(cable.ID, stored, false))
	}

	if err := s.repo.Create(ctx, cable); err != nil {
		s.cleanup(ctx, storedKeys)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cable")
	}

	logCtx := s.logg.WithCableID(ctx, cable.Code)
	s.logg.Info(logCtx, "quote requested")
	s.publish(logCtx, cable, enums.QuoteEventRequested)

	return detailFromModel(cable, s.now()), nil
}

// Requote lets the owner ask for a fresh quote once the old one expired.
func (s *service) Requote(ctx context.Context, viewer Viewer, id uuid.UUID) (*CableDetail, error) {
	cable, err := s.loadVisible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if cable.Status == enums.CableStatusQuoteReady && lifecycle.IsExpired(quoteOf(cable), now) {
		// the sweep has not run yet
		if err := s.ExpireQuote(ctx, cable, now); err != nil {
			return nil, err
		}
	}
	if err := s.transition(ctx, cable, enums.CableStatusQuoteRequested, now); err != nil {
		return nil, err
	}
	return detailFromModel(cable, now), nil
}

func (s *service) Delete(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	cable, err := s.loadVisible(ctx, viewer, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, cable.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cable")
	}
	keys := make([]string, 0, len(cable.Files))
	for _, f := range cable.Files {
		keys = append(keys, f.ObjectKey)
	}
	s.cleanup(ctx, keys)
	return nil
}

// ReadFile returns a file for preview. The owner viewing a revised file
// clears its modified flag.
func (s *service) ReadFile(ctx context.Context, viewer Viewer, id uuid.UUID, kind enums.FileKind) (*files.Payload, error) {
	cable, err := s.loadVisible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	file := cable.File(kind)
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cable has no %s file", kind))
	}
	payload, err := s.files.Read(ctx, file)
	if err != nil {
		return nil, err
	}
	if file.Modified && cable.UserID == viewer.UserID {
		if err := s.repo.MarkFileViewed(ctx, file.ID, s.now()); err != nil {
			s.logg.Error(s.logg.WithCableID(ctx, cable.Code), "failed to clear file revision flag", err)
		}
	}
	return payload, nil
}

// PublishQuote attaches a tier table and moves the cable to Quote Ready, or
// Needs Review when flagged.
func (s *service) PublishQuote(ctx context.Context, id uuid.UUID, input QuoteInput) (*CableDetail, error) {
	if err := pricing.ValidateTiers(input.Tiers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	cable, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	target := enums.CableStatusQuoteReady
	if input.NeedsReview {
		target = enums.CableStatusNeedsReview
	}
	from := cable.Status
	if err := lifecycle.Transition(from, target); err != nil {
		return nil, err
	}

	expiration := now.Add(s.validity)
	if input.Expiration != nil {
		expiration = input.Expiration.UTC()
	}
	if !expiration.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quote expiration must be in the future")
	}

	cable.Status = target
	cable.QuoteTiers = append([]pricing.QuoteTier(nil), input.Tiers...)
	cable.QuoteExpiration = &expiration
	cable.QuoteNotes = strings.TrimSpace(input.Notes)
	cable.QuotedAt = &now
	cable.UpdatedAt = now

	ok, err := s.repo.SaveQuote(ctx, cable, from)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save quote")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cable status changed concurrently")
	}

	logCtx := s.logg.WithCableID(ctx, cable.Code)
	s.logg.Info(s.logg.WithField(logCtx, "status", target), "quote published")
	if event, ok := enums.QuoteEventForStatus(target); ok {
		s.publish(logCtx, cable, event)
	}
	return detailFromModel(cable, now), nil
}

func (s *service) SetStatus(ctx context.Context, id uuid.UUID, to enums.CableStatus) (*CableDetail, error) {
	cable, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.transition(ctx, cable, to, now); err != nil {
		return nil, err
	}
	return detailFromModel(cable, now), nil
}

// ReviseFile replaces an attachment and flags it as modified for the owner.
func (s *service) ReviseFile(ctx context.Context, id uuid.UUID, upload files.Upload) (*CableDetail, error) {
	cable, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	stored, err := s.files.Store(ctx, cable.ID, upload)
	if err != nil {
		return nil, err
	}

	previous := cable.File(upload.Kind)
	file := fileModel(cable.ID, stored, true)
	if err := s.repo.UpsertFile(ctx, &file); err != nil {
		if previous == nil || previous.ObjectKey != stored.ObjectKey {
			s.cleanup(ctx, []string{stored.ObjectKey})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save file")
	}
	if previous != nil && previous.ObjectKey != stored.ObjectKey {
		s.cleanup(ctx, []string{previous.ObjectKey})
	}

	reloaded, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	logCtx := s.logg.WithCableID(ctx, cable.Code)
	s.logg.Info(s.logg.WithField(logCtx, "kind", upload.Kind), "file revised")
	s.publish(logCtx, reloaded, enums.QuoteEventFileRevised)
	return detailFromModel(reloaded, s.now()), nil
}

// ExpiredQuotes lists ready quotes past their expiration.
func (s *service) ExpiredQuotes(ctx context.Context, now time.Time, limit int) ([]models.Cable, error) {
	rows, err := s.repo.FindExpiredQuotes(ctx, now.UTC(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find expired quotes")
	}
	return rows, nil
}

// ExpireQuote moves a ready quote past its expiration to Quote Expired.
func (s *service) ExpireQuote(ctx context.Context, cable *models.Cable, now time.Time) error {
	if !lifecycle.IsExpired(quoteOf(cable), now) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("quote for %s has not expired", cable.Code))
	}
	return s.transition(ctx, cable, enums.CableStatusQuoteExpired, now)
}

func (s *service) transition(ctx context.Context, cable *models.Cable, to enums.CableStatus, now time.Time) error {
	from := cable.Status
	if err := lifecycle.Transition(from, to); err != nil {
		return err
	}
	ok, err := s.repo.UpdateStatus(ctx, cable.ID, from, to, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cable status")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cable status changed concurrently")
	}
	cable.Status = to
	cable.UpdatedAt = now

	logCtx := s.logg.WithCableID(ctx, cable.Code)
	s.logg.Info(s.logg.WithFields(logCtx, map[string]any{"from": from, "to": to}), "cable status changed")
	if event, ok := enums.QuoteEventForStatus(to); ok {
		s.publish(logCtx, cable, event)
	}
	return nil
}

func (s *service) publish(ctx context.Context, cable *models.Cable, event enums.QuoteEventType) {
	err := s.publisher.PublishQuoteEvent(ctx, notifications.QuoteEvent{
		Type:       event,
		CableID:    cable.ID,
		CableCode:  cable.Code,
		UserID:     cable.UserID,
		Status:     cable.Status,
		OccurredAt: s.now(),
	})
	if err != nil {
		s.logg.Error(ctx, "failed to publish quote event", err)
	}
}

func (s *service) cleanup(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.files.Remove(ctx, keys...); err != nil {
		s.logg.Error(ctx, "failed to remove stored files", err)
	}
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Cable, error) {
	cable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cable not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cable")
	}
	return cable, nil
}

// loadVisible hides other customers' cables behind a not found.
func (s *service) loadVisible(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.Cable, error) {
	cable, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.Admin && cable.UserID != viewer.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cable not found")
	}
	return cable, nil
}

func checkUploads(uploads []files.Upload) error {
	seen := map[enums.FileKind]bool{}
	for _, upload := range uploads {
		if !upload.Kind.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown file kind %q", upload.Kind))
		}
		if seen[upload.Kind] {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("only one %s file is allowed", upload.Kind))
		}
		seen[upload.Kind] = true
	}
	if !seen[enums.FileKindDrawing] {
		return pkgerrors.New(pkgerrors.CodeValidation, "a drawing is required to request a quote")
	}
	return nil
}

func parseDeliveryDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery_date must be YYYY-MM-DD")
}

func fileModel(cableID uuid.UUID, stored *files.Stored, modified bool) models.CableFile {
	return models.CableFile{
		CableID:     cableID,
		Kind:        stored.Kind,
		FileName:    stored.FileName,
		ContentType: stored.ContentType,
		SizeBytes:   stored.SizeBytes,
		ObjectKey:   stored.ObjectKey,
		Modified:    modified,
	}
}

func toInt64Array(values []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(values))
	for _, v := range values {
		out = append(out, int64(v))
	}
	return out
}
