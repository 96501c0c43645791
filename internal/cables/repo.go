package cables

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cableflow/cableflow-backend/pkg/db"
	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	"github.com/cableflow/cableflow-backend/pkg/pagination"
)

const (
	cablesTable = "cables"
	codePrefix  = "CBL"
)

// Repository persists cables and their file rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create assigns the next CBL code and inserts the cable with its files.
func (r *Repository) Create(ctx context.Context, cable *models.Cable) error {
	_, err := db.InsertWithCode(ctx, r.db, cablesTable, "code", codePrefix, func(tx *gorm.DB, code string) error {
		cable.Code = code
		return tx.Create(cable).Error
	})
	return err
}

// FindByID loads a cable with its files.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cable, error) {
	var cable models.Cable
	if err := r.db.WithContext(ctx).
		Preload("Files").
		First(&cable, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cable, nil
}

// List pages through cables newest first. A nil owner lists every cable.
func (r *Repository) List(ctx context.Context, owner *uuid.UUID, filters ListFilters, params pagination.Params) ([]models.Cable, string, error) {
	q := r.db.WithContext(ctx).Model(&models.Cable{}).Preload("Files")
	if owner != nil {
		q = q.Where("user_id = ?", *owner)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(filters.Query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
	}

	var rows []models.Cable
	if err := q.Scopes(pagination.Scope(params, "")).Find(&rows).Error; err != nil {
		return nil, "", err
	}
	page, next := pagination.Trim(rows, params.Limit, func(c models.Cable) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	return page, next, nil
}

// Delete removes the cable and its file rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cable_id = ?", id).Delete(&models.CableFile{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Cable{}).Error
	})
}

// UpdateStatus moves a cable from one status to another. It reports false
// when the cable was no longer in the expected status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.CableStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Cable{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": at})
	return res.RowsAffected > 0, res.Error
}

// SaveQuote writes the published quote if the cable is still in status from.
func (r *Repository) SaveQuote(ctx context.Context, cable *models.Cable, from enums.CableStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(cable).
		Where("status = ?", from).
		Select("status", "quote_tiers", "quote_expiration", "quote_notes", "quoted_at", "updated_at").
		Updates(cable)
	return res.RowsAffected > 0, res.Error
}

// UpsertFile replaces the file of the same kind or inserts a new one.
func (r *Repository) UpsertFile(ctx context.Context, file *models.CableFile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CableFile
		err := tx.Where("cable_id = ? AND kind = ?", file.CableID, file.Kind).First(&existing).Error
		switch {
		case err == nil:
			file.ID = existing.ID
			file.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).
				Select("file_name", "content_type", "size_bytes", "object_key", "modified", "viewed_at", "updated_at").
				Updates(file).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(file).Error
		default:
			return err
		}
	})
}

// MarkFileViewed clears the revision flag.
func (r *Repository) MarkFileViewed(ctx context.Context, fileID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CableFile{}).
		Where("id = ?", fileID).
		Updates(map[string]any{"modified": false, "viewed_at": at, "updated_at": at}).Error
}

// FindExpiredQuotes returns ready quotes whose expiration has passed.
func (r *Repository) FindExpiredQuotes(ctx context.Context, now time.Time, limit int) ([]models.Cable, error) {
	var rows []models.Cable
	q := r.db.WithContext(ctx).
		Where("status = ? AND quote_expiration IS NOT NULL AND quote_expiration <= ?", enums.CableStatusQuoteReady, now).
		Order("quote_expiration ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
