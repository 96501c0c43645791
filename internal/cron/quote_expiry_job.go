package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/logger"
	"github.com/cableflow/cableflow-backend/pkg/metrics"
)

const (
	quoteExpiryJobName    = "quote-expiry"
	defaultQuoteBatchSize = 200
)

type quoteExpirer interface {
	ExpiredQuotes(ctx context.Context, now time.Time, limit int) ([]models.Cable, error)
	ExpireQuote(ctx context.Context, cable *models.Cable, now time.Time) error
}

// QuoteExpiryJobParams configure the quote expiry sweep.
type QuoteExpiryJobParams struct {
	Logger    *logger.Logger
	Cables    quoteExpirer
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

// NewQuoteExpiryJob builds the job that moves lapsed ready quotes to Quote Expired.
func NewQuoteExpiryJob(params QuoteExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Cables == nil {
		return nil, fmt.Errorf("cables service required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultQuoteBatchSize
	}
	return &quoteExpiryJob{
		logg:    params.Logger,
		cables:  params.Cables,
		metrics: params.Metrics,
		batch:   batch,
		now:     time.Now,
	}, nil
}

type quoteExpiryJob struct {
	logg    *logger.Logger
	cables  quoteExpirer
	metrics *metrics.CronJobMetrics
	batch   int
	now     func() time.Time
}

func (j *quoteExpiryJob) Name() string { return quoteExpiryJobName }

// Run expires one batch. Failures on individual cables are collected and the
// rest of the batch still runs.
func (j *quoteExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	rows, err := j.cables.ExpiredQuotes(ctx, now, j.batch)
	if err != nil {
		return fmt.Errorf("find expired quotes: %w", err)
	}

	var errs error
	expired := 0
	for i := range rows {
		cable := &rows[i]
		if err := j.cables.ExpireQuote(ctx, cable, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire %s: %w", cable.Code, err))
			continue
		}
		expired++
	}
	j.metrics.AddProcessed(quoteExpiryJobName, expired)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(rows),
		"expired":    expired,
		"failed":     len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "quote expiry sweep complete")
	return errs
}
