package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
)

const (
	codeBase     = 1000
	codeAttempts = 5
)

// InsertWithCode assigns a human readable "<prefix>-<n>" code and runs create
// with it. create runs inside a nested transaction so a unique collision can
// be retried with the next number even when conn is already a transaction.
func InsertWithCode(ctx context.Context, conn *gorm.DB, table, column, prefix string, create func(tx *gorm.DB, code string) error) (string, error) {
	var count int64
	if err := conn.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count %s: %w", table, err)
	}
	next := count + codeBase + 1

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := fmt.Sprintf("%s-%d", prefix, next)
		err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return create(tx, code)
		})
		if err == nil {
			return code, nil
		}
		if !pkgerrors.IsUniqueViolation(err) {
			return "", err
		}
		highest, maxErr := highestCode(ctx, conn, table, column, prefix)
		if maxErr != nil {
			return "", maxErr
		}
		if highest >= next {
			next = highest + 1
		} else {
			next++
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("could not allocate a unique %s code", prefix))
}

func highestCode(ctx context.Context, conn *gorm.DB, table, column, prefix string) (int64, error) {
	var codes []string
	if err := conn.WithContext(ctx).
		Table(table).
		Where(column+" LIKE ?", prefix+"-%").
		Pluck(column, &codes).Error; err != nil {
		return 0, fmt.Errorf("load %s codes: %w", table, err)
	}
	var highest int64
	for _, code := range codes {
		n, err := strconv.ParseInt(strings.TrimPrefix(code, prefix+"-"), 10, 64)
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest, nil
}
