// Package storage defines the object store used for cable attachments.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

// ErrObjectNotFound is returned by Open and Delete for unknown keys.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
}

// ObjectStore is implemented by the gcs and memory drivers.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (ObjectInfo, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// CableObjectKey lays files out as <prefix>/<cable_id>/<kind>/<file name>.
func CableObjectKey(prefix string, cableID uuid.UUID, kind enums.FileKind, fileName string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = kind.String()
	}
	parts := []string{}
	if p := strings.Trim(strings.TrimSpace(prefix), "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, cableID.String(), kind.String(), name)
	return strings.Join(parts, "/")
}
