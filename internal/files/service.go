package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/cableflow/cableflow-backend/pkg/db/models"
	"github.com/cableflow/cableflow-backend/pkg/enums"
	pkgerrors "github.com/cableflow/cableflow-backend/pkg/errors"
	"github.com/cableflow/cableflow-backend/pkg/storage"
)

const defaultMaxBytes = 25 << 20

// Upload is a file received from a quote request or a revision.
type Upload struct {
	Kind     enums.FileKind
	FileName string
	Body     io.Reader
}

// Stored describes an object written to the store.
type Stored struct {
	Kind        enums.FileKind
	FileName    string
	ContentType string
	SizeBytes   int64
	ObjectKey   string
}

// Payload is a file returned to the storefront for preview. Data is base64.
type Payload struct {
	Kind        enums.FileKind `json:"kind"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type"`
	SizeBytes   int64          `json:"size_bytes"`
	Data        string         `json:"data"`
}

// Service validates and stores cable attachments.
type Service struct {
	store    storage.ObjectStore
	prefix   string
	maxBytes int64
}

// NewService builds a file service writing under prefix.
func NewService(store storage.ObjectStore, prefix string, maxBytes int64) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Service{store: store, prefix: prefix, maxBytes: maxBytes}, nil
}

// Store validates size and content type, then writes the object.
func (s *Service) Store(ctx context.Context, cableID uuid.UUID, upload Upload) (*Stored, error) {
	if !upload.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown file kind %q", upload.Kind))
	}
	if upload.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file is empty", upload.Kind))
	}
	name := sanitizeFileName(upload.FileName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file name is required", upload.Kind))
	}

	data, err := io.ReadAll(io.LimitReader(upload.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file is empty", upload.Kind))
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s file exceeds %d MB", upload.Kind, s.maxBytes>>20))
	}

	contentType, ok := detectContentType(upload.Kind, name, data)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s must be one of %s", upload.Kind, allowedMimeDescription(upload.Kind))).
			WithDetails(map[string]any{"kind": upload.Kind, "detected": contentType})
	}

	// Each write gets its own key so a revision never overwrites the live object.
	key := storage.CableObjectKey(s.prefix, cableID, upload.Kind, uuid.NewString()+"-"+name)
	info, err := s.store.Put(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store file")
	}
	return &Stored{
		Kind:        upload.Kind,
		FileName:    name,
		ContentType: contentType,
		SizeBytes:   info.Size,
		ObjectKey:   key,
	}, nil
}

// Read loads the object behind a file row and base64-encodes it.
func (s *Service) Read(ctx context.Context, file *models.CableFile) (*Payload, error) {
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "file not found")
	}
	rc, info, err := s.store.Open(ctx, file.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "file not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open file")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read file")
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	return &Payload{
		Kind:        file.Kind,
		FileName:    file.FileName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Data:        base64.StdEncoding.EncodeToString(data),
	}, nil
}

// Remove deletes objects, ignoring ones that are already gone.
func (s *Service) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete file")
		}
	}
	return nil
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
