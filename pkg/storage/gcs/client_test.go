package gcs

import (
	"context"
	"testing"

	"github.com/cableflow/cableflow-backend/pkg/config"
)

func TestNewClientRequiresBucket(t *testing.T) {
	if _, err := NewClient(context.Background(), config.GCSConfig{}, config.GCPConfig{}, nil); err == nil {
		t.Fatal("expected error when bucket name is empty")
	}
}
