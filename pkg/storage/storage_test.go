package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

func TestCableObjectKey(t *testing.T) {
	id := uuid.MustParse("0b7f3a5e-6f57-4c4e-9a43-1d2f0f1e2a3b")

	assert.Equal(t,
		"cables/0b7f3a5e-6f57-4c4e-9a43-1d2f0f1e2a3b/drawing/harness.pdf",
		CableObjectKey("/cables/", id, enums.FileKindDrawing, "harness.pdf"))
	assert.Equal(t,
		"0b7f3a5e-6f57-4c4e-9a43-1d2f0f1e2a3b/bom/bom.xlsx",
		CableObjectKey("", id, enums.FileKindBOM, `C:\Users\me\bom.xlsx`))
	assert.Equal(t,
		"cables/0b7f3a5e-6f57-4c4e-9a43-1d2f0f1e2a3b/from_to_table/from_to_table",
		CableObjectKey("cables", id, enums.FileKindFromToTable, "  "))
}
