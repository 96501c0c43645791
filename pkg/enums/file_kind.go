package enums

import "fmt"

// FileKind identifies which of the cable's attachments a file is.
type FileKind string

const (
	FileKindDrawing     FileKind = "drawing"
	FileKindBOM         FileKind = "bom"
	FileKindFromToTable FileKind = "from_to_table"
)

var validFileKinds = []FileKind{
	FileKindDrawing,
	FileKindBOM,
	FileKindFromToTable,
}

// FileKinds lists every kind in display order.
func FileKinds() []FileKind {
	out := make([]FileKind, len(validFileKinds))
	copy(out, validFileKinds)
	return out
}

// String returns the literal string for the kind.
func (f FileKind) String() string {
	return string(f)
}

// IsValid reports whether the kind is known.
func (f FileKind) IsValid() bool {
	for _, candidate := range validFileKinds {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFileKind converts raw input into a FileKind.
func ParseFileKind(value string) (FileKind, error) {
	for _, candidate := range validFileKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid file kind %q", value)
}
