package files

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

type mimeGroup string

const (
	mimeGroupPDFs        mimeGroup = "pdfs"
	mimeGroupImages      mimeGroup = "images"
	mimeGroupCAD         mimeGroup = "cad"
	mimeGroupSpreadsheet mimeGroup = "spreadsheets"
)

var mimeGroupNames = map[mimeGroup]string{
	mimeGroupPDFs:        "PDFs",
	mimeGroupImages:      "images",
	mimeGroupCAD:         "DXF drawings",
	mimeGroupSpreadsheet: "spreadsheets (xlsx, xls, csv)",
}

var mimeGroupTypes = map[mimeGroup][]string{
	mimeGroupPDFs:   {"application/pdf"},
	mimeGroupImages: {"image/png", "image/jpeg", "image/webp", "image/tiff"},
	mimeGroupCAD:    {"image/vnd.dxf"},
	mimeGroupSpreadsheet: {
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
		"text/csv",
	},
}

var allowedMimeGroupsByKind = map[enums.FileKind][]mimeGroup{
	enums.FileKindDrawing:     {mimeGroupPDFs, mimeGroupImages, mimeGroupCAD},
	enums.FileKindBOM:         {mimeGroupSpreadsheet, mimeGroupPDFs},
	enums.FileKindFromToTable: {mimeGroupSpreadsheet, mimeGroupPDFs},
}

var mimeTypesByKind = buildMimeTypesByKind()

func buildMimeTypesByKind() map[enums.FileKind][]string {
	result := make(map[enums.FileKind][]string, len(allowedMimeGroupsByKind))
	for kind, groups := range allowedMimeGroupsByKind {
		var list []string
		for _, group := range groups {
			list = append(list, mimeGroupTypes[group]...)
		}
		sort.Strings(list)
		result[kind] = list
	}
	return result
}

func allowedMimeDescription(kind enums.FileKind) string {
	var names []string
	for _, group := range allowedMimeGroupsByKind[kind] {
		names = append(names, mimeGroupNames[group])
	}
	switch len(names) {
	case 0:
		return "the approved file types"
	case 1:
		return names[0]
	case 2:
		return fmt.Sprintf("%s or %s", names[0], names[1])
	default:
		return fmt.Sprintf("%s, or %s", strings.Join(names[:len(names)-1], ", "), names[len(names)-1])
	}
}

// detectContentType sniffs data and checks it against the kind's allow list.
// Short CSV files often sniff as plain text, so text with a .csv extension is
// accepted wherever CSV is.
func detectContentType(kind enums.FileKind, fileName string, data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	allowed := mimeTypesByKind[kind]

	for m := detected; m != nil; m = m.Parent() {
		for _, candidate := range allowed {
			if m.Is(candidate) {
				return candidate, true
			}
		}
	}

	if detected.Is("text/plain") && strings.EqualFold(path.Ext(fileName), ".csv") {
		for _, candidate := range allowed {
			if candidate == "text/csv" {
				return candidate, true
			}
		}
	}
	return detected.String(), false
}
