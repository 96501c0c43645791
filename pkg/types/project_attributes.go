package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/cableflow/cableflow-backend/pkg/enums"
)

// TempRange is the operating temperature window of a project's cables.
type TempRange struct {
	Min  int                   `json:"min"`
	Max  int                   `json:"max" validate:"gtefield=Min"`
	Unit enums.TemperatureUnit `json:"unit" validate:"required,oneof=C F"`
}

// ProjectAttributes are the typed engineering requirements attached to a
// project. Every field is optional.
type ProjectAttributes struct {
	TempRange       *TempRange `json:"temp_range,omitempty" validate:"omitempty"`
	IPRating        *string    `json:"ip_rating,omitempty" validate:"omitempty,len=2,numeric"`
	PositiveLocking *bool      `json:"positive_locking,omitempty"`
	Shielding       *bool      `json:"shielding,omitempty"`
}

// Value serializes the attributes to JSON.
func (p ProjectAttributes) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan decodes JSONB into the attributes.
func (p *ProjectAttributes) Scan(value interface{}) error {
	if value == nil {
		*p = ProjectAttributes{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("project attributes: cannot scan %T", value)
	}
	var decoded ProjectAttributes
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
	}
	*p = decoded
	return nil
}
