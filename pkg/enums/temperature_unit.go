package enums

import "fmt"

// TemperatureUnit is the unit of a project's operating temperature range.
type TemperatureUnit string

const (
	TemperatureUnitCelsius    TemperatureUnit = "C"
	TemperatureUnitFahrenheit TemperatureUnit = "F"
)

var validTemperatureUnits = []TemperatureUnit{
	TemperatureUnitCelsius,
	TemperatureUnitFahrenheit,
}

func (u TemperatureUnit) String() string {
	return string(u)
}

func (u TemperatureUnit) IsValid() bool {
	for _, candidate := range validTemperatureUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

func ParseTemperatureUnit(value string) (TemperatureUnit, error) {
	for _, candidate := range validTemperatureUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid temperature unit %q", value)
}
