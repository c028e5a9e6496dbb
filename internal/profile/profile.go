// Package profile defines the per-player settings record kept in the sheet
// and the rules that normalize raw page text into its categorical values.
package profile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Outline colors.
const (
	OutlineYellow  = "yellow"
	OutlinePurple  = "purple"
	OutlineRed     = "red"
	OutlineUnknown = "unknown"
)

// Brightness boost (BFI) states.
const (
	BrightnessOn      = "ON"
	BrightnessOff     = "OFF"
	BrightnessUnknown = "unknown"
)

// Columns is the fixed header of the sheet, in cell order.
var Columns = []string{"NAME", "eDPI", "MOUSEPAD", "OUTLINE", "BFI"}

// ErrInvalid marks a profile that breaks the sheet invariants.
var ErrInvalid = errors.New("invalid profile")

// Profile is one player's row. Updates replace every field.
type Profile struct {
	Name        string
	Sensitivity float64
	Accessory   string
	Outline     string
	Brightness  string
}

// Validate reports whether the profile may be written to the sheet.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalid)
	}
	if math.IsNaN(p.Sensitivity) || math.IsInf(p.Sensitivity, 0) || p.Sensitivity < 0 {
		return fmt.Errorf("%w: eDPI %v is not a finite non-negative number", ErrInvalid, p.Sensitivity)
	}
	return nil
}

// Cells renders the profile in column order.
func (p Profile) Cells() []string {
	return []string{
		p.Name,
		FormatSensitivity(p.Sensitivity),
		p.Accessory,
		p.Outline,
		p.Brightness,
	}
}

// FromCells is the inverse of Cells. Missing trailing cells are left empty.
func FromCells(cells []string) (Profile, error) {
	get := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	p := Profile{
		Name:       get(0),
		Accessory:  get(2),
		Outline:    get(3),
		Brightness: get(4),
	}
	if raw := get(1); raw != "" {
		v, err := ParseSensitivity(raw)
		if err != nil {
			return Profile{}, err
		}
		p.Sensitivity = v
	}
	return p, nil
}

// FormatSensitivity prints the metric without a trailing ".0" for whole numbers.
func FormatSensitivity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SubjectURL derives the canonical player page from a sheet key.
func SubjectURL(baseURL, key string) string {
	base := strings.TrimRight(baseURL, "/")
	return fmt.Sprintf("%s/players/%s/", base, strings.ToLower(strings.TrimSpace(key)))
}
