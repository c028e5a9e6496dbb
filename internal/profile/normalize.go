package profile

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Rule maps raw text containing Contains to Value.
type Rule struct {
	Contains string
	Value    string
}

// OutlineRules normalizes the enemy highlight color text.
var OutlineRules = []Rule{
	{Contains: "Yellow", Value: OutlineYellow},
	{Contains: "Purple", Value: OutlinePurple},
	{Contains: "Red", Value: OutlineRed},
	{Contains: "Unknown", Value: OutlineUnknown},
}

// BrightnessRules normalizes the brightness boost text.
var BrightnessRules = []Rule{
	{Contains: "Premium", Value: BrightnessOn},
	{Contains: "High", Value: BrightnessOn},
	{Contains: "Off", Value: BrightnessOff},
	{Contains: "Unknown", Value: BrightnessUnknown},
}

// Normalize applies rules in order and returns the first match. Text that
// matches nothing is returned as is.
//
// TODO: unmatched text most likely should become "unknown". Switch once the
// existing sheets have been checked for pass-through values.
func Normalize(raw string, rules []Rule) string {
	for _, r := range rules {
		if strings.Contains(raw, r.Contains) {
			return r.Value
		}
	}
	return raw
}

var errRange = errors.New("out of range")

// ParseError reports a sensitivity value that is not a usable number.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse eDPI %q: %v", e.Raw, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseSensitivity strips one layer of single quotes and parses the rest.
func ParseSensitivity(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "'")
	s = strings.TrimSuffix(s, "'")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ParseError{Raw: raw, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, &ParseError{Raw: raw, Err: errRange}
	}
	return v, nil
}
