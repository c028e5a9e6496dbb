// Package extract turns an opened player page into a profile.Profile.
//
// Each field is tried against an ordered list of locators. A locator that
// does not match within the lookup timeout falls through to the next one;
// when every locator misses, the field takes its default. Fields without a
// default (the player name, eDPI and mousepad) fail the extraction instead.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/prosettings-sheet/internal/metrics"
	"github.com/JakeFAU/prosettings-sheet/internal/page"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

// DefaultLookupTimeout bounds each locator attempt.
const DefaultLookupTimeout = 100 * time.Millisecond

// ErrMissingField is wrapped by Error when a required field had no match.
var ErrMissingField = errors.New("required field not found")

// Error is returned when a page cannot produce a valid profile.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Field describes how to read one value from the page.
type Field struct {
	Name     string
	Locators []page.Locator
	// Timeout overrides the extractor's lookup timeout when non-zero.
	Timeout time.Duration
	// Default is used when no locator matches. Ignored when Required.
	Default  string
	Required bool
}

// Fields is the full locator layout for a player page.
type Fields struct {
	Name        Field
	Brightness  Field
	Sensitivity Field
	Accessory   Field
	Outline     Field
}

// Extractor reads profiles from pages.
type Extractor struct {
	fields  Fields
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an Extractor. A zero timeout selects DefaultLookupTimeout.
func New(fields Fields, timeout time.Duration, logger *zap.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{fields: fields, timeout: timeout, logger: logger}
}

// Extract reads every field from s and assembles the profile.
func (x *Extractor) Extract(ctx context.Context, s page.Session) (profile.Profile, error) {
	name, err := x.resolve(ctx, s, x.fields.Name)
	if err != nil {
		return profile.Profile{}, err
	}
	brightness, err := x.resolve(ctx, s, x.fields.Brightness)
	if err != nil {
		return profile.Profile{}, err
	}
	rawSens, err := x.resolve(ctx, s, x.fields.Sensitivity)
	if err != nil {
		return profile.Profile{}, err
	}
	accessory, err := x.resolve(ctx, s, x.fields.Accessory)
	if err != nil {
		return profile.Profile{}, err
	}
	outline, err := x.resolve(ctx, s, x.fields.Outline)
	if err != nil {
		return profile.Profile{}, err
	}

	sens, err := profile.ParseSensitivity(rawSens)
	if err != nil {
		return profile.Profile{}, &Error{Field: x.fields.Sensitivity.Name, Err: err}
	}

	p := profile.Profile{
		Name:        name,
		Sensitivity: sens,
		Accessory:   accessory,
		Outline:     profile.Normalize(outline, profile.OutlineRules),
		Brightness:  profile.Normalize(brightness, profile.BrightnessRules),
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, &Error{Field: x.fields.Name.Name, Err: err}
	}
	return p, nil
}

func (x *Extractor) resolve(ctx context.Context, s page.Session, f Field) (string, error) {
	timeout := x.timeout
	if f.Timeout > 0 {
		timeout = f.Timeout
	}
	for i, loc := range f.Locators {
		text, err := s.Lookup(ctx, loc, timeout)
		switch {
		case err == nil:
			if i > 0 {
				metrics.ObserveFallback(f.Name, "locator")
			}
			return text, nil
		case errors.Is(err, page.ErrNotFound):
			x.logger.Debug("locator missed", zap.String("field", f.Name), zap.String("xpath", loc.XPath))
			continue
		default:
			return "", &Error{Field: f.Name, Err: err}
		}
	}
	if f.Required {
		return "", &Error{Field: f.Name, Err: ErrMissingField}
	}
	metrics.ObserveFallback(f.Name, "default")
	return f.Default, nil
}
