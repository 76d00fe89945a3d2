// Package settings holds the QR configurator's settings model and the
// sanitizing layer every change passes through before it is applied.
package settings

import (
	"fmt"
	"strings"
)

// Level is the QR error-correction strength, ordered from Low to High.
type Level string

const (
	LevelLow      Level = "L" // ~7% correction
	LevelMedium   Level = "M" // ~15% correction
	LevelQuartile Level = "Q" // ~25% correction
	LevelHigh     Level = "H" // ~30% correction
)

// Levels lists the error-correction levels in ascending strength.
var Levels = []Level{LevelLow, LevelMedium, LevelQuartile, LevelHigh}

// Label returns the human readable name shown in the level selector.
func (l Level) Label() string {
	switch l {
	case LevelLow:
		return "Low (~7%)"
	case LevelMedium:
		return "Medium (~15%)"
	case LevelQuartile:
		return "Quartile (~25%)"
	case LevelHigh:
		return "High (~30%) - Recommended"
	}
	return string(l)
}

// ParseLevel accepts the single-letter codes and the long names, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l", "low":
		return LevelLow, nil
	case "m", "medium":
		return LevelMedium, nil
	case "q", "quartile", "quart":
		return LevelQuartile, nil
	case "h", "high", "highest":
		return LevelHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// Settings is the flat record of everything the preview and export depend on.
// Numeric fields are always within their documented bounds.
type Settings struct {
	Data        string `json:"data"`
	FgColor     string `json:"fgColor"`
	BgColor     string `json:"bgColor"`
	BorderColor string `json:"borderColor"`
	Level       Level  `json:"level"`
	Size        int    `json:"size"`
	QuietZone   int    `json:"quietZone"`

	// LogoSrc is a data: URL; empty means no logo. The remaining logo fields
	// are only consulted while it is set and survive its removal.
	LogoSrc      string `json:"logoSrc,omitempty"`
	LogoWidth    int    `json:"logoWidth"`
	LogoHeight   int    `json:"logoHeight"`
	LogoExcavate bool   `json:"logoExcavate"`

	Padding      int `json:"padding"`
	BorderRadius int `json:"borderRadius"`
	BorderWidth  int `json:"borderWidth"`
}

const (
	DefaultData          = "https://gemini.google.com"
	DefaultFgColor       = "#1A202C"
	DefaultBgColor       = "#FFFFFF"
	DefaultBorderColor   = "#1A202C"
	DefaultLevel         = LevelHigh
	DefaultSize          = 280
	DefaultQuietZone     = 10
	DefaultLogoDimension = 60
	DefaultLogoExcavate  = true
	DefaultPadding       = 16
	DefaultBorderRadius  = 24
	DefaultBorderWidth   = 0
)

// Default returns the snapshot every session starts from and resets to.
func Default() Settings {
	return Settings{
		Data:         DefaultData,
		FgColor:      DefaultFgColor,
		BgColor:      DefaultBgColor,
		BorderColor:  DefaultBorderColor,
		Level:        DefaultLevel,
		Size:         DefaultSize,
		QuietZone:    DefaultQuietZone,
		LogoWidth:    DefaultLogoDimension,
		LogoHeight:   DefaultLogoDimension,
		LogoExcavate: DefaultLogoExcavate,
		Padding:      DefaultPadding,
		BorderRadius: DefaultBorderRadius,
		BorderWidth:  DefaultBorderWidth,
	}
}

// HasLogo reports whether a logo payload is present.
func (s Settings) HasLogo() bool { return s.LogoSrc != "" }

// Exportable reports whether the export action is enabled.
func (s Settings) Exportable() bool { return s.Data != "" }

// CanvasEdge is the edge length of the exported square image.
func (s Settings) CanvasEdge() int {
	return s.Size + 2*s.Padding + 2*s.BorderWidth
}

// LowLevelForLogo is true when a logo is embedded with an error-correction
// level below Quartile, which hurts scannability.
func (s Settings) LowLevelForLogo() bool {
	return s.HasLogo() && s.Level != LevelHigh && s.Level != LevelQuartile
}

// WithLogo returns a copy with the logo payload replaced. An empty src removes
// the logo; sizing and excavation are left as they are.
func (s Settings) WithLogo(src string) Settings {
	s.LogoSrc = src
	return s
}

// With returns a copy of s with the sanitized update applied.
func (s Settings) With(u Update) Settings {
	switch u.Field {
	case FieldData:
		s.Data = u.text
	case FieldFgColor:
		s.FgColor = u.text
	case FieldBgColor:
		s.BgColor = u.text
	case FieldBorderColor:
		s.BorderColor = u.text
	case FieldLevel:
		s.Level = Level(u.text)
	case FieldSize:
		s.Size = u.number
	case FieldQuietZone:
		s.QuietZone = u.number
	case FieldLogoWidth:
		s.LogoWidth = u.number
	case FieldLogoHeight:
		s.LogoHeight = u.number
	case FieldLogoExcavate:
		s.LogoExcavate = u.flag
	case FieldPadding:
		s.Padding = u.number
	case FieldBorderRadius:
		s.BorderRadius = u.number
	case FieldBorderWidth:
		s.BorderWidth = u.number
	}
	return s
}
