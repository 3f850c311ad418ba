// Package language normalizes user- and tool-supplied language identifiers
// to ISO 639-1 codes understood by the transcription and translation
// backends.
package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Full word forms accepted in addition to BCP 47 / ISO codes.
var byName = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"swedish":    "sv",
	"danish":     "da",
	"norwegian":  "no",
	"finnish":    "fi",
}

// ToISO2 converts a recognized language code, BCP 47 tag, or English language
// name to ISO 639-1 (2-letter). Returns the empty string for unrecognized input.
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if iso, ok := byName[code]; ok {
		return iso
	}
	tag, err := xlanguage.Parse(code)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == xlanguage.No {
		return ""
	}
	iso := base.String()
	if len(iso) != 2 {
		return ""
	}
	return iso
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	iso := ToISO2(trimmed)
	if iso == "" {
		return strings.ToUpper(trimmed)
	}
	tag := xlanguage.Make(iso)
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(iso)
}
