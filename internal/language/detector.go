package language

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Supported ISO 639-1 codes. Anything detected outside this set falls back
// to English so that search filter values stay closed over the set.
const (
	English = "en"
	Spanish = "es"
)

// Detector tags document text with a language code used both as chunk
// metadata and as the optional search filter value.
type Detector struct {
	detector lingua.LanguageDetector
}

func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Spanish).
			Build(),
	}
}

// Detect returns the language code for text, defaulting to English when
// detection is inconclusive. Empty text returns "".
func (d *Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return English
	}
	switch lang {
	case lingua.Spanish:
		return Spanish
	default:
		return English
	}
}

// IsSupported reports whether code is a recognized filter value.
func IsSupported(code string) bool {
	return code == English || code == Spanish
}
