package domain

// AutoDetect is the pseudo source language asking the translator to detect it.
const AutoDetect = "auto"

// DefaultTargetLang is used when a request names no target language.
const DefaultTargetLang = "en"

var supportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"hi": "Hindi",
	"ar": "Arabic",
	"te": "Telugu",
}

// IsSupportedLanguage reports whether code is in the fixed allow-list.
// AutoDetect is not a supported language on its own.
func IsSupportedLanguage(code string) bool {
	_, ok := supportedLanguages[code]
	return ok
}

// LanguageName returns the English name for a supported code.
func LanguageName(code string) (string, bool) {
	name, ok := supportedLanguages[code]
	return name, ok
}

// SupportedLanguages returns the allow-listed codes in no particular order.
func SupportedLanguages() []string {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	return codes
}
