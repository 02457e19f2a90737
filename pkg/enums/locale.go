package enums

import "fmt"

// Locale is a user's preferred display language.
type Locale string

const (
	LocaleArabic  Locale = "ar"
	LocaleEnglish Locale = "en"
)

var validLocales = []Locale{
	LocaleArabic,
	LocaleEnglish,
}

// String implements fmt.Stringer.
func (l Locale) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Locale.
func (l Locale) IsValid() bool {
	for _, candidate := range validLocales {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLocale converts raw input into a Locale.
func ParseLocale(value string) (Locale, error) {
	for _, candidate := range validLocales {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid locale %q", value)
}
