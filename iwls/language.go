package iwls

import (
	"fmt"
	"strings"
)

type Language string

const (
	English Language = "en"
	French  Language = "fr"
)

var ErrUnknownLanguage = fmt.Errorf("unknown language")

// ParseLanguage accepts ISO codes and the full names, in either language.
// An empty string selects English.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "en", "eng", "english", "anglais":
		return English, nil
	case "fr", "fra", "fre", "french", "français", "francais":
		return French, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
	}
}

func (l Language) IsValid() bool {
	return l == English || l == French
}

func (l Language) String() string {
	return string(l)
}

// Pick returns the French text when l is French and fr is set, else en.
func (l Language) Pick(en, fr string) string {
	if l == French && fr != "" {
		return fr
	}
	return en
}
