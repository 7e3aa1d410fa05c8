package model

import "strings"

// Lang selects which side of a localized pair is displayed.
type Lang string

const (
	LangKO Lang = "KO"
	LangEN Lang = "EN"
)

// ParseLang parses a `lang` flag, anything unknown is Korean.
func ParseLang(s string) Lang {
	if strings.EqualFold(strings.TrimSpace(s), string(LangEN)) {
		return LangEN
	}

	return LangKO
}

// Pick returns the text for lang, falling back to whichever side is non-empty.
func Pick(lang Lang, ko, en string) string {
	primary, secondary := ko, en
	if lang == LangEN {
		primary, secondary = en, ko
	}
	if strings.TrimSpace(primary) != "" {
		return primary
	}

	return secondary
}

// PickSlice is Pick for paragraph arrays.
func PickSlice(lang Lang, ko, en []string) []string {
	primary, secondary := ko, en
	if lang == LangEN {
		primary, secondary = en, ko
	}
	if hasText(primary) {
		return primary
	}
	if secondary == nil {
		return []string{}
	}

	return secondary
}

func hasText(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}

	return false
}

// LocalizedText is one Korean/English pair.
type LocalizedText struct {
	Ko string `json:"ko"`
	En string `json:"en"`
}

// In returns the text for lang with fallback.
func (t LocalizedText) In(lang Lang) string {
	return Pick(lang, t.Ko, t.En)
}

// IsEmpty reports whether both sides are blank.
func (t LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(t.Ko) == "" && strings.TrimSpace(t.En) == ""
}
