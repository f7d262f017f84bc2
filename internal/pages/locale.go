package pages

import (
	"strings"

	"golang.org/x/text/language"
)

// Text directions.
const (
	LTR = "ltr"
	RTL = "rtl"
)

var rtlBases = map[string]bool{"ar": true, "he": true, "fa": true, "ur": true}

// Negotiate picks the page locale among the store locale and English. An
// explicit lang parameter wins over Accept-Language, and the store locale is
// used when neither matches.
func Negotiate(storeLocale, langParam, acceptLanguage string) language.Tag {
	storeTag, err := language.Parse(strings.TrimSpace(storeLocale))
	if err != nil || storeTag == language.Und {
		storeTag = language.English
	}
	supported := []language.Tag{storeTag}
	if storeTag != language.English {
		supported = append(supported, language.English)
	}
	matcher := language.NewMatcher(supported)

	var wanted []language.Tag
	if p := strings.TrimSpace(langParam); p != "" {
		if tag, err := language.Parse(p); err == nil {
			wanted = append(wanted, tag)
		}
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			wanted = append(wanted, tags...)
		}
	}
	if len(wanted) == 0 {
		return storeTag
	}
	_, idx, conf := matcher.Match(wanted...)
	if conf == language.No {
		return storeTag
	}
	return supported[idx]
}

// Direction returns the text direction of a locale.
func Direction(tag language.Tag) string {
	base, _ := tag.Base()
	if rtlBases[base.String()] {
		return RTL
	}
	return LTR
}
