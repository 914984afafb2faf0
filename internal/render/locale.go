package render

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Locale formats timestamps the way a viewer's browser would.
type Locale struct {
	Tag      language.Tag
	Layout   string
	Location *time.Location
}

type localeLayout struct {
	tag    language.Tag
	layout string
}

// The first entry is the fallback when nothing matches.
var localeLayouts = []localeLayout{
	{language.AmericanEnglish, "1/2/2006, 3:04:05 PM"},
	{language.BritishEnglish, "02/01/2006, 15:04:05"},
	{language.German, "2.1.2006, 15:04:05"},
	{language.French, "02/01/2006 15:04:05"},
	{language.Spanish, "2/1/2006, 15:04:05"},
	{language.Italian, "2/1/2006, 15:04:05"},
	{language.Dutch, "2-1-2006, 15:04:05"},
	{language.Polish, "2.01.2006, 15:04:05"},
	{language.Russian, "02.01.2006, 15:04:05"},
	{language.Ukrainian, "02.01.2006, 15:04:05"},
	{language.BrazilianPortuguese, "02/01/2006, 15:04:05"},
	{language.Japanese, "2006/1/2 15:04:05"},
	{language.SimplifiedChinese, "2006/1/2 15:04:05"},
	{language.Korean, "2006. 1. 2. PM 3:04:05"},
	{language.Swedish, "2006-01-02 15:04:05"},
}

var localeMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(localeLayouts))
	for i, l := range localeLayouts {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// DefaultLocale is en-US in the local time zone.
func DefaultLocale() Locale {
	return Locale{
		Tag:      localeLayouts[0].tag,
		Layout:   localeLayouts[0].layout,
		Location: time.Local,
	}
}

// LocaleFromAcceptLanguage picks the closest supported locale for an
// Accept-Language header value. Unparseable headers fall back to en-US.
func LocaleFromAcceptLanguage(header string, loc *time.Location) Locale {
	if loc == nil {
		loc = time.Local
	}
	result := DefaultLocale()
	result.Location = loc

	header = strings.TrimSpace(header)
	if header == "" {
		return result
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return result
	}
	_, idx, confidence := localeMatcher.Match(tags...)
	if confidence == language.No {
		return result
	}
	result.Tag = localeLayouts[idx].tag
	result.Layout = localeLayouts[idx].layout
	return result
}

// Format renders t in the locale's layout and time zone.
func (l Locale) Format(t time.Time) string {
	layout := l.Layout
	if layout == "" {
		layout = localeLayouts[0].layout
	}
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	out := t.In(loc).Format(layout)
	if l.Tag == language.Korean {
		out = strings.NewReplacer("AM", "오전", "PM", "오후").Replace(out)
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTimestamp parses an ISO-8601 string and formats it for the locale.
// Empty or unparseable input yields the placeholder glyph.
func (l Locale) FormatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Placeholder
	}
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.Contains(layout, "Z07") {
			t, err = time.Parse(layout, raw)
		} else if layout == "2006-01-02" {
			t, err = time.ParseInLocation(layout, raw, time.UTC)
		} else {
			t, err = time.ParseInLocation(layout, raw, l.location())
		}
		if err == nil {
			return l.Format(t)
		}
	}
	return Placeholder
}

func (l Locale) location() *time.Location {
	if l.Location == nil {
		return time.Local
	}
	return l.Location
}
