package render

import (
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLocaleFromAcceptLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   language.Tag
	}{
		{"", language.AmericanEnglish},
		{"de-DE,de;q=0.9,en;q=0.5", language.German},
		{"en-GB", language.BritishEnglish},
		{"fr-CH, fr;q=0.9", language.French},
		{"ja", language.Japanese},
		{";;;garbage", language.AmericanEnglish},
	}
	for _, tt := range tests {
		got := LocaleFromAcceptLanguage(tt.header, time.UTC)
		base, _ := got.Tag.Base()
		wantBase, _ := tt.want.Base()
		if base != wantBase {
			t.Errorf("header %q: locale = %s, want %s", tt.header, got.Tag, tt.want)
		}
		if got.Location != time.UTC {
			t.Errorf("header %q: location not applied", tt.header)
		}
	}
}

func TestLocaleFormat(t *testing.T) {
	ts := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		header string
		want   string
	}{
		{"en-US", "1/2/2024, 3:04:05 PM"},
		{"de", "2.1.2024, 15:04:05"},
		{"en-GB", "02/01/2024, 15:04:05"},
	}
	for _, tt := range tests {
		got := LocaleFromAcceptLanguage(tt.header, time.UTC).Format(ts)
		if got != tt.want {
			t.Errorf("%s: Format = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	l := DefaultLocale()
	l.Location = time.UTC

	tests := []struct {
		raw  string
		want string
	}{
		{"2024-01-01T00:00:00Z", "1/1/2024, 12:00:00 AM"},
		{"2024-01-01T10:30:00.123+02:00", "1/1/2024, 8:30:00 AM"},
		{"2024-06-15T08:00:00", "6/15/2024, 8:00:00 AM"},
		{"2024-06-15", "6/15/2024, 12:00:00 AM"},
		{"", Placeholder},
		{"   ", Placeholder},
		{"yesterday", Placeholder},
		{"2024-13-45T99:00:00Z", Placeholder},
	}
	for _, tt := range tests {
		if got := l.FormatTimestamp(tt.raw); got != tt.want {
			t.Errorf("FormatTimestamp(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
