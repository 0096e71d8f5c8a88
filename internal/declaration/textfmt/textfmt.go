// Package textfmt formats dates, names and counts for Indonesian civil
// registry documents.
//
// Every function is total: missing or unparseable input degrades to the
// Placeholder token instead of failing.
package textfmt

import (
	"strconv"
	"strings"
	"time"
)

// Placeholder stands in for any value the operator has not supplied. Printed
// documents keep the blank so it can be filled in by hand.
const Placeholder = "__________"

// Gender labels as they appear on identity cards.
const (
	GenderMale   = "LAKI-LAKI"
	GenderFemale = "PEREMPUAN"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// dateLayouts are tried in order. Data entry stores ISO dates; the others
// cover timestamps and the day-first form used on paper records.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02-01-2006",
	"02/01/2006",
}

// ParseDate parses a date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders "{day} {MonthName} {year}", e.g. "9 Maret 2024".
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return Placeholder
	}
	return FormatTime(t)
}

// FormatTime renders an already parsed time the same way as FormatDate.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return strconv.Itoa(t.Day()) + " " + monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// FormatPlaceDate renders "{place}, {date}".
func FormatPlaceDate(place, date string) string {
	return OrPlaceholder(place) + ", " + FormatDate(date)
}

// FormatFullName appends the patronymic with BIN for men and BINTI for women.
// An unknown gender or missing patronymic leaves the name bare.
func FormatFullName(name, patronymic, gender string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return Placeholder
	}
	patronymic = strings.TrimSpace(patronymic)
	if patronymic == "" {
		return name
	}
	switch NormalizeGender(gender) {
	case GenderMale:
		return name + " BIN " + patronymic
	case GenderFemale:
		return name + " BINTI " + patronymic
	default:
		return name
	}
}

// DeceasedTitle returns the honorific used before a deceased person's name.
func DeceasedTitle(gender string) string {
	if NormalizeGender(gender) == GenderFemale {
		return "Almarhumah"
	}
	return "Almarhum"
}

// NormalizeGender canonicalizes gender labels, returning "" when unknown.
func NormalizeGender(gender string) string {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case GenderMale, "L", "LAKI LAKI", "PRIA", "MALE":
		return GenderMale
	case GenderFemale, "P", "WANITA", "FEMALE":
		return GenderFemale
	default:
		return ""
	}
}

var numberWords = map[int]string{
	1: "satu",
	2: "dua",
	3: "tiga",
	4: "empat",
}

// NumberToWords spells out the small counts that appear in declarations.
// Values outside the table fall back to the numeral.
func NumberToWords(n int) string {
	if w, ok := numberWords[n]; ok {
		return w
	}
	return strconv.Itoa(n)
}

// CountPhrase renders "{words} ({n})", e.g. "dua (2)".
func CountPhrase(n int) string {
	return NumberToWords(n) + " (" + strconv.Itoa(n) + ")"
}

// Letter returns the 1-based alphabetic label used for nested lists: A, B, ... Z, AA.
func Letter(n int) string {
	if n < 1 {
		return Placeholder
	}
	var out []byte
	for n > 0 {
		n--
		out = append([]byte{byte('A' + n%26)}, out...)
		n /= 26
	}
	return string(out)
}

// OrPlaceholder returns s trimmed, or the placeholder when blank.
func OrPlaceholder(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return Placeholder
	}
	return s
}
