package employee

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// ISODateLayout is the stored representation and the native date picker value.
	ISODateLayout = "2006-01-02"
	// DisplayDateLayout is the human representation, e.g. 07-Mar-1990.
	DisplayDateLayout = "02-Jan-2006"
	// displayParseLayout also accepts a single-digit day.
	displayParseLayout = "2-Jan-2006"

	// EarliestBirthDate is the lower bound for date of birth.
	EarliestBirthDate = "1900-01-01"
	// MinimumAge in completed years.
	MinimumAge = 18

	// PlaceholderCode stands in for a blank employee code in file names.
	PlaceholderCode = "EMP"
	// FallbackExtension is used when a file name has no usable extension.
	FallbackExtension = "jpg"
	maxExtensionLen   = 5

	// SelectPlaceholder labels the empty select option.
	SelectPlaceholder = "Select..."
)

var (
	ErrInvalidDate = errors.New("invalid date")

	//nolint:staticcheck // shown to users as-is
	ErrBirthDateTooEarly = errors.New("Date of birth cannot be earlier than year 1900.")
	//nolint:staticcheck // shown to users as-is
	ErrUnderage = errors.New("Employee must be at least 18 years old.")
)

var earliestBirth = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// ParseDate accepts YYYY-MM-DD or dd-Mon-yyyy (month name in any case) and
// returns the ISO form.
func ParseDate(raw string) (string, error) {
	t, err := parseDate(raw)
	if err != nil {
		return "", err
	}
	return t.Format(ISODateLayout), nil
}

func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(ISODateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(displayParseLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDisplayDate renders an ISO date as dd-Mon-yyyy. Unparseable input yields "".
func FormatDisplayDate(iso string) string {
	t, err := time.Parse(ISODateLayout, strings.TrimSpace(iso))
	if err != nil {
		return ""
	}
	return t.Format(DisplayDateLayout)
}

// CheckBirthDate validates an ISO date of birth against now.
// The age is in completed years and the check must run at edit time.
func CheckBirthDate(iso string, now time.Time) error {
	dob, err := time.Parse(ISODateLayout, strings.TrimSpace(iso))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, iso)
	}
	if dob.Before(earliestBirth) {
		return ErrBirthDateTooEarly
	}
	if AgeOn(dob, now) < MinimumAge {
		return ErrUnderage
	}
	return nil
}

// AgeOn returns the completed years between dob and now by calendar date.
func AgeOn(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// LatestBirthDate is the most recent ISO date of birth accepted on now.
// A Feb 29 anniversary in a non-leap target year maps to Feb 28.
func LatestBirthDate(now time.Time) string {
	y := now.Year() - MinimumAge
	m, d := now.Month(), now.Day()
	if m == time.February && d == 29 && !isLeap(y) {
		d = 28
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Format(ISODateLayout)
}

func isLeap(y int) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

// FileDisplayName synthesizes the draft name of an uploaded file:
// {code}.{ext} for the photo, sig-{code}.{ext} for the signature.
func FileDisplayName(role FileRole, employeeCode, originalName string) string {
	code := strings.TrimSpace(employeeCode)
	if code == "" {
		code = PlaceholderCode
	}
	base := code
	if role == RoleSignature {
		base = "sig-" + code
	}
	return base + "." + fileExtension(originalName)
}

func fileExtension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return FallbackExtension
	}
	ext := strings.ToLower(strings.TrimSpace(name[i+1:]))
	if ext == "" || utf8.RuneCountInString(ext) > maxExtensionLen {
		return FallbackExtension
	}
	return ext
}

var verbatimOption = regexp.MustCompile(`^[A-Z0-9+-]+$`)

// OptionLabel formats a raw select option for display. Codes such as blood
// groups are kept verbatim.
func OptionLabel(option string) string {
	if option == "" {
		return SelectPlaceholder
	}
	if verbatimOption.MatchString(option) {
		return option
	}
	r, size := utf8.DecodeRuneInString(option)
	return string(unicode.ToUpper(r)) + option[size:]
}
