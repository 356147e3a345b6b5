// Package shift handles shift definitions: clock parsing, durations and the
// create/update round-trip with the backend.
package shift

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var (
	clock24 = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	clock12 = regexp.MustCompile(`^(0?[1-9]|1[0-2]):([0-5]\d)\s*([AaPp][Mm])$`)
)

// ParseClock returns minutes after midnight for "HH:MM" or "h:MM AM".
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)

	if m := clock24.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return h*60 + mins, nil
	}

	if m := clock12.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		pm := strings.EqualFold(m[3], "pm")
		switch {
		case h == 12 && !pm:
			h = 0
		case h != 12 && pm:
			h += 12
		}
		return h*60 + mins, nil
	}

	return 0, fmt.Errorf("invalid time %q: expected HH:MM or h:MM AM/PM", s)
}

// Minutes computes the length of a shift. An end at or before the start
// wraps past midnight.
func Minutes(start, end int) int {
	if end <= start {
		return minutesPerDay - start + end
	}
	return end - start
}

// DurationMinutes parses both clocks and returns the shift length.
func DurationMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	return Minutes(s, e), nil
}

func IsOvernight(start, end string) bool {
	s, err := ParseClock(start)
	if err != nil {
		return false
	}
	e, err := ParseClock(end)
	if err != nil {
		return false
	}
	return e <= s
}

func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// To12Hour renders a clock as "h:MM AM".
func To12Hour(s string) (string, error) {
	total, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	h, m := total/60, total%60

	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix), nil
}

// To24Hour renders a clock as "HH:MM".
func To24Hour(s string) (string, error) {
	total, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// FromMinutes renders minutes after midnight as "HH:MM".
func FromMinutes(total int) string {
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
