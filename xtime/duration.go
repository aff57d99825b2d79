package xtime

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// durationPart matches a single number and its unit, e.g. "1.5d" or "30s".
var durationPart = regexp.MustCompile(`(\d*\.\d+|\d+)([^\d.]*)`)

// ParseDuration parses a duration string that may use the day ("d" or "D"),
// week ("w" or "W"), month ("M") and year ("y" or "Y") units, in addition to
// the units supported by time.ParseDuration. E.g. "10d", "-1.5w" or "3Y4M5d".
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}

	var (
		total    time.Duration
		consumed int
	)
	for _, m := range durationPart.FindAllStringSubmatch(s, -1) {
		consumed += len(m[0])

		var mult time.Duration
		switch m[2] {
		case "d", "D":
			mult = day
		case "w", "W":
			mult = week
		case "M":
			mult = month
		case "y", "Y":
			mult = year
		}

		if mult == 0 {
			dur, err := time.ParseDuration(m[0])
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q: %w", orig, err)
			}
			total += dur
			continue
		}

		// Parse the number as hours to support fractions.
		dur, err := time.ParseDuration(m[1] + "h")
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", orig, err)
		}
		total += dur * (mult / time.Hour)
	}

	if consumed != len(s) {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}

	if neg {
		total = -total
	}

	return total, nil
}

// FormatDuration formats d using the units supported by ParseDuration. d is
// first rounded to round, and units smaller than round are omitted.
// E.g. "1w3d", "2h30m" or "-1Y".
func FormatDuration(d, round time.Duration) string {
	if round > 0 {
		d = d.Round(round)
	}
	if d == 0 {
		return "0s"
	}

	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}

	units := []struct {
		size time.Duration
		name string
	}{
		{year, "Y"}, {month, "M"}, {week, "w"}, {day, "d"},
		{time.Hour, "h"}, {time.Minute, "m"}, {time.Second, "s"},
		{time.Millisecond, "ms"},
	}
	for _, u := range units {
		if d < u.size || u.size < round {
			continue
		}
		fmt.Fprintf(&sb, "%d%s", d/u.size, u.name)
		d %= u.size
	}
	if d > 0 && round < time.Millisecond {
		fmt.Fprintf(&sb, "%dns", d)
	}

	return sb.String()
}
