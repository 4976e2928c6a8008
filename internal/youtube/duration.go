package youtube

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseISODuration converts an ISO-8601 duration as used by the Data API
// (e.g. "PT5M30S", "P1DT2H") into whole seconds. Fractional parts are not
// produced by the API and are rejected.
func ParseISODuration(s string) (int64, error) {
	if len(s) == 0 || s[0] != 'P' {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
	}

	var total int64
	inTime := false
	num := strings.Builder{}

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'T':
			inTime = true
		default:
			if num.Len() == 0 {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q", s)
			}
			n, err := strconv.ParseInt(num.String(), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", s, err)
			}
			num.Reset()

			var unit int64
			switch r {
			case 'D':
				unit = 86400
			case 'H':
				unit = 3600
			case 'M':
				if inTime {
					unit = 60
				} else {
					unit = 86400 * 30 // months never appear in video durations
				}
			case 'S':
				unit = 1
			case 'W':
				unit = 86400 * 7
			case 'Y':
				unit = 86400 * 365
			default:
				return 0, fmt.Errorf("invalid ISO-8601 duration %q: unknown unit %q", s, r)
			}
			total += n * unit
		}
	}

	if num.Len() != 0 {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q: trailing digits", s)
	}
	return total, nil
}
