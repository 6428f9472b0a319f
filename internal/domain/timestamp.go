package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTimestamp renders t as the decimal epoch-seconds sort key.
func FormatTimestamp(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// ParseTimestamp accepts decimal epoch seconds or an RFC 3339 string and
// returns epoch seconds. Older clients wrote RFC 3339 values.
func ParseTimestamp(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("domain: empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("domain: negative timestamp %q", raw)
		}
		return n, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("domain: unrecognized timestamp %q", raw)
	}
	return t.Unix(), nil
}
