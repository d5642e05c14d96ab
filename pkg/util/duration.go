package util

import (
	"strconv"
	"time"
)

// ParseSecondsOrDuration accepts a bare integer as seconds ("30") or a Go
// duration string ("30s", "5m").
func ParseSecondsOrDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
