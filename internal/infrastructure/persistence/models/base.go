package models

import "time"

// ToMillis converts a timestamp to the stored unix millisecond form
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts a stored unix millisecond value back to UTC
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
