// Package domain contains the core types of the build cache.
package domain

import "time"

// FingerprintEntry is the last observed state of one tracked file.
type FingerprintEntry struct {
	// ModificationTime is the file's mtime in fractional Unix seconds.
	ModificationTime float64 `json:"modification_time"`
	// ContentHash is the hex content digest recorded at ModificationTime.
	ContentHash string `json:"content_hash"`
}

// Seconds converts t to fractional Unix seconds, the unit persisted in cache files.
func Seconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromSeconds converts fractional Unix seconds back to a time.
func FromSeconds(s float64) time.Time {
	return time.Unix(0, int64(s*float64(time.Second)))
}
