package domain

import "time"

const (
	// CacheKeyLen is the number of hex characters in a link cache key.
	CacheKeyLen = 16

	secondsPerDay = 24 * 60 * 60
)

// LinkCacheEntry is one cached linked executable in the link directory.
type LinkCacheEntry struct {
	Path      string
	Subject   string
	CacheKey  string
	SizeBytes int64
	ModTime   time.Time
}

// AgeDays returns the entry's age relative to now in fractional days.
func (e LinkCacheEntry) AgeDays(now time.Time) float64 {
	return now.Sub(e.ModTime).Seconds() / secondsPerDay
}

// CachePolicy bounds the link cache. A cap of zero or less disables its layer.
type CachePolicy struct {
	MaxVersionsPerSubject int
	MaxAgeDays            int
	MaxTotalSizeBytes     int64
	PreserveAtLeastOne    bool
}

// GCStats summarizes one garbage collection run. A dry run reports the same values as a real one.
type GCStats struct {
	FilesRemoved int
	BytesFreed   int64
	FilesKept    int
	BytesKept    int64
	Removed      []LinkCacheEntry
	Kept         []LinkCacheEntry
}

// ExecutableExt returns the executable suffix used on goos.
func ExecutableExt(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
