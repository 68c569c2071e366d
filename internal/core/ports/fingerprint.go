package ports

import "time"

// FingerprintStore decides whether a tracked file changed relative to an artifact timestamp.
//
//go:generate mockgen -source=fingerprint.go -destination=mocks/mock_fingerprint.go -package=mocks
type FingerprintStore interface {
	// HasChanged reports whether path changed since reference.
	// It returns an error wrapping fs.ErrNotExist when path does not exist.
	HasChanged(path string, reference time.Time) (bool, error)
}
