package compiler

import (
	"encoding/hex"
	"io"
	"os"
	"slices"

	"github.com/zeebo/blake3"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// LinkKey identifies a linked executable by the content of the static library, the content
// of the target objects and the link flag set. It is the first 16 hex characters of a BLAKE3
// digest; flag order does not matter, object order does.
func LinkKey(library string, objects, flags []string) (string, error) {
	h := blake3.New()

	if err := writeContentDigest(h, library); err != nil {
		return "", err
	}
	_, _ = h.Write([]byte{0})

	for _, obj := range objects {
		if err := writeContentDigest(h, obj); err != nil {
			return "", err
		}
	}
	_, _ = h.Write([]byte{0})

	sorted := slices.Clone(flags)
	slices.Sort(sorted)
	for _, f := range sorted {
		_, _ = h.WriteString(f)
		_, _ = h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))[:domain.CacheKeyLen], nil
}

func writeContentDigest(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // Build outputs under the build dir
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Read-only

	fh := blake3.New()
	if _, err := io.Copy(fh, f); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}
	_, err = w.Write(fh.Sum(nil))
	return err
}
