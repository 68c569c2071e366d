package compiler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

const unityPrefix = "unity_"

// Partition splits files into min(k, n) contiguous groups after sorting them by their
// canonical path relative to root. Group sizes are n/k, with the first n%k groups holding one
// extra member, so the result depends only on the set of files.
func Partition(root string, files []string, k int) [][]string {
	n := len(files)
	if n == 0 {
		return nil
	}
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	sorted := sortByRelativePath(root, files)

	size, extra := n/k, n%k
	groups := make([][]string, 0, k)
	start := 0
	for i := range k {
		end := start + size
		if i < extra {
			end++
		}
		groups = append(groups, sorted[start:end:end])
		start = end
	}
	return groups
}

func sortByRelativePath(root string, files []string) []string {
	canonicalRoot := fs.Canonical(root)

	type keyed struct {
		key  string
		path string
	}
	items := make([]keyed, len(files))
	for i, f := range files {
		c := fs.Canonical(f)
		key := c
		if rel, err := filepath.Rel(canonicalRoot, c); err == nil {
			key = rel
		}
		items[i] = keyed{key: filepath.ToSlash(key), path: f}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key < items[j].key
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.path
	}
	return out
}

// RenderAggregate returns the content of a unity aggregate: a header comment listing the
// members, then one #include per member in order.
func RenderAggregate(index int, members []string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "// Unity chunk %d. Generated by kiln; do not edit.\n", index)
	b.WriteString("// Members:\n")
	for _, m := range members {
		fmt.Fprintf(&b, "//   %s\n", filepath.ToSlash(m))
	}
	b.WriteString("\n")
	for _, m := range members {
		fmt.Fprintf(&b, "#include \"%s\"\n", filepath.ToSlash(m))
	}
	return b.Bytes()
}

// WriteChunks writes one aggregate per group into unityDir and returns the chunks with their
// object paths under objDir. An aggregate whose content is unchanged is left untouched, so
// its modification time survives. Aggregates left over from a larger chunk count are removed.
func WriteChunks(unityDir, objDir string, groups [][]string) ([]domain.UnityChunk, error) {
	chunks := make([]domain.UnityChunk, 0, len(groups))
	keep := make(map[string]bool, len(groups))

	for i, members := range groups {
		name := fmt.Sprintf("%s%d", unityPrefix, i)
		aggregate := filepath.Join(unityDir, name+".cpp")
		keep[filepath.Base(aggregate)] = true

		if _, err := fs.WriteIfChanged(aggregate, RenderAggregate(i, members)); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrUnityWriteFailed.Error()), "path", aggregate)
		}

		chunks = append(chunks, domain.UnityChunk{
			Index:         i,
			Members:       members,
			AggregatePath: aggregate,
			ObjectPath:    filepath.Join(objDir, name+".o"),
		})
	}

	pruneStaleChunks(unityDir, keep)
	return chunks, nil
}

func pruneStaleChunks(unityDir string, keep map[string]bool) {
	entries, err := os.ReadDir(unityDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || keep[name] || !strings.HasPrefix(name, unityPrefix) || filepath.Ext(name) != ".cpp" {
			continue
		}
		_ = os.Remove(filepath.Join(unityDir, name))
	}
}
