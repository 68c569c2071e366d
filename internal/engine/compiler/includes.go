package compiler

import (
	"bufio"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// HeaderClosure returns files followed by every header reachable from them through #include
// lines that resolve to an existing file. Quoted includes are searched next to the including
// file first, then along dirs; angle includes along dirs only. Headers that resolve nowhere,
// such as system headers, are left out.
//
// Conditional blocks are not evaluated, so the set can be larger than what the compiler reads.
func HeaderClosure(files, dirs []string) []string {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[filepath.Clean(f)] = true
	}

	var headers []string
	queue := slices.Clone(files)
	for len(queue) > 0 {
		from := queue[0]
		queue = queue[1:]

		for _, inc := range scanIncludes(from) {
			resolved, ok := resolveInclude(inc, from, dirs)
			if !ok || seen[resolved] {
				continue
			}
			seen[resolved] = true
			headers = append(headers, resolved)
			queue = append(queue, resolved)
		}
	}

	slices.Sort(headers)
	return append(slices.Clone(files), headers...)
}

// trackedFiles is what a shared artifact built from files depends on.
func (o *Orchestrator) trackedFiles(files ...string) []string {
	return HeaderClosure(files, o.cfg.IncludePaths)
}

type include struct {
	name   string
	quoted bool
}

// scanIncludes lists the includes of an unreadable file as none.
func scanIncludes(file string) []include {
	f, err := os.Open(file) //nolint:gosec // Paths come from the resolved config and its includes
	if err != nil {
		return nil
	}
	defer f.Close() //nolint:errcheck // Read-only

	var incs []include
	inBlock := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var code string
		code, inBlock = stripComments(scanner.Text(), inBlock)
		line := strings.TrimSpace(code)
		if name, ok := includeTarget(line); ok {
			quoted := strings.Contains(line, "\""+name+"\"")
			incs = append(incs, include{name: name, quoted: quoted})
		}
	}
	return incs
}

func resolveInclude(inc include, from string, dirs []string) (string, bool) {
	name := filepath.FromSlash(inc.name)
	if filepath.IsAbs(name) {
		return existingFile(name)
	}

	candidates := make([]string, 0, len(dirs)+1)
	if inc.quoted {
		candidates = append(candidates, filepath.Dir(from))
	}
	candidates = append(candidates, dirs...)

	for _, dir := range candidates {
		if p, ok := existingFile(filepath.Join(dir, name)); ok {
			return p, true
		}
	}
	return "", false
}

func existingFile(p string) (string, bool) {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return filepath.Clean(p), true
}
