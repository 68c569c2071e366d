package compiler

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IsPCHEligible reports whether a translation unit can be compiled against the precompiled
// umbrella header. Only the lines before the first include of the umbrella are inspected:
// another include, a macro definition, a conditional, a pragma, a using declaration, a
// namespace or an assignment there makes the unit ineligible. A unit that never includes the
// umbrella is assumed to pick it up indirectly and is eligible.
//
// An include names the umbrella when it equals it or joins with one of includeDirs to it.
// When no include resolves that way, the last include sharing the umbrella's base name is
// taken instead, so every line ahead of it is inspected.
//
// The scan is a line heuristic. It may reject units that would have worked, never the reverse.
func IsPCHEligible(r io.Reader, umbrella string, includeDirs ...string) (bool, error) {
	var lines []string
	inBlock := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var code string
		code, inBlock = stripComments(scanner.Text(), inBlock)
		lines = append(lines, strings.TrimSpace(code))
	}
	if err := scanner.Err(); err != nil {
		return false, err
	}

	first, lastSameBase := -1, -1
	for i, line := range lines {
		name, ok := includeTarget(line)
		if !ok {
			continue
		}
		if resolvesToUmbrella(name, umbrella, includeDirs) {
			first = i
			break
		}
		if sameBase(name, umbrella) {
			lastSameBase = i
		}
	}
	if first < 0 {
		first = lastSameBase
	}
	if first < 0 {
		return true, nil
	}

	for _, line := range lines[:first] {
		if disqualifies(line) {
			return false, nil
		}
	}
	return true, nil
}

// PCHEligible applies IsPCHEligible to the file at src with the configured umbrella header.
// Unreadable files are treated as ineligible.
func (o *Orchestrator) PCHEligible(src string) bool {
	if o.cfg.PCH.Header == "" {
		return false
	}
	f, err := os.Open(src) //nolint:gosec // Source paths come from the resolved config
	if err != nil {
		return false
	}
	defer f.Close() //nolint:errcheck // Read-only

	dirs := append([]string{filepath.Dir(src)}, o.cfg.IncludePaths...)
	ok, err := IsPCHEligible(f, o.cfg.PCH.Header, dirs...)
	return err == nil && ok
}

func disqualifies(line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "#") {
		// Any directive ahead of the umbrella include, not only #include/#define/#if/#pragma.
		return true
	}
	if hasKeyword(line, "using") || hasKeyword(line, "namespace") {
		return true
	}
	return hasAssignment(line)
}

func hasKeyword(line, kw string) bool {
	if !strings.HasPrefix(line, kw) {
		return false
	}
	rest := line[len(kw):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '{'
}

// hasAssignment finds a lone '=' that is not part of a comparison operator.
func hasAssignment(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] != '=' {
			continue
		}
		if i > 0 && strings.ContainsRune("=!<>", rune(line[i-1])) {
			continue
		}
		if i+1 < len(line) && line[i+1] == '=' {
			i++
			continue
		}
		return true
	}
	return false
}

// includeTarget extracts the header named by an #include directive.
func includeTarget(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	directive := strings.TrimSpace(line[1:])
	if !strings.HasPrefix(directive, "include") {
		return "", false
	}
	arg := strings.TrimSpace(directive[len("include"):])
	if len(arg) < 2 {
		return "", false
	}

	var closing byte
	switch arg[0] {
	case '"':
		closing = '"'
	case '<':
		closing = '>'
	default:
		return "", false
	}
	end := strings.IndexByte(arg[1:], closing)
	if end < 0 {
		return "", false
	}
	return arg[1 : end+1], true
}

func slashed(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func resolvesToUmbrella(name, umbrella string, dirs []string) bool {
	name, umbrella = slashed(name), slashed(umbrella)
	if name == umbrella {
		return true
	}
	for _, dir := range dirs {
		if path.Join(slashed(dir), name) == umbrella {
			return true
		}
	}
	return false
}

func sameBase(name, umbrella string) bool {
	return path.Base(slashed(name)) == path.Base(slashed(umbrella))
}

// stripComments removes line and block comments from line given whether a block comment was
// open at its start, and reports whether one is still open at its end.
func stripComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if inBlock {
			if strings.HasPrefix(line[i:], "*/") {
				inBlock = false
				i++
			}
			continue
		}
		if strings.HasPrefix(line[i:], "//") {
			break
		}
		if strings.HasPrefix(line[i:], "/*") {
			inBlock = true
			i++
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(line[i])
	}
	return b.String(), inBlock
}
