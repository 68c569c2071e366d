// Package toolchain builds compiler, archiver and linker command lines.
package toolchain

import (
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Style selects the command-line dialect.
type Style int

const (
	// GNU covers gcc, clang and compatible drivers.
	GNU Style = iota
	// MSVC covers cl.exe, lib.exe and link.exe.
	MSVC
)

// String returns the dialect name.
func (s Style) String() string {
	if s == MSVC {
		return "msvc"
	}
	return "gnu"
}

// Toolchain implements ports.Toolchain.
type Toolchain struct {
	style    Style
	compiler []string
	archiver []string
	linker   []string
	common   []string
}

var _ ports.Toolchain = (*Toolchain)(nil)

// New builds a Toolchain from cfg. The dialect follows the compiler's name; missing tools
// default to the dialect's usual archiver and to the compiler as linker.
func New(cfg *domain.BuildConfig) *Toolchain {
	compiler := slices.Clone(cfg.Toolchain.Compiler)
	if len(compiler) == 0 {
		compiler = []string{"c++"}
	}
	style := Detect(compiler[0])

	archiver := slices.Clone(cfg.Toolchain.Archiver)
	linker := slices.Clone(cfg.Toolchain.Linker)
	switch style {
	case MSVC:
		if len(archiver) == 0 {
			archiver = []string{"lib", "/nologo"}
		}
		if len(linker) == 0 {
			linker = []string{"link", "/nologo"}
		}
	default:
		if len(archiver) == 0 {
			archiver = []string{"ar", "rcs"}
		}
		if len(linker) == 0 {
			linker = slices.Clone(compiler)
		}
	}

	t := &Toolchain{
		style:    style,
		compiler: compiler,
		archiver: archiver,
		linker:   linker,
	}
	t.common = t.commonFlags(cfg)
	return t
}

// Detect returns the dialect of the compiler executable.
func Detect(compiler string) Style {
	base := strings.ToLower(filepath.Base(strings.ReplaceAll(compiler, `\`, "/")))
	switch strings.TrimSuffix(base, ".exe") {
	case "cl", "clang-cl":
		return MSVC
	default:
		return GNU
	}
}

// Style returns the dialect in use.
func (t *Toolchain) Style() Style {
	return t.style
}

func (t *Toolchain) commonFlags(cfg *domain.BuildConfig) []string {
	define, include := "-D", "-I"
	if t.style == MSVC {
		define, include = "/D", "/I"
	}

	flags := make([]string, 0, len(cfg.Defines)+len(cfg.IncludePaths)+len(cfg.Flags))
	for _, d := range cfg.Defines {
		flags = append(flags, define+d)
	}
	for _, inc := range cfg.IncludePaths {
		flags = append(flags, include+inc)
	}
	return append(flags, cfg.Flags...)
}

func (t *Toolchain) compile() []string {
	argv := slices.Clone(t.compiler)
	if t.style == MSVC {
		argv = append(argv, "/nologo")
	}
	return append(argv, t.common...)
}

// CompileCommand compiles src into obj.
func (t *Toolchain) CompileCommand(src, obj, pch string) []string {
	argv := t.compile()
	if t.style == MSVC {
		if pch != "" {
			header := strings.TrimSuffix(filepath.Base(pch), ".pch")
			argv = append(argv, "/FI"+header, "/Yu"+header, "/Fp"+pch)
		}
		return append(argv, "/c", src, "/Fo"+obj)
	}

	if pch != "" {
		// The driver picks up <header>.gch next to the named header.
		argv = append(argv, "-Winvalid-pch", "-include", strings.TrimSuffix(pch, ".gch"))
	}
	return append(argv, "-c", src, "-o", obj)
}

// PrecompileCommand precompiles header into out.
func (t *Toolchain) PrecompileCommand(header, out string) []string {
	argv := t.compile()
	if t.style == MSVC {
		name := filepath.Base(header)
		return append(argv, "/TP", "/c", header, "/Yc"+name, "/Fp"+out, "/Fo"+out+".obj")
	}
	return append(argv, "-x", "c++-header", header, "-o", out)
}

// PrecompiledPath returns <dir>/<header base>.gch, or .pch for MSVC.
func (t *Toolchain) PrecompiledPath(header, dir string) string {
	ext := ".gch"
	if t.style == MSVC {
		ext = ".pch"
	}
	return filepath.Join(dir, filepath.Base(header)+ext)
}

// ArchiveCommand archives objs into lib.
func (t *Toolchain) ArchiveCommand(lib string, objs []string) []string {
	argv := slices.Clone(t.archiver)
	if t.style == MSVC {
		argv = append(argv, "/OUT:"+lib)
	} else {
		argv = append(argv, lib)
	}
	return append(argv, objs...)
}

// LinkCommand links objs and lib into exe.
func (t *Toolchain) LinkCommand(exe string, objs []string, lib string, flags []string) []string {
	argv := slices.Clone(t.linker)
	if t.style == MSVC {
		argv = append(argv, "/OUT:"+exe)
	} else {
		argv = append(argv, "-o", exe)
	}
	argv = append(argv, objs...)
	if lib != "" {
		argv = append(argv, lib)
	}
	return append(argv, flags...)
}

// Fingerprint returns the compiler and every source-independent compile flag.
func (t *Toolchain) Fingerprint() []string {
	return t.compile()
}
