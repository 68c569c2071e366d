package ports

// Toolchain builds the argument vectors of the compiler, archiver and linker.
//
//go:generate mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// CompileCommand compiles src into obj, using the precompiled header pch when it is not empty.
	CompileCommand(src, obj, pch string) []string

	// PrecompileCommand precompiles header into out.
	PrecompileCommand(header, out string) []string

	// PrecompiledPath returns where the precompiled form of header lives inside dir.
	PrecompiledPath(header, dir string) string

	// ArchiveCommand archives objs into the static library lib.
	ArchiveCommand(lib string, objs []string) []string

	// LinkCommand links objs and lib into exe with the given platform flags.
	LinkCommand(exe string, objs []string, lib string, flags []string) []string

	// Fingerprint returns the configuration-only part of every compile command,
	// independent of source content.
	Fingerprint() []string
}
