package ports

import "go.trai.ch/kiln/internal/core/domain"

// ConfigLoader defines the interface for loading the build configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration for cwd. When path is empty the file is discovered
	// by walking up from cwd.
	Load(cwd, path string) (*domain.BuildConfig, error)

	// DiscoverRoot walks up from cwd to the directory containing kiln.yaml.
	DiscoverRoot(cwd string) (string, error)
}
