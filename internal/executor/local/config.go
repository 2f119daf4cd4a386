package local

import (
	"time"

	"github.com/sakif/polyglot-playground/internal/executor/pipeline"
	"github.com/sakif/polyglot-playground/internal/executor/workspace"
)

// Config holds the configuration for running code on the host.
type Config struct {
	// Timeout is the wall-clock limit for each spawned process (compile and run separately).
	Timeout time.Duration
	// WorkDir is where per-request files are created. Empty means os.TempDir().
	WorkDir string
	// Toolchains names the compiler and interpreter binaries.
	Toolchains pipeline.Toolchains
	// LanguagesFile optionally overrides the built-in commands (YAML). Empty means none.
	LanguagesFile string
	// Platform decides compiled executable names.
	Platform workspace.Platform
}

// DefaultConfig uses a 10 second timeout and resolves toolchains through PATH.
func DefaultConfig() Config {
	return Config{
		Timeout:    10 * time.Second,
		Toolchains: pipeline.DefaultToolchains(),
		Platform:   workspace.HostPlatform(),
	}
}
