package workspace

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Platform selects the executable naming convention.
type Platform int

const (
	// PlatformUnix executables have no suffix.
	PlatformUnix Platform = iota
	// PlatformWindows executables end in ".exe".
	PlatformWindows
)

// HostPlatform returns the platform this binary runs on.
func HostPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformUnix
}

func (p Platform) String() string {
	if p == PlatformWindows {
		return "windows"
	}
	return "unix"
}

// DeriveExecutablePath maps a source path to the path of its compiled executable:
// same directory and stem, extension replaced by ".exe" on Windows and dropped elsewhere.
//
//	/tmp/playground-1234.c   → /tmp/playground-1234        (unix)
//	/tmp/playground-1234.c   → /tmp/playground-1234.exe    (windows)
//
// Paths with no stem to keep (no extension, or a bare dotfile like ".c") get a ".bin"
// marker so the result never collides with the source file.
func DeriveExecutablePath(sourcePath string, platform Platform) string {
	ext := filepath.Ext(sourcePath)
	if ext == filepath.Base(sourcePath) {
		ext = ""
	}
	stem := strings.TrimSuffix(sourcePath, ext)

	if platform == PlatformWindows {
		if strings.EqualFold(ext, ".exe") {
			return stem + ".bin.exe"
		}
		return stem + ".exe"
	}
	if ext == "" {
		return sourcePath + ".bin"
	}
	return stem
}
