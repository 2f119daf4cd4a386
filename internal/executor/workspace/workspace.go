// Package workspace owns the ephemeral files of one execution request.
//
// LIFECYCLE:
// A Workspace is created at the start of a pipeline run and destroyed with a deferred
// Cleanup, so every exit path (success, compile error, run error, panic) removes the
// files it created:
//
//	ws := workspace.New(baseDir, logger)
//	defer ws.Cleanup()
//	src, err := ws.CreateSourceFile(code, ".c")
//
// Names are random (uuid) so concurrent requests never collide in the shared base
// directory. There is no locking: unique names are the only coordination.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

const namePrefix = "playground-"

// Workspace tracks every path created for one request.
type Workspace struct {
	baseDir string
	logger  *slog.Logger

	mu    sync.Mutex
	paths []string
}

// New creates an empty workspace rooted at baseDir. An empty baseDir means os.TempDir().
// A relative baseDir is resolved against the working directory: derived executable
// paths must contain a separator or exec would search PATH for them.
func New(baseDir string, logger *slog.Logger) *Workspace {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return &Workspace{baseDir: baseDir, logger: logger}
}

// BaseDir returns the directory new files and directories are created in.
func (w *Workspace) BaseDir() string {
	return w.baseDir
}

// CreateSourceFile writes content to a new uniquely named file ending in ext
// and registers it for cleanup.
func (w *Workspace) CreateSourceFile(content, ext string) (string, error) {
	path := filepath.Join(w.baseDir, namePrefix+uuid.NewString()+ext)
	if err := writeNew(path, content); err != nil {
		return "", fmt.Errorf("workspace: creating source file: %w", err)
	}
	w.Track(path)
	return path, nil
}

// CreateTempDirectory creates a new uniquely named directory and registers it for cleanup.
func (w *Workspace) CreateTempDirectory() (string, error) {
	path := filepath.Join(w.baseDir, namePrefix+uuid.NewString())
	if err := os.Mkdir(path, 0o700); err != nil {
		return "", fmt.Errorf("workspace: creating directory: %w", err)
	}
	w.Track(path)
	return path, nil
}

// WriteFile writes content to name inside dir, a directory this workspace created.
// The file is removed together with the directory.
func (w *Workspace) WriteFile(dir, name, content string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("workspace: invalid file name %q", name)
	}
	path := filepath.Join(dir, name)
	if err := writeNew(path, content); err != nil {
		return "", fmt.Errorf("workspace: writing %s: %w", name, err)
	}
	return path, nil
}

// Track registers a path produced by someone else (e.g. a compiler output) for cleanup.
// The path does not have to exist.
func (w *Workspace) Track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, path)
}

// Paths returns a copy of the registered paths.
func (w *Workspace) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

// Cleanup removes every registered path, newest first. Missing paths are ignored and a
// second call is a no-op. Errors are logged and returned joined.
func (w *Workspace) Cleanup() error {
	w.mu.Lock()
	paths := w.paths
	w.paths = nil
	w.mu.Unlock()

	var errs []error
	for i := len(paths) - 1; i >= 0; i-- {
		if err := os.RemoveAll(paths[i]); err != nil && !errors.Is(err, fs.ErrNotExist) {
			w.logger.Warn("workspace cleanup failed",
				slog.String("path", paths[i]),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Errorf("workspace: removing %s: %w", paths[i], err))
		}
	}
	return errors.Join(errs...)
}

// writeNew creates path exclusively; an existing file is an error, never overwritten.
func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
