package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(t.TempDir(), logger)
}

func TestCreateSourceFile(t *testing.T) {
	ws := newTestWorkspace(t)

	path, err := ws.CreateSourceFile("print('hi')\n", ".py")
	require.NoError(t, err)

	assert.Equal(t, ws.BaseDir(), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".py"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
	assert.Equal(t, []string{path}, ws.Paths())
}

func TestNew_RelativeBaseDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	for _, base := range []string{".", "sub/.."} {
		ws := New(base, logger)
		require.True(t, filepath.IsAbs(ws.BaseDir()), base)

		src, err := ws.CreateSourceFile("int main(){}", ".c")
		require.NoError(t, err)
		assert.Equal(t, dir, filepath.Dir(src))

		bin := DeriveExecutablePath(src, PlatformUnix)
		assert.True(t, filepath.IsAbs(bin), bin)
		assert.NoError(t, ws.Cleanup())
	}
}

func TestCreateSourceFile_UniqueNames(t *testing.T) {
	ws := newTestWorkspace(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		path, err := ws.CreateSourceFile("x", ".c")
		require.NoError(t, err)
		assert.False(t, seen[path], "duplicate path %s", path)
		seen[path] = true
	}
}

func TestCreateSourceFile_MissingBaseDir(t *testing.T) {
	ws := New(filepath.Join(t.TempDir(), "does", "not", "exist"), slog.Default())

	_, err := ws.CreateSourceFile("x", ".c")
	assert.Error(t, err)
	assert.Empty(t, ws.Paths(), "failed creation must not register a path")
}

func TestCreateTempDirectory(t *testing.T) {
	ws := newTestWorkspace(t)

	dir, err := ws.CreateTempDirectory()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	file, err := ws.WriteFile(dir, "Main.java", "class Main {}")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Main.java"), file)
}

func TestWriteFile_RejectsPathTraversal(t *testing.T) {
	ws := newTestWorkspace(t)
	dir, err := ws.CreateTempDirectory()
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.java", "sub/Main.java"} {
		_, err := ws.WriteFile(dir, name, "x")
		assert.Error(t, err, "name %q should be rejected", name)
	}
}

func TestCleanup_RemovesEverything(t *testing.T) {
	ws := newTestWorkspace(t)

	src, err := ws.CreateSourceFile("int main(){}", ".c")
	require.NoError(t, err)
	bin := DeriveExecutablePath(src, PlatformUnix)
	require.NoError(t, os.WriteFile(bin, []byte("binary"), 0o700))
	ws.Track(bin)

	dir, err := ws.CreateTempDirectory()
	require.NoError(t, err)
	_, err = ws.WriteFile(dir, "Main.java", "class Main {}")
	require.NoError(t, err)

	require.NoError(t, ws.Cleanup())

	for _, p := range []string{src, bin, dir} {
		_, err := os.Stat(p)
		assert.True(t, os.IsNotExist(err), "%s should be removed", p)
	}
	entries, err := os.ReadDir(ws.BaseDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanup_ToleratesMissingAndIsIdempotent(t *testing.T) {
	ws := newTestWorkspace(t)

	// An artifact the compiler never produced.
	ws.Track(filepath.Join(ws.BaseDir(), "never-built"))
	src, err := ws.CreateSourceFile("x", ".go")
	require.NoError(t, err)
	require.NoError(t, os.Remove(src))

	assert.NoError(t, ws.Cleanup())
	assert.NoError(t, ws.Cleanup())
	assert.Empty(t, ws.Paths())
}

func TestWorkspaces_ConcurrentUse(t *testing.T) {
	base := t.TempDir()
	logger := slog.Default()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws := New(base, logger)
			defer ws.Cleanup()
			if _, err := ws.CreateSourceFile("x", ".py"); err != nil {
				t.Errorf("CreateSourceFile: %v", err)
			}
			if _, err := ws.CreateTempDirectory(); err != nil {
				t.Errorf("CreateTempDirectory: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries, "every workspace should clean up after itself")
}

func TestDeriveExecutablePath(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		platform Platform
		want     string
	}{
		{"c on unix", "/tmp/playground-1.c", PlatformUnix, "/tmp/playground-1"},
		{"cpp on unix", "/tmp/playground-1.cpp", PlatformUnix, "/tmp/playground-1"},
		{"go on windows", `C:\tmp\playground-1.go`, PlatformWindows, `C:\tmp\playground-1.exe`},
		{"only the last extension is replaced", "/tmp/a.c.cpp", PlatformUnix, "/tmp/a.c"},
		{"extension text inside the directory is kept", "/tmp/x.c/prog.c", PlatformUnix, "/tmp/x.c/prog"},
		{"no extension on unix", "/tmp/prog", PlatformUnix, "/tmp/prog.bin"},
		{"dotfile on unix", "/tmp/.c", PlatformUnix, "/tmp/.c.bin"},
		{"exe source on windows", "prog.exe", PlatformWindows, "prog.bin.exe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveExecutablePath(tt.source, tt.platform))
		})
	}
}

func TestDeriveExecutablePath_NeverCollides(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		stem := rapid.StringMatching(`[a-zA-Z0-9_\-]{1,20}`).Draw(rt, "stem")
		ext := rapid.SampledFrom([]string{"", ".c", ".cpp", ".go", ".swift", ".exe", ".EXE"}).Draw(rt, "ext")
		platform := rapid.SampledFrom([]Platform{PlatformUnix, PlatformWindows}).Draw(rt, "platform")

		source := filepath.Join("/tmp", "work", stem+ext)
		got := DeriveExecutablePath(source, platform)

		if got == source {
			rt.Fatalf("executable path %q collides with source", got)
		}
		if filepath.Dir(got) != filepath.Dir(source) {
			rt.Fatalf("executable %q left the source directory %q", got, filepath.Dir(source))
		}
		if platform == PlatformWindows && !strings.HasSuffix(got, ".exe") {
			rt.Fatalf("windows executable %q lacks .exe", got)
		}
		if DeriveExecutablePath(source, platform) != got {
			rt.Fatalf("derivation is not deterministic")
		}
	})
}
