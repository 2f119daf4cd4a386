package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/model"
	"github.com/sakif/polyglot-playground/internal/repository"
)

// fakeFileRepo is an in-memory repository.FileRepository.
type fakeFileRepo struct {
	files     map[string]model.File
	saveErr   error
	listCalls int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]model.File)}
}

func (f *fakeFileRepo) Save(_ context.Context, file *model.File) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if existing, ok := f.files[file.Filename]; ok {
		file.ID = existing.ID
	} else {
		file.ID = "id-" + file.Filename
	}
	f.files[file.Filename] = *file
	return nil
}

func (f *fakeFileRepo) GetByFilename(_ context.Context, filename string) (*model.File, error) {
	file, ok := f.files[filename]
	if !ok {
		return nil, apperror.NotFound("file", filename)
	}
	return &file, nil
}

func (f *fakeFileRepo) List(_ context.Context, opts repository.ListOptions) ([]model.File, error) {
	f.listCalls++
	out := make([]model.File, 0, len(f.files))
	for _, file := range f.files {
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	out = out[min(opts.Offset, len(out)):]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakeFileRepo) Delete(_ context.Context, filename string) error {
	if _, ok := f.files[filename]; !ok {
		return apperror.NotFound("file", filename)
	}
	delete(f.files, filename)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func detectByExtension(filename string) (string, bool) {
	switch filepath.Ext(filename) {
	case ".py":
		return "python", true
	case ".java":
		return "java", true
	}
	return "", false
}

func newTestFileService(repo *fakeFileRepo) *FileService {
	return NewFileService(repo, detectByExtension, testLogger())
}

func TestFileService_Save(t *testing.T) {
	repo := newFakeFileRepo()
	svc := newTestFileService(repo)

	file, err := svc.Save(context.Background(), "  main.py  ", "", "print(1)")
	require.NoError(t, err)

	assert.Equal(t, "main.py", file.Filename, "filename is trimmed")
	assert.Equal(t, "python", file.Language, "language inferred from extension")
	assert.Equal(t, "print(1)", repo.files["main.py"].Code)
}

func TestFileService_SaveExplicitLanguageWins(t *testing.T) {
	svc := newTestFileService(newFakeFileRepo())

	file, err := svc.Save(context.Background(), "script.py", " PHP ", "<?php echo 1;")
	require.NoError(t, err)
	assert.Equal(t, "php", file.Language)
}

func TestFileService_SaveOverwrites(t *testing.T) {
	repo := newFakeFileRepo()
	svc := newTestFileService(repo)

	first, err := svc.Save(context.Background(), "Main.java", "", "public class Main {}")
	require.NoError(t, err)
	second, err := svc.Save(context.Background(), "Main.java", "", "public class Main { }")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.files, 1)
}

func TestFileService_SaveValidation(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		language  string
		code      string
		wantField string
	}{
		{"empty filename", "   ", "python", "x", "filename"},
		{"filename too long", strings.Repeat("a", MaxFilenameLength+1), "python", "x", "filename"},
		{"forward slash", "dir/main.py", "", "x", "filename"},
		{"backslash", `dir\main.py`, "", "x", "filename"},
		{"dot dot", "..main.py", "", "x", "filename"},
		{"single dot", ".", "python", "x", "filename"},
		{"control character", "ma\x00in.py", "", "x", "filename"},
		{"code too long", "main.py", "", strings.Repeat("x", MaxCodeLength+1), "code"},
		{"language not inferable", "notes.txt", "", "x", "language"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeFileRepo()
			svc := newTestFileService(repo)

			_, err := svc.Save(context.Background(), tt.filename, tt.language, tt.code)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.True(t, errors.Is(err, apperror.ErrValidation))
			assert.Equal(t, tt.wantField, appErr.Field)
			assert.Empty(t, repo.files)
		})
	}
}

func TestFileService_SaveAcceptsMaxLengths(t *testing.T) {
	svc := newTestFileService(newFakeFileRepo())
	name := strings.Repeat("a", MaxFilenameLength-3) + ".py"

	_, err := svc.Save(context.Background(), name, "", strings.Repeat("x", MaxCodeLength))
	assert.NoError(t, err)
}

func TestFileService_SaveRepositoryError(t *testing.T) {
	repo := newFakeFileRepo()
	repo.saveErr = errors.New("disk full")
	svc := newTestFileService(repo)

	_, err := svc.Save(context.Background(), "main.py", "", "x")

	require.Error(t, err)
	assert.False(t, errors.Is(err, apperror.ErrValidation))
	assert.Contains(t, err.Error(), "disk full")
}

func TestFileService_GetListDelete(t *testing.T) {
	repo := newFakeFileRepo()
	svc := newTestFileService(repo)
	ctx := context.Background()

	for _, name := range []string{"b.py", "a.py"} {
		_, err := svc.Save(ctx, name, "", "pass")
		require.NoError(t, err)
	}

	got, err := svc.Get(ctx, "a.py")
	require.NoError(t, err)
	assert.Equal(t, "pass", got.Code)

	_, err = svc.Get(ctx, "missing.py")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.Get(ctx, "../etc/passwd")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	files, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.py", files[0].Filename)

	require.NoError(t, svc.Delete(ctx, "a.py"))
	assert.True(t, errors.Is(svc.Delete(ctx, "a.py"), apperror.ErrNotFound))
}

func TestFileService_ListPagesThroughEverything(t *testing.T) {
	for _, n := range []int{0, listPageSize - 1, listPageSize, 2*listPageSize + 7} {
		repo := newFakeFileRepo()
		for i := range n {
			name := fmt.Sprintf("f%05d.py", i)
			repo.files[name] = model.File{Filename: name}
		}

		files, err := newTestFileService(repo).List(context.Background())

		require.NoError(t, err)
		require.Len(t, files, n)
		if n > 0 {
			assert.Equal(t, "f00000.py", files[0].Filename)
			assert.Equal(t, fmt.Sprintf("f%05d.py", n-1), files[n-1].Filename)
		}
		assert.Equal(t, n/listPageSize+1, repo.listCalls, "n=%d", n)
	}
}
