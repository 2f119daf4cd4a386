package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/model"
	"github.com/sakif/polyglot-playground/internal/repository"
)

// Each test gets its own ":memory:" database, destroyed on Close.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func saveFile(t *testing.T, db *DB, filename, language, code string) *model.File {
	t.Helper()
	f := &model.File{Filename: filename, Language: language, Code: code}
	require.NoError(t, db.Save(context.Background(), f))
	return f
}

func TestSave_Insert(t *testing.T) {
	db := newTestDB(t)

	f := saveFile(t, db, "hello.py", "python", "print('hello')")

	assert.NotEmpty(t, f.ID)
	assert.False(t, f.CreatedAt.IsZero())
	assert.False(t, f.UpdatedAt.IsZero())

	got, err := db.GetByFilename(context.Background(), "hello.py")
	require.NoError(t, err)
	assert.Equal(t, f.ID, got.ID)
	assert.Equal(t, "python", got.Language)
	assert.Equal(t, "print('hello')", got.Code)
}

func TestSave_UpsertKeepsIdentity(t *testing.T) {
	db := newTestDB(t)

	first := saveFile(t, db, "main.c", "c", "int main(){}")
	time.Sleep(5 * time.Millisecond)
	second := saveFile(t, db, "main.c", "cpp", "int main(){return 0;}")

	assert.Equal(t, first.ID, second.ID, "same filename keeps the same row")
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "cpp", second.Language)
	assert.Equal(t, "int main(){return 0;}", second.Code)

	files, err := db.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestGetByFilename_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByFilename(context.Background(), "missing.go")

	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestSave_PreservesCodeExactly(t *testing.T) {
	db := newTestDB(t)
	code := "line1\n\ttabbed\r\nunicode: λ 日本\n'quotes' \"double\" ; DROP TABLE files; --"

	saveFile(t, db, "weird.txt", "python", code)

	got, err := db.GetByFilename(context.Background(), "weird.txt")
	require.NoError(t, err)
	assert.Equal(t, code, got.Code)
}

func TestList(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"c.py", "a.py", "b.py", "d.py", "e.py"} {
		saveFile(t, db, name, "python", "pass")
	}

	t.Run("ordered by filename", func(t *testing.T) {
		files, err := db.List(context.Background(), repository.ListOptions{})
		require.NoError(t, err)

		names := make([]string, len(files))
		for i, f := range files {
			names[i] = f.Filename
		}
		assert.Equal(t, []string{"a.py", "b.py", "c.py", "d.py", "e.py"}, names)
		assert.Empty(t, files[0].Code, "list does not load code")
		assert.Equal(t, "python", files[0].Language)
		assert.NotEmpty(t, files[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		files, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, "c.py", files[0].Filename)
		assert.Equal(t, "d.py", files[1].Filename)
	})

	t.Run("negative offset is treated as zero", func(t *testing.T) {
		files, err := db.List(context.Background(), repository.ListOptions{Limit: 1, Offset: -5})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "a.py", files[0].Filename)
	})
}

func TestList_Empty(t *testing.T) {
	db := newTestDB(t)

	files, err := db.List(context.Background(), repository.ListOptions{})

	require.NoError(t, err)
	assert.NotNil(t, files, "empty result should be an empty slice, not nil")
	assert.Empty(t, files)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	saveFile(t, db, "gone.java", "java", "public class Gone {}")

	require.NoError(t, db.Delete(context.Background(), "gone.java"))

	_, err := db.GetByFilename(context.Background(), "gone.java")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	err = db.Delete(context.Background(), "gone.java")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestNew_FileDatabasePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "playground.db")

	db, err := New(path)
	require.NoError(t, err)
	saveFile(t, db, "kept.swift", "swift", "print(1)")
	require.NoError(t, db.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByFilename(context.Background(), "kept.swift")
	require.NoError(t, err)
	assert.Equal(t, "print(1)", got.Code)
	assert.NoError(t, reopened.Ping())
}

func TestSave_Concurrent(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "concurrent.db"))
	require.NoError(t, err)
	defer db.Close()

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			errs <- db.Save(context.Background(), &model.File{
				Filename: fmt.Sprintf("f%02d.py", i%5),
				Language: "python",
				Code:     fmt.Sprint(i),
			})
		}(i)
	}
	for i := 0; i < 20; i++ {
		assert.NoError(t, <-errs)
	}

	files, err := db.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, files, 5)
}
