package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/model"
	"github.com/sakif/polyglot-playground/internal/repository"
)

var _ repository.FileRepository = (*DB)(nil)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// Save upserts file by filename.
//
// An existing row keeps its id and created_at; only language, code and updated_at
// change. The row is read back afterwards so the caller sees the stored values
// either way.
func (db *DB) Save(ctx context.Context, file *model.File) error {
	now := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO files (id, filename, language, code, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET
			language   = excluded.language,
			code       = excluded.code,
			updated_at = excluded.updated_at`,
		xid.New().String(),
		file.Filename,
		file.Language,
		file.Code,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving file %s: %w", file.Filename, err)
	}

	stored, err := db.GetByFilename(ctx, file.Filename)
	if err != nil {
		return fmt.Errorf("sqlite: reading back file %s: %w", file.Filename, err)
	}
	*file = *stored
	return nil
}

// GetByFilename returns apperror.ErrNotFound when no file has that name.
func (db *DB) GetByFilename(ctx context.Context, filename string) (*model.File, error) {
	var f model.File

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, filename, language, code, created_at, updated_at
		 FROM files
		 WHERE filename = ?`,
		filename,
	).Scan(&f.ID, &f.Filename, &f.Language, &f.Code, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("file", filename)
		}
		return nil, fmt.Errorf("sqlite: getting file %s: %w", filename, err)
	}

	return &f, nil
}

// List returns files ordered by filename. Code is left empty.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.File, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := max(opts.Offset, 0)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, filename, language, created_at, updated_at
		 FROM files
		 ORDER BY filename
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing files: %w", err)
	}
	defer rows.Close()

	files := make([]model.File, 0, limit)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(&f.ID, &f.Filename, &f.Language, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning file row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating files: %w", err)
	}

	return files, nil
}

// Delete removes a file by name; a missing name is apperror.ErrNotFound.
func (db *DB) Delete(ctx context.Context, filename string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM files WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("sqlite: deleting file %s: %w", filename, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("file", filename)
	}

	return nil
}
