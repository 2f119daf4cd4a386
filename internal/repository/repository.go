// Package repository declares the storage interfaces. internal/repository/sqlite implements them.
package repository

import (
	"context"

	"github.com/sakif/polyglot-playground/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type FileRepository interface {
	// Save inserts file, or replaces the code and language of the file with the same
	// filename. ID and timestamps are filled in on return.
	Save(ctx context.Context, file *model.File) error
	GetByFilename(ctx context.Context, filename string) (*model.File, error)
	// List returns one page of files ordered by filename, without their code.
	List(ctx context.Context, opts ListOptions) ([]model.File, error)
	Delete(ctx context.Context, filename string) error
}
