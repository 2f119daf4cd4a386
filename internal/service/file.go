// Package service holds the business rules between the HTTP handlers and storage.
//
//	Handler (HTTP) → Service (validation, rules) → Repository (SQL)
//
// Services accept plain values rather than *http.Request and return apperror values
// rather than status codes, so the CLI and the handlers share them unchanged.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/model"
	"github.com/sakif/polyglot-playground/internal/repository"
)

const (
	MaxFilenameLength = 100
	MaxCodeLength     = 100000 // ~100KB of source

	listPageSize = 500
)

// LanguageDetector maps a filename to a language tag by its extension.
type LanguageDetector func(filename string) (string, bool)

// FileService validates and stores editor files.
type FileService struct {
	repo   repository.FileRepository
	detect LanguageDetector
	logger *slog.Logger
}

func NewFileService(repo repository.FileRepository, detect LanguageDetector, logger *slog.Logger) *FileService {
	return &FileService{
		repo:   repo,
		detect: detect,
		logger: logger,
	}
}

// Save creates or replaces the file called filename. An empty language is inferred
// from the extension.
func (s *FileService) Save(ctx context.Context, filename, language, code string) (*model.File, error) {
	filename, err := ValidateFilename(filename)
	if err != nil {
		return nil, err
	}
	if len(code) > MaxCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}

	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" && s.detect != nil {
		language, _ = s.detect(filename)
	}
	if language == "" {
		return nil, apperror.ValidationFailed("language",
			"language is required when it cannot be inferred from the file extension")
	}

	file := &model.File{
		Filename: filename,
		Language: language,
		Code:     code,
	}
	if err := s.repo.Save(ctx, file); err != nil {
		s.logger.Error("failed to save file",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving file: %w", err)
	}

	s.logger.Info("file saved",
		slog.String("filename", file.Filename),
		slog.String("language", file.Language),
		slog.Int("bytes", len(file.Code)),
	)
	return file, nil
}

// Get returns apperror.ErrNotFound for unknown names.
func (s *FileService) Get(ctx context.Context, filename string) (*model.File, error) {
	filename, err := ValidateFilename(filename)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByFilename(ctx, filename)
}

// List returns every saved file ordered by name, paging through the repository
// until it runs dry. Code is not loaded.
func (s *FileService) List(ctx context.Context) ([]model.File, error) {
	files := make([]model.File, 0)
	for {
		page, err := s.repo.List(ctx, repository.ListOptions{Limit: listPageSize, Offset: len(files)})
		if err != nil {
			s.logger.Error("failed to list files", slog.String("error", err.Error()))
			return nil, fmt.Errorf("listing files: %w", err)
		}
		files = append(files, page...)
		if len(page) < listPageSize {
			return files, nil
		}
	}
}

func (s *FileService) Delete(ctx context.Context, filename string) error {
	filename, err := ValidateFilename(filename)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, filename); err != nil {
		return err
	}

	s.logger.Info("file deleted", slog.String("filename", filename))
	return nil
}

// ValidateFilename trims name and rejects anything that is not a plain file name:
// saved files are looked up by name and must never address a path.
func ValidateFilename(name string) (string, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return "", apperror.ValidationFailed("filename", "filename is required")
	case len(name) > MaxFilenameLength:
		return "", apperror.ValidationFailed("filename",
			fmt.Sprintf("filename must be %d characters or less", MaxFilenameLength))
	case strings.ContainsAny(name, `/\`):
		return "", apperror.ValidationFailed("filename", "filename must not contain path separators")
	case strings.Contains(name, ".."), name == ".":
		return "", apperror.ValidationFailed("filename", "filename must not contain '..'")
	case strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }):
		return "", apperror.ValidationFailed("filename", "filename must not contain control characters")
	}
	return name, nil
}
