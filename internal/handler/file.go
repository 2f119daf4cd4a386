package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/service"
)

// FileNotFoundMessage is the 404 message for unknown filenames.
const FileNotFoundMessage = "File not found"

// SaveFileRequest is the body of POST /api/files. Language may be omitted when the
// extension identifies it.
type SaveFileRequest struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type SaveFileResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

type FileResponse struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

type ListFilesResponse struct {
	Files []string `json:"files"`
}

// FileHandler serves the saved-files API.
type FileHandler struct {
	files  *service.FileService
	logger *slog.Logger
}

func NewFileHandler(files *service.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		files:  files,
		logger: logger,
	}
}

// HandleSave stores code under a filename, replacing any previous version.
//
// HTTP: POST /api/files
func (h *FileHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveFileRequest
	if err := decodeJSON(w, r, maxExecuteBody, &req); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.files.Save(r.Context(), req.Filename, req.Language, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SaveFileResponse{
		Message:  "File saved successfully as " + file.Filename,
		Filename: file.Filename,
	})
}

// HandleList returns the saved filenames.
//
// HTTP: GET /api/files
func (h *FileHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	writeJSON(w, http.StatusOK, ListFilesResponse{Files: names})
}

// HandleGet loads one file.
//
// HTTP: GET /api/files/{filename}
func (h *FileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	file, err := h.files.Get(r.Context(), chi.URLParam(r, "filename"))
	if err != nil {
		h.writeFileError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FileResponse{
		Filename: file.Filename,
		Code:     file.Code,
		Language: file.Language,
	})
}

// HandleDelete removes one file.
//
// HTTP: DELETE /api/files/{filename}
func (h *FileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.files.Delete(r.Context(), chi.URLParam(r, "filename")); err != nil {
		h.writeFileError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeFileError keeps the short "File not found" message for 404s.
func (h *FileHandler) writeFileError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: FileNotFoundMessage})
		return
	}
	if !errors.Is(err, apperror.ErrValidation) {
		h.logger.Error("file request failed", slog.String("error", err.Error()))
	}
	writeError(w, err)
}
