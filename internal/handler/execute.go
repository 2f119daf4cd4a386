package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/executor"
	"github.com/sakif/polyglot-playground/internal/service"
)

const (
	// DefaultLanguage is used when a request omits the language.
	DefaultLanguage = "python"

	// NoCodeMessage is returned for blank submissions.
	NoCodeMessage = "No code provided"

	// JSON escaping can grow the body well past the code length; leave headroom.
	maxExecuteBody = 8 * service.MaxCodeLength
)

// ExecuteRequest is the body of POST /api/execute.
type ExecuteRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ExecuteResponse carries the program's stdout as output and stderr as error.
// A non-empty error means the run failed; the status code stays 200 either way.
type ExecuteResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
}

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	exec   executor.Executor
	logger *slog.Logger
}

func NewExecuteHandler(exec executor.Executor, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:   exec,
		logger: logger,
	}
}

// HandleExecute compiles and runs the submitted code.
//
// HTTP: POST /api/execute
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := decodeJSON(w, r, maxExecuteBody, &req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		writeJSON(w, http.StatusOK, ExecuteResponse{Error: NoCodeMessage})
		return
	}
	if len(req.Code) > service.MaxCodeLength {
		writeError(w, apperror.ValidationFailed("code", "code is too long"))
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = DefaultLanguage
	}

	result := h.exec.Execute(r.Context(), executor.ExecutionRequest{
		Code:     req.Code,
		Language: req.Language,
	})

	writeJSON(w, http.StatusOK, ExecuteResponse{
		Output: result.Stdout,
		Error:  result.Stderr,
	})
}

// LanguageLister lists the language tags the executor recognises.
type LanguageLister interface {
	Languages() []string
}

// LanguagesResponse is the body of GET /api/languages.
type LanguagesResponse struct {
	Languages []string `json:"languages"`
}

// HandleLanguages returns a handler for GET /api/languages.
func HandleLanguages(lister LanguageLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, LanguagesResponse{Languages: lister.Languages()})
	}
}
