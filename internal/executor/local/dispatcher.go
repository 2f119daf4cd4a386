// Package local implements executor.Executor by running host toolchains directly.
//
// The Dispatcher is the single entry point: it normalises the language tag, answers
// preview-only and unknown languages itself, and hands everything else to the matching
// pipeline. It never panics outward and never returns a Go error, so the HTTP handler
// and the CLI can treat it as a plain function from (code, language) to output.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sakif/polyglot-playground/internal/executor"
	"github.com/sakif/polyglot-playground/internal/executor/pipeline"
	"github.com/sakif/polyglot-playground/internal/executor/process"
)

// PreviewMessage is returned for languages that only render in the browser.
const PreviewMessage = "Live preview for HTML/CSS/JS is not supported on the backend. " +
	"Please open your HTML file in a browser to see the result."

// Preview-only language tags.
const (
	HTML       = "html"
	CSS        = "css"
	JavaScript = "javascript"
)

var previewLanguages = map[string]bool{HTML: true, CSS: true, JavaScript: true}

var previewExtensions = map[string]string{
	".html": HTML,
	".htm":  HTML,
	".css":  CSS,
	".js":   JavaScript,
}

// Execution outcomes reported to the Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeUnsupported = "unsupported"
	OutcomePreview     = "preview"
	OutcomePanic       = "panic"
)

// Recorder observes finished executions. internal/metrics provides the Prometheus one.
type Recorder interface {
	ObserveExecution(language, outcome string, duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveExecution(string, string, time.Duration) {}

// Dispatcher routes execution requests to language pipelines.
type Dispatcher struct {
	pipelines map[string]*pipeline.Pipeline
	logger    *slog.Logger
	metrics   Recorder
}

var _ executor.Executor = (*Dispatcher)(nil)

// New builds a Dispatcher from cfg: the process runner, the descriptors (optionally
// overridden by cfg.LanguagesFile) and one pipeline per language.
func New(cfg Config, logger *slog.Logger, metrics Recorder) (*Dispatcher, error) {
	descriptors := pipeline.DefaultDescriptors(cfg.Toolchains)
	if cfg.LanguagesFile != "" {
		var err error
		descriptors, err = pipeline.LoadDescriptors(cfg.LanguagesFile, descriptors)
		if err != nil {
			return nil, fmt.Errorf("local: %w", err)
		}
	}

	runner := process.New(process.Config{Timeout: cfg.Timeout}, logger)
	opts := pipeline.Options{WorkDir: cfg.WorkDir, Platform: cfg.Platform}

	return NewWithRunner(descriptors, runner, opts, logger, metrics)
}

// NewWithRunner builds a Dispatcher around an existing runner. Tests use it to swap in fakes.
func NewWithRunner(
	descriptors map[string]pipeline.Descriptor,
	runner process.Runner,
	opts pipeline.Options,
	logger *slog.Logger,
	metrics Recorder,
) (*Dispatcher, error) {
	if metrics == nil {
		metrics = noopRecorder{}
	}

	pipelines := make(map[string]*pipeline.Pipeline, len(descriptors))
	for tag, desc := range descriptors {
		if previewLanguages[tag] {
			return nil, fmt.Errorf("local: %s is a preview-only language", tag)
		}
		p, err := pipeline.New(desc, runner, opts, logger)
		if err != nil {
			return nil, fmt.Errorf("local: %w", err)
		}
		pipelines[tag] = p
	}

	return &Dispatcher{
		pipelines: pipelines,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// NormalizeLanguage makes tags case-insensitive.
func NormalizeLanguage(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// Execute runs req.Code as req.Language. It always returns a result.
func (d *Dispatcher) Execute(ctx context.Context, req executor.ExecutionRequest) (res executor.ExecutionResult) {
	start := time.Now()
	language := NormalizeLanguage(req.Language)
	outcome := OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("execution panicked",
				slog.String("language", language),
				slog.Any("panic", r),
			)
			res = executor.Failure(process.UnexpectedMessage(fmt.Errorf("%v", r)))
			outcome = OutcomePanic
		}
		d.metrics.ObserveExecution(language, outcome, time.Since(start))
	}()

	if previewLanguages[language] {
		outcome = OutcomePreview
		return executor.Output(PreviewMessage)
	}

	p, ok := d.pipelines[language]
	if !ok {
		outcome = OutcomeUnsupported
		d.logger.Info("unsupported language requested", slog.String("language", language))
		return executor.Failure("Unsupported language: " + language)
	}

	res = p.Execute(ctx, req.Code)
	if res.Failed() {
		outcome = OutcomeFailed
	}

	d.logger.Info("code executed",
		slog.String("language", language),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("failed", res.Failed()),
	)
	return res
}

// Languages returns every recognised tag, executable and preview-only, sorted.
func (d *Dispatcher) Languages() []string {
	tags := d.ExecutableLanguages()
	for tag := range previewLanguages {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ExecutableLanguages returns the tags that have a backend pipeline, sorted.
func (d *Dispatcher) ExecutableLanguages() []string {
	tags := make([]string, 0, len(d.pipelines))
	for tag := range d.pipelines {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Descriptor returns the recipe behind an executable language.
func (d *Dispatcher) Descriptor(language string) (pipeline.Descriptor, bool) {
	p, ok := d.pipelines[NormalizeLanguage(language)]
	if !ok {
		return pipeline.Descriptor{}, false
	}
	return p.Descriptor(), true
}

// LanguageForFilename guesses the language tag from a file extension.
func (d *Dispatcher) LanguageForFilename(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	if tag, ok := previewExtensions[ext]; ok {
		return tag, true
	}
	descriptors := make(map[string]pipeline.Descriptor, len(d.pipelines))
	for tag, p := range d.pipelines {
		descriptors[tag] = p.Descriptor()
	}
	return pipeline.LanguageForExtension(descriptors, ext)
}

// IsPreview reports whether language only renders in the browser.
func IsPreview(language string) bool {
	return previewLanguages[NormalizeLanguage(language)]
}
