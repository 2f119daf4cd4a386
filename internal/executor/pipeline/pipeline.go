// Package pipeline turns a Descriptor into a runnable compile+run strategy.
//
// Every pipeline has the same shape:
//
//	write source → (compile) → run → cleanup
//
// The cleanup is a deferred Workspace.Cleanup, so it runs on every exit path.
//
// COMPILE POLICY:
// Any text on the compiler's stderr stops the pipeline and is returned as the result's
// Stderr, without running anything. Warnings therefore count as failures. This mirrors
// how the playground has always behaved; callers that need warning-tolerant builds
// should pass flags like -w through a languages file.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/sakif/polyglot-playground/internal/executor"
	"github.com/sakif/polyglot-playground/internal/executor/process"
	"github.com/sakif/polyglot-playground/internal/executor/workspace"
)

// Options configures where and for which platform a pipeline materialises files.
type Options struct {
	// WorkDir is the parent directory for per-request files. Empty means os.TempDir().
	WorkDir string
	// Platform decides the compiled executable's name.
	Platform workspace.Platform
}

// Pipeline executes code for one language.
type Pipeline struct {
	desc    Descriptor
	runner  process.Runner
	options Options
	logger  *slog.Logger
}

// New validates desc and builds its pipeline.
func New(desc Descriptor, runner process.Runner, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{
		desc:    desc,
		runner:  runner,
		options: opts,
		logger:  logger.With(slog.String("language", desc.Language)),
	}, nil
}

// Descriptor returns the recipe this pipeline runs.
func (p *Pipeline) Descriptor() Descriptor {
	return p.desc
}

// Execute writes code to a fresh workspace, compiles it if needed and runs it.
func (p *Pipeline) Execute(ctx context.Context, code string) executor.ExecutionResult {
	ws := workspace.New(p.options.WorkDir, p.logger)
	defer ws.Cleanup()

	vars, failure, ok := p.materialize(ws, code)
	if !ok {
		return failure
	}

	if p.desc.Compiled() {
		// Compiler stdout is discarded; only its stderr decides the outcome.
		_, compileErr := p.runner.Run(ctx, expand(p.desc.Compile, vars))
		if compileErr != "" {
			p.logger.Debug("compilation failed")
			return executor.Failure(compileErr)
		}
	}

	stdout, stderr := p.runner.Run(ctx, expand(p.desc.Run, vars))
	return executor.ExecutionResult{Stdout: stdout, Stderr: stderr}
}

// materialize writes the source according to the layout and returns the placeholder values.
func (p *Pipeline) materialize(ws *workspace.Workspace, code string) (map[string]string, executor.ExecutionResult, bool) {
	switch p.desc.Layout {
	case LayoutClassDirectory:
		class, found := ExtractPublicClass(code)
		if !found {
			return nil, executor.Failure(NoPublicClassMessage), false
		}
		dir, err := ws.CreateTempDirectory()
		if err != nil {
			return nil, p.unexpected(err), false
		}
		src, err := ws.WriteFile(dir, class+p.desc.Extension, code)
		if err != nil {
			return nil, p.unexpected(err), false
		}
		return map[string]string{
			PlaceholderSource: src,
			PlaceholderDir:    dir,
			PlaceholderClass:  class,
			PlaceholderBinary: filepath.Join(dir, class),
		}, executor.ExecutionResult{}, true

	default:
		src, err := ws.CreateSourceFile(code, p.desc.Extension)
		if err != nil {
			return nil, p.unexpected(err), false
		}
		bin := workspace.DeriveExecutablePath(src, p.options.Platform)
		// Tracked even for interpreted languages: removing a path that was never created is a no-op.
		ws.Track(bin)
		return map[string]string{
			PlaceholderSource: src,
			PlaceholderBinary: bin,
			PlaceholderDir:    filepath.Dir(src),
		}, executor.ExecutionResult{}, true
	}
}

func (p *Pipeline) unexpected(err error) executor.ExecutionResult {
	p.logger.Error("preparing workspace failed", slog.String("error", err.Error()))
	return executor.Failure(process.UnexpectedMessage(err))
}
