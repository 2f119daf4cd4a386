// Package executor defines the contract between the outer layers (HTTP handlers, CLI)
// and the code execution engine.
//
// THE CONTRACT IS TOTAL:
// Execute never returns a Go error. Every failure mode (unsupported language, missing
// compiler, compile error, runtime error, timeout, disk trouble) is flattened into
// ExecutionResult.Stderr. Callers infer failure from a non-empty Stderr, not from a
// status code. This keeps handlers trivial: they serialise whatever comes back.
package executor

import "context"

// ExecutionRequest represents a request to run a piece of source code.
type ExecutionRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// ExecutionResult is the captured output of compiling and running the code.
type ExecutionResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Failed reports whether the result carries a problem.
func (r ExecutionResult) Failed() bool {
	return r.Stderr != ""
}

// Executor runs code for a language tag and always produces a result.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) ExecutionResult
}

// Output builds a successful result.
func Output(stdout string) ExecutionResult {
	return ExecutionResult{Stdout: stdout}
}

// Failure builds a result whose only content is the problem description.
func Failure(stderr string) ExecutionResult {
	return ExecutionResult{Stderr: stderr}
}
