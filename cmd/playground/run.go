package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/polyglot-playground/internal/executor"
	"github.com/sakif/polyglot-playground/internal/executor/local"
)

var (
	langFlag    string
	timeoutFlag time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and run a local source file",
	Long: `Run a file through the same pipeline the server uses. The program's stdout is
printed to stdout and compiler or runtime errors to stderr. The language is taken
from the file extension unless --lang is given.

Examples:
  playground run hello.py
  playground run Main.java --timeout 30s
  playground run snippet.txt --lang php`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&langFlag, "lang", "", "Language tag (default: inferred from the extension)")
	runCmd.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Per-process time limit (overrides config)")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if timeoutFlag > 0 {
		cfg.Executor.Timeout = timeoutFlag
	}

	code, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	dispatcher, err := local.New(cfg.LocalExecutor(), newLogger(cfg, io.Discard), nil)
	if err != nil {
		return fmt.Errorf("building executor: %w", err)
	}

	language := langFlag
	if language == "" {
		var ok bool
		language, ok = dispatcher.LanguageForFilename(args[0])
		if !ok {
			return fmt.Errorf("cannot infer the language of %s; pass --lang", args[0])
		}
	}

	res := dispatcher.Execute(context.Background(), executor.ExecutionRequest{
		Code:     string(code),
		Language: language,
	})

	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	if res.Failed() {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Stderr)
		return errExecutionFailed
	}
	return nil
}
