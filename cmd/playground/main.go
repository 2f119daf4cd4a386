// Command playground runs the code playground: the HTTP server, plus helpers for
// running a single file and managing configuration from the terminal.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/polyglot-playground/internal/config"
)

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "playground",
	Short: "Playground - compile and run code in seven languages",
	Long: `Playground executes snippets of Python, PHP, C, C++, Go, Swift and Java with the
toolchains installed on this machine, and stores named files in SQLite.

Configuration comes from playground.yaml (working directory or $HOME/.playground)
and PLAYGROUND_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errExecutionFailed makes run exit non-zero without printing anything beyond the
// program's own stderr.
var errExecutionFailed = errors.New("execution failed")

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to a config file (default: search for playground.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errExecutionFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.LogLevel()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
