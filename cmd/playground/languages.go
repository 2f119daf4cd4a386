package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/polyglot-playground/internal/executor/local"
)

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List supported languages and the commands behind them",
	Args:  cobra.NoArgs,
	RunE:  runLanguages,
}

func init() {
	rootCmd.AddCommand(languagesCmd)
}

func runLanguages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dispatcher, err := local.New(cfg.LocalExecutor(), newLogger(cfg, io.Discard), nil)
	if err != nil {
		return fmt.Errorf("building executor: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, tag := range dispatcher.Languages() {
		if local.IsPreview(tag) {
			fmt.Fprintf(tw, "%s\t(browser preview only)\n", tag)
			continue
		}
		desc, _ := dispatcher.Descriptor(tag)
		fmt.Fprintf(tw, "%s\t%s\n", tag, desc)
	}
	return tw.Flush()
}
