package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/polyglot-playground/internal/auth"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash",
	Long: `Print a bcrypt hash suitable for auth.password_hash. Only the first line of
stdin is used, without its trailing newline.

Example:
  echo -n 'correct horse' | playground hash-password`,
	Args: cobra.NoArgs,
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")

	hash, err := auth.NewPasswordService().Hash(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
