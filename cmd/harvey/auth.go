package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/harvey/internal/config"
)

// NewAuthCmd creates the auth command.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth [TOKEN]",
		Short: "Store a GitHub token for authenticated API access",
		Long: `Auth stores a GitHub personal access token in the configuration file.

Anonymous GitHub API access is limited to 60 requests per hour, which a few
investigations exhaust. A token needs no scopes: only public data is read.
The GITHUB_TOKEN environment variable takes precedence over the stored token.

Without an argument the token is read from standard input.

Examples:
  # Store a token
  harvey auth ghp_xxxxxxxxxxxxxxxxxxxx

  # Read the token from a file
  harvey auth < token.txt

  # Show whether a token is configured
  harvey auth --status`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAuthCmd,
	}

	cmd.Flags().Bool("status", false, "Show the configured token (masked)")
	cmd.Flags().StringP("config", "c", config.XDGConfigPath(),
		"Configuration file the token is stored in")

	return cmd
}

// runAuthCmd executes the auth command.
func runAuthCmd(cmd *cobra.Command, args []string) error {
	status, err := cmd.Flags().GetBool("status")
	if err != nil {
		return err
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if status {
		return showTokenStatus(out, path)
	}

	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		fmt.Fprint(cmd.ErrOrStderr(), "GitHub token: ")
		token, err = readToken(cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	if err := config.SaveToken(path, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	fmt.Fprintf(out, "Token saved to %s\n", path)
	return nil
}

// readToken reads the first line of r.
func readToken(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// showTokenStatus prints which token would be used and where it comes from.
func showTokenStatus(out io.Writer, path string) error {
	if env := strings.TrimSpace(os.Getenv(config.EnvGitHubToken)); env != "" {
		fmt.Fprintf(out, "GitHub token: %s (from %s)\n", config.MaskToken(env), config.EnvGitHubToken)
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	if token := config.ResolveToken(file); token != "" {
		fmt.Fprintf(out, "GitHub token: %s (from %s)\n", config.MaskToken(token), path)
		return nil
	}

	fmt.Fprintln(out, "No GitHub token configured. GitHub API calls are anonymous and rate limited.")
	fmt.Fprintln(out, "\nUse 'harvey auth <token>' to store one.")
	return nil
}
