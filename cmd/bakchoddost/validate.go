package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/cliclient"
	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/spf13/cobra"
)

var validateServer string

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a template file for unknown placeholders",
	Long: `Reads template text from a file (or - for stdin) and reports the
placeholders it uses and how many friend names it needs.

Examples:
  bakchoddost validate poem.txt
  cat poem.txt | bakchoddost validate -
  bakchoddost validate poem.txt --server http://localhost:4000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTemplate(args[0])
		if err != nil {
			return err
		}
		analysis, err := analyze(cmd, text)
		out := cmd.OutOrStdout()
		if err != nil {
			if len(analysis.UnknownTokens) > 0 {
				fmt.Fprintf(out, "Unknown placeholders: %s\n", strings.Join(analysis.UnknownTokens, ", "))
			}
			return err
		}
		if len(analysis.Tokens) == 0 {
			fmt.Fprintln(out, "Placeholders: none")
		} else {
			fmt.Fprintf(out, "Placeholders: %s\n", strings.Join(analysis.Tokens, ", "))
		}
		fmt.Fprintf(out, "Friend names required: %d\n", analysis.MaxFriendIndexRequired)
		return nil
	},
}

// analyze checks text locally, or on the server when --server is set.
func analyze(cmd *cobra.Command, text string) (poem.Analysis, error) {
	if validateServer == "" {
		return poem.ValidateAndAnalyze(text)
	}
	client, err := remoteClient(validateServer, false)
	if err != nil {
		return poem.Analysis{}, err
	}
	res, err := client.Validate(cmd.Context(), text)
	if err != nil {
		var apiErr *cliclient.APIError
		if errors.As(err, &apiErr) {
			return poem.Analysis{}, errors.New(apiErr.Message())
		}
		return poem.Analysis{}, err
	}
	return poem.Analysis{
		Tokens:                 res.Tokens,
		UnknownTokens:          res.UnknownTokens,
		MaxFriendIndexRequired: res.MaxFriendIndexRequired,
	}, nil
}

func init() {
	validateCmd.Flags().StringVar(&validateServer, "server", "", "Validate on this server instead of locally")
}

// readTemplate reads a file, or stdin for "-".
func readTemplate(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return string(data), nil
}
