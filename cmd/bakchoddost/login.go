package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bakchoddost/bakchoddost/internal/cliclient"
	"github.com/bakchoddost/bakchoddost/internal/credentials"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <server-url>",
	Short: "Connect to a bakchoddost server",
	Long: `Authenticates with a bakchoddost server and stores the token in the
system keyring.

Examples:
  bakchoddost login https://poems.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	serverURL := strings.TrimRight(args[0], "/")

	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}

	fmt.Print("Email or username: ")
	var user string
	if _, err := fmt.Scanln(&user); err != nil {
		return fmt.Errorf("reading email: %w", err)
	}

	fmt.Print("Password: ")
	passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	client := cliclient.NewWithoutAuth(serverURL)
	resp, err := client.Login(context.Background(), user, string(passBytes))
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	creds, err := credentials.New()
	if err != nil {
		return err
	}
	if err := creds.SaveLogin(serverURL, resp.Email, resp.Token); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Logged in to %s as %s\n", serverURL, user)
	return nil
}
