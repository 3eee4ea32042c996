package main

import (
	"errors"
	"fmt"

	"github.com/bakchoddost/bakchoddost/internal/cliclient"
	"github.com/bakchoddost/bakchoddost/internal/credentials"
	"github.com/spf13/cobra"
)

var (
	generateUser    string
	generateFriends []string
	generateServer  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a poem on a server",
	Long: `Asks the server for a poem that fits the number of friend names given.
Uses the server from 'bakchoddost login' unless --server is set.

Examples:
  bakchoddost generate --user Raj --friend Simran --friend Kuljeet
  bakchoddost generate --server http://localhost:4000 --user Raj`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remoteClient(generateServer, false)
		if err != nil {
			return err
		}
		res, err := client.Generate(cmd.Context(), generateUser, generateFriends)
		if err != nil {
			if cliclient.IsRateLimited(err) {
				return fmt.Errorf("rate limited, try again shortly")
			}
			if cliclient.IsNotFound(err) {
				return fmt.Errorf("the server has no templates yet")
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

// remoteClient talks to serverURL anonymously, or to the logged-in server
// when serverURL is empty. requireAuth rejects a stored server with no token.
func remoteClient(serverURL string, requireAuth bool) (*cliclient.Client, error) {
	if serverURL != "" {
		return cliclient.NewWithoutAuth(serverURL), nil
	}
	creds, err := credentials.New()
	if err != nil {
		return nil, err
	}
	var token string
	serverURL, token, err = creds.Current()
	if errors.Is(err, credentials.ErrNoServer) {
		return nil, fmt.Errorf("no server configured; run 'bakchoddost login <url>' or pass --server")
	}
	if errors.Is(err, credentials.ErrNoToken) {
		if requireAuth {
			return nil, fmt.Errorf("not logged in to %s; run 'bakchoddost login %s'", serverURL, serverURL)
		}
		return cliclient.NewWithoutAuth(serverURL), nil
	}
	if err != nil {
		return nil, err
	}
	return cliclient.New(serverURL, token), nil
}

func init() {
	generateCmd.Flags().StringVarP(&generateUser, "user", "u", "", "Your name")
	generateCmd.Flags().StringArrayVarP(&generateFriends, "friend", "f", nil, "Friend name, repeat in order")
	generateCmd.Flags().StringVar(&generateServer, "server", "", "Server URL (skips stored login)")
}
