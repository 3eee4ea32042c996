package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "bakchoddost",
	Short: "Bakchoddost - personalized friendship poems from templates",
	Long:  `Bakchoddost serves poem templates with {{userName}} and {{friendNameN}} placeholders and renders them for a user and their friends.`,
	Example: `  # Run the API server and backfill worker
  bakchoddost serve --seed

  # Check a template before submitting it
  bakchoddost validate poem.txt
  bakchoddost render poem.txt --user Raj --friend Simran

  # Use a remote server
  bakchoddost login https://poems.example.com
  bakchoddost generate --user Raj --friend Simran --friend Kuljeet`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "template", Title: "Template Commands:"},
		&cobra.Group{ID: "client", Title: "Client Commands:"},
		&cobra.Group{ID: "admin", Title: "Admin Commands:"},
	)

	validateCmd.GroupID = "template"
	renderCmd.GroupID = "template"

	loginCmd.GroupID = "client"
	generateCmd.GroupID = "client"

	serveCmd.GroupID = "admin"
	backfillCmd.GroupID = "admin"
	seedCmd.GroupID = "admin"
	adminCmd.GroupID = "admin"

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
