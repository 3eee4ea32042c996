package main

import (
	"github.com/bakchoddost/bakchoddost/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
	serveMode string
	serveSeed bool
)

// @title Bakchoddost API
// @version 1.0
// @description Personalized poem generation from placeholder templates
// @host localhost:4000
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and/or backfill worker",
	Long: `Start the Bakchoddost server with API and/or worker components.

Examples:
  bakchoddost serve                    # Run both API server and worker
  bakchoddost serve --mode server      # Run API server only
  bakchoddost serve --mode worker      # Run worker only
  bakchoddost serve --port 8080 --seed # Override port, seed an empty store

Environment variables:
  BAKCHODDOST_SERVER_PORT          Server port (default: 4000)
  BAKCHODDOST_SERVER_MODE          development or production
  BAKCHODDOST_DATABASE_DRIVER      Database driver: sqlite, postgres
  BAKCHODDOST_DATABASE_DSN         Database connection string
  BAKCHODDOST_QUEUE_TYPE           Queue type: memory, valkey
  BAKCHODDOST_AUTH_JWT_SECRET      JWT signing secret (required in production)
  BAKCHODDOST_SMS_PROVIDER         SMS provider: log, twilio
  ADMIN_EMAIL                      Bootstrap admin email
  ADMIN_PASSWORD                   Bootstrap admin password`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.RunWithSignalHandling(server.Config{
			Port:    servePort,
			Mode:    serveMode,
			Version: Version,
			Seed:    serveSeed,
		})
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (overrides config)")
	serveCmd.Flags().StringVarP(&serveMode, "mode", "m", "both", "Run mode: server, worker, or both")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "Insert the built-in templates when none exist")
}
