package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bakchoddost/bakchoddost/internal/cliclient"
	"github.com/bakchoddost/bakchoddost/internal/db"
	"github.com/bakchoddost/bakchoddost/internal/models"
	"github.com/bakchoddost/bakchoddost/internal/rbac"
	"github.com/bakchoddost/bakchoddost/internal/server"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	adminEmail    string
	adminUsername string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrators",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin user in the configured database",
	Long: `Creates a password user with the admin role. The password is read from
the terminal.

Examples:
  bakchoddost admin create --email ops@example.com --username ops`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminEmail == "" {
			return fmt.Errorf("--email is required")
		}

		fmt.Print("Password: ")
		pass, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		if len(pass) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}

		_, database, err := server.Setup()
		if err != nil {
			return err
		}
		user, err := db.CreateAdmin(database, adminEmail, string(pass), adminUsername)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", adminEmail, user.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "Optional username")
	adminCmd.AddCommand(adminCreateCmd)

	adminBackfillCmd.Flags().IntVar(&adminBackfillBatch, "batch-size", 0, "Rows per batch (server default when 0)")
	adminBackfillCmd.Flags().BoolVar(&adminBackfillAll, "recompute-all", false, "Recompute every row, not only missing values")
	adminBackfillCmd.Flags().BoolVar(&adminBackfillNoWait, "no-wait", false, "Return after queueing")
	adminCmd.AddCommand(adminUsersCmd)
	adminCmd.AddCommand(adminBackfillCmd)
	adminCmd.AddCommand(adminRoleCmd("grant", "Give an existing user the admin role", rbac.MakeAdmin))
	adminCmd.AddCommand(adminRoleCmd("revoke", "Remove the admin role from a user", rbac.RevokeAdmin))
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users on the logged-in server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remoteClient("", true)
		if err != nil {
			return err
		}
		users, err := client.ListUsers(cmd.Context())
		if err != nil {
			if cliclient.IsForbidden(err) {
				return fmt.Errorf("admin role required")
			}
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tEMAIL\tPHONE\tUSERNAME\tADMIN\tCREATED")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Email, u.Phone, u.Username, u.IsAdmin, u.CreatedAt.Format(time.DateOnly))
		}
		return tw.Flush()
	},
}

var (
	adminBackfillBatch  int
	adminBackfillAll    bool
	adminBackfillNoWait bool
)

var adminBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Queue a backfill on the logged-in server",
	Long: `Queues a max_friend_required backfill job on the server and waits for it
to finish. Use 'bakchoddost backfill' to run one against a local database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remoteClient("", true)
		if err != nil {
			return err
		}
		job, err := client.StartBackfill(cmd.Context(), cliclient.BackfillRequest{
			BatchSize:    adminBackfillBatch,
			RecomputeAll: adminBackfillAll,
		})
		if err != nil {
			if cliclient.IsForbidden(err) {
				return fmt.Errorf("admin role required")
			}
			return err
		}
		fmt.Fprintf(os.Stderr, "Queued job %s\n", job.ID)
		if adminBackfillNoWait {
			return nil
		}

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for job.Status == "pending" || job.Status == "running" {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-ticker.C:
			}
			if job, err = client.GetJob(cmd.Context(), job.ID); err != nil {
				return err
			}
		}
		if job.Logs != "" {
			fmt.Fprintln(cmd.OutOrStdout(), job.Logs)
		}
		if job.Status == "failed" {
			return fmt.Errorf("backfill failed: %s", job.Error)
		}
		return nil
	},
}

// adminRoleCmd builds a command that grants or revokes the admin role for the
// user with the given email or username in the configured database.
func adminRoleCmd(use, short string, apply func(uuid.UUID) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <email-or-username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, database, err := server.Setup()
			if err != nil {
				return err
			}
			ident := strings.ToLower(strings.TrimSpace(args[0]))
			var user models.User
			err = database.Where("email = ? OR username = ?", ident, ident).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no user %q", args[0])
			}
			if err != nil {
				return err
			}
			if err := apply(user.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", use, user.ID)
			return nil
		},
	}
}
