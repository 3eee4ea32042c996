package main

import (
	"fmt"

	"github.com/bakchoddost/bakchoddost/internal/seed"
	"github.com/bakchoddost/bakchoddost/internal/server"
	"github.com/bakchoddost/bakchoddost/internal/store"
	"github.com/spf13/cobra"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed [glob]",
	Short: "Insert starter templates",
	Long: `Inserts templates from YAML or TOML seed files matching glob, or the
built-in set when no glob is given. Nothing is inserted if templates already
exist, unless --force is set.

Examples:
  bakchoddost seed
  bakchoddost seed 'seeds/**/*.yaml'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			set *seed.Set
			err error
		)
		if len(args) == 1 {
			set, err = seed.LoadGlob(args[0])
		} else {
			set, err = seed.Default()
		}
		if err != nil {
			return err
		}

		_, database, err := server.Setup()
		if err != nil {
			return err
		}
		n, err := seed.Apply(cmd.Context(), store.NewTemplateStore(database), set, seed.ApplyOptions{Force: seedForce})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d templates\n", n)
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Insert even when templates already exist")
}
