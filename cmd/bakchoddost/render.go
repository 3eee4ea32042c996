package main

import (
	"fmt"
	"os"

	"github.com/bakchoddost/bakchoddost/internal/poem"
	"github.com/spf13/cobra"
)

var (
	renderUser    string
	renderFriends []string
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a template file locally",
	Long: `Fills the placeholders of a template file with the given names. Missing
friend names fall back to numbered defaults.

Examples:
  bakchoddost render poem.txt --user Raj --friend Simran --friend Kuljeet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTemplate(args[0])
		if err != nil {
			return err
		}
		analysis, err := poem.ValidateAndAnalyze(text)
		if err != nil {
			return err
		}

		friends := poem.CleanNames(renderFriends)
		if len(friends) < analysis.MaxFriendIndexRequired {
			fmt.Fprintf(os.Stderr, "Warning: template uses %d friend names, %d given; defaults fill the rest\n",
				analysis.MaxFriendIndexRequired, len(friends))
		}
		fmt.Fprintln(cmd.OutOrStdout(), poem.Render(text, renderUser, friends))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderUser, "user", "u", "", "Name for {{userName}}")
	renderCmd.Flags().StringArrayVarP(&renderFriends, "friend", "f", nil, "Friend name, repeat in order")
}
