package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var remove bool

	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Find or remove duplicate players",
		Long: `Lists stream URLs referenced by more than one player.

With --remove, all but the oldest player of each group are deleted and
media left without players are removed together with their seasons and
episodes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupeCmd(remove)
		},
	}
	dedupeCmd.Flags().BoolVar(&remove, "remove", false, "Remove duplicates instead of listing them")

	rootCmd.AddCommand(dedupeCmd)
}

func runDedupeCmd(remove bool) error {
	client := NewClient(serverURL)

	if remove {
		report, err := client.RemoveDuplicates()
		if err != nil {
			return fmt.Errorf("dedupe failed: %w", err)
		}
		if jsonOutput {
			printJSON(report)
			return nil
		}
		fmt.Printf("Removed %d players and %d media records.\n",
			report.PlayersRemoved, report.MediaRemoved)
		return nil
	}

	groups, err := client.Duplicates()
	if err != nil {
		return fmt.Errorf("failed to fetch duplicates: %w", err)
	}
	if jsonOutput {
		printJSON(groups)
		return nil
	}
	if len(groups) == 0 {
		fmt.Println("No duplicates found.")
		return nil
	}
	for _, g := range groups {
		fmt.Printf("%s [%s] %s (%d players: %v)\n", g.Title, g.Type, g.URL, g.Count, g.Players)
	}
	return nil
}
