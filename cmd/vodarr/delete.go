package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	deleteCmd := &cobra.Command{
		Use:   "delete <playlist>",
		Short: "Delete a stored playlist and its imported records",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}

	rootCmd.AddCommand(deleteCmd)
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	removed, err := client.DeletePlaylist(args[0])
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]int{"media_removed": removed})
		return nil
	}
	fmt.Printf("Deleted %s, removed %d media records.\n", args[0], removed)
	return nil
}
