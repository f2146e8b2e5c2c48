package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	filesCmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"playlists"},
		Short:   "List stored playlists",
		Long:    "Lists playlists stored on the server with their import progress.",
		Args:    cobra.NoArgs,
		RunE:    runFilesCmd,
	}

	rootCmd.AddCommand(filesCmd)
}

func runFilesCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	files, err := client.Playlists()
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if jsonOutput {
		printJSON(files)
		return nil
	}

	if len(files) == 0 {
		fmt.Println("No playlists stored.")
		return nil
	}

	fmt.Printf("%-40s %10s %10s %s\n", "NAME", "PROCESSED", "TOTAL", "STATUS")
	for _, f := range files {
		fmt.Printf("%-40s %10d %10d %s\n", f.Name, f.Processed, f.Total, f.Status)
	}
	return nil
}
