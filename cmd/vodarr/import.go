package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vodarr/vodarr/internal/ingest"
)

func init() {
	var upload bool
	var reprocess bool

	importCmd := &cobra.Command{
		Use:   "import <playlist>",
		Short: "Import an M3U playlist",
		Long: `Imports a playlist, driving chunked processing until completion.

With --upload the argument is a local file that is sent to the server
first; otherwise it names a playlist already stored on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportCmd(args[0], upload, reprocess)
		},
	}
	importCmd.Flags().BoolVar(&upload, "upload", false, "Upload the local file before importing")
	importCmd.Flags().BoolVar(&reprocess, "reprocess", false, "Discard progress and reimport from the start")

	rootCmd.AddCommand(importCmd)
}

func runImportCmd(target string, upload, reprocess bool) error {
	client := NewClient(serverURL)

	name := filepath.Base(target)
	if upload {
		stored, err := client.Upload(target)
		if err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		name = stored
		if !jsonOutput {
			fmt.Printf("Uploaded as %s\n", name)
		}
	}

	if reprocess {
		report, err := client.Reprocess(name)
		if err != nil {
			return fmt.Errorf("reprocess failed: %w", err)
		}
		printReport(name, report)
		return nil
	}

	// Drive the import chunk by chunk so progress is visible and an
	// interrupted run resumes where it stopped.
	total := ingest.NewResult()
	for {
		report, err := client.ProcessChunk(name)
		if err != nil {
			return fmt.Errorf("process failed: %w", err)
		}
		total.Merge(report.Result)
		if !jsonOutput {
			fmt.Printf("\r%s: %d/%d (%.1f%%)", name, report.Processed, report.Total, report.Progress)
		}
		if report.Complete() {
			if !jsonOutput {
				fmt.Println()
			}
			report.Result = total
			printReport(name, report)
			return nil
		}
	}
}

func printReport(name string, report *ingest.ChunkReport) {
	if jsonOutput {
		printJSON(report)
		return
	}
	fmt.Printf("%s: %d imported, %d already present, %d errors\n",
		name, len(report.Result.Success), len(report.Result.Exists), len(report.Result.Error))
	for _, e := range report.Result.Error {
		fmt.Printf("  error: %s (%s)\n", e.Message, e.URL)
	}
}
