package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all records, newest first (the server also writes a snapshot)",
	GroupID: "records",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := recordsClient.ListRecords(context.Background())
		if err != nil {
			return fmt.Errorf("listing records: %w", err)
		}

		if jsonOutput {
			printJSON(res.Records)
			return nil
		}
		printRecordTable(os.Stdout, res.Records)
		printSnapshotInfo(os.Stdout, res.CSVPath, res.JSONPath, res.Warnings)
		return nil
	},
}
