package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search [query...]",
	Short:   "Search records by name or remarks (case-insensitive)",
	GroupID: "records",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		records, err := recordsClient.SearchRecords(context.Background(), query)
		if err != nil {
			return fmt.Errorf("searching records: %w", err)
		}

		if jsonOutput {
			printJSON(records)
			return nil
		}
		printRecordTable(os.Stdout, records)
		return nil
	},
}
