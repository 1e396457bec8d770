package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/records/internal/client"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		r, err := recordsClient.GetRecord(context.Background(), id)
		if client.IsNotFound(err) {
			return fmt.Errorf("record %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("getting record %d: %w", id, err)
		}

		if jsonOutput {
			printJSON(r)
		} else {
			printRecord(os.Stdout, r)
		}
		return nil
	},
}
