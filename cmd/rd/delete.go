package main

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/records/internal/client"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Short:   "Delete one or more records",
	GroupID: "records",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			if err := recordsClient.DeleteRecord(context.Background(), id); err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("record %d not found", id)
				}
				return fmt.Errorf("deleting %d: %w", id, err)
			}

			fmt.Printf("Deleted %d\n", id)
		}
		return nil
	},
}
