package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <name>",
	Short:   "Create a record",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rights, _ := cmd.Flags().GetString("rights")
		status, _ := cmd.Flags().GetString("status")
		remarks, _ := cmd.Flags().GetString("remarks")

		r, err := recordsClient.CreateRecord(context.Background(), model.RecordInput{
			Name:    args[0],
			Rights:  rights,
			Status:  status,
			Remarks: remarks,
		})
		if err != nil {
			return fmt.Errorf("creating record: %w", err)
		}

		if jsonOutput {
			printJSON(r)
			return nil
		}
		fmt.Printf("Created record %d\n", r.ID)
		printRecord(os.Stdout, r)
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("rights", "r", model.RightsUser, "access rights (e.g. Admin, User, Staff)")
	createCmd.Flags().StringP("status", "s", model.StatusActive, "status (e.g. Active, Inactive, On Hold)")
	createCmd.Flags().String("remarks", "", "free-text remarks")
}
