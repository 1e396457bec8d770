package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/records/internal/model"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a record; fields not given keep their current value",
	GroupID: "records",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := context.Background()
		current, err := recordsClient.GetRecord(ctx, id)
		if err != nil {
			return fmt.Errorf("getting record %d: %w", id, err)
		}

		in := mergeUpdate(cmd, current)
		r, err := recordsClient.UpdateRecord(ctx, id, in)
		if err != nil {
			return fmt.Errorf("updating record %d: %w", id, err)
		}

		if jsonOutput {
			printJSON(r)
			return nil
		}
		fmt.Printf("Updated record %d\n", r.ID)
		printRecord(os.Stdout, r)
		return nil
	},
}

// mergeUpdate builds the full replacement input from current plus the flags
// that were set on cmd.
func mergeUpdate(cmd *cobra.Command, current *model.Record) model.RecordInput {
	in := model.RecordInput{
		Name:    current.Name,
		Rights:  current.Rights,
		Status:  current.Status,
		Remarks: current.Remarks,
	}
	for flag, dst := range map[string]*string{
		"name":    &in.Name,
		"rights":  &in.Rights,
		"status":  &in.Status,
		"remarks": &in.Remarks,
	} {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	return in
}

func init() {
	updateCmd.Flags().StringP("name", "n", "", "new name")
	updateCmd.Flags().StringP("rights", "r", "", "new access rights")
	updateCmd.Flags().StringP("status", "s", "", "new status")
	updateCmd.Flags().String("remarks", "", "new remarks (empty string clears them)")
}
