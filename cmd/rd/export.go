package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// downloadAuto means "use the file name the server suggests".
const downloadAuto = "auto"

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write a snapshot on the server now, or download the records as CSV",
	GroupID: "export",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if cmd.Flags().Changed("download") {
			dest, _ := cmd.Flags().GetString("download")
			return downloadCSV(ctx, dest)
		}

		res, err := recordsClient.Export(ctx)
		if err != nil {
			return fmt.Errorf("exporting records: %w", err)
		}
		if jsonOutput {
			printJSON(res)
			return nil
		}
		printExportResult(os.Stdout, res)
		return nil
	},
}

// downloadCSV fetches the CSV export and writes it to dest. "-" writes to
// stdout; downloadAuto uses the server's file name in the current directory.
func downloadCSV(ctx context.Context, dest string) error {
	name, data, err := recordsClient.DownloadCSV(ctx)
	if err != nil {
		return fmt.Errorf("downloading csv: %w", err)
	}

	switch dest {
	case "-":
		_, err := os.Stdout.Write(data)
		return err
	case downloadAuto, "":
		if name == "" {
			return fmt.Errorf("server did not suggest a file name; pass --download=<file>")
		}
		dest = name
	}

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", dest, len(data))
	return nil
}

func init() {
	exportCmd.Flags().String("download", "", "download CSV to this file (\"-\" for stdout, bare flag uses the server's name)")
	exportCmd.Flags().Lookup("download").NoOptDefVal = downloadAuto
}
