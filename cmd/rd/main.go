package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alfredjeanlab/records/internal/client"
	"github.com/alfredjeanlab/records/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	jsonOutput bool

	recordsClient client.RecordsClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("RECORDS_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8000"
}

var rootCmd = &cobra.Command{
	Use:          "rd <command>",
	Short:        "CLI client and server for the records service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		recordsClient = client.NewHTTPClient(httpURL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if recordsClient != nil {
			recordsClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "records", Title: "Records:"},
		&cobra.Group{ID: "export", Title: "Export:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Records
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)

	// Export
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
}

// parseID parses a record id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid record id %q: must be an integer", arg)
	}
	return id, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
