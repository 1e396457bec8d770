package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/records/internal/client"
	"github.com/alfredjeanlab/records/internal/idgen"
	"github.com/alfredjeanlab/records/internal/model"
	"github.com/alfredjeanlab/records/internal/ui"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printRecord(w io.Writer, r *model.Record) {
	fmt.Fprintf(w, "ID:        %d\n", r.ID)
	fmt.Fprintf(w, "Name:      %s\n", r.Name)
	fmt.Fprintf(w, "Rights:    %s\n", r.Rights)
	fmt.Fprintf(w, "Status:    %s\n", ui.RenderStatus(r.Status))
	if r.Remarks != "" {
		fmt.Fprintf(w, "Remarks:   %s\n", r.Remarks)
	}
	fmt.Fprintf(w, "Timestamp: %s\n", r.Timestamp.UTC().Format(timeLayout))
}

func printRecordTable(w io.Writer, records []*model.Record) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRIGHTS\tSTATUS\tTIMESTAMP\tREMARKS")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Name,
			r.Rights,
			r.Status,
			r.Timestamp.UTC().Format(timeLayout),
			truncate(oneLine(r.Remarks), 40),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d %s\n", len(records), plural(len(records), "record", "records"))
}

func printSnapshotInfo(w io.Writer, csvPath, jsonPath string, warnings int) {
	if csvPath != "" {
		fmt.Fprintf(w, "%s %s\n", ui.RenderMuted("csv: "), csvPath)
	}
	if jsonPath != "" {
		fmt.Fprintf(w, "%s %s\n", ui.RenderMuted("json:"), jsonPath)
	}
	if warnings > 0 {
		fmt.Fprintln(w, ui.RenderWarn(fmt.Sprintf("%d export %s, see server log", warnings, plural(warnings, "warning", "warnings"))))
	}
}

func printExportResult(w io.Writer, res *client.ExportResult) {
	line := fmt.Sprintf("Snapshot %s (%d %s)", res.ID, res.Records, plural(res.Records, "record", "records"))
	if t, err := idgen.SnapshotTime(res.ID); err == nil {
		line += " taken " + t.Format(timeLayout)
	}
	fmt.Fprintln(w, line)
	printSnapshotInfo(w, res.CSVPath, res.JSONPath, 0)
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, ui.RenderWarn(fmt.Sprintf("warning: %s %s: %s", warn.Format, warn.Path, warn.Error)))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
