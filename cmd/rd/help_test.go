package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alfredjeanlab/records/internal/ui"
)

// bracketStyle marks styled spans so tests can see what was colored.
var bracketStyle = helpStyle{
	header:  func(s string) string { return "[h:" + s + "]" },
	command: func(s string) string { return "[c:" + s + "]" },
	muted:   func(s string) string { return "[m:" + s + "]" },
}

func TestColorizeHelp(t *testing.T) {
	in := strings.Join([]string{
		"Usage:",
		"  rd <command> [flags]",
		"",
		"Records:",
		"  list        List all records",
		"  create      Create a record",
		"",
		"Flags:",
		"      --http-url string   HTTP server URL (default \"http://localhost:8000\")",
		"      --json              output as JSON",
	}, "\n")

	got := colorizeHelp(rootCmd, in, bracketStyle)

	for _, want := range []string{
		"Usage:\n",
		"  rd <command> [flags]",
		"[h:Records:]",
		"  [c:list]        List all records",
		"  [c:create]      Create a record",
		"[h:Flags:]",
		"--http-url [m:string]   HTTP server URL [m:(default \"http://localhost:8000\")]",
		"      --json              output as JSON",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestColorizeHelp_SubcommandFlags(t *testing.T) {
	in := "Flags:\n  -r, --rights string    access rights (default \"User\")\n      --remarks string   free-text remarks\n"
	got := colorizeHelp(createCmd, in, bracketStyle)

	if !strings.Contains(got, "  -r, --rights [m:string]    access rights [m:(default \"User\")]") {
		t.Errorf("rights line not styled:\n%s", got)
	}
	if !strings.Contains(got, "--remarks [m:string]") {
		t.Errorf("remarks line not styled:\n%s", got)
	}
}

func TestFlagTypes(t *testing.T) {
	types := flagTypes(exportCmd)
	if types["--download"] != "string" {
		t.Errorf("--download = %q, want string", types["--download"])
	}
	if types["--http-url"] != "string" {
		t.Errorf("inherited --http-url = %q, want string", types["--http-url"])
	}
	if _, ok := types["--json"]; ok {
		t.Error("boolean --json should have no placeholder")
	}
}

func TestHelpHeaders_IncludeGroups(t *testing.T) {
	headers := helpHeaders(listCmd)
	for _, h := range []string{"Records:", "Export:", "System:", "Flags:", "Global Flags:"} {
		if !headers[h] {
			t.Errorf("missing header %q", h)
		}
	}
	if headers["Usage:"] {
		t.Error("Usage: should stay plain")
	}
}

func TestRootHelp_ListsEnvironment(t *testing.T) {
	ui.ForceNoColor()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)

	colorizedHelpFunc()(rootCmd, nil)

	out := buf.String()
	for _, want := range []string{"Records:", "Environment:", "RECORDS_HTTP_URL", "RECORDS_NATS_URL", "NO_COLOR"} {
		if !strings.Contains(out, want) {
			t.Errorf("root help missing %q", want)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("help colored without a terminal")
	}
}

func TestSubcommandHelp_NoEnvironment(t *testing.T) {
	var buf bytes.Buffer
	listCmd.SetOut(&buf)
	defer listCmd.SetOut(nil)

	colorizedHelpFunc()(listCmd, nil)

	if strings.Contains(buf.String(), "Environment:") {
		t.Error("environment section is root-only")
	}
}
