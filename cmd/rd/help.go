package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/records/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envVars are listed under "Environment:" in the root help.
var envVars = []struct{ name, usage string }{
	{"RECORDS_HTTP_URL", "server URL for client commands (--http-url)"},
	{"RECORDS_NATS_URL", "NATS server for rd watch (--nats-url)"},
	{"RECORDS_DATABASE_URL", "database for rd serve; every config.toml key has a RECORDS_* override"},
	{"NO_COLOR", "disable colored output"},
}

// Quoted defaults, e.g. (default "User").
var reDefault = regexp.MustCompile(`\(default "[^"]*"\)`)

// helpStyle holds the renderers applied to help text.
type helpStyle struct {
	header  func(string) string
	command func(string) string
	muted   func(string) string
}

var uiHelpStyle = helpStyle{
	header:  ui.RenderAccent,
	command: ui.RenderCommand,
	muted:   ui.RenderMuted,
}

// colorizedHelpFunc returns a Cobra help function that appends the
// environment section to the root help and colors the result when the
// terminal supports it.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		orig := cmd.OutOrStdout()

		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(orig)

		if !cmd.HasParent() {
			buf.WriteString(environmentHelp())
		}

		text := buf.String()
		if ui.ShouldUseColor() {
			text = colorizeHelp(cmd, text, uiHelpStyle)
		}
		fmt.Fprint(orig, text)
	}
}

func environmentHelp() string {
	var buf bytes.Buffer
	buf.WriteString("\nEnvironment:\n")
	tw := tabwriter.NewWriter(&buf, 0, 0, 3, ' ', 0)
	for _, v := range envVars {
		fmt.Fprintf(tw, "  %s\t%s\n", v.name, v.usage)
	}
	tw.Flush()
	return buf.String()
}

// helpHeaders returns the section titles cobra can print for cmd. "Usage:"
// is left plain.
func helpHeaders(cmd *cobra.Command) map[string]bool {
	headers := map[string]bool{
		"Aliases:":             true,
		"Examples:":            true,
		"Available Commands:":  true,
		"Additional Commands:": true,
		"Flags:":               true,
		"Global Flags:":        true,
		"Environment:":         true,
	}
	for _, g := range cmd.Root().Groups() {
		headers[g.Title] = true
	}
	return headers
}

// flagTypes maps "--name" to the value placeholder cobra prints for each
// flag visible in cmd's help, e.g. "--rights" -> "string". Boolean flags
// print no placeholder and are omitted.
func flagTypes(cmd *cobra.Command) map[string]string {
	types := make(map[string]string)
	add := func(f *pflag.Flag) {
		if name, _ := pflag.UnquoteUsage(f); name != "" {
			types["--"+f.Name] = name
		}
	}
	cmd.LocalFlags().VisitAll(add)
	cmd.InheritedFlags().VisitAll(add)
	return types
}

// colorizeHelp styles cobra's plain help for cmd: section titles, the names
// of cmd's subcommands, flag placeholders and quoted defaults.
func colorizeHelp(cmd *cobra.Command, s string, style helpStyle) string {
	headers := helpHeaders(cmd)
	types := flagTypes(cmd)
	commands := make(map[string]bool)
	for _, c := range cmd.Commands() {
		commands[c.Name()] = true
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		switch {
		case line != "" && line[0] != ' ' && headers[strings.TrimSpace(line)]:
			lines[i] = style.header(strings.TrimSpace(line))
			continue
		case strings.HasPrefix(line, "  ") && !strings.HasPrefix(line, "   ") && !strings.HasPrefix(line, "  -"):
			if name, rest, ok := strings.Cut(line[2:], " "); ok && commands[name] {
				line = "  " + style.command(name) + " " + rest
			}
		case strings.Contains(line, "--"):
			line = styleFlagType(line, types, style.muted)
		}
		lines[i] = reDefault.ReplaceAllStringFunc(line, style.muted)
	}
	return strings.Join(lines, "\n")
}

// styleFlagType renders the placeholder that follows a known flag name.
func styleFlagType(line string, types map[string]string, render func(string) string) string {
	for _, field := range strings.Fields(line) {
		typ, ok := types[field]
		if !ok {
			continue
		}
		target := field + " " + typ
		if idx := strings.Index(line, target); idx >= 0 {
			start := idx + len(field) + 1
			return line[:start] + render(typ) + line[start+len(typ):]
		}
		return line
	}
	return line
}
