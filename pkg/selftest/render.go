// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package selftest

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

// Render writes a human readable report: one status line per annotation,
// mismatch details under failing ones, then a summary box.
func Render(w io.Writer, r *Report) error {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Annotation self-test"))
	sb.WriteString("\n\n")

	for _, res := range r.Results {
		switch res.Status {
		case StatusSuccess:
			sb.WriteString(fmt.Sprintf("%s: %s\n", res.Annotation, color.New(color.FgHiGreen, color.Bold).Sprint(res.Status)))
		case StatusFail:
			sb.WriteString(fmt.Sprintf("%s: %s\n", res.Annotation, color.RedString(string(res.Status))))
			for _, e := range res.Errors {
				sb.WriteString("  - ")
				sb.WriteString(e)
				sb.WriteString("\n")
			}
		default:
			sb.WriteString(fmt.Sprintf("%s: %s\n", res.Annotation, color.BlueString(string(res.Status))))
		}
	}

	summary := strings.Join([]string{
		fmt.Sprintf("annotation modules loaded: %d/%d", r.Loaded, r.Declared),
		fmt.Sprintf("test coverage: %d/%d", r.Tested, len(r.Results)),
		fmt.Sprintf("tests passing: %d/%d", r.Passing, r.Tested),
	}, "\n")
	sb.WriteString("\n")
	sb.WriteString(summaryStyle.Render(summary))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
