// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/vulntor/annotator/pkg/rules"
	"github.com/vulntor/annotator/pkg/version"
)

var versionTemplate = template.Must(template.New("version").Parse(`Version:      {{.Version}}
Commit:       {{.Commit}}
Built:        {{.BuildDate}}
Go version:   {{.GoVersion}}
OS/Arch:      {{.OS}}/{{.Arch}}
Rule schema:  {{.RuleSchema}}
`))

type versionInfo struct {
	version.Struct
	GoVersion  string `json:"goVersion"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	RuleSchema string `json:"ruleSchema"`
}

func currentVersion() versionInfo {
	return versionInfo{
		Struct:     version.Get(),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		RuleSchema: rules.SchemaVersion(),
	}
}

func newVersionCommand() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd.OutOrStdout(), short, asJSON)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON")

	return cmd
}

func printVersion(w io.Writer, short, asJSON bool) error {
	switch {
	case short:
		_, err := fmt.Fprintln(w, version.Version)
		return err
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(currentVersion())
	default:
		return versionTemplate.Execute(w, currentVersion())
	}
}
