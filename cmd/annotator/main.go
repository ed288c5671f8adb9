// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package main

import (
	"os"

	"github.com/vulntor/annotator/cmd/annotator/commands"
)

// Exit codes:
//   - 0: Success
//   - 1: General error, failed self-test
//   - 2: Malformed input record
//   - 3: Invalid annotation declaration
func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
