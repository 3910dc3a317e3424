// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for the VasteLijn portal client.
//
// Usage:
//
//	go run . [flags] [portal-url]
//	./vastelijn-portal https://portal.example/api#admin
//
// This launches the interactive client. See --help for subcommands.
package main

import (
	"os"

	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/ui/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}
