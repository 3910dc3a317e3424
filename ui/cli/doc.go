// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface using Cobra. The root
// command starts the interactive client; subcommands call the same API
// client and credential store for scripting. Commands stay thin and
// delegate to the client package.
package cli
