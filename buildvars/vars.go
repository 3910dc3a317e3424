// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package buildvars contains variables injected at build time.
package buildvars

// Version is set at link time via `-ldflags -X github.com/vastelijn/portal/buildvars.Version=...`.
// It will be empty for local or development builds.
var Version string

// VersionOrDefault returns `Version` if set, otherwise returns the provided default.
func VersionOrDefault(def string) string {
	if len(Version) > 0 {
		return Version
	}
	return def
}

// UserAgent is the User-Agent sent by the API client.
func UserAgent() string {
	return "vastelijn-portal/" + VersionOrDefault("dev")
}
