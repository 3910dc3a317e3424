// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package cli

import (
	"runtime/debug"
	"testing"
)

func TestResolveBuildVersion_MainVersion(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/vastelijn/portal", Version: "v0.4.0"},
	}
	v, c, d := resolveBuildVersion(info)
	if v != "v0.4.0" {
		t.Fatalf("expected v0.4.0 got %s", v)
	}
	if c != gitCommit {
		t.Fatalf("expected commit to equal package gitCommit (default) got %s", c)
	}
	if d != buildDate {
		t.Fatalf("expected date to equal package buildDate (default) got %s", d)
	}
}

func TestResolveBuildVersion_DependencyFallback(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/vastelijn/portal", Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "github.com/vastelijn/portal", Version: "v0.3.1-0.20261012094411-5be0c1a2d7f3"},
		},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "v0.3.1-0.20261012094411-5be0c1a2d7f3" {
		t.Fatalf("expected dependency version fallback got %s", v)
	}
}

func TestResolveBuildVersion_GitCommitFallback(t *testing.T) {
	// preserve original
	orig := gitCommit
	defer func() { gitCommit = orig }()
	gitCommit = "deadbeef"
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/vastelijn/portal", Version: "(devel)"},
	}
	v, _, _ := resolveBuildVersion(info)
	if v != "deadbeef" {
		t.Fatalf("expected gitCommit fallback got %s", v)
	}
}

func TestResolveBuildVersion_VCSSettings(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/vastelijn/portal", Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "5be0c1a"},
			{Key: "vcs.time", Value: "2026-10-12T09:44:11Z"},
		},
	}
	_, c, d := resolveBuildVersion(info)
	if c != "5be0c1a" || d != "2026-10-12T09:44:11Z" {
		t.Fatalf("expected vcs settings, got commit=%s date=%s", c, d)
	}
}
