// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/logging"
)

// Route is the entry point requested at startup.
type Route int

const (
	// RoutePublic is the default entry.
	RoutePublic Route = iota
	// RouteAdmin asks for the admin view, subject to a credential probe.
	RouteAdmin
)

func (r Route) String() string {
	if r == RouteAdmin {
		return "admin"
	}
	return "public"
}

// ParseRoute maps a route name or URL fragment to a Route. Only "admin"
// (with or without the leading '#') selects the admin entry.
func ParseRoute(s string) Route {
	if strings.TrimPrefix(strings.TrimSpace(s), "#") == "admin" {
		return RouteAdmin
	}
	return RoutePublic
}

// ParseEntry splits a portal address such as "https://portal.example/#admin"
// into the API base without fragment and the route named by the fragment.
func ParseEntry(raw string) (string, Route) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		base, frag, _ := strings.Cut(raw, "#")
		return base, ParseRoute(frag)
	}
	route := ParseRoute(u.Fragment)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), route
}

// bootDecidedMsg carries the boot sequence's verdict.
type bootDecidedMsg struct{ to viewState }

// bootCmd decides the first view once. The admin route probes the stored
// credential; any other route mounts the public view without a request.
func bootCmd(ctx context.Context, c client.Client, route Route) tea.Cmd {
	if route != RouteAdmin {
		return func() tea.Msg { return bootDecidedMsg{to: publicView} }
	}
	return func() tea.Msg {
		if _, err := c.Me(ctx); err != nil {
			logging.Infof("boot: credential probe failed: %v", err)
			return bootDecidedMsg{to: loginView}
		}
		return bootDecidedMsg{to: adminView}
	}
}
