// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/portal"
)

func toLogin(t *testing.T, o Options) *harness {
	t.Helper()
	h := newHarness(t, o)
	h.typeRunes("a")
	h.expectView(loginView)
	return h
}

func fillLogin(h *harness, email, password string) {
	lm := h.login()
	lm.inputs[emailField].SetValue(email)
	lm.inputs[passwordField].SetValue(password)
}

func TestLoginSuccessStoresTokenAndMountsAdmin(t *testing.T) {
	fake, c, store := fakeBackend(t)
	h := toLogin(t, Options{Client: c, Session: store})

	fillLogin(h, "admin@vastelijn.nl", "geheim")
	h.press(tea.KeyEnter) // email -> password
	if h.login().focusIndex != passwordField {
		t.Fatalf("enter on the email field should move focus")
	}
	h.press(tea.KeyEnter)

	h.expectView(adminView)
	if storedToken(t, store) == "" {
		t.Fatalf("token was not stored")
	}
	if n := len(fake.RequestsTo(http.MethodGet, "/api/admin/config")); n != 1 {
		t.Fatalf("admin view fetched config %d times", n)
	}
}

func TestLoginFailureShowsBackendText(t *testing.T) {
	_, c, store := fakeBackend(t)
	h := toLogin(t, Options{Client: c, Session: store})

	fillLogin(h, "admin@vastelijn.nl", "fout")
	h.press(tea.KeyTab)
	h.press(tea.KeyTab)
	if h.login().focusIndex != loginButton {
		t.Fatalf("expected focus on the button, got %d", h.login().focusIndex)
	}
	h.press(tea.KeyEnter)

	lm := h.login()
	if lm.err != "Onjuiste login" {
		t.Fatalf("unexpected error text %q", lm.err)
	}
	if !strings.Contains(lm.View(), "Onjuiste login") {
		t.Fatalf("error not rendered")
	}
	if lm.inputs[emailField].Value() != "admin@vastelijn.nl" || lm.inputs[passwordField].Value() != "fout" {
		t.Fatalf("fields were reset after a failed login")
	}
	if storedToken(t, store) != "" {
		t.Fatalf("token stored after a failed login")
	}
}

func TestLoginIgnoresSubmitWhileInFlight(t *testing.T) {
	calls := 0
	mock := client.NewMockClient(nil, client.MockClientOverwrites{
		PublicProvisioning: unconfigured(),
		Login: func(context.Context, string, string) (portal.LoginResult, error) {
			calls++
			return portal.LoginResult{}, &client.Error{Kind: client.KindUnauthorized, Status: 401, Message: "Onjuiste login"}
		},
	})
	h := toLogin(t, Options{Client: mock})
	fillLogin(h, "a@b.c", "x")
	h.press(tea.KeyTab)

	first := h.step(tea.KeyMsg{Type: tea.KeyEnter})
	if second := h.step(tea.KeyMsg{Type: tea.KeyEnter}); second != nil {
		t.Fatalf("second submit produced a command")
	}
	h.run(first)
	if calls != 1 {
		t.Fatalf("expected one login call, got %d", calls)
	}
	if h.login().submitting {
		t.Fatalf("submitting flag not reset")
	}
}

func TestLoginFocusCycles(t *testing.T) {
	mock := client.NewMockClient(nil, client.MockClientOverwrites{PublicProvisioning: unconfigured()})
	h := toLogin(t, Options{Client: mock})

	h.press(tea.KeyShiftTab)
	if got := h.login().focusIndex; got != loginButton {
		t.Fatalf("shift+tab from email should wrap to the button, got %d", got)
	}
	h.press(tea.KeyTab)
	if got := h.login().focusIndex; got != emailField {
		t.Fatalf("tab from the button should wrap to email, got %d", got)
	}
}
