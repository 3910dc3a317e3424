// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/session"
	"github.com/vastelijn/portal/internal/testutil"
)

func adminWithConfig(t *testing.T, store session.Store, cfg func(context.Context) (portal.AdminConfig, error)) *harness {
	t.Helper()
	mock := client.NewMockClient(nil, client.MockClientOverwrites{
		Me:                 func(context.Context) (portal.Account, error) { return portal.Account{ID: 1}, nil },
		AdminConfig:        cfg,
		PublicProvisioning: unconfigured(),
	})
	return newHarness(t, Options{Client: mock, Session: store, Route: RouteAdmin})
}

func TestAdminAuthFailureClearsTokenAndMountsLogin(t *testing.T) {
	store := session.NewMemoryStore()
	_ = store.Save(context.Background(), "expired")

	h := adminWithConfig(t, store, func(context.Context) (portal.AdminConfig, error) {
		return portal.AdminConfig{}, &client.Error{Kind: client.KindUnauthorized, Status: 401, Message: "Invalid token"}
	})
	h.expectView(loginView)
	if tok := storedToken(t, store); tok != "" {
		t.Fatalf("token %q survived an auth failure", tok)
	}
}

func TestAdminOtherErrorRendersDefaults(t *testing.T) {
	store := session.NewMemoryStore()
	_ = store.Save(context.Background(), "tok")

	h := adminWithConfig(t, store, func(context.Context) (portal.AdminConfig, error) {
		return portal.AdminConfig{}, &client.Error{Kind: client.KindOther, Status: 500, Message: "kapot"}
	})
	adm := h.admin()
	if adm.inputs[urlInput].Value() != "" || adm.inputs[checksumInput].Value() != "" {
		t.Fatalf("url and checksum must stay empty")
	}
	if adm.inputs[packageInput].Value() != portal.DefaultValues.PackageName {
		t.Fatalf("package name not defaulted: %q", adm.inputs[packageInput].Value())
	}
	if adm.inputs[receiverInput].Value() != portal.DefaultValues.AdminReceiver {
		t.Fatalf("receiver not defaulted: %q", adm.inputs[receiverInput].Value())
	}
	if !strings.Contains(adm.statusPanel(), i18n.T("admin.status.not_uploaded")) {
		t.Fatalf("status panel should show not uploaded:\n%s", adm.statusPanel())
	}
	if storedToken(t, store) != "tok" {
		t.Fatalf("a non-auth error must not clear the token")
	}
}

func TestAdminQRReadyFollowsFetchedConfig(t *testing.T) {
	cases := []struct {
		cfg  portal.AdminConfig
		want string
	}{
		{portal.AdminConfig{APKURL: "https://x/apk", Checksum: "abc"}, i18n.T("common.answer_yes")},
		{portal.AdminConfig{APKURL: "https://x/apk"}, i18n.T("common.answer_no")},
		{portal.AdminConfig{Checksum: "abc", APKFilename: "app.apk"}, i18n.T("common.answer_no")},
	}
	for _, tc := range cases {
		cfg := tc.cfg
		h := adminWithConfig(t, nil, func(context.Context) (portal.AdminConfig, error) { return cfg, nil })
		adm := h.admin()
		if adm.status != portal.StatusOf(cfg) {
			t.Fatalf("status %+v does not match %+v", adm.status, portal.StatusOf(cfg))
		}
		if !strings.Contains(adm.statusPanel(), tc.want) {
			t.Fatalf("expected %q in status panel:\n%s", tc.want, adm.statusPanel())
		}
	}
}

func TestAdminUploadWithoutFileSendsNothing(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	h.press(tea.KeyCtrlU)
	adm := h.admin()
	if adm.uploadStatus != i18n.T("admin.no_file") || adm.uploadTone != toneError {
		t.Fatalf("unexpected upload status %q", adm.uploadStatus)
	}
	if n := len(fake.RequestsTo(http.MethodPost, "/api/admin/upload-apk")); n != 0 {
		t.Fatalf("upload without a file sent %d requests", n)
	}
}

func TestAdminUploadFillsChecksumAndReloads(t *testing.T) {
	fake, c, store := fakeBackend(t)
	fake.CertChecksum = "Q2VydENoZWNrc3Vt="
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin, OpenFile: openBytes([]byte("PK\x03\x04apk"))})

	adm := h.admin()
	adm.inputs[fileInput].SetValue(filepath.Join("builds", "vastelijn-1.2.apk"))
	cmd := h.step(tea.KeyMsg{Type: tea.KeyCtrlU})
	if adm.uploadStatus != i18n.T("admin.uploading") {
		t.Fatalf("expected progress text, got %q", adm.uploadStatus)
	}
	msgs := h.collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one upload result, got %v", msgs)
	}
	reload := h.step(msgs[0])

	if adm.uploadStatus != "APK geupload en checksum berekend" || adm.uploadTone != toneOK {
		t.Fatalf("unexpected upload status %q", adm.uploadStatus)
	}
	if adm.inputs[checksumInput].Value() != fake.CertChecksum {
		t.Fatalf("checksum field not updated: %q", adm.inputs[checksumInput].Value())
	}
	if reload == nil {
		t.Fatalf("no reload scheduled after upload")
	}

	old := h.m.scope.id
	h.run(reload)
	if h.m.scope.id == old {
		t.Fatalf("admin view was not remounted")
	}
	if got := h.admin().status.APKFilename; got != "vastelijn-1.2.apk" {
		t.Fatalf("reloaded status shows %q", got)
	}
	reqs := fake.RequestsTo(http.MethodPost, "/api/admin/upload-apk")
	if len(reqs) != 1 || !strings.Contains(string(reqs[0].Body), `filename="vastelijn-1.2.apk"`) {
		t.Fatalf("upload request carried the wrong file name")
	}
}

func TestAdminUploadFailureDoesNotReload(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin, OpenFile: openBytes([]byte("text"))})

	adm := h.admin()
	adm.inputs[fileInput].SetValue("notes.txt")
	msgs := h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlU}))
	if len(msgs) != 1 {
		t.Fatalf("expected one upload result, got %v", msgs)
	}
	if reload := h.step(msgs[0]); reload != nil {
		t.Fatalf("failed upload scheduled a reload")
	}
	if adm.uploadStatus != "Fout: Bestand moet een .apk zijn" || adm.uploadTone != toneError {
		t.Fatalf("unexpected upload status %q", adm.uploadStatus)
	}
}

func TestAdminUploadPlainTextReplyStillReloads(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	fake.Fail(http.MethodPost, "/api/admin/upload-apk", testutil.Failure{Status: http.StatusOK, Raw: "OK"})
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin, OpenFile: openBytes([]byte("PK\x03\x04apk"))})

	adm := h.admin()
	adm.inputs[fileInput].SetValue("vastelijn.apk")
	msgs := h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlU}))
	if len(msgs) != 1 {
		t.Fatalf("expected one upload result, got %v", msgs)
	}
	reload := h.step(msgs[0])
	if adm.uploadTone != toneOK || adm.uploadStatus != i18n.T("admin.uploaded") {
		t.Fatalf("accepted upload rendered as %q (tone %d)", adm.uploadStatus, adm.uploadTone)
	}
	if reload == nil {
		t.Fatalf("no reload scheduled after an accepted upload")
	}
	old := h.m.scope.id
	h.run(reload)
	if h.m.scope.id == old {
		t.Fatalf("admin view was not remounted")
	}
}

func TestAdminUploadShowsReportedPackage(t *testing.T) {
	store := session.NewMemoryStore()
	_ = store.Save(context.Background(), "tok")
	mock := client.NewMockClient(nil, client.MockClientOverwrites{
		Me:                 func(context.Context) (portal.Account, error) { return portal.Account{ID: 1}, nil },
		AdminConfig:        func(context.Context) (portal.AdminConfig, error) { return portal.AdminConfig{}, nil },
		PublicProvisioning: unconfigured(),
		UploadAPK: func(context.Context, string, io.Reader) (portal.UploadResult, error) {
			return portal.UploadResult{Message: "ok", Filename: "a.apk", PackageName: "nl.example.kiosk"}, nil
		},
	})
	h := newHarness(t, Options{Client: mock, Session: store, Route: RouteAdmin, OpenFile: openBytes([]byte("x"))})

	adm := h.admin()
	adm.inputs[fileInput].SetValue("a.apk")
	msgs := h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlU}))
	if len(msgs) != 1 {
		t.Fatalf("expected one upload result, got %v", msgs)
	}
	h.step(msgs[0])
	if !strings.Contains(adm.View(), i18n.T("admin.package_detected", "nl.example.kiosk")) {
		t.Fatalf("reported package not shown")
	}
}

func TestAdminUploadWithoutPackageNameShowsNone(t *testing.T) {
	fake, c, store := fakeBackend(t)
	fake.CertChecksum = "Q2VydENoZWNrc3Vt="
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin, OpenFile: openBytes([]byte("PK"))})

	adm := h.admin()
	adm.inputs[fileInput].SetValue("vastelijn.apk")
	h.step(h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlU}))[0])
	if adm.detected != "" {
		t.Fatalf("package %q shown although the backend sent none", adm.detected)
	}
}

func TestAdminSaveAllBlankSendsNulls(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	adm := h.admin()
	for _, i := range []int{urlInput, checksumInput, packageInput, receiverInput} {
		adm.inputs[i].SetValue("")
	}
	cmd := h.step(tea.KeyMsg{Type: tea.KeyCtrlS})
	if adm.saveStatus != i18n.T("admin.saving") {
		t.Fatalf("expected progress text, got %q", adm.saveStatus)
	}
	msgs := h.collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("expected one save result, got %v", msgs)
	}
	reload := h.step(msgs[0])
	if adm.saveStatus != "Configuratie opgeslagen!" || reload == nil {
		t.Fatalf("save did not succeed: %q", adm.saveStatus)
	}

	reqs := fake.RequestsTo(http.MethodPut, "/api/admin/config")
	if len(reqs) != 1 {
		t.Fatalf("expected one save request, got %d", len(reqs))
	}
	var body map[string]any
	if err := json.Unmarshal(reqs[0].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	for _, k := range []string{"apk_url", "checksum", "package_name", "admin_receiver"} {
		v, ok := body[k]
		if !ok || v != nil {
			t.Fatalf("%s should be sent as null, body %s", k, reqs[0].Body)
		}
	}

	// The backend ignores nulls, so the reloaded view shows the stored values.
	h.run(reload)
	adm = h.admin()
	if adm.inputs[urlInput].Value() != testutil.DefaultAPKURL || !adm.status.QRReady {
		t.Fatalf("reloaded view lost the stored config: %+v", adm.status)
	}
}

func TestAdminSaveSendsValuesVerbatim(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	h.admin().inputs[urlInput].SetValue(" https://cdn.example/app.apk ")
	h.run(h.step(tea.KeyMsg{Type: tea.KeyCtrlS}))

	if got := fake.Config().APKURL; got != " https://cdn.example/app.apk " {
		t.Fatalf("stored url %q", got)
	}
}

func TestAdminSaveFailureShowsError(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	fake.Fail(http.MethodPut, "/api/admin/config", testutil.Failure{Status: http.StatusInternalServerError, Detail: "boom"})
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	adm := h.admin()
	msgs := h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlS}))
	if reload := h.step(msgs[0]); reload != nil {
		t.Fatalf("failed save scheduled a reload")
	}
	if adm.saveStatus != "Fout: boom" || adm.saveTone != toneError {
		t.Fatalf("unexpected save status %q", adm.saveStatus)
	}
}

func TestAdminReloadTimerDroppedAfterLeaving(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	msgs := h.collect(h.step(tea.KeyMsg{Type: tea.KeyCtrlS}))
	reload := h.step(msgs[0])
	h.press(tea.KeyCtrlP)
	h.expectView(publicView)

	h.run(reload)
	h.expectView(publicView)
}

func TestAdminLogoutClearsToken(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	h.press(tea.KeyCtrlL)
	h.expectView(publicView)
	if storedToken(t, store) != "" {
		t.Fatalf("logout kept the token")
	}
}

func TestAdminPublicKeepsToken(t *testing.T) {
	fake, c, store := fakeBackend(t)
	loggedIn(t, fake, store)
	h := newHarness(t, Options{Client: c, Session: store, Route: RouteAdmin})

	h.press(tea.KeyCtrlP)
	h.expectView(publicView)
	if storedToken(t, store) == "" {
		t.Fatalf("switching to the public view dropped the token")
	}
}

func TestAdminPickerSelectsPackage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"app.apk", "notes.txt", ".hidden.apk"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o700); err != nil {
		t.Fatal(err)
	}

	h := adminWithConfig(t, nil, func(context.Context) (portal.AdminConfig, error) { return portal.AdminConfig{}, nil })
	h.m.deps.startDir = dir

	h.press(tea.KeyCtrlO)
	adm := h.admin()
	if adm.picker == nil {
		t.Fatalf("picker did not open")
	}
	var names []string
	for _, e := range adm.picker.entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "sub,app.apk" {
		t.Fatalf("unexpected picker entries %v", names)
	}

	h.press(tea.KeyDown)
	h.press(tea.KeyEnter)
	if adm.picker != nil {
		t.Fatalf("picker still open after choosing a file")
	}
	if got := adm.inputs[fileInput].Value(); got != filepath.Join(dir, "app.apk") {
		t.Fatalf("file field = %q", got)
	}
	if adm.focus != slotUpload {
		t.Fatalf("focus should move to the upload button, got %d", adm.focus)
	}
}

func TestAdminFocusCycle(t *testing.T) {
	h := adminWithConfig(t, nil, func(context.Context) (portal.AdminConfig, error) { return portal.AdminConfig{}, nil })
	adm := h.admin()
	for i := 1; i < slotCount; i++ {
		h.press(tea.KeyTab)
	}
	if adm.focus != slotSave {
		t.Fatalf("expected the save button, got %d", adm.focus)
	}
	h.press(tea.KeyTab)
	if adm.focus != slotFile {
		t.Fatalf("focus did not wrap, got %d", adm.focus)
	}
	h.press(tea.KeyShiftTab)
	if adm.focus != slotSave {
		t.Fatalf("shift+tab did not wrap backwards, got %d", adm.focus)
	}
}
