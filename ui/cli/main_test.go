// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vastelijn/portal/internal/session"
	"github.com/vastelijn/portal/internal/testutil"
)

// cliEnv is an isolated home directory plus a fake portal backend.
type cliEnv struct {
	t       *testing.T
	fake    *testutil.FakePortal
	base    string
	home    string
	session string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(home))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	fake, base := testutil.StartFakePortal(t)
	fake.AddUser("admin@vastelijn.nl", "geheim")
	return &cliEnv{t: t, fake: fake, base: base, home: home, session: filepath.Join(home, "session.db")}
}

// run executes one command line against a fresh command tree.
func (e *cliEnv) run(stdin string, args ...string) (string, error) {
	e.t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--api-base", e.base, "--language", "en", "--session.path", e.session))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) login() {
	e.t.Helper()
	_, err := e.run("", "login", "-e", "admin@vastelijn.nl", "-p", "geheim")
	require.NoError(e.t, err)
}

func TestLoginStoresCredential(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("", "login", "--email", "admin@vastelijn.nl", "--password", "geheim")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin@vastelijn.nl")

	out, err = e.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "admin@vastelijn.nl (role: admin)")

	store, err := session.OpenSQLStore(context.Background(), e.session, session.Origin(e.base))
	require.NoError(t, err)
	defer store.Close()
	tok, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("admin@vastelijn.nl\ngeheim\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin@vastelijn.nl")
}

func TestLoginFailureReturnsBackendText(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("", "login", "-e", "admin@vastelijn.nl", "-p", "fout")
	require.Error(t, err)
	assert.Equal(t, "Onjuiste login", err.Error())
}

func TestLogoutForgetsCredential(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	out, err := e.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = e.run("", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not logged in")
	assert.Contains(t, err.Error(), "Not authenticated")
}

func TestRegister(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("", "register", "-e", "second@vastelijn.nl", "-p", "x")
	require.Error(t, err)
	assert.Equal(t, "Registratie is uitgeschakeld. Admin account bestaat al.", err.Error())

	fresh, base := testutil.StartFakePortal(t)
	e.fake, e.base = fresh, base
	out, err := e.run("", "register", "-e", "first@vastelijn.nl", "-p", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "Account created: first@vastelijn.nl (admin)")
}

func TestStatusConfigured(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Configured")
	assert.Contains(t, out, "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=")
	assert.Contains(t, out, e.base+"/public/apk")
	assert.Contains(t, out, testutil.Instructions[0])

	out, err = e.run("", "status", "--json")
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, testutil.DefaultAPKURL, payload["android.app.extra.PROVISIONING_DEVICE_ADMIN_PACKAGE_DOWNLOAD_LOCATION"])
}

func TestStatusNotConfigured(t *testing.T) {
	e := newCLIEnv(t)
	cfg := e.fake.Config()
	cfg.Checksum = ""
	e.fake.SetConfig(cfg)

	out, err := e.run("", "status", "--link")
	require.NoError(t, err)
	assert.Contains(t, out, "Not configured")
	assert.Contains(t, out, testutil.NotConfiguredMessage)
	assert.NotContains(t, out, "qrserver")
}

func TestConfigSetSendsOnlyGivenFlags(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	out, err := e.run("", "config", "set", "--apk-url", "https://cdn.example/app.apk")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved")

	reqs := e.fake.RequestsTo(http.MethodPut, "/api/admin/config")
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"apk_url":"https://cdn.example/app.apk","checksum":null,"package_name":null,"admin_receiver":null}`, string(reqs[0].Body))
	assert.Equal(t, "https://cdn.example/app.apk", e.fake.Config().APKURL)
	assert.Equal(t, testutil.DefaultChecksum, e.fake.Config().Checksum)

	_, err = e.run("", "config", "set")
	require.Error(t, err, "config set without flags must be rejected")
}

func TestConfigShow(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	out, err := e.run("", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, testutil.DefaultAPKURL)
	assert.Contains(t, out, "Not uploaded")
	assert.Regexp(t, `QR Ready\s+Yes`, out)
}

func TestAdminCommandsNeedLogin(t *testing.T) {
	e := newCLIEnv(t)

	for _, args := range [][]string{{"config", "show"}, {"stats"}, {"apk", "delete"}} {
		_, err := e.run("", args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "Not logged in", args)
	}
}

func TestUploadDownloadDelete(t *testing.T) {
	e := newCLIEnv(t)
	e.fake.CertChecksum = "Q2VydA=="
	e.login()

	apk := filepath.Join(e.home, "build", "vastelijn-2.0.apk")
	require.NoError(t, os.MkdirAll(filepath.Dir(apk), 0o700))
	require.NoError(t, os.WriteFile(apk, []byte("PK\x03\x04payload"), 0o600))

	out, err := e.run("", "upload", apk)
	require.NoError(t, err)
	assert.Contains(t, out, "APK geupload en checksum berekend")
	assert.Contains(t, out, "Q2VydA==")
	assert.Equal(t, "vastelijn-2.0.apk", e.fake.Config().APKFilename)

	target := filepath.Join(e.home, "out", "copy.apk")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o700))
	out, err = e.run("", "download", "-o", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04payload", string(data))

	// Without -o the announced name is used in the working directory.
	_, err = e.run("", "download")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.home, "vastelijn-2.0.apk"))

	out, err = e.run("", "stats")
	require.NoError(t, err)
	assert.Regexp(t, `Total downloads\s+2`, out)

	out, err = e.run("", "apk", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "APK verwijderd")

	_, err = e.run("", "download")
	require.Error(t, err)
	assert.Equal(t, "Geen APK beschikbaar", err.Error())
}

func TestUploadRejectsNonAPK(t *testing.T) {
	e := newCLIEnv(t)
	e.login()

	notes := filepath.Join(e.home, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0o600))
	_, err := e.run("", "upload", notes)
	require.Error(t, err)
	assert.Equal(t, "Bestand moet een .apk zijn", err.Error())
}

func TestFirstRunWritesConfig(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run("", "status")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(e.home, ".config", "vastelijn-portal", "portal.yaml"))
}

func TestVersionCommand(t *testing.T) {
	e := newCLIEnv(t)

	out, err := e.run("", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version: ")
}

func TestRootArgumentSelectsPortalAndRoute(t *testing.T) {
	newCLIEnv(t)
	a := newApp()
	root := newRootCmd(a)
	root.SetContext(context.Background())
	require.NoError(t, root.ParseFlags([]string{"--session.ephemeral"}))

	require.NoError(t, a.setup(root, []string{"https://portal.example/api#admin"}))
	defer a.close()
	assert.Equal(t, "https://portal.example/api", a.cfg.APIBase)
	assert.Equal(t, "admin", a.cfg.Route)
}
