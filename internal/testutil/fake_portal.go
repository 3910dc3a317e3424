// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil contains an in-memory portal backend used by tests and by
// the fakeportal development server.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vastelijn/portal/internal/portal"
)

// Backend default values, matching a freshly installed portal.
const (
	DefaultAPKURL   = "https://portal.vastelijn.eu/api/public/apk"
	DefaultChecksum = "Ytae8RlFLC6/iaNh93mGXLyB8tnayAGrgYSKnsXNbTQ="

	NotConfiguredMessage = "APK nog niet geconfigureerd. Admin moet eerst een APK uploaden."
)

// Instructions is the instruction list served with a configured portal.
var Instructions = []string{
	"1. Factory reset het Android apparaat",
	"2. Kies taal en verbind met WiFi",
	"3. Tik 6x op het welkomstscherm om QR setup te starten",
	"4. Scan de QR code hieronder",
	"5. Wacht tot de app is gedownload en geinstalleerd",
	"6. De VasteLijn app start automatisch in kiosk mode",
}

// RecordedRequest is a request the fake backend received.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Failure is a canned error reply. A non-empty Raw is written verbatim
// instead of a JSON detail body.
type Failure struct {
	Status int
	Detail string
	Raw    string
}

// FakePortal mimics the provisioning backend's REST API in memory.
type FakePortal struct {
	mu        sync.Mutex
	mux       *http.ServeMux
	users     map[string]string
	tokens    map[string]string
	config    portal.AdminConfig
	apk       []byte
	downloads []portal.Download
	requests  []RecordedRequest
	failures  map[string]Failure

	// CertChecksum is reported by uploads as the signing certificate
	// checksum. Empty simulates a backend without apksigner.
	CertChecksum string
}

// NewFakePortal returns a backend with the default configuration and no users.
func NewFakePortal() *FakePortal {
	f := &FakePortal{
		mux:      http.NewServeMux(),
		users:    map[string]string{},
		tokens:   map[string]string{},
		failures: map[string]Failure{},
		config: portal.AdminConfig{
			APKURL:        DefaultAPKURL,
			Checksum:      DefaultChecksum,
			PackageName:   portal.DefaultValues.PackageName,
			AdminReceiver: portal.DefaultValues.AdminReceiver,
		},
	}
	f.mux.HandleFunc("GET /api/health", f.health)
	f.mux.HandleFunc("GET /api/public/provisioning", f.provisioning)
	f.mux.HandleFunc("GET /api/public/apk", f.downloadAPK)
	f.mux.HandleFunc("POST /api/auth/register", f.register)
	f.mux.HandleFunc("POST /api/auth/login", f.login)
	f.mux.HandleFunc("GET /api/me", f.authed(f.me))
	f.mux.HandleFunc("GET /api/admin/config", f.authed(f.getConfig))
	f.mux.HandleFunc("PUT /api/admin/config", f.authed(f.putConfig))
	f.mux.HandleFunc("POST /api/admin/upload-apk", f.authed(f.uploadAPK))
	f.mux.HandleFunc("DELETE /api/admin/apk", f.authed(f.deleteAPK))
	f.mux.HandleFunc("GET /api/admin/stats", f.authed(f.stats))
	return f
}

// StartFakePortal serves a new FakePortal on a local test server and returns
// it with its API base ("http://127.0.0.1:port/api").
func StartFakePortal(t testing.TB) (*FakePortal, string) {
	t.Helper()
	f := NewFakePortal()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv.URL + "/api"
}

// ServeHTTP records the request, applies any configured failure, and
// dispatches to the endpoint handlers.
func (f *FakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	fail, failing := f.failures[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if failing {
		if fail.Raw != "" {
			w.WriteHeader(fail.Status)
			_, _ = io.WriteString(w, fail.Raw)
			return
		}
		writeError(w, fail.Status, fail.Detail)
		return
	}
	f.mux.ServeHTTP(w, r)
}

// --- Setup helpers ---

// AddUser registers an account directly.
func (f *FakePortal) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// IssueToken returns a valid bearer token for email.
func (f *FakePortal) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := uuid.NewString()
	f.tokens[tok] = email
	return tok
}

// RevokeTokens invalidates every issued token.
func (f *FakePortal) RevokeTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = map[string]string{}
}

// SetConfig replaces the stored configuration.
func (f *FakePortal) SetConfig(cfg portal.AdminConfig) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.config = cfg
}

// Config returns the stored configuration.
func (f *FakePortal) Config() portal.AdminConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

// SetAPK stores a package as if it had been uploaded.
func (f *FakePortal) SetAPK(filename string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apk = append([]byte(nil), data...)
	f.config.APKFilename = filename
	f.config.FileHash = sha256Hex(data)
}

// Fail makes every request for method and path reply with the failure.
func (f *FakePortal) Fail(method, path string, fail Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = fail
}

// ClearFailures removes all canned failures.
func (f *FakePortal) ClearFailures() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = map[string]Failure{}
}

// Requests returns a copy of the request log.
func (f *FakePortal) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsTo returns the logged requests for method and path.
func (f *FakePortal) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// --- Handlers ---

func (f *FakePortal) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": "VasteLijn Portal"})
}

func (f *FakePortal) provisioning(w http.ResponseWriter, _ *http.Request) {
	cfg := f.Config()
	if cfg.APKURL == "" || cfg.Checksum == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"configured":   false,
			"message":      NotConfiguredMessage,
			"qr_json":      nil,
			"instructions": []string{},
		})
		return
	}
	payload := map[string]any{
		"android.app.extra.PROVISIONING_DEVICE_ADMIN_COMPONENT_NAME":            cfg.AdminReceiver,
		"android.app.extra.PROVISIONING_DEVICE_ADMIN_PACKAGE_DOWNLOAD_LOCATION": cfg.APKURL,
		"android.app.extra.PROVISIONING_DEVICE_ADMIN_SIGNATURE_CHECKSUM":        urlSafeChecksum(cfg.Checksum),
		"android.app.extra.PROVISIONING_SKIP_ENCRYPTION":                        true,
		"android.app.extra.PROVISIONING_LEAVE_ALL_SYSTEM_APPS_ENABLED":          true,
	}
	qrJSON, _ := json.Marshal(payload)
	writeJSON(w, http.StatusOK, map[string]any{
		"configured":   true,
		"qr_json":      string(qrJSON),
		"qr_payload":   payload,
		"apk_url":      cfg.APKURL,
		"instructions": Instructions,
	})
}

// urlSafeChecksum converts standard Base64 to the unpadded URL-safe form
// Android expects.
func urlSafeChecksum(sum string) string {
	sum = strings.NewReplacer("+", "-", "/", "_").Replace(sum)
	return strings.TrimRight(sum, "=")
}

func (f *FakePortal) downloadAPK(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	name, data := f.config.APKFilename, f.apk
	if name != "" {
		host, _, _ := net.SplitHostPort(r.RemoteAddr)
		f.downloads = append(f.downloads, portal.Download{
			ID:           len(f.downloads) + 1,
			IPAddress:    host,
			DownloadedAt: time.Now().UTC().Format("2006-01-02T15:04:05.000000"),
		})
	}
	f.mu.Unlock()

	if name == "" {
		writeError(w, http.StatusNotFound, "Geen APK beschikbaar")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.android.package-archive")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

func (f *FakePortal) register(w http.ResponseWriter, r *http.Request) {
	var in portal.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "Ongeldige invoer")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.users) > 0 {
		writeError(w, http.StatusForbidden, "Registratie is uitgeschakeld. Admin account bestaat al.")
		return
	}
	f.users[in.Email] = in.Password
	writeJSON(w, http.StatusOK, portal.Account{ID: 1, Email: in.Email, Role: "admin"})
}

func (f *FakePortal) login(w http.ResponseWriter, r *http.Request) {
	var in portal.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Ongeldige invoer")
		return
	}
	f.mu.Lock()
	pw, ok := f.users[in.Email]
	f.mu.Unlock()
	if !ok || pw != in.Password {
		writeError(w, http.StatusUnauthorized, "Onjuiste login")
		return
	}
	writeJSON(w, http.StatusOK, portal.LoginResult{AccessToken: f.IssueToken(in.Email), TokenType: "bearer"})
}

// authed rejects requests without a known bearer token the way the backend's
// OAuth2 dependency does.
func (f *FakePortal) authed(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || tok == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		f.mu.Lock()
		email, known := f.tokens[tok]
		f.mu.Unlock()
		if !known {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r, email)
	}
}

func (f *FakePortal) me(w http.ResponseWriter, _ *http.Request, email string) {
	writeJSON(w, http.StatusOK, portal.Account{ID: 1, Email: email, Role: "admin"})
}

func (f *FakePortal) getConfig(w http.ResponseWriter, _ *http.Request, _ string) {
	writeJSON(w, http.StatusOK, f.Config())
}

func (f *FakePortal) putConfig(w http.ResponseWriter, r *http.Request, _ string) {
	var in portal.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Ongeldige invoer")
		return
	}
	f.mu.Lock()
	if in.APKURL != nil {
		f.config.APKURL = *in.APKURL
	}
	if in.Checksum != nil {
		f.config.Checksum = *in.Checksum
	}
	if in.PackageName != nil {
		f.config.PackageName = *in.PackageName
	}
	if in.AdminReceiver != nil {
		f.config.AdminReceiver = *in.AdminReceiver
	}
	cfg := f.config
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, cfg)
}

func (f *FakePortal) uploadAPK(w http.ResponseWriter, r *http.Request, _ string) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Bestand ontbreekt")
		return
	}
	defer file.Close()
	if !strings.HasSuffix(header.Filename, ".apk") {
		writeError(w, http.StatusBadRequest, "Bestand moet een .apk zijn")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	f.mu.Lock()
	f.apk = data
	f.config.APKFilename = header.Filename
	f.config.FileHash = sha256Hex(data)
	if f.CertChecksum != "" {
		f.config.Checksum = f.CertChecksum
	}
	res := portal.UploadResult{
		Filename:     header.Filename,
		FileHash:     f.config.FileHash,
		CertChecksum: f.CertChecksum,
		Message:      "APK geupload. Voer handmatig de checksum in.",
	}
	if f.CertChecksum != "" {
		res.Message = "APK geupload en checksum berekend"
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, res)
}

func (f *FakePortal) deleteAPK(w http.ResponseWriter, _ *http.Request, _ string) {
	f.mu.Lock()
	f.apk = nil
	f.config.APKFilename = ""
	f.config.FileHash = ""
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, portal.Message{Message: "APK verwijderd"})
}

func (f *FakePortal) stats(w http.ResponseWriter, _ *http.Request, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	recent := make([]portal.Download, 0, 10)
	for i := len(f.downloads) - 1; i >= 0 && len(recent) < 10; i-- {
		recent = append(recent, f.downloads[i])
	}
	n := len(f.downloads)
	writeJSON(w, http.StatusOK, portal.Stats{
		TotalDownloads:  n,
		TodayDownloads:  n,
		WeekDownloads:   n,
		RecentDownloads: recent,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
