// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/session"
)

// Request describes a single API call. A nil Body sends no payload, a *Form
// is sent as multipart/form-data, anything else is JSON-encoded.
type Request struct {
	Method  string
	Body    any
	Headers map[string]string
}

// Form is a multipart payload carrying one file.
type Form struct {
	Field    string
	Filename string
	Content  io.Reader
}

// HTTPClient is the Client implementation backed by net/http.
type HTTPClient struct {
	base      string
	store     session.Store
	http      *http.Client
	timeout   time.Duration
	userAgent string
}

var _ Client = (*HTTPClient)(nil)

// New returns a client for the API rooted at base. The credential is read
// from store on every request; a nil store behaves as an empty one.
func New(base string, store session.Store, opts ...Option) *HTTPClient {
	if store == nil {
		store = session.NewMemoryStore()
	}
	c := &HTTPClient{base: NormalizeBase(base), store: store}
	defaultOptions(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the normalized API base.
func (c *HTTPClient) Base() string { return c.base }

// Call performs a request against path (an absolute API path such as
// "/api/me") and returns the decoded JSON reply. Non-JSON replies are
// returned as {"raw": text} and an empty body yields nil.
func (c *HTTPClient) Call(ctx context.Context, path string, req Request) (any, error) {
	status, body, err := c.send(ctx, path, req)
	if err != nil {
		return nil, err
	}
	result := decodeBody(body)
	if !success(status) {
		return nil, newStatusError(status, result)
	}
	return result, nil
}

// callInto is Call with the reply decoded into out. A successful reply that
// is not JSON leaves out untouched.
func (c *HTTPClient) callInto(ctx context.Context, path string, req Request, out any) error {
	status, body, err := c.send(ctx, path, req)
	if err != nil {
		return err
	}
	if !success(status) {
		return newStatusError(status, decodeBody(body))
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	// A 2xx reply that is not JSON still counts as success; out stays zero.
	if !json.Valid(body) {
		logging.Debugf("api: %s %s returned a non-JSON body: %q", req.Method, path, body)
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindOther, Status: status, Message: fmt.Sprintf("invalid response from %s: %v", path, err), Err: err}
	}
	return nil
}

func (c *HTTPClient) send(ctx context.Context, path string, req Request) (int, []byte, error) {
	resp, err := c.do(ctx, path, req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindOther, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	return resp.StatusCode, body, nil
}

// do builds and executes the HTTP request. The caller owns the response body.
func (c *HTTPClient) do(ctx context.Context, path string, req Request) (*http.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}
	resp, err := c.roundTrip(ctx, method, path, req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, req Request) (*http.Response, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}

	hreq, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		if rc, ok := body.(io.Closer); ok {
			_ = rc.Close()
		}
		return nil, &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}
	token, err := c.store.Get(ctx)
	if err != nil {
		logging.Warnf("api: could not read credential: %v", err)
	}
	if token != "" {
		hreq.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := uuid.NewString()
	hreq.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		logging.Debugf("api: %s %s failed after %s (request %s): %v", method, path, time.Since(start), requestID, err)
		return nil, &Error{Kind: KindOther, Message: err.Error(), Err: err}
	}
	logging.Debugf("api: %s %s -> %d in %s (request %s)", method, path, resp.StatusCode, time.Since(start), requestID)
	return resp, nil
}

// cancelBody releases a per-request timeout once the body has been consumed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// encodeBody returns the request body and the content type to announce.
func encodeBody(v any) (io.Reader, string, error) {
	switch b := v.(type) {
	case nil:
		return nil, "", nil
	case *Form:
		return encodeForm(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// encodeForm streams the file through a pipe so large packages are never
// held in memory.
func encodeForm(f *Form) (io.Reader, string, error) {
	if f.Content == nil {
		return nil, "", fmt.Errorf("form %q has no content", f.Field)
	}
	field := f.Field
	if field == "" {
		field = "file"
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(field, path.Base(f.Filename))
		if err == nil {
			_, err = io.Copy(part, f.Content)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType(), nil
}

func decodeBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return map[string]any{"raw": string(body)}
	}
	return v
}

func success(status int) bool { return status >= 200 && status < 300 }

// --- Typed endpoints ---

func (c *HTTPClient) PublicProvisioning(ctx context.Context) (portal.Provisioning, error) {
	var p portal.Provisioning
	err := c.callInto(ctx, "/api/public/provisioning", Request{}, &p)
	return p, err
}

func (c *HTTPClient) APKURL() string { return c.base + "/api/public/apk" }

func (c *HTTPClient) DownloadAPK(ctx context.Context, w io.Writer) (string, int64, error) {
	resp, err := c.do(ctx, "/api/public/apk", Request{})
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()
	if !success(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, newStatusError(resp.StatusCode, decodeBody(body))
	}
	name := "vastelijn.apk"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			name = path.Base(params["filename"])
		}
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return name, n, &Error{Kind: KindOther, Status: resp.StatusCode, Message: err.Error(), Err: err}
	}
	return name, n, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (portal.LoginResult, error) {
	var r portal.LoginResult
	err := c.callInto(ctx, "/api/auth/login", Request{
		Method: http.MethodPost,
		Body:   portal.LoginRequest{Email: email, Password: password},
	}, &r)
	return r, err
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (portal.Account, error) {
	var a portal.Account
	err := c.callInto(ctx, "/api/auth/register", Request{
		Method: http.MethodPost,
		Body:   portal.LoginRequest{Email: email, Password: password},
	}, &a)
	return a, err
}

func (c *HTTPClient) Me(ctx context.Context) (portal.Account, error) {
	var a portal.Account
	err := c.callInto(ctx, "/api/me", Request{}, &a)
	return a, err
}

func (c *HTTPClient) AdminConfig(ctx context.Context) (portal.AdminConfig, error) {
	var cfg portal.AdminConfig
	err := c.callInto(ctx, "/api/admin/config", Request{}, &cfg)
	return cfg, err
}

func (c *HTTPClient) SaveConfig(ctx context.Context, update portal.ConfigUpdate) (portal.AdminConfig, error) {
	var cfg portal.AdminConfig
	err := c.callInto(ctx, "/api/admin/config", Request{Method: http.MethodPut, Body: update}, &cfg)
	return cfg, err
}

func (c *HTTPClient) UploadAPK(ctx context.Context, filename string, r io.Reader) (portal.UploadResult, error) {
	var res portal.UploadResult
	err := c.callInto(ctx, "/api/admin/upload-apk", Request{
		Method: http.MethodPost,
		Body:   &Form{Field: "file", Filename: filename, Content: r},
	}, &res)
	return res, err
}

func (c *HTTPClient) DeleteAPK(ctx context.Context) (portal.Message, error) {
	var m portal.Message
	err := c.callInto(ctx, "/api/admin/apk", Request{Method: http.MethodDelete}, &m)
	return m, err
}

func (c *HTTPClient) Stats(ctx context.Context) (portal.Stats, error) {
	var s portal.Stats
	err := c.callInto(ctx, "/api/admin/stats", Request{}, &s)
	return s, err
}
