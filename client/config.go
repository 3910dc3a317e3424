// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/vastelijn/portal/buildvars"
)

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets a per-request deadline. Zero leaves deadlines to the
// transport and the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) { c.userAgent = ua }
}

func defaultOptions(c *HTTPClient) {
	c.http = http.DefaultClient
	c.userAgent = buildvars.UserAgent()
}

// NormalizeBase removes one trailing "/" and then one trailing "/api", so
// both "https://portal/api/" and "https://portal" address the same paths.
func NormalizeBase(raw string) string {
	base := strings.TrimSpace(raw)
	base = strings.TrimSuffix(base, "/")
	base = strings.TrimSuffix(base, "/api")
	return base
}
