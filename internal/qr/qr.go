// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package qr builds links to the external QR image renderer. The client never
// draws QR codes itself.
package qr

import (
	"fmt"
	"strings"
)

const (
	// DefaultEndpoint is the public QR rendering service.
	DefaultEndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	// DefaultSize is the rendered edge length in pixels.
	DefaultSize = 300
)

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes s the way browsers encode a URI component:
// letters, digits and -_.!~*'() pass through, every other UTF-8 byte becomes
// %XX. net/url's QueryEscape differs (space as '+', escapes !*'()).
func EncodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// ImageURL returns the renderer link for payload at size x size pixels.
// Empty endpoint and non-positive size fall back to the defaults.
func ImageURL(endpoint, payload string, size int) string {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if size <= 0 {
		size = DefaultSize
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%ssize=%dx%d&data=%s", endpoint, sep, size, size, EncodeComponent(payload))
}

// PayloadFrom extracts the still-encoded data parameter from an image link
// produced by ImageURL.
func PayloadFrom(link string) (string, bool) {
	i := strings.Index(link, "&data=")
	if i < 0 {
		return "", false
	}
	rest := link[i+len("&data="):]
	if j := strings.IndexByte(rest, '&'); j >= 0 {
		rest = rest[:j]
	}
	return rest, true
}
