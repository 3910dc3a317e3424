// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package qr

import "testing"

func TestEncodeComponent(t *testing.T) {
	cases := map[string]string{
		"":                       "",
		"abcXYZ019":              "abcXYZ019",
		"-_.!~*'()":              "-_.!~*'()",
		"a b":                    "a%20b",
		`{"a":"b/c"}`:            "%7B%22a%22%3A%22b%2Fc%22%7D",
		"x=1&y=2+3":              "x%3D1%26y%3D2%2B3",
		"é":                      "%C3%A9",
		"Ytae8RlFLC6/iaNh93m+Q=": "Ytae8RlFLC6%2FiaNh93m%2BQ%3D",
	}
	for in, want := range cases {
		if got := EncodeComponent(in); got != want {
			t.Fatalf("EncodeComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImageURL(t *testing.T) {
	got := ImageURL("", `{"k":1}`, 0)
	want := "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=%7B%22k%22%3A1%7D"
	if got != want {
		t.Fatalf("ImageURL = %q, want %q", got, want)
	}

	got = ImageURL("https://qr.example/render?fmt=png", "a b", 120)
	want = "https://qr.example/render?fmt=png&size=120x120&data=a%20b"
	if got != want {
		t.Fatalf("ImageURL with query = %q, want %q", got, want)
	}
}

func TestPayloadFrom(t *testing.T) {
	payload := `{"android.app.extra.PROVISIONING_WIFI_SSID":"x y"}`
	p, ok := PayloadFrom(ImageURL(DefaultEndpoint, payload, DefaultSize))
	if !ok {
		t.Fatalf("expected payload to be found")
	}
	if p != EncodeComponent(payload) {
		t.Fatalf("payload = %q, want %q", p, EncodeComponent(payload))
	}
	if _, ok := PayloadFrom("https://example.org/"); ok {
		t.Fatalf("expected no payload in plain link")
	}
}
