// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"io"

	"github.com/vastelijn/portal/internal/portal"
)

type Client interface {
	// --- Public ---

	// PublicProvisioning fetches GET /api/public/provisioning.
	PublicProvisioning(ctx context.Context) (portal.Provisioning, error)

	// APKURL is the direct download link, GET /api/public/apk under the base.
	APKURL() string

	// DownloadAPK streams the public package into w and returns the file name
	// announced by the backend together with the number of bytes written.
	DownloadAPK(ctx context.Context, w io.Writer) (string, int64, error)

	// --- Authentication ---

	Login(ctx context.Context, email, password string) (portal.LoginResult, error)

	Register(ctx context.Context, email, password string) (portal.Account, error)

	// Me probes whether the stored credential is still accepted.
	Me(ctx context.Context) (portal.Account, error)

	// --- Admin ---

	AdminConfig(ctx context.Context) (portal.AdminConfig, error)

	SaveConfig(ctx context.Context, update portal.ConfigUpdate) (portal.AdminConfig, error)

	UploadAPK(ctx context.Context, filename string, r io.Reader) (portal.UploadResult, error)

	DeleteAPK(ctx context.Context) (portal.Message, error)

	Stats(ctx context.Context) (portal.Stats, error)
}
