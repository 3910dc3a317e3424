// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.
package client

import (
	"context"
	"io"

	"github.com/vastelijn/portal/internal/portal"
)

type MockClient struct {
	BaseClient Client
	Overwrites MockClientOverwrites
}

type MockClientOverwrites struct {
	AdminConfig        func(ctx context.Context) (portal.AdminConfig, error)
	APKURL             func() string
	DeleteAPK          func(ctx context.Context) (portal.Message, error)
	DownloadAPK        func(ctx context.Context, w io.Writer) (string, int64, error)
	Login              func(ctx context.Context, email, password string) (portal.LoginResult, error)
	Me                 func(ctx context.Context) (portal.Account, error)
	PublicProvisioning func(ctx context.Context) (portal.Provisioning, error)
	Register           func(ctx context.Context, email, password string) (portal.Account, error)
	SaveConfig         func(ctx context.Context, update portal.ConfigUpdate) (portal.AdminConfig, error)
	Stats              func(ctx context.Context) (portal.Stats, error)
	UploadAPK          func(ctx context.Context, filename string, r io.Reader) (portal.UploadResult, error)
}

var _ Client = (*MockClient)(nil)

// client := NewMockClient(nil, MockClientOverwrites{ /* overwrite Client methods here... */ })
func NewMockClient(base Client, overwrites MockClientOverwrites) *MockClient {
	return &MockClient{
		BaseClient: base,
		Overwrites: overwrites,
	}
}

// --- Client implementation ---

func (m *MockClient) AdminConfig(ctx context.Context) (portal.AdminConfig, error) {
	if m.Overwrites.AdminConfig != nil {
		return m.Overwrites.AdminConfig(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.AdminConfig(ctx)
	}
	panic("MockClient.AdminConfig not implemented")
}
func (m *MockClient) APKURL() string {
	if m.Overwrites.APKURL != nil {
		return m.Overwrites.APKURL()
	} else if m.BaseClient != nil {
		return m.BaseClient.APKURL()
	}
	panic("MockClient.APKURL not implemented")
}
func (m *MockClient) DeleteAPK(ctx context.Context) (portal.Message, error) {
	if m.Overwrites.DeleteAPK != nil {
		return m.Overwrites.DeleteAPK(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.DeleteAPK(ctx)
	}
	panic("MockClient.DeleteAPK not implemented")
}
func (m *MockClient) DownloadAPK(ctx context.Context, w io.Writer) (string, int64, error) {
	if m.Overwrites.DownloadAPK != nil {
		return m.Overwrites.DownloadAPK(ctx, w)
	} else if m.BaseClient != nil {
		return m.BaseClient.DownloadAPK(ctx, w)
	}
	panic("MockClient.DownloadAPK not implemented")
}
func (m *MockClient) Login(ctx context.Context, email, password string) (portal.LoginResult, error) {
	if m.Overwrites.Login != nil {
		return m.Overwrites.Login(ctx, email, password)
	} else if m.BaseClient != nil {
		return m.BaseClient.Login(ctx, email, password)
	}
	panic("MockClient.Login not implemented")
}
func (m *MockClient) Me(ctx context.Context) (portal.Account, error) {
	if m.Overwrites.Me != nil {
		return m.Overwrites.Me(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.Me(ctx)
	}
	panic("MockClient.Me not implemented")
}
func (m *MockClient) PublicProvisioning(ctx context.Context) (portal.Provisioning, error) {
	if m.Overwrites.PublicProvisioning != nil {
		return m.Overwrites.PublicProvisioning(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.PublicProvisioning(ctx)
	}
	panic("MockClient.PublicProvisioning not implemented")
}
func (m *MockClient) Register(ctx context.Context, email, password string) (portal.Account, error) {
	if m.Overwrites.Register != nil {
		return m.Overwrites.Register(ctx, email, password)
	} else if m.BaseClient != nil {
		return m.BaseClient.Register(ctx, email, password)
	}
	panic("MockClient.Register not implemented")
}
func (m *MockClient) SaveConfig(ctx context.Context, update portal.ConfigUpdate) (portal.AdminConfig, error) {
	if m.Overwrites.SaveConfig != nil {
		return m.Overwrites.SaveConfig(ctx, update)
	} else if m.BaseClient != nil {
		return m.BaseClient.SaveConfig(ctx, update)
	}
	panic("MockClient.SaveConfig not implemented")
}
func (m *MockClient) Stats(ctx context.Context) (portal.Stats, error) {
	if m.Overwrites.Stats != nil {
		return m.Overwrites.Stats(ctx)
	} else if m.BaseClient != nil {
		return m.BaseClient.Stats(ctx)
	}
	panic("MockClient.Stats not implemented")
}
func (m *MockClient) UploadAPK(ctx context.Context, filename string, r io.Reader) (portal.UploadResult, error) {
	if m.Overwrites.UploadAPK != nil {
		return m.Overwrites.UploadAPK(ctx, filename, r)
	} else if m.BaseClient != nil {
		return m.BaseClient.UploadAPK(ctx, filename, r)
	}
	panic("MockClient.UploadAPK not implemented")
}
