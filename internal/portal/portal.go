// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package portal holds the data exchanged with the provisioning backend and
// the small amount of logic the client derives from it locally.
package portal

// Provisioning is the public provisioning state served to unauthenticated
// visitors. Configured is the backend's verdict and is never recomputed here.
type Provisioning struct {
	Configured   bool           `json:"configured"`
	Message      string         `json:"message,omitempty"`
	QRJSON       string         `json:"qr_json,omitempty"`
	QRPayload    map[string]any `json:"qr_payload,omitempty"`
	Instructions []string       `json:"instructions,omitempty"`
	APKURL       string         `json:"apk_url,omitempty"`
}

// AdminConfig is the configuration record as seen by an administrator.
type AdminConfig struct {
	APKURL        string `json:"apk_url"`
	Checksum      string `json:"checksum"`
	PackageName   string `json:"package_name"`
	AdminReceiver string `json:"admin_receiver"`
	APKFilename   string `json:"apk_filename"`
	FileHash      string `json:"file_hash"`
}

// ConfigUpdate is the body of a configuration save. Every field is always
// sent; nil encodes as JSON null, which the backend treats as "keep".
type ConfigUpdate struct {
	APKURL        *string `json:"apk_url"`
	Checksum      *string `json:"checksum"`
	PackageName   *string `json:"package_name"`
	AdminReceiver *string `json:"admin_receiver"`
}

// NewConfigUpdate builds a ConfigUpdate from form values. Blank means null;
// there is no way to express "leave unchanged".
func NewConfigUpdate(apkURL, checksum, packageName, adminReceiver string) ConfigUpdate {
	return ConfigUpdate{
		APKURL:        nullable(apkURL),
		Checksum:      nullable(checksum),
		PackageName:   nullable(packageName),
		AdminReceiver: nullable(adminReceiver),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Defaults pre-fills admin fields the backend has no value for.
type Defaults struct {
	PackageName   string
	AdminReceiver string
}

// DefaultValues is the built-in defaults table.
var DefaultValues = Defaults{
	PackageName:   "com.vastelijnphone",
	AdminReceiver: "com.vastelijnphone/.admin.VasteLijnDeviceAdminReceiver",
}

// Apply returns cfg with empty package name and admin receiver replaced by
// the defaults. The URL and checksum are never defaulted.
func (d Defaults) Apply(cfg AdminConfig) AdminConfig {
	if cfg.PackageName == "" {
		cfg.PackageName = d.PackageName
	}
	if cfg.AdminReceiver == "" {
		cfg.AdminReceiver = d.AdminReceiver
	}
	return cfg
}

// Status is the admin status panel.
type Status struct {
	APKUploaded bool
	APKFilename string
	URLSet      bool
	ChecksumSet bool
	QRReady     bool
}

// StatusOf derives the status panel from a fetched configuration. QRReady
// only looks at the URL and checksum, independent of what the public
// endpoint reports as configured.
func StatusOf(cfg AdminConfig) Status {
	return Status{
		APKUploaded: cfg.APKFilename != "",
		APKFilename: cfg.APKFilename,
		URLSet:      cfg.APKURL != "",
		ChecksumSet: cfg.Checksum != "",
		QRReady:     cfg.APKURL != "" && cfg.Checksum != "",
	}
}

// UploadResult is returned after a package upload. CertChecksum is empty when
// the backend could not extract the signing certificate. PackageName is
// optional: the current backend does not send it.
type UploadResult struct {
	Filename     string `json:"filename"`
	FileHash     string `json:"file_hash,omitempty"`
	CertChecksum string `json:"cert_checksum,omitempty"`
	PackageName  string `json:"package_name,omitempty"`
	Message      string `json:"message"`
}

// LoginRequest carries the operator's credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult holds the issued bearer token.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Account describes an authenticated user.
type Account struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Stats summarizes public package downloads.
type Stats struct {
	TotalDownloads  int        `json:"total_downloads"`
	TodayDownloads  int        `json:"today_downloads"`
	WeekDownloads   int        `json:"week_downloads"`
	RecentDownloads []Download `json:"recent_downloads"`
}

// Download is a single logged package download. DownloadedAt is kept as the
// backend sends it; the server emits ISO timestamps without a zone.
type Download struct {
	ID           int    `json:"id"`
	IPAddress    string `json:"ip_address"`
	DownloadedAt string `json:"downloaded_at"`
}

// Message is the generic {"message": ...} reply.
type Message struct {
	Message string `json:"message"`
}
