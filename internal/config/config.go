// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads the client configuration from defaults, the
// portal.yaml file, PORTAL_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppName is used for the configuration directory and env prefix lookups.
const AppName = "vastelijn-portal"

// Config is the complete client configuration.
type Config struct {
	APIBase  string         `mapstructure:"api_base" yaml:"api_base"`
	Language string         `mapstructure:"language" yaml:"language"`
	Route    string         `mapstructure:"route" yaml:"route,omitempty"`
	QR       QRConfig       `mapstructure:"qr" yaml:"qr"`
	Session  SessionConfig  `mapstructure:"session" yaml:"session"`
	Timings  TimingsConfig  `mapstructure:"timings" yaml:"timings"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// QRConfig points at the external QR image renderer.
type QRConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
	Size     int    `mapstructure:"size" yaml:"size"`
}

// SessionConfig controls where the bearer credential is persisted.
type SessionConfig struct {
	Path      string `mapstructure:"path" yaml:"path,omitempty"`
	Ephemeral bool   `mapstructure:"ephemeral" yaml:"ephemeral"`
}

// TimingsConfig holds the delays before the admin view reloads itself.
type TimingsConfig struct {
	UploadReload time.Duration `mapstructure:"upload_reload" yaml:"upload_reload"`
	SaveReload   time.Duration `mapstructure:"save_reload" yaml:"save_reload"`
}

// HTTPConfig tunes the API client transport. A zero timeout leaves deadlines
// to the transport default and the backend.
type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DefaultsConfig pre-fills admin form fields the backend left empty.
type DefaultsConfig struct {
	PackageName   string `mapstructure:"package_name" yaml:"package_name"`
	AdminReceiver string `mapstructure:"admin_receiver" yaml:"admin_receiver"`
}

// LogConfig selects the log level and an optional log file.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// Defaults returns the built-in configuration values keyed by viper path.
func Defaults() map[string]any {
	return map[string]any{
		"api_base":                "http://localhost:8000/api",
		"language":                "nl",
		"route":                   "",
		"qr.endpoint":             "https://api.qrserver.com/v1/create-qr-code/",
		"qr.size":                 300,
		"session.path":            "",
		"session.ephemeral":       false,
		"timings.upload_reload":   "2s",
		"timings.save_reload":     "1.5s",
		"http.timeout":            "0s",
		"defaults.package_name":   "com.vastelijnphone",
		"defaults.admin_receiver": "com.vastelijnphone/.admin.VasteLijnDeviceAdminReceiver",
		"log.level":               "info",
		"log.file":                "",
	}
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "VasteLijn Portal")
		default: // Linux, macOS, etc.
			configDir = "/etc/" + AppName
		}
	} else {
		configDir, err = UserDir()
		if err != nil {
			return "", err
		}
	}

	return filepath.Join(configDir, "portal.yaml"), nil
}

// UserDir is the per-user directory holding config, session and log files.
func UserDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// LoadConfig resolves T from defaults, config files, env and flags. A missing
// config file is reported as viper.ConfigFileNotFoundError after everything
// else has been applied, so callers can still use the returned value.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, additionalConfigFilePath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("portal")
	v.SetConfigType("yaml")

	// 3. An explicit --config path has the highest precedence for files.
	if additionalConfigFilePath != nil {
		v.SetConfigFile(*additionalConfigFilePath)
	}

	// 4. Standard locations
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	// 5. Read in the primary config file.
	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return c, err
		}
		notFound = err
	}

	// 6. Environment variables: PORTAL_API_BASE, PORTAL_QR_SIZE, ...
	v.SetEnvPrefix("portal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 7. Flags. Dashes map onto the underscore keys (--api-base -> api_base).
	if cmd != nil {
		var bindErr error
		bind := func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
		if bindErr != nil {
			return c, bindErr
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, notFound
}

// WriteConfigFile stores c as YAML in the user (or system) config location.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate fills blanks that would make the client unusable and rejects
// values it cannot work with.
func (c *Config) Validate() error {
	d := Defaults()
	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.APIBase == "" {
		c.APIBase = d["api_base"].(string)
	}
	if err := checkAPIBase(c.APIBase); err != nil {
		return err
	}
	if c.Language == "" {
		c.Language = d["language"].(string)
	}
	if c.QR.Endpoint == "" {
		c.QR.Endpoint = d["qr.endpoint"].(string)
	}
	if c.QR.Size <= 0 {
		c.QR.Size = d["qr.size"].(int)
	}
	if c.Defaults.PackageName == "" {
		c.Defaults.PackageName = d["defaults.package_name"].(string)
	}
	if c.Defaults.AdminReceiver == "" {
		c.Defaults.AdminReceiver = d["defaults.admin_receiver"].(string)
	}
	switch c.Route {
	case "", "public", "admin":
	default:
		return fmt.Errorf("unknown route %q (expected \"admin\" or empty)", c.Route)
	}
	if c.Timings.UploadReload < 0 || c.Timings.SaveReload < 0 {
		return errors.New("reload delays must not be negative")
	}
	return nil
}

// checkAPIBase requires an absolute http(s) URL. A relative base such as
// "/api" has no origin to resolve against outside a browser.
func checkAPIBase(base string) error {
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_base %q: expected an absolute URL such as \"https://portal.example/api\"", base)
	}
	return nil
}

// SessionPath returns the credential database location.
func (c *Config) SessionPath() (string, error) {
	if c.Session.Path != "" {
		return c.Session.Path, nil
	}
	dir, err := UserDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.db"), nil
}
