// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for the portal client using
// the Cobra library. It defines the root command, which starts the
// interactive TUI, the shared configuration and session setup, and the
// Execute entry point.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vastelijn/portal/buildvars"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/config"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/session"
	"github.com/vastelijn/portal/internal/tui"
)

var version = "dev"   // this will be set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// app holds what every command shares. It is filled by the root command's
// PersistentPreRunE and released by its PersistentPostRunE.
type app struct {
	cfgFile string
	verbose bool

	cfg     config.Config
	store   session.Store
	client  client.Client
	closers []io.Closer

	// newClient is swapped in tests.
	newClient func(base string, store session.Store, opts ...client.Option) client.Client
}

func newApp() *app {
	return &app{
		newClient: func(base string, store session.Store, opts ...client.Option) client.Client {
			return client.New(base, store, opts...)
		},
	}
}

// setup loads the configuration, initializes i18n and logging, and opens
// the credential store for the configured portal.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	explicit, err := configPathFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), explicit)
	// A "file not found" error is expected on first run.
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		if writeErr := config.WriteConfigFile(&cfg, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else {
			logging.Debugf("wrote default config to user config path")
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// The root command accepts the portal address as its only argument,
	// optionally with an "#admin" fragment.
	if cmd == cmd.Root() && len(args) > 0 {
		base, route := tui.ParseEntry(args[0])
		cfg.APIBase = base
		if route == tui.RouteAdmin {
			cfg.Route = route.String()
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	i18n.Init(cfg.Language)
	if _, err := logging.Setup(cfg.Log.Level, ""); err != nil {
		return err
	}

	if cfg.Session.Ephemeral {
		a.store = session.NewMemoryStore()
	} else {
		path, err := cfg.SessionPath()
		if err != nil {
			return err
		}
		s, err := session.OpenSQLStore(cmd.Context(), path, session.Origin(cfg.APIBase))
		if err != nil {
			return fmt.Errorf("could not open session store: %w", err)
		}
		a.store = s
		a.closers = append(a.closers, s)
	}

	a.cfg = cfg
	a.client = a.newClient(cfg.APIBase, a.store, client.WithTimeout(cfg.HTTP.Timeout))
	logging.Debugf("using portal %s (session origin %s)", cfg.APIBase, session.Origin(cfg.APIBase))
	return nil
}

func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// runTUI starts the interactive client. Logs go to a file while the
// program owns the terminal.
func (a *app) runTUI(cmd *cobra.Command) error {
	logFile := a.cfg.Log.File
	if logFile == "" {
		dir, err := config.UserDir()
		if err != nil {
			return err
		}
		logFile = filepath.Join(dir, "portal.log")
	}
	closer, err := logging.Setup(a.cfg.Log.Level, logFile)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closer)

	start, _ := os.Getwd()
	return tui.Run(cmd.Context(), tui.Options{
		Client:       a.client,
		Session:      a.store,
		Route:        tui.ParseRoute(a.cfg.Route),
		QREndpoint:   a.cfg.QR.Endpoint,
		QRSize:       a.cfg.QR.Size,
		UploadReload: a.cfg.Timings.UploadReload,
		SaveReload:   a.cfg.Timings.SaveReload,
		Defaults: portal.Defaults{
			PackageName:   a.cfg.Defaults.PackageName,
			AdminReceiver: a.cfg.Defaults.AdminReceiver,
		},
		StartDir: start,
	})
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func configPathFromFlags(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	// Make sure the user-provided file exists to avoid unwanted behavior.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates and configures a new root cobra command. Every call
// returns an independent command tree, which keeps tests isolated.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vastelijn-portal [portal-url]",
		Short: i18n.T("cli.root_short"),
		Long: `Terminal client for the VasteLijn Device Owner provisioning portal.

Without a subcommand the interactive client starts on the public view,
which shows the provisioning QR link, the setup instructions and the
direct download link. Append "#admin" to the portal address, or pass
--route admin, to start on the admin view.

The subcommands reuse the same API client and stored credential for
scripting: login, logout, register, whoami, status, config, upload,
download, apk delete and stats.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, args)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			return a.runTUI(cmd)
		},
	}
	cmd.Version = compositeVersion()

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("api-base", "", "API base URL of the portal (e.g. https://portal.example/api)")
	pf.String("language", "", `Interface language ("nl", "en")`)
	pf.String("session.path", "", "Credential database (default: session.db in the user config dir)")
	pf.Bool("session.ephemeral", false, "Keep the credential in memory only")
	pf.Duration("http.timeout", 0, "Per-request timeout (0 disables)")
	pf.String("log.level", "", "Log level (debug, info, warn, error)")
	pf.String("log.file", "", "Log file used while the interactive client runs")

	cmd.Flags().String("route", "", `Start view ("admin" or empty)`)
	cmd.Flags().String("qr.endpoint", "", "QR image renderer endpoint")
	cmd.Flags().Int("qr.size", 0, "QR image size in pixels")
	cmd.Flags().Duration("timings.upload_reload", 0, "Delay before the admin view reloads after an upload")
	cmd.Flags().Duration("timings.save_reload", 0, "Delay before the admin view reloads after a save")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newRegisterCmd(a),
		newWhoamiCmd(a),
		newStatusCmd(a),
		newConfigCmd(a),
		newUploadCmd(a),
		newDownloadCmd(a),
		newAPKCmd(a),
		newStatsCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// compositeVersion renders "version (commit) built: date".
func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	out := v
	if c != "" && c != "dev" {
		out = out + " (" + c + ")"
	}
	if d != "" {
		out = out + " built: " + d
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		// No configuration or session is needed to print the version.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault(version)
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, ok := debug.ReadBuildInfo(); ok {
			info = local
		}
	}

	if info != nil {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// Some build paths only record our module among the dependencies.
		if (resolvedVersion == "dev" || resolvedVersion == "(devel)") && info.Deps != nil {
			for _, dep := range info.Deps {
				if dep.Path == "github.com/vastelijn/portal" && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					resolvedCommit = s.Value
				}
			case "vcs.time":
				if s.Value != "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	// As a last resort show the commit passed via ldflags.
	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}

	return resolvedVersion, resolvedCommit, resolvedDate
}

// requestTimeout bounds one-shot subcommands that have no HTTP timeout set.
const requestTimeout = 2 * time.Minute

func (a *app) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if a.cfg.HTTP.Timeout > 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), requestTimeout)
}
