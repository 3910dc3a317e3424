// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/portal"
	"github.com/vastelijn/portal/internal/qr"
)

// newStatusCmd prints what the public view shows: the provisioning state,
// the QR image link, the download link and the setup instructions.
func newStatusCmd(a *app) *cobra.Command {
	var jsonOnly, linkOnly bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the public provisioning state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			prov, err := a.client.PublicProvisioning(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !prov.Configured {
				color.New(color.FgYellow).Fprintln(out, i18n.T("cli.not_configured"))
				if prov.Message != "" {
					fmt.Fprintln(out, prov.Message)
				}
				return nil
			}

			link := qr.ImageURL(a.cfg.QR.Endpoint, prov.QRJSON, a.cfg.QR.Size)
			switch {
			case jsonOnly:
				fmt.Fprintln(out, prov.QRJSON)
				return nil
			case linkOnly:
				fmt.Fprintln(out, link)
				return nil
			}

			color.New(color.FgGreen).Fprintln(out, i18n.T("cli.configured"))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("public.qr_image"), link)
			fmt.Fprintf(out, "%s: %s\n", i18n.T("common.download"), a.client.APKURL())
			fmt.Fprintln(out)
			color.New(color.FgCyan).Fprintln(out, i18n.T("public.instructions_title"))
			for _, line := range prov.Instructions {
				fmt.Fprintln(out, "  "+line)
			}
			fmt.Fprintln(out)
			color.New(color.FgYellow).Fprintln(out, i18n.T("public.backup_warning"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOnly, "json", false, "Print only the QR payload JSON")
	cmd.Flags().BoolVar(&linkOnly, "link", false, "Print only the QR image link")
	cmd.MarkFlagsMutuallyExclusive("json", "link")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the provisioning parameters",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration and its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			cfg, err := a.client.AdminConfig(ctx)
			if err != nil {
				return authHint(err)
			}
			printAdminConfig(cmd, cfg)
			return nil
		},
	}
}

// newConfigSetCmd saves the flags that were given. Flags left out are sent
// as null, which the backend keeps as they are.
func newConfigSetCmd(a *app) *cobra.Command {
	var apkURL, checksum, packageName, adminReceiver string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change provisioning parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pick := func(flag, value string) *string {
				if !cmd.Flags().Changed(flag) {
					return nil
				}
				return &value
			}
			update := portal.ConfigUpdate{
				APKURL:        pick("apk-url", apkURL),
				Checksum:      pick("checksum", checksum),
				PackageName:   pick("package-name", packageName),
				AdminReceiver: pick("admin-receiver", adminReceiver),
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			cfg, err := a.client.SaveConfig(ctx, update)
			if err != nil {
				return authHint(err)
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), i18n.T("cli.config_saved"))
			printAdminConfig(cmd, cfg)
			return nil
		},
	}
	cmd.Flags().StringVar(&apkURL, "apk-url", "", "Download location of the package")
	cmd.Flags().StringVar(&checksum, "checksum", "", "Signature checksum (Base64)")
	cmd.Flags().StringVar(&packageName, "package-name", "", "Package name")
	cmd.Flags().StringVar(&adminReceiver, "admin-receiver", "", "Device admin receiver component")
	cmd.MarkFlagsOneRequired("apk-url", "checksum", "package-name", "admin-receiver")
	return cmd
}

func printAdminConfig(cmd *cobra.Command, cfg portal.AdminConfig) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.apk_url"), cfg.APKURL)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.checksum"), cfg.Checksum)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.package_name"), cfg.PackageName)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.admin_receiver"), cfg.AdminReceiver)
	fmt.Fprintln(w)

	st := portal.StatusOf(cfg)
	file := i18n.T("admin.status.not_uploaded")
	if st.APKUploaded {
		file = st.APKFilename
	}
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.status.file"), file)
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.status.url"), setLabel(st.URLSet))
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.status.checksum"), setLabel(st.ChecksumSet))
	fmt.Fprintf(w, "%s\t%s\n", i18n.T("admin.status.qr_ready"), yesNo(st.QRReady))
	_ = w.Flush()
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show package download statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			st, err := a.client.Stats(ctx)
			if err != nil {
				return authHint(err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%d\n", i18n.T("cli.stats_total"), st.TotalDownloads)
			fmt.Fprintf(w, "%s\t%d\n", i18n.T("cli.stats_today"), st.TodayDownloads)
			fmt.Fprintf(w, "%s\t%d\n", i18n.T("cli.stats_week"), st.WeekDownloads)
			_ = w.Flush()

			fmt.Fprintln(out)
			color.New(color.FgCyan).Fprintln(out, i18n.T("cli.stats_recent"))
			if len(st.RecentDownloads) == 0 {
				fmt.Fprintln(out, "  "+i18n.T("cli.no_downloads"))
				return nil
			}
			w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, d := range st.RecentDownloads {
				fmt.Fprintf(w, "  %s\t%s\n", d.DownloadedAt, d.IPAddress)
			}
			return w.Flush()
		},
	}
}

func setLabel(ok bool) string {
	if ok {
		return i18n.T("common.set")
	}
	return i18n.T("common.not_set")
}

func yesNo(ok bool) string {
	if ok {
		return i18n.T("common.answer_yes")
	}
	return i18n.T("common.answer_no")
}
