// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
)

// newUploadCmd sends a package to the backend, which stores it and derives
// the signature checksum when it can.
func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.apk>",
		Short: "Upload a new package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			res, err := a.client.UploadAPK(ctx, filepath.Base(path), f)
			if err != nil {
				return authHint(err)
			}
			if res.Filename == "" {
				res.Filename = filepath.Base(path)
			}
			if res.Message == "" {
				res.Message = i18n.T("admin.uploaded")
			}
			logging.Infof("uploaded %s (sha256 %s)", res.Filename, res.FileHash)

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintln(out, res.Message)
			fmt.Fprintln(out, i18n.T("cli.uploaded_file", res.Filename))
			if res.CertChecksum != "" {
				fmt.Fprintf(out, "%s: %s\n", i18n.T("admin.checksum"), res.CertChecksum)
			}
			if res.PackageName != "" {
				fmt.Fprintln(out, i18n.T("admin.package_detected", res.PackageName))
			}
			return nil
		},
	}
}

// newDownloadCmd fetches the public package. Without -o the file is named
// after the backend's announcement and written to the current directory.
func newDownloadCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the current package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if output != "" {
				dir = filepath.Dir(output)
			}
			tmp, err := os.CreateTemp(dir, ".vastelijn-*.apk.part")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			name, n, err := a.client.DownloadAPK(ctx, tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			target := output
			if target == "" {
				target = filepath.Join(dir, filepath.Base(name))
			}
			if err := os.Rename(tmp.Name(), target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.downloaded", target, n))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the package to this path")
	return cmd
}

func newAPKCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apk",
		Short: "Manage the stored package",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Delete the stored package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			msg, err := a.client.DeleteAPK(ctx)
			if err != nil {
				return authHint(err)
			}
			text := msg.Message
			if text == "" {
				text = i18n.T("cli.apk_deleted")
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	})
	return cmd
}
