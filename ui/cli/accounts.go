// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vastelijn/portal/client"
	"github.com/vastelijn/portal/internal/i18n"
	"github.com/vastelijn/portal/internal/logging"
	"golang.org/x/term"
)

// newLoginCmd exchanges credentials for a bearer token and stores it for the
// configured portal. Missing values are prompted for.
func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as the portal administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email == "" {
				if email, err = prompt(cmd, in, i18n.T("cli.email_prompt")); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = readPassword(cmd, in); err != nil {
					return err
				}
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			res, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			if err := a.store.Save(ctx, res.AccessToken); err != nil {
				return fmt.Errorf("could not store credential: %w", err)
			}
			logging.Infof("logged in as %s", email)
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), i18n.T("cli.logged_in", email))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential for this portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.logged_out"))
			return nil
		},
	}
}

// newRegisterCmd creates the administrator account. The backend only allows
// this while no account exists.
func newRegisterCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create the first administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email == "" {
				if email, err = prompt(cmd, in, i18n.T("cli.email_prompt")); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = readPassword(cmd, in); err != nil {
					return err
				}
			}

			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			acc, err := a.client.Register(ctx, email, password)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), i18n.T("cli.registered", acc.Email, acc.Role))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when omitted)")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.requestContext(cmd)
			defer cancel()
			acc, err := a.client.Me(ctx)
			if err != nil {
				return authHint(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.account", acc.Email, acc.Role))
			return nil
		},
	}
}

// authHint points the operator at `login` when the backend rejected the
// credential.
func authHint(err error) error {
	if client.IsAuthFailure(err) {
		return fmt.Errorf("%s: %w", i18n.T("cli.not_logged_in"), err)
	}
	return err
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("could not read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal and falls back to a plain
// line read otherwise.
func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.password_prompt"))
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("could not read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), i18n.T("cli.password_prompt"))
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return string(b), nil
}
