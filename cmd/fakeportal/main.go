// Copyright (c) 2026 VasteLijn
// VasteLijn Portal - Device Owner provisioning client
// This source code is licensed under the MIT license found in the LICENSE file.

// Command fakeportal serves an in-memory provisioning backend for local
// development of the client:
//
//	go run ./cmd/fakeportal --addr 127.0.0.1:8000
//	go run . http://127.0.0.1:8000/api#admin
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vastelijn/portal/internal/logging"
	"github.com/vastelijn/portal/internal/testutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr, email, password, certChecksum string
	cmd := &cobra.Command{
		Use:          "fakeportal",
		Short:        "Serve an in-memory provisioning backend",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fake := testutil.NewFakePortal()
			fake.CertChecksum = certChecksum
			if email != "" {
				fake.AddUser(email, password)
			}

			srv := &http.Server{Addr: addr, Handler: fake, ReadHeaderTimeout: 10 * time.Second}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logging.Infof("fake portal listening on http://%s/api", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().StringVar(&email, "admin-email", "admin@vastelijn.nl", "Pre-created admin account (empty to allow registration)")
	cmd.Flags().StringVar(&password, "admin-password", "admin", "Password of the pre-created admin account")
	cmd.Flags().StringVar(&certChecksum, "cert-checksum", "", "Checksum reported for uploads (empty: manual checksum)")
	return cmd
}
