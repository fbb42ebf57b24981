package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shekelsync/shekelsync/internal/accounts"
	"github.com/shekelsync/shekelsync/internal/api"
	"github.com/shekelsync/shekelsync/internal/importer"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, flags)
			if err != nil {
				return err
			}
			defer e.close()

			if addr == "" {
				addr = e.cfg.Server.Addr
			}

			store, err := e.openStore()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(e.log, importer.DefaultRegistry(), store, e.accountLister()),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(ctx, e, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// accountLister prefers the live ledger and falls back to the snapshot.
func (e *env) accountLister() api.AccountLister {
	if client, err := e.ledgerClient(); err == nil {
		return client
	}
	svc, err := accounts.Load(e.dataDir)
	if err != nil {
		e.log.Warn().Err(err).Msg("no ledger connection or account snapshot, reconcile is disabled")
		return nil
	}
	return api.StaticAccounts(svc.All())
}

func serve(ctx context.Context, e *env, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		e.log.Info().Str("addr", srv.Addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.log.Info().Msg("shutting down api")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down api: %w", err)
	}
	return nil
}
