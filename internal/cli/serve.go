package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sweatpet/internal/config"
	"sweatpet/internal/server"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and event stream on a local address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := openApp(ctx, flags, "stderr")
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return serve(ctx, a, ln)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr from config, "+config.DefaultAddr+")")
	return cmd
}

// serve runs the HTTP server and the store watcher until ctx ends
func serve(ctx context.Context, a *app, ln net.Listener) error {
	srv := server.New(a.engine, a.log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, ln)
	})
	g.Go(func() error {
		w, err := a.startWatcher(ctx)
		if err != nil {
			return err
		}
		if w == nil {
			return nil
		}
		<-ctx.Done()
		w.Stop()
		return nil
	})

	err := g.Wait()
	a.log.Info("server stopped", zap.Error(err))
	return err
}
