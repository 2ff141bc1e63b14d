package service

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand(cfg configFunc) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cfg()
			if port != "" {
				c.Port = port
			}
			app, err := NewApp(cmd.Context(), c)
			if err != nil {
				return err
			}
			defer app.Close()

			ln, err := net.Listen("tcp", c.HTTPAddress())
			if err != nil {
				return err
			}
			return RunServer(cmd.Context(), app, ln)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides DASH_PORT)")
	return cmd
}

// RunServer restores the persisted session, loads the dashboard data and
// serves the API on ln until ctx ends or the process is interrupted.
func RunServer(ctx context.Context, app *App, ln net.Listener) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ok, err := app.Auth.Restore(); err != nil {
		log.Printf("Failed to restore session: %v", err)
	} else if ok {
		acc, _ := app.Auth.Current()
		log.Printf("Restored session for %s", acc.Email)
	}
	if err := app.Dashboard.Load(ctx); err != nil {
		log.Printf("Initial data load incomplete: %v", err)
	}

	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Business dashboard listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-sigCh:
	case <-ctx.Done():
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("Graceful shutdown error: %v", err)
		return err
	}
	log.Println("Server stopped")
	return nil
}
