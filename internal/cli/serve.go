package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/server"
	"github.com/SeamusWaldron/cubesim/internal/telemetry"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream frames to renderers over websocket",
	Long: `Run the puzzle on a fixed tick and push every changed frame to
websocket clients on /ws. Clients send {"type":"key","key":"q"} to turn a
layer and {"type":"replay"} to undo the history.

Prometheus metrics are served on /metrics and a liveness check on /healthz.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	sess, err := openSession("serve", logger, cubesim.WithObserver(metrics))
	if err != nil {
		return err
	}
	defer sess.Close()

	hub := server.NewHub(sess.puzzle, logger, metrics)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewMux(hub, prometheus.DefaultGatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx, cfg.TickInterval)
	})

	g.Go(func() error {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	fmt.Printf("Serving on http://%s (ws://%s/ws)\n", addr, addr)
	fmt.Println("Press Ctrl+C to stop")

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("server stopped", "session_id", sess.SessionID(), "moves", sess.puzzle.HistoryLen())
	return err
}
