package commands

import (
	"context"
	"errors"
	"time"

	"github.com/roasbeef/spotter/internal/web"
	"github.com/spf13/cobra"
)

// webAddr overrides the config's web_addr.
var webAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the popup pages to a browser over a WebSocket",
	Long: `Serve runs the popup, evaluation and recommendation pages behind a
WebSocket at /ws. Each browser connection gets its own session and cache.
Page selections are reported with POST /api/v1/selection.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(
		&webAddr, "addr", "", "Listen address (default: web_addr from config)",
	)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}
	recs, err := recommendationSource()
	if err != nil {
		return err
	}

	addr := cfg.WebAddr
	if webAddr != "" {
		addr = webAddr
	}

	srv := web.NewServer(web.Config{
		Addr:            addr,
		Lang:            cfg.Lang,
		Backend:         client,
		Feedback:        client,
		Trigger:         client,
		Recommendations: recs,
		Store:           store,
		Cache:           cfg.Cache(),
		Log:             logger.Logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err

	case <-ctx.Done():
	}

	logger.Info("Shutting down web server")

	shutdownCtx, done := context.WithTimeout(
		context.Background(), 5*time.Second,
	)
	defer done()

	err = srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; serveErr != nil {
		err = errors.Join(err, serveErr)
	}

	return err
}
