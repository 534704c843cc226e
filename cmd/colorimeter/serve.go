package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taggatron/Colorimetrybetalain/engine"
	"github.com/taggatron/Colorimetrybetalain/httpapi"
)

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	profilePath := fs.String("profile", "", "Instrument profile JSON (default: built-in)")
	addr := fs.String("addr", ":8080", "Listen address")
	verbose := fs.Bool("verbose", false, "Debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: colorimeter serve [options]

Serve the colorimeter session API over HTTP for a browser UI.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := loadProfile(*profilePath)
	if err != nil {
		return err
	}

	logger := newLogger(*verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := engine.New(p, logger, nil)
	api := httpapi.NewServer(e, httpapi.WithLogger(logger), httpapi.WithBaseContext(ctx))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", *addr).Str("session", e.SessionID().String()).Msg("serving colorimeter API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		e.StopBleach()
		e.StopAutoCal()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}
