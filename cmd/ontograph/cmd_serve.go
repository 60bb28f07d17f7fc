// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/ontograph/services/ontograph/api"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		src   ontologySource
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve closure queries over HTTP",
		Long: `Load an ontology once and answer queries over HTTP until interrupted.

Endpoints (under /v1/ontograph):
  GET /health
  GET /summary
  GET /terms/:id
  GET /terms/:id/depth
  GET /terms/:id/entities?direct=true
  GET /entities?name=NAME
  GET /entities/:id/terms?direct=true

With telemetry.metric_exporter set to prometheus, /metrics is exposed too.`,
		Example: `  ontograph serve --snapshot go-2026-01
  ontograph serve --obo go-basic.obo --gaf goa_human.gaf --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			o, err := src.load(ctx, a)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			if debug {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}
			router := api.NewRouter(api.NewHandlers(o, a.log()), a.cfg.Telemetry.ServiceName)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			return a.serve(ctx, &http.Server{Handler: router}, ln)
		},
	}
	src.register(cmd, true)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default server.addr from config)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Run gin in debug mode")
	return cmd
}

// serve runs srv on ln until ctx is cancelled, then shuts it down within
// the configured timeout.
func (a *app) serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	a.log().Info("ontograph server listening", slog.String("address", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log().Info("shutting down ontograph server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
