// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/saucelabs/hostguard/log"
)

type HTTPServerConfig struct {
	Addr              string        `json:"addr"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" validate:"gte=0"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" validate:"gte=0"`
}

func DefaultHTTPServerConfig() *HTTPServerConfig {
	return &HTTPServerConfig{
		Addr:              "localhost:8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
	}
}

type HTTPServer struct {
	config HTTPServerConfig
	log    log.StructuredLogger
	srv    *http.Server

	mu       sync.RWMutex
	listener net.Listener
}

func NewHTTPServer(cfg *HTTPServerConfig, h http.Handler, log log.StructuredLogger) *HTTPServer {
	return &HTTPServer{
		config: *cfg,
		log:    log,
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           h,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}
}

// Run listens on the configured address and serves until ctx is canceled.
func (hs *HTTPServer) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", hs.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to open listener on address %s: %w", hs.config.Addr, err)
	}
	hs.mu.Lock()
	hs.listener = listener
	hs.mu.Unlock()

	hs.log.Info("HTTP server listen", "address", listener.Addr().String())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()

		<-ctx.Done()
		sctx := context.Background()
		if t := hs.config.ShutdownTimeout; t > 0 {
			var cancel context.CancelFunc
			sctx, cancel = context.WithTimeout(sctx, t)
			defer cancel()
		}
		if err := hs.srv.Shutdown(sctx); err != nil {
			hs.log.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := hs.srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	wg.Wait()
	hs.log.Debug("server was shutdown gracefully")

	return nil
}

// Addr returns the address the server is listening on or empty string if the server is not running.
func (hs *HTTPServer) Addr() string {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	if hs.listener == nil {
		return ""
	}
	return hs.listener.Addr().String()
}
