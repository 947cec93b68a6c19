// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/saucelabs/hostguard/log"
)

type FetchConfig struct {
	// MaxBodySize is the maximum number of response body bytes copied to the caller.
	MaxBodySize int64 `validate:"gt=0"`

	PromRegistry  prometheus.Registerer `json:"-"`
	PromNamespace string
}

func DefaultFetchConfig() *FetchConfig {
	return &FetchConfig{
		MaxBodySize:   10 << 20,
		PromNamespace: "hostguard",
	}
}

// FetchHandler fetches the URL given in the url query parameter with a guarded client
// and copies the response status, content type and body.
type FetchHandler struct {
	config FetchConfig
	client *http.Client
	log    log.StructuredLogger
	errors *prometheus.CounterVec
}

func NewFetchHandler(cfg *FetchConfig, c *http.Client, log log.StructuredLogger) *FetchHandler {
	r := cfg.PromRegistry
	if r == nil {
		r = prometheus.NewRegistry() // This registry will be discarded.
	}

	return &FetchHandler{
		config: *cfg,
		client: c,
		log:    log,
		errors: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name:      "fetch_errors_total",
			Namespace: cfg.PromNamespace,
			Help:      "Number of fetch errors",
		}, []string{"reason"}),
	}
}

func (h *FetchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	u, err := parseFetchURL(r.URL.Query().Get("url"))
	if err != nil {
		h.error(w, r, err)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, u.String(), http.NoBody)
	if err != nil {
		h.error(w, r, fmt.Errorf("%w: %v", errBadURL, err))
		return
	}
	if ua := r.Header.Get("User-Agent"); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.error(w, r, err)
		return
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, io.LimitReader(resp.Body, h.config.MaxBodySize)); err != nil {
		h.log.ErrorContext(r.Context(), "failed to copy response body", "url", u.Redacted(), "error", err)
	}
}

func (h *FetchHandler) error(w http.ResponseWriter, r *http.Request, err error) {
	code, msg, label := errorStatus(r, err)
	h.errors.WithLabelValues(label).Inc()
	if code >= http.StatusInternalServerError && label == "unexpected_error" {
		h.log.ErrorContext(r.Context(), "fetch failed", "error", err)
	}
	writeErrorResponse(w, code, msg, err)
}

func parseFetchURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: missing url parameter", errBadURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", errBadURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %w", errBadURL, ErrNoHost)
	}
	return u, nil
}
