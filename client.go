// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/saucelabs/hostguard/validation"
)

type ClientConfig struct {
	HTTPTransportConfig

	// Timeout is the time limit for a request including redirects and reading the body.
	// Zero means no timeout.
	Timeout time.Duration `validate:"gte=0"`

	// MaxRedirects is the maximum number of redirects followed.
	// Zero disables redirects.
	MaxRedirects int `validate:"gte=0,lte=100"`
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		HTTPTransportConfig: *DefaultHTTPTransportConfig(),
		Timeout:             30 * time.Second,
		MaxRedirects:        10,
	}
}

func (c *ClientConfig) Validate() error {
	return validation.Validator().Struct(c)
}

// NewClient returns an HTTP client guarded by g.
// Each request and each redirect hop is checked before it is sent,
// and connections are only made to addresses approved by the guard.
// The modifiers run after the guard on every request.
func NewClient(cfg *ClientConfig, g *Guard, mods ...RequestModifier) (*http.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tr, err := NewHTTPTransport(&cfg.HTTPTransportConfig, g)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: &Transport{
			Pipeline: NewPipeline(g, mods...),
			Base:     tr,
		},
		CheckRedirect: checkRedirect(g, cfg.MaxRedirects),
		Timeout:       cfg.Timeout,
	}, nil
}

// ErrTooManyRedirects is returned when a request exceeds the redirect limit.
var ErrTooManyRedirects = errors.New("too many redirects")

func checkRedirect(g *Guard, limit int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return fmt.Errorf("stopped after %d redirects: %w", limit, ErrTooManyRedirects)
		}
		return g.Check(req.Context(), NewRequestContext(req))
	}
}
