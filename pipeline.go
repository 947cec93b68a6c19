// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"net/http"
)

// RequestModifier is a step of the outbound Pipeline.
type RequestModifier interface {
	// ModifyRequest inspects or modifies the request, an error aborts the request.
	ModifyRequest(req *http.Request) error
}

// RequestModifierFunc is an adapter to allow the use of ordinary functions as RequestModifier.
type RequestModifierFunc func(req *http.Request) error

func (f RequestModifierFunc) ModifyRequest(req *http.Request) error {
	return f(req)
}

// Pipeline runs request modifiers in order and stops at the first error.
// The guard is always the first step, so later steps only see allowed requests.
type Pipeline struct {
	mods []RequestModifier
}

func NewPipeline(g *Guard, mods ...RequestModifier) *Pipeline {
	p := &Pipeline{
		mods: make([]RequestModifier, 0, len(mods)+1),
	}
	p.mods = append(p.mods, g)
	for _, m := range mods {
		if m != nil {
			p.mods = append(p.mods, m)
		}
	}
	return p
}

func (p *Pipeline) ModifyRequest(req *http.Request) error {
	for _, m := range p.mods {
		if err := m.ModifyRequest(req); err != nil {
			return err
		}
	}
	return nil
}

// Transport runs the pipeline on a copy of each request and sends it with Base.
type Transport struct {
	Pipeline *Pipeline
	Base     http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if err := t.Pipeline.ModifyRequest(r); err != nil {
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	return t.base().RoundTrip(r)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// CloseIdleConnections closes idle connections of the base transport if it supports it.
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if c, ok := t.base().(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
