// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Endpoint is a network destination.
// Addr, if valid, is the address to connect to and takes precedence over resolving Host.
type Endpoint struct {
	Host string
	Port string
	Addr netip.Addr
}

func (e Endpoint) String() string {
	h := e.Host
	if h == "" && e.Addr.IsValid() {
		h = e.Addr.String()
	}
	if e.Port == "" {
		return h
	}
	return net.JoinHostPort(h, e.Port)
}

func (e *Endpoint) isSet() bool {
	return e != nil && (e.Host != "" || e.Addr.IsValid())
}

// RequestContext is what is known about the destination of a request at the time it is checked.
type RequestContext struct {
	// Target is the destination determined after routing, if any.
	Target *Endpoint
	// Route is the destination taken from the request URL.
	Route *Endpoint
	// Header holds the Host header values of the request.
	Header http.Header
}

type targetKey struct{}

// WithTarget returns a context that pins the destination of requests for t.Host to t.
// If t.Addr is valid it is used as the only address of the host.
// If t.Host is empty the pin applies to any host.
func WithTarget(ctx context.Context, t Endpoint) context.Context {
	return context.WithValue(ctx, targetKey{}, t)
}

// TargetFromContext returns the Endpoint set with WithTarget, or nil.
func TargetFromContext(ctx context.Context) *Endpoint {
	t, ok := ctx.Value(targetKey{}).(Endpoint)
	if !ok {
		return nil
	}
	return &t
}

// targetFor returns the pinned target from ctx if it applies to host.
func targetFor(ctx context.Context, host string) *Endpoint {
	t := TargetFromContext(ctx)
	if t == nil {
		return nil
	}
	if t.Host != "" && !strings.EqualFold(strings.TrimSuffix(t.Host, "."), strings.TrimSuffix(host, ".")) {
		return nil
	}
	if t.Host == "" {
		t.Host = host
	}
	return t
}

// NewRequestContext returns the RequestContext of req.
// It does not modify req.
func NewRequestContext(req *http.Request) *RequestContext {
	rc := new(RequestContext)

	if req.URL != nil && req.URL.Host != "" {
		rc.Route = &Endpoint{
			Host: req.URL.Hostname(),
			Port: req.URL.Port(),
		}
		rc.Target = targetFor(req.Context(), rc.Route.Host)
	} else {
		rc.Target = targetFor(req.Context(), req.Host)
	}

	if v := req.Header.Values("Host"); len(v) > 0 {
		rc.Header = http.Header{"Host": append([]string(nil), v...)}
	} else if req.Host != "" {
		rc.Header = http.Header{"Host": []string{req.Host}}
	}

	return rc
}

// Candidate is the destination evaluated by the Guard.
type Candidate struct {
	Host string
	Addr netip.Addr
}

// ExtractCandidate returns the destination of the request described by rc.
// The first of the following that is set wins: the target, the route, a single Host header.
// If none is set ErrNoHost is returned.
func ExtractCandidate(rc *RequestContext) (Candidate, error) {
	if rc == nil {
		return Candidate{}, ErrNoHost
	}

	if t := rc.Target; t.isSet() {
		return Candidate{Host: strings.ToLower(t.Host), Addr: t.Addr}, nil
	}
	if r := rc.Route; r.isSet() {
		return Candidate{Host: strings.ToLower(r.Host), Addr: r.Addr}, nil
	}
	if h, ok := hostFromHeader(rc.Header); ok {
		return Candidate{Host: strings.ToLower(h)}, nil
	}

	return Candidate{}, ErrNoHost
}

func hostFromHeader(h http.Header) (string, bool) {
	v := h.Values("Host")
	if len(v) != 1 {
		return "", false
	}

	hh := strings.TrimSpace(v[0])
	if hh == "" || !httpguts.ValidHostHeader(hh) {
		return "", false
	}

	host := stripHostPort(hh)
	return host, host != ""
}

// stripHostPort returns the host part of a Host header value.
// Brackets of IPv6 literals are removed, an IPv6 literal without brackets is returned as is.
func stripHostPort(hh string) string {
	if strings.HasPrefix(hh, "[") {
		end := strings.IndexByte(hh, ']')
		if end == -1 {
			return ""
		}
		return hh[1:end]
	}
	if strings.Count(hh, ":") > 1 {
		return hh
	}
	host, _, _ := strings.Cut(hh, ":")
	return host
}
