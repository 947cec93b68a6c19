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
	"net/http"
	"net/netip"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/hostguard/log"
)

type GuardConfig struct {
	// Denylist is the set of denied host names, it must not be nil.
	Denylist *Denylist
	// DenyPrefixes are address ranges denied in addition to link-local addresses.
	DenyPrefixes []netip.Prefix

	PromRegistry  prometheus.Registerer `json:"-"`
	PromNamespace string
}

func DefaultGuardConfig() *GuardConfig {
	return &GuardConfig{
		Denylist:      DefaultDenylist(),
		PromNamespace: "hostguard",
	}
}

func (c *GuardConfig) Validate() error {
	if c.Denylist == nil {
		return errors.New("denylist is required")
	}
	for _, p := range c.DenyPrefixes {
		if !p.IsValid() {
			return fmt.Errorf("invalid deny prefix %q", p)
		}
	}
	return nil
}

// Guard decides if a request may connect to its destination.
// A destination is denied if its host name is denylisted,
// or if any of the addresses it resolves to is link-local or in one of the deny prefixes.
// Guard is safe for concurrent use.
type Guard struct {
	config   GuardConfig
	resolver Resolver
	log      log.StructuredLogger
	metrics  *guardMetrics
}

// NewGuard returns a Guard that resolves host names with r.
// The same resolver must be used to connect, use Dialer to guarantee that.
func NewGuard(cfg *GuardConfig, r Resolver, log log.StructuredLogger) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("resolver is required")
	}

	g := &Guard{
		config:   *cfg,
		resolver: r,
		log:      log,
		metrics:  newGuardMetrics(cfg.PromRegistry, cfg.PromNamespace),
	}
	g.config.DenyPrefixes = make([]netip.Prefix, len(cfg.DenyPrefixes))
	for i, p := range cfg.DenyPrefixes {
		g.config.DenyPrefixes[i] = unmapPrefix(p)
	}

	return g, nil
}

// unmapPrefix returns the masked prefix with IPv4-mapped IPv6 prefixes converted to IPv4.
// Addresses are unmapped before matching, so a mapped prefix would never match otherwise.
func unmapPrefix(p netip.Prefix) netip.Prefix {
	if a := p.Addr(); a.Is4In6() && p.Bits() >= 96 {
		p = netip.PrefixFrom(a.Unmap(), p.Bits()-96)
	}
	return p.Masked()
}

// Evaluate checks the candidate destination and returns the addresses that may be contacted.
// If the destination is denied the error is a *BlockedError.
// If the host cannot be resolved the error is a *ResolutionError.
func (g *Guard) Evaluate(ctx context.Context, c Candidate) ([]netip.Addr, error) {
	host := normalizeHost(c.Host)

	if g.config.Denylist.Match(host) {
		return nil, g.deny(ctx, &BlockedError{Host: host, reason: reasonDenylisted})
	}

	addrs, err := g.addrs(ctx, host, c.Addr)
	if err != nil {
		g.log.DebugContext(ctx, "host evaluation failed", "host", host, "error", err)
		if errors.Is(err, ErrNoHost) {
			g.metrics.error("no_host")
		} else {
			g.metrics.error("resolution")
		}
		return nil, err
	}

	for _, a := range addrs {
		if r := g.classify(a); r != 0 {
			return nil, g.deny(ctx, &BlockedError{Host: host, Addr: a, reason: r})
		}
	}

	g.metrics.allow()
	return addrs, nil
}

func (g *Guard) addrs(ctx context.Context, host string, explicit netip.Addr) ([]netip.Addr, error) {
	if explicit.IsValid() {
		return []netip.Addr{explicit}, nil
	}
	if host == "" {
		return nil, ErrNoHost
	}
	if a, ok := ParseAddr(host); ok {
		return []netip.Addr{a}, nil
	}

	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, &ResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return nil, &ResolutionError{Host: host, Err: errNoAddresses}
	}
	return addrs, nil
}

func (g *Guard) classify(a netip.Addr) blockReason {
	a = a.Unmap()
	if IsLinkLocal(a) {
		return reasonLinkLocal
	}
	for _, p := range g.config.DenyPrefixes {
		if p.Contains(a.WithZone("")) {
			return reasonDeniedPrefix
		}
	}
	return 0
}

func (g *Guard) deny(ctx context.Context, err *BlockedError) error {
	args := []any{"host", err.Host, "reason", err.reason.String()}
	if err.Addr.IsValid() {
		args = append(args, "addr", err.Addr.String())
	}
	g.log.WarnContext(ctx, "blocked host", args...)
	g.metrics.deny(err.reason)
	return err
}

// Check extracts the destination from rc and evaluates it.
func (g *Guard) Check(ctx context.Context, rc *RequestContext) error {
	c, err := ExtractCandidate(rc)
	if err != nil {
		g.log.ErrorContext(ctx, "unable to determine request host", "error", err)
		g.metrics.error("no_host")
		return err
	}
	_, err = g.Evaluate(ctx, c)
	return err
}

// ModifyRequest implements RequestModifier, it checks the destination of req.
func (g *Guard) ModifyRequest(req *http.Request) error {
	return g.Check(req.Context(), NewRequestContext(req))
}
