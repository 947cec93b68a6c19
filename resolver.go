// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/saucelabs/hostguard/log"
)

// Resolver looks up host addresses.
// It is implemented by *net.Resolver.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

var _ Resolver = (*net.Resolver)(nil)

type DNSConfig struct {
	// Servers are DNS servers to use instead of the system resolver configuration.
	// They are tried in order, the first one that can be dialed is used.
	Servers []*url.URL
	Timeout time.Duration
}

func DefaultDNSConfig() *DNSConfig {
	return &DNSConfig{
		Timeout: 5 * time.Second,
	}
}

func (c *DNSConfig) Validate() error {
	for _, u := range c.Servers {
		if err := validateDNSURL(u); err != nil {
			return err
		}
	}
	return nil
}

// NewResolver returns a pure Go resolver that uses the configured DNS servers.
// If no servers are configured the system configuration is used.
func NewResolver(cfg *DNSConfig, log log.StructuredLogger) (*net.Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &net.Resolver{
		PreferGo: true,
	}
	if len(cfg.Servers) == 0 {
		return r, nil
	}

	d := net.Dialer{
		Timeout: cfg.Timeout,
	}
	servers := append([]*url.URL(nil), cfg.Servers...)
	r.Dial = func(ctx context.Context, network, address string) (net.Conn, error) {
		for _, u := range servers {
			conn, err := d.DialContext(ctx, u.Scheme, u.Host)
			if err != nil {
				log.Error("failed to dial DNS server", "server", u.Host, "error", err)
				continue
			}
			return conn, nil
		}
		return nil, errors.New("failed to dial DNS")
	}

	return r, nil
}

// HostsResolver answers lookups of known hosts from a static table,
// other lookups are passed to the next resolver.
type HostsResolver struct {
	hosts map[string][]netip.Addr
	next  Resolver
}

// NewHostsResolver returns a HostsResolver for the given table.
// Host names are matched after normalization, so the table is case-insensitive.
func NewHostsResolver(hosts map[string][]netip.Addr, next Resolver) *HostsResolver {
	m := make(map[string][]netip.Addr, len(hosts))
	for h, addrs := range hosts {
		n := normalizeHost(h)
		m[n] = append(m[n], addrs...)
	}
	return &HostsResolver{
		hosts: m,
		next:  next,
	}
}

func (r *HostsResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	addrs, ok := r.hosts[normalizeHost(host)]
	if !ok {
		if r.next == nil {
			return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
		}
		return r.next.LookupNetIP(ctx, network, host)
	}

	var res []netip.Addr
	for _, a := range addrs {
		if matchNetwork(network, a) {
			res = append(res, a)
		}
	}
	if len(res) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return res, nil
}

// matchNetwork reports whether a belongs to network, one of ip, ip4, ip6 optionally prefixed with tcp or udp.
func matchNetwork(network string, a netip.Addr) bool {
	switch {
	case strings.HasSuffix(network, "4"):
		return a.Unmap().Is4()
	case strings.HasSuffix(network, "6"):
		return a.Is6() && !a.Is4In6()
	default:
		return true
	}
}
