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
	"syscall"
	"time"
)

type DialConfig struct {
	// DialTimeout is the maximum amount of time a dial will wait for
	// connect to complete.
	//
	// With or without a timeout, the operating system may impose
	// its own earlier timeout. For instance, TCP timeouts are
	// often around 3 minutes.
	DialTimeout time.Duration `validate:"gte=0"`

	// KeepAlive enables TCP keep-alive probes for an active network connection.
	// The keep-alive probes are sent with OS specific intervals.
	KeepAlive bool
}

func DefaultDialConfig() *DialConfig {
	return &DialConfig{
		DialTimeout: 10 * time.Second,
		KeepAlive:   true,
	}
}

// Dialer connects only to destinations approved by the guard.
// The host is evaluated on every dial and only the approved addresses are dialed,
// so the addresses checked are the addresses connected to.
type Dialer struct {
	nd    net.Dialer
	guard *Guard
}

func NewDialer(cfg *DialConfig, g *Guard) *Dialer {
	nd := net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: -1,
	}

	if cfg.KeepAlive {
		nd.Control = func(network, address string, c syscall.RawConn) error {
			return c.Control(enableTCPKeepAlive)
		}
	}

	return &Dialer{
		nd:    nd,
		guard: g,
	}
}

func (d *Dialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	c := Candidate{Host: host}
	if t := targetFor(ctx, host); t != nil {
		c.Addr = t.Addr
	}

	addrs, err := d.guard.Evaluate(ctx, c)
	if err != nil {
		return nil, err
	}

	var firstErr error
	for _, a := range addrs {
		if !matchNetwork(network, a) {
			continue
		}
		conn, err := d.nd.DialContext(ctx, network, net.JoinHostPort(a.String(), port))
		if err == nil {
			return conn, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		if ctx.Err() != nil {
			break
		}
	}
	if firstErr == nil {
		firstErr = &net.OpError{
			Op:  "dial",
			Net: network,
			Err: fmt.Errorf("no %s address for host %s: %w", network, host, errNoSuitableAddress),
		}
	}

	return nil, firstErr
}

var errNoSuitableAddress = errors.New("no suitable address")

// Dial is like DialContext with a background context.
func (d *Dialer) Dial(network, address string) (net.Conn, error) {
	return d.DialContext(context.Background(), network, address)
}
