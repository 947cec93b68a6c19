// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package runctx runs the long-lived parts of a command until a termination signal arrives.
package runctx

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// DefaultNotifySignals specifies signals that would cause the context to be canceled.
var DefaultNotifySignals = []os.Signal{ //nolint:gochecknoglobals // default value
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
}

// Group is a collection of functions that would be run concurrently.
// The context passed to each function is canceled when any of the signals in NotifySignals is received,
// or when any of the functions returns an error.
// Functions returning context.Canceled after the context is done are treated as a clean exit.
type Group struct {
	NotifySignals []os.Signal
	// OnSignal, if set, is called with the signal that stopped the group.
	OnSignal func(os.Signal)

	funcs []func(ctx context.Context) error
}

func NewGroup(fn ...func(ctx context.Context) error) *Group {
	return &Group{
		funcs: fn,
	}
}

func (g *Group) Add(fn func(ctx context.Context) error) {
	g.funcs = append(g.funcs, fn)
}

func (g *Group) Run() error {
	return g.RunContext(context.Background())
}

func (g *Group) RunContext(ctx context.Context) error {
	sigs := g.NotifySignals
	if len(sigs) == 0 {
		sigs = DefaultNotifySignals
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	defer signal.Stop(ch)

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case s := <-ch:
			if g.OnSignal != nil {
				g.OnSignal(s)
			}
			cancel()
		case <-done:
		}
	}()

	eg, ectx := errgroup.WithContext(ctx)
	for _, fn := range g.funcs {
		fn := fn
		eg.Go(func() error {
			err := fn(ectx)
			if errors.Is(err, context.Canceled) && ectx.Err() != nil {
				return nil
			}
			return err
		})
	}

	err := eg.Wait()
	close(done)
	<-stopped

	return err
}
