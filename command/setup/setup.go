// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package setup builds the guard and its dependencies from command line flags.
package setup

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/saucelabs/hostguard"
	"github.com/saucelabs/hostguard/bind"
	"github.com/saucelabs/hostguard/hostsfile"
	"github.com/saucelabs/hostguard/log"
	"github.com/saucelabs/hostguard/log/slog"
	"github.com/spf13/pflag"
)

// Config holds the options shared by all commands that use the guard.
type Config struct {
	DNS           *hostguard.DNSConfig
	DNSCache      hostguard.DNSCacheConfig
	HostsFile     string
	DenyHosts     []string
	DenyHostsFile *url.URL
	DenyCIDRs     []netip.Prefix
	Client        *hostguard.ClientConfig
	Guard         *hostguard.GuardConfig
	Log           *log.Config
}

func DefaultConfig() *Config {
	return &Config{
		DNS:      hostguard.DefaultDNSConfig(),
		DNSCache: hostguard.DefaultDNSCacheConfig(),
		Client:   hostguard.DefaultClientConfig(),
		Guard:    hostguard.DefaultGuardConfig(),
		Log:      log.DefaultConfig(),
	}
}

func (c *Config) Bind(fs *pflag.FlagSet) {
	bind.Denylist(fs, &c.DenyHosts, &c.DenyHostsFile, &c.DenyCIDRs)
	bind.DNSConfig(fs, c.DNS)
	bind.DNSCacheConfig(fs, &c.DNSCache)
	bind.HostsFile(fs, &c.HostsFile)
	bind.ClientConfig(fs, c.Client)
	bind.LogConfig(fs, c.Log)
}

// Env is the result of Build.
type Env struct {
	Log      *slog.Logger
	Resolver hostguard.Resolver
	Guard    *hostguard.Guard
}

// Client returns a guarded HTTP client.
func (e *Env) Client(cfg *hostguard.ClientConfig) (*http.Client, error) {
	return hostguard.NewClient(cfg, e.Guard)
}

// Build creates the logger, the resolver chain, the denylist and the guard.
// Metrics are registered in r, if r is nil they are discarded.
func (c *Config) Build(r prometheus.Registerer, opts ...slog.Option) (*Env, error) {
	logger := slog.New(c.Log, opts...)

	res, err := c.resolver(logger)
	if err != nil {
		return nil, err
	}

	gcfg := *c.Guard
	gcfg.PromRegistry = r
	if err := c.denylist(&gcfg, res, logger); err != nil {
		return nil, err
	}

	g, err := hostguard.NewGuard(&gcfg, res, logger.Named("guard"))
	if err != nil {
		return nil, err
	}
	logger.Debug("guard configured", "denylist", gcfg.Denylist.String(), "deny_cidrs", fmt.Sprint(gcfg.DenyPrefixes))

	return &Env{
		Log:      logger,
		Resolver: res,
		Guard:    g,
	}, nil
}

func (c *Config) resolver(logger *slog.Logger) (hostguard.Resolver, error) {
	nr, err := hostguard.NewResolver(c.DNS, logger.Named("dns"))
	if err != nil {
		return nil, fmt.Errorf("dns: %w", err)
	}
	if len(c.DNS.Servers) > 0 {
		logger.Named("dns").Info("using DNS servers", "servers", fmt.Sprint(c.DNS.Servers))
	}

	var res hostguard.Resolver = nr

	if c.HostsFile != "" {
		hosts, err := hostsfile.ReadFile(c.HostsFile)
		if err != nil {
			return nil, fmt.Errorf("hosts file: %w", err)
		}
		logger.Info("loaded hosts file", "path", c.HostsFile, "names", len(hosts))
		logger.Debug("hosts file names", "names", fmt.Sprint(hostsfile.Names(hosts)))
		res = hostguard.NewHostsResolver(hosts, res)
	}

	if c.DNSCache.Capacity > 0 {
		cr, err := hostguard.NewCachingResolver(res, c.DNSCache)
		if err != nil {
			return nil, fmt.Errorf("dns cache: %w", err)
		}
		res = cr
	}

	return res, nil
}

// denylist merges the default names, the flags and the denylist file.
// The file is fetched with a guard built from the other sources.
func (c *Config) denylist(gcfg *hostguard.GuardConfig, res hostguard.Resolver, logger *slog.Logger) error {
	names := append(append([]string(nil), hostguard.DefaultDenylistHosts...), c.DenyHosts...)
	cidrs := append([]netip.Prefix(nil), c.DenyCIDRs...)

	if c.DenyHostsFile != nil {
		dl, err := hostguard.NewDenylist(names...)
		if err != nil {
			return err
		}
		bg, err := hostguard.NewGuard(&hostguard.GuardConfig{
			Denylist:     dl,
			DenyPrefixes: cidrs,
		}, res, logger.Named("guard"))
		if err != nil {
			return err
		}
		tr, err := hostguard.NewHTTPTransport(&c.Client.HTTPTransportConfig, bg)
		if err != nil {
			return err
		}
		defer tr.CloseIdleConnections()

		timeout := c.Client.Timeout
		if timeout <= 0 {
			timeout = hostguard.DefaultReadURLTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		f, err := hostguard.ReadDenylistURL(ctx, c.DenyHostsFile, &hostguard.Transport{
			Pipeline: hostguard.NewPipeline(bg),
			Base:     tr,
		})
		if err != nil {
			return err
		}
		logger.Info("loaded denylist file", "url", bind.RedactURL(c.DenyHostsFile),
			"hosts", len(f.Hosts), "cidrs", len(f.CIDRs))

		names = append(names, f.Hosts...)
		cidrs = append(cidrs, f.CIDRs...)
	}

	dl, err := hostguard.NewDenylist(names...)
	if err != nil {
		return fmt.Errorf("denylist: %w", err)
	}
	gcfg.Denylist = dl
	gcfg.DenyPrefixes = cidrs

	return nil
}
