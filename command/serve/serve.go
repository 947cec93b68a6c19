// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package serve

import (
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/saucelabs/hostguard"
	"github.com/saucelabs/hostguard/bind"
	"github.com/saucelabs/hostguard/command/setup"
	"github.com/saucelabs/hostguard/internal/version"
	"github.com/saucelabs/hostguard/log/slog"
	"github.com/saucelabs/hostguard/middleware"
	"github.com/saucelabs/hostguard/runctx"
	"github.com/saucelabs/hostguard/utils/cobrautil"
	"github.com/spf13/cobra"
	"go.uber.org/goleak"
	"go.uber.org/multierr"
)

type command struct {
	promReg          *prometheus.Registry
	promNamespace    string
	config           *setup.Config
	fetchConfig      *hostguard.FetchConfig
	httpServerConfig *hostguard.HTTPServerConfig

	goleak bool
}

func (c *command) runE(cmd *cobra.Command, _ []string) (cmdErr error) {
	if f := c.config.Log.File; f != nil {
		defer f.Close()
	}

	onError, err := c.registerErrorsMetric()
	if err != nil {
		return fmt.Errorf("register errors metric: %w", err)
	}

	c.config.Guard.PromNamespace = c.promNamespace
	env, err := c.config.Build(c.promReg, slog.WithOnError(onError))
	if err != nil {
		return err
	}
	logger := env.Log

	defer func() {
		if cmdErr != nil {
			logger.Error("fatal error exiting", "error", cmdErr)
			cmd.SilenceErrors = true
		}
	}()

	logger.Info("hostguard starting", "version", version.Version, "commit", version.Commit)
	logger.Debug("resource limits", "GOMAXPROCS", runtime.GOMAXPROCS(0), "GOMEMLIMIT", os.Getenv("GOMEMLIMIT"))

	cfg, err := cobrautil.FlagsDescriber{
		Format:  cobrautil.Plain,
		Exclude: []string{"goleak"},
	}.DescribeFlags(cmd.Flags())
	if err != nil {
		return err
	}
	logger.Debug("configuration", "flags", cfg)

	if err := c.registerProcMetrics(); err != nil {
		return fmt.Errorf("register process metrics: %w", err)
	}
	if err := c.registerVersionMetric(); err != nil {
		return fmt.Errorf("register version metric: %w", err)
	}

	client, err := env.Client(c.config.Client)
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	c.fetchConfig.PromRegistry = c.promReg
	c.fetchConfig.PromNamespace = c.promNamespace
	fh := hostguard.NewFetchHandler(c.fetchConfig, client, logger.Named("fetch"))

	hs := &lazyServer{}
	h := hostguard.NewAPIHandler(c.promReg, hs, cfg, fh)

	accessLog := logger.Named("access")
	mw := middleware.Logger(func(e middleware.LogEntry) {
		accessLog.Debug("request", "method", e.Request.Method, "path", e.Request.URL.Path,
			"status", e.Status, "written", e.Written, "duration", e.Duration)
	})
	pm := middleware.NewPrometheus(c.promReg, c.promNamespace, middleware.WithCustomLabeler("path", endpointLabel))

	s := hostguard.NewHTTPServer(c.httpServerConfig, pm.Wrap(mw.Wrap(h)), logger.Named("server"))
	hs.s = s

	if c.goleak {
		defer func() {
			if err := goleak.Find(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "goleak: %s", err)
				os.Exit(1)
			}
		}()
	}

	g := runctx.NewGroup(s.Run)
	g.OnSignal = func(sig os.Signal) {
		logger.Info("received signal, shutting down", "signal", sig.String())
	}
	return g.RunContext(cmd.Context())
}

func (c *command) registerErrorsMetric() (func(name string), error) {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.promNamespace,
		Name:      "errors_total",
		Help:      "Number of errors logged",
	}, []string{"name"})

	if err := c.promReg.Register(m); err != nil {
		return nil, err
	}

	return func(name string) {
		m.WithLabelValues(name).Inc()
	}, nil
}

func (c *command) registerProcMetrics() error {
	return multierr.Combine(
		// Note that ProcessCollector is only available in Linux and Windows.
		c.promReg.Register(collectors.NewProcessCollector(
			collectors.ProcessCollectorOpts{Namespace: c.promNamespace})),
		c.promReg.Register(collectors.NewGoCollector()),
	)
}

func (c *command) registerVersionMetric() error {
	return c.promReg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.promNamespace,
		Name:      "version",
		Help:      "hostguard version, value is always 1",
		ConstLabels: prometheus.Labels{
			"version": version.Version,
			"commit":  version.Commit,
			"time":    version.Time,
		},
	}, func() float64 {
		return 1
	}))
}

var knownEndpoints = map[string]struct{}{ //nolint:gochecknoglobals // lookup table
	"/fetch":   {},
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
	"/configz": {},
	"/version": {},
}

// endpointLabel keeps the path label bounded.
func endpointLabel(r *http.Request) string {
	if _, ok := knownEndpoints[r.URL.Path]; ok {
		return r.URL.Path
	}
	return "other"
}

// lazyServer lets the API handler report readiness of a server created after it.
type lazyServer struct {
	s *hostguard.HTTPServer
}

func (l *lazyServer) Addr() string {
	if l.s == nil {
		return ""
	}
	return l.s.Addr()
}

func Command() *cobra.Command {
	c := makeCommand()

	cmd := &cobra.Command{
		Use:     "serve [--address <host:port>]",
		Short:   "Start HTTP server that fetches URLs with the guarded client",
		Long:    long,
		Example: example,
		Args:    cobra.NoArgs,
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	c.config.Bind(fs)
	bind.FetchConfig(fs, c.fetchConfig)
	bind.HTTPServerConfig(fs, c.httpServerConfig, "")
	bind.PromNamespace(fs, &c.promNamespace)
	bind.AutoMarkFlagFilename(cmd)

	fs.BoolVar(&c.goleak, "goleak", false, "enable goleak")
	bind.MarkFlagHidden(cmd,
		"goleak",
	)

	return cmd
}

func makeCommand() command {
	return command{
		promReg:          prometheus.NewRegistry(),
		promNamespace:    "hostguard",
		config:           setup.DefaultConfig(),
		fetchConfig:      hostguard.DefaultFetchConfig(),
		httpServerConfig: hostguard.DefaultHTTPServerConfig(),
	}
}

const long = `The server exposes the following endpoints:
  /fetch?url=<url>  fetch the URL with the guarded client, blocked URLs return 403
  /metrics          Prometheus metrics
  /healthz          health check
  /readyz           readiness check
  /configz          effective configuration
  /version          version information

Errors are reported with the X-Hostguard-Error header.
`

const example = `  # Start the server on all interfaces
  hostguard serve --address :8080

  # Deny loopback and private networks in addition to link-local addresses
  hostguard serve --deny-cidr 127.0.0.0/8 --deny-cidr 10.0.0.0/8 --deny-cidr 172.16.0.0/12 --deny-cidr 192.168.0.0/16
`
