// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	hlog "github.com/saucelabs/hostguard/log"
)

type staticAddr string

func (a staticAddr) Addr() string {
	return string(a)
}

func newFetchTestServer(t *testing.T, reg *prometheus.Registry) *httpexpect.Expect {
	t.Helper()

	g := newTestGuard(t, nil, nil)
	c := newTestClient(t, nil, g)

	cfg := DefaultFetchConfig()
	cfg.MaxBodySize = 16
	cfg.PromRegistry = reg
	cfg.PromNamespace = "test"
	fetch := NewFetchHandler(cfg, c, hlog.NopLogger)

	s := httptest.NewServer(NewAPIHandler(reg, staticAddr("localhost:8080"), "deny-host=instance-data\n", fetch))
	t.Cleanup(s.Close)

	return httpexpect.Default(t, s.URL)
}

func TestFetchHandler(t *testing.T) {
	upstream, _ := redirectServer(t)
	e := newFetchTestServer(t, prometheus.NewRegistry())

	e.GET("/fetch").WithQuery("url", upstream.URL+"/r1").
		Expect().
		Status(http.StatusOK).
		Body().IsEqual("valid")
}

func TestFetchHandlerBodyLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("x", 100))) //nolint:errcheck // test
	}))
	t.Cleanup(upstream.Close)

	e := newFetchTestServer(t, prometheus.NewRegistry())

	resp := e.GET("/fetch").WithQuery("url", upstream.URL).Expect().Status(http.StatusOK)
	resp.Header("Content-Type").IsEqual("text/plain")
	resp.Body().IsEqual(strings.Repeat("x", 16))
}

func TestFetchHandlerErrors(t *testing.T) {
	upstream, _ := redirectServer(t)
	reg := prometheus.NewRegistry()
	e := newFetchTestServer(t, reg)

	tests := []struct {
		name  string
		url   string
		code  int
		body  string
		label string
	}{
		{
			name:  "metadata",
			url:   "http://169.254.169.254/latest/meta-data/",
			code:  http.StatusForbidden,
			body:  "Blocked host.",
			label: "blocked_link_local",
		},
		{
			name:  "denylisted",
			url:   "http://metadata.google.internal/computeMetadata/v1/",
			code:  http.StatusForbidden,
			body:  "Blocked host.",
			label: "blocked_denylisted",
		},
		{
			name:  "redirect",
			url:   upstream.URL + "/redirect-metadata",
			code:  http.StatusForbidden,
			body:  "Blocked host.",
			label: "blocked_link_local",
		},
		{
			name:  "unknown host",
			url:   "http://unknown.example.com/",
			code:  http.StatusBadGateway,
			body:  "Failed to resolve remote host",
			label: "resolution",
		},
		{
			name:  "too many redirects",
			url:   upstream.URL + "/loop",
			code:  http.StatusBadGateway,
			body:  "Too many redirects",
			label: "redirects",
		},
		{
			name:  "missing url",
			url:   "",
			code:  http.StatusBadRequest,
			body:  "Invalid url parameter",
			label: "bad_url",
		},
		{
			name:  "unsupported scheme",
			url:   "file:///etc/passwd",
			code:  http.StatusBadRequest,
			body:  "Invalid url parameter",
			label: "bad_url",
		},
		{
			name:  "no host",
			url:   "http:///path",
			code:  http.StatusBadRequest,
			body:  "Request host could not be determined",
			label: "no_host",
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			resp := e.GET("/fetch").WithQuery("url", tc.url).Expect().Status(tc.code)
			resp.Body().Contains(tc.body)
			resp.Header(ErrorHeader).NotEmpty()
		})
	}

	if n, err := testutil.GatherAndCount(reg, "test_fetch_errors_total"); err != nil || n != 6 {
		t.Fatalf("expected 6 error series, got %d err=%v", n, err)
	}
}

func TestFetchHandlerMethod(t *testing.T) {
	e := newFetchTestServer(t, prometheus.NewRegistry())
	e.POST("/fetch").Expect().Status(http.StatusMethodNotAllowed).Header("Allow").IsEqual("GET, HEAD")
}

func TestAPIHandler(t *testing.T) {
	e := newFetchTestServer(t, prometheus.NewRegistry())

	e.GET("/healthz").Expect().Status(http.StatusOK).Body().IsEqual("OK")
	e.GET("/readyz").Expect().Status(http.StatusOK).Body().IsEqual("OK")
	e.GET("/configz").Expect().Status(http.StatusOK).Body().IsEqual("deny-host=instance-data\n")
	e.GET("/version").Expect().Status(http.StatusOK).JSON().Object().ContainsKey("version")
	e.GET("/metrics").Expect().Status(http.StatusOK)
}

func TestAPIHandlerNotReady(t *testing.T) {
	s := httptest.NewServer(NewAPIHandler(prometheus.NewRegistry(), staticAddr(""), "", http.NotFoundHandler()))
	t.Cleanup(s.Close)

	httpexpect.Default(t, s.URL).GET("/readyz").Expect().Status(http.StatusServiceUnavailable)
}

func TestAPIHandlerMetricsExposition(t *testing.T) {
	e := newFetchTestServer(t, prometheus.NewRegistry())

	e.GET("/fetch").WithQuery("url", "http://169.254.169.254/latest/meta-data/").
		Expect().
		Status(http.StatusForbidden)

	body := e.GET("/metrics").Expect().Status(http.StatusOK).Body().Raw()

	var p expfmt.TextParser
	mfs, err := p.TextToMetricFamilies(strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	mf, ok := mfs["test_fetch_errors_total"]
	if !ok {
		t.Fatalf("fetch errors metric not exposed:\n%s", body)
	}
	if mf.GetType() != dto.MetricType_COUNTER {
		t.Fatalf("unexpected metric type %v", mf.GetType())
	}
	if len(mf.GetMetric()) != 1 || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("unexpected metric %v", mf)
	}
}
