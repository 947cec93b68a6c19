// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"errors"
	"net/http"
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var addrcmp = cmp.Comparer(func(a, b netip.Addr) bool { //nolint:gochecknoglobals // test helper
	return a == b
})

func TestExtractCandidate(t *testing.T) {
	metadata := netip.MustParseAddr("169.254.169.254")

	tests := []struct {
		name string
		rc   *RequestContext
		want Candidate
	}{
		{
			name: "target wins",
			rc: &RequestContext{
				Target: &Endpoint{Host: "Example.com", Addr: metadata},
				Route:  &Endpoint{Host: "route.example.com"},
				Header: http.Header{"Host": {"header.example.com"}},
			},
			want: Candidate{Host: "example.com", Addr: metadata},
		},
		{
			name: "target address only",
			rc: &RequestContext{
				Target: &Endpoint{Addr: metadata},
			},
			want: Candidate{Addr: metadata},
		},
		{
			name: "empty target falls back to route",
			rc: &RequestContext{
				Target: &Endpoint{},
				Route:  &Endpoint{Host: "route.example.com", Port: "443"},
			},
			want: Candidate{Host: "route.example.com"},
		},
		{
			name: "route wins over header",
			rc: &RequestContext{
				Route:  &Endpoint{Host: "route.example.com"},
				Header: http.Header{"Host": {"header.example.com"}},
			},
			want: Candidate{Host: "route.example.com"},
		},
		{
			name: "header",
			rc: &RequestContext{
				Header: http.Header{"Host": {"Header.Example.com"}},
			},
			want: Candidate{Host: "header.example.com"},
		},
		{
			name: "header port is discarded",
			rc: &RequestContext{
				Header: http.Header{"Host": {"169.254.169.254:80"}},
			},
			want: Candidate{Host: "169.254.169.254"},
		},
		{
			name: "header bracketed IPv6",
			rc: &RequestContext{
				Header: http.Header{"Host": {"[fe80::1]:80"}},
			},
			want: Candidate{Host: "fe80::1"},
		},
		{
			name: "header bracketed IPv6 without port",
			rc: &RequestContext{
				Header: http.Header{"Host": {"[fe80::1]"}},
			},
			want: Candidate{Host: "fe80::1"},
		},
		{
			name: "header unbracketed IPv6",
			rc: &RequestContext{
				Header: http.Header{"Host": {"fe80::1"}},
			},
			want: Candidate{Host: "fe80::1"},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			c, err := ExtractCandidate(tc.rc)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, c, addrcmp); diff != "" {
				t.Fatalf("unexpected candidate (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractCandidateNoHost(t *testing.T) {
	tests := []struct {
		name string
		rc   *RequestContext
	}{
		{name: "nil", rc: nil},
		{name: "empty", rc: &RequestContext{}},
		{name: "empty route", rc: &RequestContext{Route: &Endpoint{}}},
		{name: "no host header", rc: &RequestContext{Header: http.Header{"Accept": {"*/*"}}}},
		{name: "multiple host headers", rc: &RequestContext{Header: http.Header{"Host": {"a.example.com", "b.example.com"}}}},
		{name: "empty host header", rc: &RequestContext{Header: http.Header{"Host": {""}}}},
		{name: "invalid host header", rc: &RequestContext{Header: http.Header{"Host": {"exa mple.com"}}}},
		{name: "unterminated bracket", rc: &RequestContext{Header: http.Header{"Host": {"[fe80::1"}}}},
		{name: "port only", rc: &RequestContext{Header: http.Header{"Host": {":80"}}}},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ExtractCandidate(tc.rc); !errors.Is(err, ErrNoHost) {
				t.Fatalf("expected ErrNoHost, got %v", err)
			}
		})
	}
}

func TestNewRequestContext(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "http://www.nist.gov@169.254.169.254/latest/meta-data/", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	rc := NewRequestContext(req)
	if rc.Target != nil {
		t.Fatalf("unexpected target %v", rc.Target)
	}
	if diff := cmp.Diff(&Endpoint{Host: "169.254.169.254"}, rc.Route, addrcmp); diff != "" {
		t.Fatalf("unexpected route (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(http.Header{"Host": {"169.254.169.254"}}, rc.Header); diff != "" {
		t.Fatalf("unexpected header (-want +got):\n%s", diff)
	}

	c, err := ExtractCandidate(rc)
	if err != nil {
		t.Fatal(err)
	}
	if c.Host != "169.254.169.254" {
		t.Fatalf("userinfo leaked into candidate: %q", c.Host)
	}
}

func TestNewRequestContextTarget(t *testing.T) {
	pinned := netip.MustParseAddr("93.184.216.34")

	ctx := WithTarget(context.Background(), Endpoint{Host: "Example.com", Addr: pinned})
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.com:8080/", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}

	rc := NewRequestContext(req)
	if rc.Target == nil || rc.Target.Addr != pinned {
		t.Fatalf("expected pinned target, got %v", rc.Target)
	}
	if rc.Route.Port != "8080" {
		t.Fatalf("expected route port 8080, got %q", rc.Route.Port)
	}

	// The pin does not apply to other hosts, for example after a redirect.
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, "http://other.example.com/", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}
	if rc := NewRequestContext(req); rc.Target != nil {
		t.Fatalf("unexpected target %v", rc.Target)
	}
}

func TestEndpointString(t *testing.T) {
	tests := []struct {
		e    Endpoint
		want string
	}{
		{Endpoint{Host: "example.com"}, "example.com"},
		{Endpoint{Host: "example.com", Port: "80"}, "example.com:80"},
		{Endpoint{Addr: netip.MustParseAddr("fe80::1"), Port: "80"}, "[fe80::1]:80"},
	}
	for _, tc := range tests {
		if got := tc.e.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
