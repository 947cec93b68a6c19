// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fileurl

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseFilePathOrURL(t *testing.T) {
	tests := []struct {
		input string
		want  *url.URL
	}{
		{
			input: "",
			want:  nil,
		},
		{
			input: "-",
			want:  &url.URL{Scheme: "file", Path: "-"},
		},
		{
			input: "path/to/denylist.txt",
			want:  &url.URL{Scheme: "file", Path: "path/to/denylist.txt"},
		},
		{
			input: "/etc/hostguard/denylist.yaml",
			want:  &url.URL{Scheme: "file", Path: "/etc/hostguard/denylist.yaml"},
		},
		{
			input: "file:///etc/hostguard/denylist.yaml",
			want:  &url.URL{Scheme: "file", Path: "/etc/hostguard/denylist.yaml"},
		},
		{
			input: "file:denylist.txt",
			want:  &url.URL{Scheme: "file", Path: "denylist.txt"},
		},
		{
			input: "data:base64,aW5zdGFuY2UtZGF0YQ==",
			want:  &url.URL{Scheme: "data", Opaque: "base64,aW5zdGFuY2UtZGF0YQ=="},
		},
		{
			input: "https://example.com/denylist.txt",
			want:  &url.URL{Scheme: "https", Host: "example.com", Path: "/denylist.txt"},
		},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.input, func(t *testing.T) {
			u, err := ParseFilePathOrURL(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, u); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFilePathOrURLUnsupportedScheme(t *testing.T) {
	for _, val := range []string{"ftp://example.com/denylist.txt", "gopher://example.com/"} {
		if _, err := ParseFilePathOrURL(val); err == nil {
			t.Errorf("expected error for %q", val)
		}
	}
}
