// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mmatczuk/anyflag"
	"github.com/spf13/cobra"
)

type testBindStruct struct {
	DenyHosts    []string
	DenyCIDRs    []netip.Prefix
	MaxRedirects int
	LogLevel     string
}

func newTestBindCommand(v *testBindStruct, configFile string) *cobra.Command {
	cmd := &cobra.Command{}
	fs := cmd.Flags()
	fs.String("config-file", configFile, "")
	fs.StringSliceVar(&v.DenyHosts, "deny-host", nil, "")
	fs.Var(anyflag.NewSliceValue[netip.Prefix](nil, &v.DenyCIDRs, netip.ParsePrefix), "deny-cidr", "")
	fs.IntVar(&v.MaxRedirects, "max-redirects", 10, "")
	fs.StringVar(&v.LogLevel, "log-level", "info", "")
	return cmd
}

func TestBindAllConfigFile(t *testing.T) {
	for _, ext := range []string{"yaml", "json"} {
		t.Run(ext, func(t *testing.T) {
			var v testBindStruct
			cmd := newTestBindCommand(&v, "testdata/bind."+ext)

			if err := BindAll(cmd, "TEST", "config-file"); err != nil {
				t.Fatal(err)
			}

			expected := testBindStruct{
				DenyHosts: []string{"metadata.example.com", "instance-data"},
				DenyCIDRs: []netip.Prefix{
					netip.MustParsePrefix("127.0.0.0/8"),
					netip.MustParsePrefix("fd00:ec2::254/128"),
				},
				MaxRedirects: 3,
				LogLevel:     "debug",
			}

			pcmp := cmp.Comparer(func(a, b netip.Prefix) bool {
				return a == b
			})
			if diff := cmp.Diff(expected, v, pcmp); diff != "" {
				t.Fatalf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBindAllPrecedence(t *testing.T) {
	t.Setenv("TEST_LOG_LEVEL", "warn")
	t.Setenv("TEST_MAX_REDIRECTS", "5")

	var v testBindStruct
	cmd := newTestBindCommand(&v, "testdata/bind.yaml")
	if err := cmd.Flags().Set("max-redirects", "7"); err != nil {
		t.Fatal(err)
	}

	if err := BindAll(cmd, "test", "config-file"); err != nil {
		t.Fatal(err)
	}

	if v.MaxRedirects != 7 {
		t.Errorf("flag must win over env: got %d", v.MaxRedirects)
	}
	if v.LogLevel != "warn" {
		t.Errorf("env must win over config file: got %q", v.LogLevel)
	}
	if len(v.DenyHosts) != 2 {
		t.Errorf("config file value not applied: %v", v.DenyHosts)
	}
}

func TestBindAllInvalidValue(t *testing.T) {
	t.Setenv("TEST_DENY_CIDR", "not-a-prefix")

	var v testBindStruct
	cmd := newTestBindCommand(&v, "")
	if err := BindAll(cmd, "TEST", "config-file"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBindAllMissingConfigFile(t *testing.T) {
	var v testBindStruct
	cmd := newTestBindCommand(&v, "testdata/missing.yaml")
	if err := BindAll(cmd, "TEST", "config-file"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("hostguard", "deny-hosts-file"); got != "HOSTGUARD_DENY_HOSTS_FILE" {
		t.Fatalf("got %q", got)
	}
}

func TestAppendEnvToUsage(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	sub := &cobra.Command{Use: "sub", Run: func(*cobra.Command, []string) {}}
	sub.Flags().String("log-level", "info", "log level")
	root.AddCommand(sub)

	AppendEnvToUsage(root, "HOSTGUARD")
	AppendEnvToUsage(root, "HOSTGUARD")

	if got := sub.Flags().Lookup("log-level").Usage; got != "log level (env HOSTGUARD_LOG_LEVEL)" {
		t.Fatalf("got %q", got)
	}
}
