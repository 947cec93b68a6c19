// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"net/netip"
	"testing"
)

func TestParseAddr(t *testing.T) {
	metadata := netip.MustParseAddr("169.254.169.254")

	tests := []struct {
		input string
		want  netip.Addr
	}{
		{"169.254.169.254", metadata},
		{"2852039166", metadata},
		{"0251.0376.0251.0376", metadata},
		{"0xA9FEA9FE", metadata},
		{"0xa9fea9fe", metadata},
		{"0xA9.0376.0xA9.0376", metadata},
		{"0251.0xFE.0251.0xFE", metadata},
		{"169.254.43518", metadata},
		{"169.16689662", metadata},
		{"0xA9.0xFE.0xA9FE", metadata},
		{"127.1", netip.MustParseAddr("127.0.0.1")},
		{"0", netip.MustParseAddr("0.0.0.0")},
		{"fe80::1", netip.MustParseAddr("fe80::1")},
		{"[fe80::1]", netip.MustParseAddr("fe80::1")},
		{"fe80::1%eth0", netip.MustParseAddr("fe80::1%eth0")},
		{"::ffff:169.254.169.254", netip.MustParseAddr("::ffff:169.254.169.254")},
	}

	for i := range tests {
		tc := tests[i]
		t.Run(tc.input, func(t *testing.T) {
			a, ok := ParseAddr(tc.input)
			if !ok {
				t.Fatalf("ParseAddr(%q) failed", tc.input)
			}
			if a != tc.want {
				t.Fatalf("ParseAddr(%q) = %s, want %s", tc.input, a, tc.want)
			}
		})
	}
}

func TestParseAddrNotLiteral(t *testing.T) {
	tests := []string{
		"",
		"example.com",
		"instance-data",
		"1.2.3.4.5",
		"256.1.1.1",
		"1.2.3.256",
		"1.2.65536",
		"1.16777216",
		"4294967296",
		"08.1.1.1",
		"0x",
		"0xg1",
		"1..1",
		"1.2.3.",
		"-1.2.3.4",
		"+1",
		"1_000",
		"[fe80::1",
		"fe80::zz",
		"169.254.169.254.example.com",
	}

	for _, input := range tests {
		if a, ok := ParseAddr(input); ok {
			t.Errorf("ParseAddr(%q) = %s, expected not a literal", input, a)
		}
	}
}

func TestIsLinkLocal(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"169.254.169.254", true},
		{"169.254.0.1", true},
		{"169.255.0.1", false},
		{"fe80::1", true},
		{"fe80::a9fe:a9fe", true},
		{"febf::1", true},
		{"fec0::1", false},
		{"::ffff:169.254.169.254", true},
		{"127.0.0.1", false},
		{"10.0.0.1", false},
		{"93.184.216.34", false},
		{"2606:2800:220:1:248:1893:25c8:1946", false},
	}

	for _, tc := range tests {
		if got := IsLinkLocal(netip.MustParseAddr(tc.addr)); got != tc.want {
			t.Errorf("IsLinkLocal(%s) = %v, want %v", tc.addr, got, tc.want)
		}
	}
}
