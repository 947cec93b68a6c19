// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"net/netip"
	"strconv"
	"strings"
)

// ParseAddr parses s as an IP address literal.
// On top of the forms accepted by netip.ParseAddr it accepts bracketed IPv6 addresses
// and IPv4 addresses in the numbers-and-dots notation of inet_aton(3).
// That notation has one to four parts, each part is decimal, octal (leading 0) or hexadecimal (leading 0x),
// and the last part fills the remaining bytes of the address, so "2852039166",
// "0251.0376.0251.0376" and "0xA9.0376.0xA9.0376" all denote 169.254.169.254.
func ParseAddr(s string) (netip.Addr, bool) {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return netip.Addr{}, false
	}

	if a, err := netip.ParseAddr(s); err == nil {
		return a, true
	}
	if strings.Contains(s, ":") {
		return netip.Addr{}, false
	}

	return parseIPv4Numbers(s)
}

func parseIPv4Numbers(s string) (netip.Addr, bool) {
	parts := strings.Split(s, ".")
	if len(parts) > 4 {
		return netip.Addr{}, false
	}

	var (
		v    uint32
		last = len(parts) - 1
	)
	for i, p := range parts {
		n, ok := parseIPv4Part(p)
		if !ok {
			return netip.Addr{}, false
		}
		if i < last {
			if n > 0xff {
				return netip.Addr{}, false
			}
			v |= uint32(n) << (8 * (3 - i))
			continue
		}

		// The last part fills all remaining bytes.
		remaining := 4 - i
		if remaining < 4 && n >= 1<<(8*remaining) {
			return netip.Addr{}, false
		}
		v |= uint32(n)
	}

	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}), true
}

func parseIPv4Part(p string) (uint64, bool) {
	base := 10
	switch {
	case p == "":
		return 0, false
	case len(p) > 2 && (p[:2] == "0x" || p[:2] == "0X"):
		base, p = 16, p[2:]
	case len(p) > 1 && p[0] == '0':
		base, p = 8, p[1:]
	}

	n, err := strconv.ParseUint(p, base, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsLinkLocal reports whether a is in 169.254.0.0/16 or fe80::/10.
// IPv4-mapped IPv6 addresses are unmapped first.
func IsLinkLocal(a netip.Addr) bool {
	return a.Unmap().IsLinkLocalUnicast()
}
