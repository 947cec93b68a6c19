// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
)

// ParseDNSAddress parses a DNS URL or IP address.
// It supports IP only or full URL.
// Hostname is not allowed.
// Examples: `udp://1.1.1.1:53`, `1.1.1.1`.
//
// Requirements:
// - (Optional) protocol: udp, tcp (default udp)
// - Only IP not a hostname.
// - (Optional) port in a valid range: 1 - 65535 (default 53).
// - No username and password.
// - No path, query, and fragment.
func ParseDNSAddress(val string) (*url.URL, error) {
	u, err := url.Parse(val)
	if err != nil || u.Host == "" {
		u = &url.URL{Host: val}
	}
	if u.Scheme == "" {
		u.Scheme = "udp"
	}
	if u.Port() == "" {
		u.Host += ":53"
	}
	if err := validateDNSURL(u); err != nil {
		return nil, err
	}

	return u, nil
}

func validateDNSURL(u *url.URL) error {
	if u.Scheme != "udp" && u.Scheme != "tcp" {
		return fmt.Errorf("invalid protocol: %s, supported protocols are udp and tcp", u.Scheme)
	}
	if _, err := netip.ParseAddr(u.Hostname()); err != nil {
		return fmt.Errorf("invalid hostname: %s DNS must be an IP address", u.Hostname())
	}
	if !isPort(u.Port()) {
		return fmt.Errorf("invalid port: %s", u.Port())
	}
	if u.User != nil {
		return fmt.Errorf("username and password are not allowed in DNS URI")
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("path, query, and fragment are not allowed in DNS URI")
	}

	return nil
}

// isPort returns true iff port string is a valid port number.
func isPort(port string) bool {
	p, err := strconv.Atoi(port)
	if err != nil {
		return false
	}

	return p >= 1 && p <= 65535
}

// ParseDenyPrefix parses a CIDR or a single IP address, which is turned into a host prefix.
func ParseDenyPrefix(val string) (netip.Prefix, error) {
	if p, err := netip.ParsePrefix(val); err == nil {
		return unmapPrefix(p), nil
	}
	a, err := netip.ParseAddr(val)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR or IP address %q", val)
	}
	return unmapPrefix(netip.PrefixFrom(a.WithZone(""), a.BitLen())), nil
}

// OpenFileParser returns a parser that calls os.OpenFile.
// If dirPerm is set it will create the directory if it does not exist.
// For empty path the parser returns nil file and nil error.
func OpenFileParser(flag int, perm, dirPerm os.FileMode) func(val string) (*os.File, error) {
	return func(val string) (*os.File, error) {
		if val == "" {
			return nil, nil
		}

		if dirPerm != 0 {
			dir := filepath.Dir(val)
			if err := os.MkdirAll(dir, dirPerm); err != nil {
				return nil, err
			}
		}
		return os.OpenFile(val, flag, perm)
	}
}
