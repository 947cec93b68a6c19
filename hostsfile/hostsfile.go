// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package hostsfile reads static host name to address mappings in the hosts(5) format.
package hostsfile

import (
	"io"
	"net/netip"
	"os"
	"sort"
	"strings"

	hostsfile "github.com/kevinburke/hostsfile/lib"
	"golang.org/x/exp/maps"
)

// Location is the system hosts file location.
var Location = hostsfile.Location //nolint:gochecknoglobals // platform specific default

// ReadFile reads the hosts file at path, see Read.
func ReadFile(path string) (map[string][]netip.Addr, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// Read returns the addresses of each host name in r.
// Host names are lower-cased, addresses of a host are sorted and unique.
func Read(r io.Reader) (map[string][]netip.Addr, error) {
	hf, err := hostsfile.Decode(r)
	if err != nil {
		return nil, err
	}

	hosts := make(map[string]map[netip.Addr]struct{})
	for _, rec := range hf.Records() {
		a, ok := netip.AddrFromSlice(rec.IpAddress.IP)
		if !ok {
			continue
		}
		a = a.Unmap().WithZone(rec.IpAddress.Zone)

		for name := range rec.Hostnames {
			name = strings.ToLower(name)
			if hosts[name] == nil {
				hosts[name] = make(map[netip.Addr]struct{})
			}
			hosts[name][a] = struct{}{}
		}
	}

	res := make(map[string][]netip.Addr, len(hosts))
	for name, addrs := range hosts {
		v := maps.Keys(addrs)
		sort.Slice(v, func(i, j int) bool { return v[i].Less(v[j]) })
		res[name] = v
	}
	return res, nil
}

// Names returns the sorted host names of hosts.
func Names(hosts map[string][]netip.Addr) []string {
	v := maps.Keys(hosts)
	sort.Strings(v)
	return v
}
