// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostsfile

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	data := `
127.0.0.1	localhost
255.255.255.255	broadcasthost
::1             localhost
127.0.0.1 kubernetes.docker.internal
# End of section

169.254.169.254	Metadata.Local metadata-alias

192.168.0.60	fedora
`
	hosts, err := Read(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	golden := map[string][]netip.Addr{
		"localhost": {
			netip.MustParseAddr("127.0.0.1"),
			netip.MustParseAddr("::1"),
		},
		"broadcasthost":              {netip.MustParseAddr("255.255.255.255")},
		"kubernetes.docker.internal": {netip.MustParseAddr("127.0.0.1")},
		"metadata.local":             {netip.MustParseAddr("169.254.169.254")},
		"metadata-alias":             {netip.MustParseAddr("169.254.169.254")},
		"fedora":                     {netip.MustParseAddr("192.168.0.60")},
	}

	addrcmp := cmp.Comparer(func(a, b netip.Addr) bool {
		return a == b
	})
	if diff := cmp.Diff(golden, hosts, addrcmp); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}

	names := []string{
		"broadcasthost",
		"fedora",
		"kubernetes.docker.internal",
		"localhost",
		"metadata-alias",
		"metadata.local",
	}
	if diff := cmp.Diff(names, Names(hosts)); diff != "" {
		t.Errorf("unexpected names (-want +got):\n%s", diff)
	}
}
