// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"bufio"
	"bytes"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/saucelabs/hostguard/validation"
	"golang.org/x/net/idna"
	"gopkg.in/yaml.v3"
)

// Matcher matches host names.
type Matcher interface {
	Match(string) bool
}

type MatchFunc func(string) bool

func (m MatchFunc) Match(s string) bool {
	return m(s)
}

// DefaultDenylistHosts are the cloud instance metadata host names denied by default.
var DefaultDenylistHosts = []string{ //nolint:gochecknoglobals // default configuration
	"instance-data",
	"metadata.google.internal",
}

// Denylist is an immutable set of host names.
// A host matches if it equals an entry or is a subdomain of an entry, ignoring case.
type Denylist struct {
	names []string
}

var _ Matcher = (*Denylist)(nil)

// NewDenylist returns a Denylist of the given names.
// Names are normalized the same way as matched hosts, a leading dot is ignored.
func NewDenylist(names ...string) (*Denylist, error) {
	seen := make(map[string]struct{}, len(names))
	d := &Denylist{
		names: make([]string, 0, len(names)),
	}
	for _, name := range names {
		n := normalizeHost(strings.TrimPrefix(strings.TrimSpace(name), "."))
		if err := validateDenylistName(n); err != nil {
			return nil, fmt.Errorf("denylist entry %q: %w", name, err)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		d.names = append(d.names, n)
	}
	sort.Strings(d.names)

	return d, nil
}

// MustNewDenylist is like NewDenylist but panics on error.
func MustNewDenylist(names ...string) *Denylist {
	d, err := NewDenylist(names...)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultDenylist returns a Denylist of DefaultDenylistHosts.
func DefaultDenylist() *Denylist {
	return MustNewDenylist(DefaultDenylistHosts...)
}

func validateDenylistName(n string) error {
	if n == "" {
		return fmt.Errorf("empty name")
	}
	if !validation.IsDenyHostName(n) {
		return fmt.Errorf("invalid host name")
	}
	return nil
}

// IsValidDenylistName reports whether name is accepted by NewDenylist.
func IsValidDenylistName(name string) bool {
	return validateDenylistName(normalizeHost(strings.TrimPrefix(strings.TrimSpace(name), "."))) == nil
}

// Match returns true if host equals one of the names or is a subdomain of one of them.
func (d *Denylist) Match(host string) bool {
	if d == nil {
		return false
	}
	h := normalizeHost(host)
	if h == "" {
		return false
	}
	for _, n := range d.names {
		if h == n || strings.HasSuffix(h, "."+n) {
			return true
		}
	}
	return false
}

// Names returns a copy of the normalized names in sorted order.
func (d *Denylist) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

func (d *Denylist) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

func (d *Denylist) String() string {
	return strings.Join(d.Names(), ",")
}

// normalizeHost returns the form of host used for comparisons:
// lower case, without a trailing dot, and in IDNA ASCII form unless it is an IP literal.
// If IDNA rejects the name the lower-cased name is used.
func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimSuffix(h, ".")
	if h == "" {
		return ""
	}
	if _, ok := ParseAddr(h); ok {
		return h
	}
	if a, err := idna.Lookup.ToASCII(h); err == nil && a != "" {
		return a
	}
	return h
}

// DenylistFile is the parsed content of a denylist file.
type DenylistFile struct {
	Hosts []string
	CIDRs []netip.Prefix
}

// ParseDenylistFile parses the content of a denylist file.
// The content is either YAML with the hosts and cidrs keys,
// or plain text with one entry per line, where an entry is a host name, an IP address or a CIDR.
// In plain text everything after # is a comment.
func ParseDenylistFile(b []byte) (*DenylistFile, error) {
	if f, ok, err := parseDenylistYAML(b); ok {
		return f, err
	}

	f := new(DenylistFile)
	s := bufio.NewScanner(bytes.NewReader(b))
	for s.Scan() {
		line := s.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		for _, e := range strings.Fields(line) {
			if p, err := ParseDenyPrefix(e); err == nil {
				f.CIDRs = append(f.CIDRs, p)
				continue
			}
			if !IsValidDenylistName(e) {
				return nil, fmt.Errorf("invalid denylist entry %q", e)
			}
			f.Hosts = append(f.Hosts, e)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return f, nil
}

// parseDenylistYAML returns ok if b is a YAML mapping, in that case err is the decoding error.
func parseDenylistYAML(b []byte) (f *DenylistFile, ok bool, err error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, false, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, false, nil
	}

	var raw struct {
		Hosts []string `yaml:"hosts"`
		CIDRs []string `yaml:"cidrs"`
	}
	if err := doc.Decode(&raw); err != nil {
		return nil, true, err
	}

	f = &DenylistFile{
		Hosts: raw.Hosts,
	}
	for _, h := range raw.Hosts {
		if !IsValidDenylistName(h) {
			return nil, true, fmt.Errorf("invalid denylist entry %q", h)
		}
	}
	for _, c := range raw.CIDRs {
		p, err := ParseDenyPrefix(c)
		if err != nil {
			return nil, true, err
		}
		f.CIDRs = append(f.CIDRs, p)
	}
	return f, true, nil
}
