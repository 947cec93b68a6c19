// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"errors"
	"net/netip"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
	"github.com/saucelabs/hostguard/validation"
)

func xxHashString(k string) uint32 {
	v := xxhash.Sum64String(k)
	return uint32(v)
}

// DNSCacheConfig configures CachingResolver, zero Capacity disables caching.
type DNSCacheConfig struct {
	Capacity uint32        `validate:"omitempty,gte=64"`
	TTL      time.Duration `validate:"gt=0"`
}

func DefaultDNSCacheConfig() DNSCacheConfig {
	return DNSCacheConfig{
		Capacity: 1024,
		TTL:      30 * time.Second,
	}
}

// CachingResolver caches successful lookups of the underlying resolver.
// Errors are not cached.
type CachingResolver struct {
	r     Resolver
	cache *freelru.ShardedLRU[string, []netip.Addr]
}

func (c DNSCacheConfig) Validate() error {
	return validation.Validator().Struct(c)
}

func NewCachingResolver(r Resolver, cfg DNSCacheConfig) (*CachingResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Capacity == 0 {
		return nil, errors.New("dns cache capacity must be positive")
	}

	c, err := freelru.NewSharded[string, []netip.Addr](cfg.Capacity, xxHashString)
	if err != nil {
		return nil, err
	}
	c.SetLifetime(cfg.TTL)

	return &CachingResolver{
		r:     r,
		cache: c,
	}, nil
}

func (c *CachingResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	key := network + "/" + strings.ToLower(host)
	if addrs, ok := c.cache.Get(key); ok {
		return append([]netip.Addr(nil), addrs...), nil
	}

	addrs, err := c.r.LookupNetIP(ctx, network, host)
	if err != nil {
		return nil, err
	}
	if len(addrs) > 0 {
		c.cache.Add(key, append([]netip.Addr(nil), addrs...))
	}

	return addrs, nil
}

// Purge removes all cached entries.
func (c *CachingResolver) Purge() {
	c.cache.Purge()
}
