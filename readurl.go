// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// maxReadURLSize limits the size of content read from a URL.
const maxReadURLSize = 8 << 20

// DefaultReadURLTimeout bounds HTTP reads when the context has no deadline.
const DefaultReadURLTimeout = 30 * time.Second

// ReadDenylistURL reads and parses a denylist file, see ReadURL and ParseDenylistFile.
func ReadDenylistURL(ctx context.Context, u *url.URL, rt http.RoundTripper) (*DenylistFile, error) {
	b, err := ReadURL(ctx, u, rt)
	if err != nil {
		return nil, fmt.Errorf("read denylist %s: %w", u.Redacted(), err)
	}
	f, err := ParseDenylistFile(b)
	if err != nil {
		return nil, fmt.Errorf("parse denylist %s: %w", u.Redacted(), err)
	}
	return f, nil
}

// ReadURL can read base64 encoded data, local file, http or https URL or stdin.
// HTTP requests are sent with rt, pass a guarded transport to apply the denylist to them.
// HTTP requests are canceled with ctx, or after DefaultReadURLTimeout if ctx has no deadline.
func ReadURL(ctx context.Context, u *url.URL, rt http.RoundTripper) ([]byte, error) {
	switch u.Scheme {
	case "data":
		return readData(u)
	case "file":
		return readFile(u)
	case "http", "https":
		return readHTTP(ctx, u, rt)
	default:
		return nil, fmt.Errorf("unsupported scheme %q, supported schemes are: data, file, http and https", u.Scheme)
	}
}

func readData(u *url.URL) ([]byte, error) {
	v := strings.TrimPrefix(u.Opaque, "//")

	idx := strings.IndexByte(v, ',')
	if idx == -1 {
		return nil, fmt.Errorf("invalid data URI, the supported formats are: data:base64,<encoded data> and data:,<text>")
	}
	if v[:idx] == "" {
		s, err := url.PathUnescape(v[idx+1:])
		return []byte(s), err
	}
	if v[:idx] != "base64" {
		return nil, fmt.Errorf("invalid data URI, the supported formats are: data:base64,<encoded data> and data:,<text>")
	}

	return base64.StdEncoding.DecodeString(v[idx+1:])
}

func readFile(u *url.URL) ([]byte, error) {
	if u.Host != "" {
		return nil, fmt.Errorf("invalid file URL %q, host is not allowed", u.String())
	}
	if u.User != nil {
		return nil, fmt.Errorf("invalid file URL %q, user is not allowed", u.String())
	}
	if u.RawQuery != "" {
		return nil, fmt.Errorf("invalid file URL %q, query is not allowed", u.String())
	}
	if u.Path == "" {
		return nil, fmt.Errorf("invalid file URL %q, path is empty", u.String())
	}

	if u.Path == "-" {
		return readAll(os.Stdin)
	}

	f, err := os.Open(u.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readAll(f)
}

func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxReadURLSize))
}

func readHTTP(ctx context.Context, u *url.URL, rt http.RoundTripper) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultReadURLTimeout)
		defer cancel()
	}

	c := http.Client{
		Transport: rt,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	return readAll(resp.Body)
}
