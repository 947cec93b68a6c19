// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package fileurl parses command line values that are either a file path or a URL.
package fileurl

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseFilePathOrURL extends url.Parse with the ability to parse file paths.
// If there is no scheme, it will be set to "file".
// If value equals "-", it will be set to "file:-" meaning stdin.
// Supported schemes are file, data, http and https.
func ParseFilePathOrURL(val string) (*url.URL, error) {
	if val == "" {
		return nil, nil
	}

	// Handle stdin.
	if val == "-" {
		return &url.URL{Scheme: "file", Path: "-"}, nil
	}

	u, err := url.Parse(val)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case "":
		u.Scheme = "file"
	case "file":
		if u.Path == "" && u.Opaque != "" {
			u.Path, u.Opaque = u.Opaque, ""
		}
	case "data", "http", "https":
		// ok
	default:
		return nil, fmt.Errorf("unsupported scheme %q, supported schemes are: file, data, http and https", u.Scheme)
	}

	return u, nil
}
