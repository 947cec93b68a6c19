// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	// ErrBlockedHost is returned when the request destination is denied.
	// Callers rely on the exact message, do not change it.
	ErrBlockedHost = errors.New("Blocked host.") //nolint:stylecheck // message is part of the API

	// ErrNoHost is returned when the request destination cannot be determined.
	ErrNoHost = errors.New("No host specified") //nolint:stylecheck // message is part of the API
)

type blockReason int

const (
	reasonDenylisted blockReason = iota + 1
	reasonLinkLocal
	reasonDeniedPrefix
)

func (r blockReason) String() string {
	switch r {
	case reasonDenylisted:
		return "denylisted"
	case reasonLinkLocal:
		return "link_local"
	case reasonDeniedPrefix:
		return "denied_prefix"
	default:
		return "unknown"
	}
}

// BlockedError is returned when the guard denies a destination.
// Its message is always the message of ErrBlockedHost, and errors.Is(err, ErrBlockedHost) holds.
type BlockedError struct {
	// Host is the normalized host name, it may be empty if only an address was given.
	Host string
	// Addr is the offending address, it is invalid if the host was denylisted.
	Addr netip.Addr

	reason blockReason
}

func (e *BlockedError) Error() string {
	return ErrBlockedHost.Error()
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlockedHost //nolint:errorlint // sentinel comparison
}

// ResolutionError is returned when the host cannot be resolved to any address.
// It is not a deny, the destination is unknown.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

var errNoAddresses = errors.New("no addresses found")
