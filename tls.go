// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"
)

type TLSClientConfig struct {
	// HandshakeTimeout specifies the maximum amount of time waiting to
	// wait for a TLS handshake. Zero means no timeout.
	HandshakeTimeout time.Duration

	// InsecureSkipVerify controls whether a client verifies the server's
	// certificate chain and host name.
	InsecureSkipVerify bool

	// CACertFiles is a list of paths to CA certificate files.
	// If this is set, the system root CA pool will be supplemented with certificates from these files.
	CACertFiles []string
}

func (c *TLSClientConfig) ConfigureTLSConfig(tlsCfg *tls.Config) error {
	tlsCfg.InsecureSkipVerify = c.InsecureSkipVerify //nolint:gosec // user setting

	if len(c.CACertFiles) == 0 {
		return nil
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	for _, name := range c.CACertFiles {
		b, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read CA certificate: %w", err)
		}
		if !pool.AppendCertsFromPEM(b) {
			return fmt.Errorf("no certificates found in %s", name)
		}
	}
	tlsCfg.RootCAs = pool

	return nil
}
