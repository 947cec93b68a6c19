// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package check

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/saucelabs/hostguard"
	"github.com/saucelabs/hostguard/command/setup"
	"github.com/spf13/cobra"
)

type command struct {
	config *setup.Config
}

var errChecksFailed = errors.New("some URLs are blocked or could not be checked")

func (c *command) runE(cmd *cobra.Command, args []string) error {
	if f := c.config.Log.File; f != nil {
		defer f.Close()
	}

	env, err := c.config.Build(nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := false
	for _, u := range args {
		addrs, err := check(cmd.Context(), env.Guard, u)
		switch {
		case err == nil:
			fmt.Fprintf(w, "ALLOW\t%s\t%s\n", u, formatAddrs(addrs))
		case errors.Is(err, hostguard.ErrBlockedHost):
			failed = true
			fmt.Fprintf(w, "DENY\t%s\t%s\n", u, err)
		default:
			failed = true
			fmt.Fprintf(w, "ERROR\t%s\t%s\n", u, err)
		}
	}

	if failed {
		cmd.SilenceUsage = true
		return errChecksFailed
	}
	return nil
}

func check(ctx context.Context, g *hostguard.Guard, rawURL string) ([]netip.Addr, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	c, err := hostguard.ExtractCandidate(hostguard.NewRequestContext(req))
	if err != nil {
		return nil, err
	}
	return g.Evaluate(ctx, c)
}

func formatAddrs(addrs []netip.Addr) string {
	s := make([]string, len(addrs))
	for i, a := range addrs {
		s[i] = a.String()
	}
	return strings.Join(s, ",")
}

func Command() *cobra.Command {
	c := command{
		config: setup.DefaultConfig(),
	}

	cmd := &cobra.Command{
		Use:     "check <url>...",
		Short:   "Check if URLs would be allowed without fetching them",
		Long:    long,
		Example: example,
		Args:    cobra.MinimumNArgs(1),
		RunE:    c.runE,
	}

	c.config.Bind(cmd.Flags())

	return cmd
}

const long = `The host of every URL is checked against the denylist and resolved,
the URL is denied if any of the addresses is link-local or in a denied address range.
For allowed URLs the approved addresses are printed.
The command exits with a non-zero status if any URL is denied or cannot be checked.
`

const example = `  # Check a cloud metadata URL
  hostguard check http://169.254.169.254/latest/meta-data/

  # Check with a custom denylist and loopback addresses denied
  hostguard check --deny-host metadata.example.com --deny-cidr 127.0.0.0/8 http://localhost:8080/
`
