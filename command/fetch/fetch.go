// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package fetch

import (
	"fmt"
	"io"
	"net/http"

	"github.com/saucelabs/hostguard/command/setup"
	"github.com/spf13/cobra"
)

type command struct {
	config  *setup.Config
	include bool
}

func (c *command) runE(cmd *cobra.Command, args []string) error {
	if f := c.config.Log.File; f != nil {
		defer f.Close()
	}

	env, err := c.config.Build(nil)
	if err != nil {
		return err
	}

	client, err := env.Client(c.config.Client)
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, args[0], http.NoBody)
	if err != nil {
		return err
	}

	cmd.SilenceUsage = true

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	w := cmd.OutOrStdout()
	if c.include {
		fmt.Fprintf(w, "%s %s\n", resp.Proto, resp.Status)
		if err := resp.Header.Write(w); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

func Command() *cobra.Command {
	c := command{
		config: setup.DefaultConfig(),
	}

	cmd := &cobra.Command{
		Use:     "fetch <url>",
		Short:   "Fetch a URL with the guarded HTTP client and write the body to stdout",
		Long:    long,
		Example: example,
		Args:    cobra.ExactArgs(1),
		RunE:    c.runE,
	}

	fs := cmd.Flags()
	c.config.Bind(fs)
	fs.BoolVarP(&c.include, "include", "i", false, "Include the response status line and headers in the output.")

	return cmd
}

const long = `The request and every redirect are checked before they are sent,
connections are made only to the addresses approved by the guard.
`

const example = `  # Fetch a page
  hostguard fetch https://example.com/

  # Fetch with headers, following at most 3 redirects
  hostguard fetch -i --max-redirects 3 https://example.com/
`
