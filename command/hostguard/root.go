// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package hostguard

import (
	"github.com/saucelabs/hostguard/bind"
	"github.com/saucelabs/hostguard/command/check"
	"github.com/saucelabs/hostguard/command/fetch"
	"github.com/saucelabs/hostguard/command/serve"
	"github.com/saucelabs/hostguard/command/version"
	"github.com/saucelabs/hostguard/utils/cobrautil"
	"github.com/spf13/cobra"
)

const (
	EnvPrefix          = "HOSTGUARD"
	ConfigFileFlagName = "config-file"
)

func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hostguard",
		Short: "Guard HTTP clients against requests to cloud metadata and link-local addresses",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cobrautil.BindAll(cmd, EnvPrefix, ConfigFileFlagName)
		},
	}
	bind.ConfigFile(cmd.PersistentFlags(), new(string))

	cmd.AddCommand(
		check.Command(),
		fetch.Command(),
		serve.Command(),
		version.Command(),
	)

	cobrautil.DefaultLong(cmd)
	cobrautil.AppendEnvToUsage(cmd, EnvPrefix)
	cobrautil.NoHelpSubcommand(cmd)

	return cmd
}
