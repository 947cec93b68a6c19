// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cobrautil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// AppendEnvToUsage appends the environment variable name to the usage string of each flag of the command and its subcommands.
func AppendEnvToUsage(cmd *cobra.Command, envPrefix string) {
	for _, c := range cmd.Commands() {
		AppendEnvToUsage(c, envPrefix)
	}
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Usage, " (env ") {
			return
		}
		f.Usage += fmt.Sprintf(" (env %s)", EnvName(envPrefix, f.Name))
	})
}

func EnvName(envPrefix, flagName string) string {
	return envReplacer.Replace(strings.ToUpper(envPrefix + "_" + flagName))
}
