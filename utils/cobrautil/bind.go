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
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var envReplacer = strings.NewReplacer(".", "_", "-", "_") //nolint:gochecknoglobals // false positive

// BindAll updates the given command flags with values from the environment variables and config file.
// The config file is read as YAML unless its extension names another format supported by viper.
// The following precedence order of configuration sources is used: command flags, environment variables, config file, default values.
func BindAll(cmd *cobra.Command, envPrefix, configFileFlagName string) error {
	v := viper.New()

	// Flags
	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Environment variables
	v.SetEnvKeyReplacer(envReplacer)
	v.SetEnvPrefix(envReplacer.Replace(strings.ToUpper(envPrefix)))
	v.AutomaticEnv()

	// Config file
	if configFileFlagName != "" {
		if f := v.GetString(configFileFlagName); f != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(f)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config file %s: %w", f, err)
			}
		}
	}

	// Update cobra flags with values from viper
	updateFs := func(fs *pflag.FlagSet) (err error) {
		fs.VisitAll(func(f *pflag.Flag) {
			if f.Changed || !v.IsSet(f.Name) {
				return
			}
			if serr := fs.Set(f.Name, flagValue(v.Get(f.Name))); serr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", f.Name, serr))
			}
		})
		return
	}

	return multierr.Combine(
		updateFs(cmd.PersistentFlags()),
		updateFs(cmd.Flags()),
	)
}

// flagValue formats a viper value so that slice flags accept it.
func flagValue(val any) string {
	if l, ok := val.([]any); ok {
		s := make([]string, len(l))
		for i := range l {
			s[i] = fmt.Sprintf("%v", l[i])
		}
		return strings.Join(s, ",")
	}

	s := fmt.Sprintf("%v", val)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.NewReplacer(", ", ",", " ", ",").Replace(s)
}
