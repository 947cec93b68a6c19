// Copyright 2026 Sauce Labs Inc., all rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"fmt"
	"os"
	"strings"
)

// Config is a configuration for the loggers.
type Config struct {
	File   *os.File
	Level  Level
	Format Format
}

func DefaultConfig() *Config {
	return &Config{
		File:   nil,
		Level:  InfoLevel,
		Format: TextFormat,
	}
}

type Level int

// Levels start from 1 to avoid zero value in help printer.
const (
	ErrorLevel Level = 1 + iota
	WarnLevel
	InfoLevel
	DebugLevel
)

var levelNames = [4]string{"error", "warn", "info", "debug"} //nolint:gochecknoglobals // lookup table

func (l Level) String() string {
	if l < ErrorLevel || l > DebugLevel {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l-1]
}

// ParseLevel parses a level name, it is case-insensitive.
func ParseLevel(val string) (Level, error) {
	v := strings.ToLower(val)
	if v == "warning" {
		v = "warn"
	}
	for i, n := range levelNames {
		if n == v {
			return Level(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid log level %q, supported levels are: %s", val, strings.Join(levelNames[:], ", "))
}

type Format int

// Formats start from 1 to avoid zero value in help printer.
const (
	TextFormat Format = 1 + iota
	JSONFormat
)

func (f Format) String() string {
	switch f {
	case TextFormat:
		return "text"
	case JSONFormat:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func ParseFormat(val string) (Format, error) {
	switch strings.ToLower(val) {
	case "text":
		return TextFormat, nil
	case "json":
		return JSONFormat, nil
	default:
		return 0, fmt.Errorf("invalid log format %q, supported formats are: text, json", val)
	}
}
