// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides basic infrastructure to set configuration settings
// for ptrcheck. Each setting that can be changed from the command line must
// have a field in Config carrying a `flag` tag. Settings may also be loaded
// from a TOML file, keyed by the `toml` tag.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/cucumber95/Smart-pointers/pkg/log"
	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// Config holds configuration that is not part of a scenario.
type Config struct {
	// Debug indicates that debug logging should be enabled.
	Debug bool `flag:"debug" toml:"debug"`

	// LogFilename is the filename to log to, if not empty. It may contain
	// %TIMESTAMP% and %PID%.
	LogFilename string `flag:"log" toml:"log"`

	// LogFormat is the log format: "text" or "json".
	LogFormat string `flag:"log-format" toml:"log_format"`

	// AlsoLogToStderr allows to send log messages to stderr in addition to
	// the log file.
	AlsoLogToStderr bool `flag:"alsologtostderr" toml:"alsologtostderr"`

	// ReferenceLeak sets the reference leak check mode.
	ReferenceLeak refs.LeakMode `flag:"ref-leak-mode" toml:"ref_leak_mode"`

	// LogRefs enables logging of every reference count change of checked
	// objects.
	LogRefs bool `flag:"log-refs" toml:"log_refs"`
}

func (c *Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.LogFormat)
	}
	if c.LogRefs && c.ReferenceLeak == refs.NoLeakChecking {
		return fmt.Errorf("--log-refs requires --ref-leak-mode to be enabled")
	}
	return nil
}

// Log logs important aspects of the configuration to the given log function.
func (c *Config) Log() {
	log.Infof("Config:")
	log.Infof("Debug: %t, LogFormat: %s, AlsoLogToStderr: %t", c.Debug, c.LogFormat, c.AlsoLogToStderr)
	log.Infof("LogFilename: %q", c.LogFilename)
	log.Infof("ReferenceLeak: %v, LogRefs: %t", c.ReferenceLeak, c.LogRefs)
}

// LoadFile decodes the TOML file at path over c. Keys that do not map to a
// Config field are rejected.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decoding config file %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in config file %q: %v", path, undecoded)
	}
	return nil
}
