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

package config

import (
	"flag"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// RegisterFlags registers flags used to populate Config.
func RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.String("config", "", "path to a TOML file with default settings. Flags set on the command line take precedence.")

	// Debugging flags.
	flagSet.Bool("debug", false, "enable debug logging.")
	flagSet.String("log", "", "file path where internal debug information is written, default is stderr. The following variables are available: %TIMESTAMP%, %PID%.")
	flagSet.String("log-format", "text", "log format: text (default) or json.")
	flagSet.Bool("alsologtostderr", false, "send log messages to stderr.")

	// Leak checking flags.
	flagSet.Var(leakModePtr(refs.NoLeakChecking), "ref-leak-mode", "sets reference leak check mode: disabled (default), log-names, log-traces, panic.")
	flagSet.Bool("log-refs", false, "log every reference count change of checked objects. Requires --ref-leak-mode.")
}

// NewFromFlags creates a new Config with values coming from command line
// flags. If --config names a file, its settings are applied first and only
// flags set explicitly on the command line override them.
func NewFromFlags(flagSet *flag.FlagSet) (*Config, error) {
	conf := &Config{}
	obj := reflect.ValueOf(conf).Elem()

	// Start from the flag defaults.
	if err := forEachFlagField(obj, flagSet, func(field reflect.Value, fl *flag.Flag) error {
		return setDefault(field, fl)
	}); err != nil {
		return nil, err
	}

	if path := flagSet.Lookup("config").Value.String(); path != "" {
		if err := conf.LoadFile(path); err != nil {
			return nil, err
		}
	}

	set := make(map[string]bool)
	flagSet.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if err := forEachFlagField(obj, flagSet, func(field reflect.Value, fl *flag.Flag) error {
		if !set[fl.Name] {
			return nil
		}
		field.Set(reflect.ValueOf(getter(fl).Get()))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ToFlags returns a slice of flags that correspond to the given Config.
// Settings equal to their default are omitted.
func (c *Config) ToFlags() []string {
	flagSet := flag.NewFlagSet("tmp", flag.ContinueOnError)
	RegisterFlags(flagSet)

	var rv []string
	obj := reflect.ValueOf(c).Elem()
	if err := forEachFlagField(obj, flagSet, func(field reflect.Value, fl *flag.Flag) error {
		if val := getVal(field); val != fl.DefValue {
			rv = append(rv, fmt.Sprintf("--%s=%s", fl.Name, val))
		}
		return nil
	}); err != nil {
		panic(err)
	}
	return rv
}

func forEachFlagField(obj reflect.Value, flagSet *flag.FlagSet, fn func(reflect.Value, *flag.Flag) error) error {
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		name, ok := f.Tag.Lookup("flag")
		if !ok {
			// No flag set for this field.
			continue
		}
		fl := flagSet.Lookup(name)
		if fl == nil {
			panic(fmt.Sprintf("Flag %q not found", name))
		}
		if err := fn(obj.Field(i), fl); err != nil {
			return err
		}
	}
	return nil
}

func getter(fl *flag.Flag) flag.Getter {
	g, ok := fl.Value.(flag.Getter)
	if !ok {
		panic(fmt.Sprintf("Flag %q does not implement flag.Getter", fl.Name))
	}
	return g
}

// setDefault stores fl's default value into field. The flag's current value
// may already have been changed on the command line, so the default is
// parsed from its string form.
func setDefault(field reflect.Value, fl *flag.Flag) error {
	if u, ok := field.Addr().Interface().(interface{ Set(string) error }); ok {
		return u.Set(fl.DefValue)
	}
	switch field.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(fl.DefValue)
		if err != nil {
			return fmt.Errorf("flag %q: %w", fl.Name, err)
		}
		field.SetBool(v)
	case reflect.String:
		field.SetString(fl.DefValue)
	default:
		panic("unknown type " + field.Kind().String())
	}
	return nil
}

func getVal(field reflect.Value) string {
	if str, ok := field.Addr().Interface().(fmt.Stringer); ok {
		return str.String()
	}
	switch field.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(field.Bool())
	case reflect.String:
		return field.String()
	default:
		panic("unknown type " + field.Kind().String())
	}
}

func leakModePtr(v refs.LeakMode) *refs.LeakMode {
	return &v
}
