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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

func newTestFlags() *flag.FlagSet {
	testFlags := flag.NewFlagSet("test", flag.ContinueOnError)
	RegisterFlags(testFlags)
	return testFlags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ptrcheck.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c, err := NewFromFlags(newTestFlags())
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{LogFormat: "text", ReferenceLeak: refs.NoLeakChecking}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("default config mismatch (-want +got):\n%s", diff)
	}
	// All defaults doesn't require setting flags.
	if flags := c.ToFlags(); len(flags) > 0 {
		t.Errorf("default flags not set correctly for: %s", flags)
	}
}

func TestFromFlags(t *testing.T) {
	testFlags := newTestFlags()
	if err := testFlags.Parse([]string{"--debug", "--log-format=json", "--ref-leak-mode=log-traces", "--log-refs"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := NewFromFlags(testFlags)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		Debug:         true,
		LogFormat:     "json",
		ReferenceLeak: refs.LeaksLogTraces,
		LogRefs:       true,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestToFlagsFromFlags(t *testing.T) {
	testFlags := newTestFlags()
	testFlags.Set("debug", "true")
	testFlags.Set("log-format", "text") // Matches default value.
	testFlags.Set("ref-leak-mode", "panic")
	c, err := NewFromFlags(testFlags)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"--debug=true", "--ref-leak-mode=panic"}
	if diff := cmp.Diff(want, c.ToFlags()); diff != "" {
		t.Errorf("ToFlags mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFile(t *testing.T) {
	path := writeConfig(t, `
debug = true
log = "/tmp/ptrcheck.%PID%.log"
ref_leak_mode = "log-names"
log_refs = true
`)
	testFlags := newTestFlags()
	// The command line wins over the file.
	if err := testFlags.Parse([]string{"--config=" + path, "--debug=false"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	c, err := NewFromFlags(testFlags)
	if err != nil {
		t.Fatal(err)
	}
	want := &Config{
		LogFilename:   "/tmp/ptrcheck.%PID%.log",
		LogFormat:     "text",
		ReferenceLeak: refs.LeaksLogWarning,
		LogRefs:       true,
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestInvalid(t *testing.T) {
	for _, tc := range []struct {
		name  string
		args  []string
		file  string
		error string
	}{
		{
			name:  "log format",
			args:  []string{"--log-format=xml"},
			error: "invalid log format",
		},
		{
			name:  "log refs without leak checking",
			args:  []string{"--log-refs"},
			error: "requires --ref-leak-mode",
		},
		{
			name:  "leak mode in file",
			file:  `ref_leak_mode = "sometimes"`,
			error: "invalid ref leak mode",
		},
		{
			name:  "unknown key",
			file:  `verbose = true`,
			error: "unknown keys",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			args := tc.args
			if tc.file != "" {
				args = append(args, "--config="+writeConfig(t, tc.file))
			}
			testFlags := newTestFlags()
			if err := testFlags.Parse(args); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			_, err := NewFromFlags(testFlags)
			if err == nil || !strings.Contains(err.Error(), tc.error) {
				t.Errorf("NewFromFlags() error = %v, want one containing %q", err, tc.error)
			}
		})
	}
}

func TestInvalidLeakModeFlag(t *testing.T) {
	testFlags := newTestFlags()
	testFlags.SetOutput(&strings.Builder{})
	if err := testFlags.Parse([]string{"--ref-leak-mode=sometimes"}); err == nil {
		t.Errorf("Parse accepted an invalid leak mode")
	}
}
