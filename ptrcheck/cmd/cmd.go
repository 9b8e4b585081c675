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

// Package cmd holds implementations of the ptrcheck commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cucumber95/Smart-pointers/ptrcheck/scenario"
)

// output selects how reports are printed.
type output struct {
	format string
}

func (o *output) validate() error {
	switch o.format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("invalid output format %q, must be 'text' or 'json'", o.format)
}

// print writes reps to w in the selected format.
func (o *output) print(w io.Writer, reps []*scenario.Report) error {
	if o.format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reps)
	}
	for _, rep := range reps {
		status := "PASS"
		if !rep.Passed() {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", status, rep.Name); err != nil {
			return err
		}
		for _, s := range rep.Steps {
			if _, err := fmt.Fprintf(w, "    %v\n", s); err != nil {
				return err
			}
		}
		if !rep.Passed() {
			if _, err := fmt.Fprintf(w, "    failure: %s\n", rep.Failure); err != nil {
				return err
			}
		}
	}
	return nil
}

// selectScenarios returns the scenarios named in names, or every scenario
// that does not leak if names is empty.
func selectScenarios(names []string) ([]scenario.Scenario, error) {
	if len(names) == 0 {
		return scenario.All(false /* withLeaks */), nil
	}
	var ss []scenario.Scenario
	for _, name := range names {
		s, ok := scenario.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q, see 'ptrcheck list'", name)
		}
		ss = append(ss, s)
	}
	return ss, nil
}

func execute(ss []scenario.Scenario) (reps []*scenario.Report, failed int) {
	for _, s := range ss {
		rep := s.Execute()
		if !rep.Passed() {
			failed++
		}
		reps = append(reps, rep)
	}
	return reps, failed
}
