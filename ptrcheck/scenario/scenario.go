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

// Package scenario holds named ownership scenarios that exercise the pointer
// packages and record the reference counts they observe.
package scenario

import (
	"fmt"
	"sort"

	"github.com/cucumber95/Smart-pointers/pkg/log"
)

// Step is one observation made while a scenario runs.
type Step struct {
	Label    string `json:"label"`
	UseCount int64  `json:"use_count"`
	Expired  bool   `json:"expired"`
}

// String implements fmt.Stringer.
func (s Step) String() string {
	return fmt.Sprintf("%-40s use_count=%d expired=%t", s.Label, s.UseCount, s.Expired)
}

// Report is the outcome of one scenario run.
type Report struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`

	// Failure describes the first expectation that did not hold. It is empty
	// if the scenario passed.
	Failure string `json:"failure,omitempty"`
}

// Passed reports whether every expectation of the scenario held.
func (r *Report) Passed() bool {
	return r.Failure == ""
}

// Recorder collects the steps and the first failed expectation of a run.
type Recorder struct {
	name  string
	steps []Step
	err   error
}

// Record appends an observation to the trace.
func (r *Recorder) Record(label string, useCount int64, expired bool) {
	log.Debugf("Scenario %s: %s use_count=%d expired=%t", r.name, label, useCount, expired)
	r.steps = append(r.steps, Step{Label: label, UseCount: useCount, Expired: expired})
}

// Expect records a failure unless ok holds. Only the first failure is kept.
func (r *Recorder) Expect(ok bool, format string, v ...any) {
	if ok || r.err != nil {
		return
	}
	r.err = fmt.Errorf(format, v...)
	log.Warningf("Scenario %s: %v", r.name, r.err)
}

// Scenario is a named, self-checking sequence of pointer operations.
type Scenario struct {
	Name     string
	Synopsis string

	// Leaks is set for scenarios that leave objects alive on purpose. They
	// only run when asked for by name.
	Leaks bool

	Run func(r *Recorder)
}

var registry = make(map[string]Scenario)

// Register adds s to the registry. It panics on a duplicate name.
func Register(s Scenario) {
	if _, ok := registry[s.Name]; ok {
		panic(fmt.Sprintf("scenario %q registered twice", s.Name))
	}
	registry[s.Name] = s
}

// Lookup returns the scenario registered under name.
func Lookup(name string) (Scenario, bool) {
	s, ok := registry[name]
	return s, ok
}

// All returns every registered scenario sorted by name. Leaking scenarios
// are included only if withLeaks is set.
func All(withLeaks bool) []Scenario {
	var all []Scenario
	for _, s := range registry {
		if s.Leaks && !withLeaks {
			continue
		}
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Run runs the named scenario.
func Run(name string) (*Report, error) {
	s, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return s.Execute(), nil
}

// Execute runs s and returns its report.
func (s Scenario) Execute() *Report {
	log.Infof("Running scenario %s", s.Name)
	r := &Recorder{name: s.Name}
	s.Run(r)
	rep := &Report{Name: s.Name, Steps: r.steps}
	if r.err != nil {
		rep.Failure = r.err.Error()
	}
	return rep
}
