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

package scenario

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// withLeakChecking enables leak checking for the duration of the test.
func withLeakChecking(t *testing.T) {
	prev := refs.GetLeakMode()
	refs.SetLeakMode(refs.LeaksLogWarning)
	t.Cleanup(func() { refs.SetLeakMode(prev) })
}

func TestScenariosPass(t *testing.T) {
	for _, s := range All(false /* withLeaks */) {
		t.Run(s.Name, func(t *testing.T) {
			withLeakChecking(t)
			rep := s.Execute()
			if !rep.Passed() {
				t.Errorf("scenario failed: %s", rep.Failure)
			}
			if len(rep.Steps) == 0 {
				t.Errorf("scenario recorded no steps")
			}
			if leaks := refs.Leaks(); len(leaks) != 0 {
				t.Errorf("scenario leaked:\n%s", leaks)
			}
		})
	}
}

func TestCopyWeakExpireTrace(t *testing.T) {
	rep, err := Run("copy-weak-expire")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []Step{
		{Label: "A := New(obj)", UseCount: 1},
		{Label: "B := A.Clone()", UseCount: 2},
		{Label: "W := A.Weak()", UseCount: 2},
		{Label: "A.Release()", UseCount: 1},
		{Label: "B.Release()", UseCount: 0, Expired: true},
		{Label: "W.Lock()", UseCount: 0, Expired: true},
	}
	if diff := cmp.Diff(want, rep.Steps); diff != "" {
		t.Errorf("trace mismatch (-want +got):\n%s", diff)
	}
}

func TestStrongCycleLeaks(t *testing.T) {
	withLeakChecking(t)
	before := len(refs.Leaks())
	s, ok := Lookup("strong-cycle")
	if !ok {
		t.Fatalf("strong-cycle is not registered")
	}
	if rep := s.Execute(); !rep.Passed() {
		t.Fatalf("scenario failed: %s", rep.Failure)
	}
	if got := len(refs.Leaks()) - before; got != 2 {
		t.Errorf("cycle leaked %d blocks, want 2", got)
	}
}

func TestAll(t *testing.T) {
	for _, s := range All(false /* withLeaks */) {
		if s.Leaks {
			t.Errorf("All(false) returned leaking scenario %q", s.Name)
		}
	}
	all := All(true /* withLeaks */)
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Errorf("All not sorted: %q before %q", all[i-1].Name, all[i].Name)
		}
	}
	if _, ok := Lookup("strong-cycle"); !ok || len(all) != len(All(false))+1 {
		t.Errorf("All(true) returned %d scenarios, want one leaking extra", len(all))
	}
}

func TestRunUnknown(t *testing.T) {
	if _, err := Run("no-such-scenario"); err == nil {
		t.Errorf("Run of an unknown scenario succeeded")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("duplicate Register did not panic")
		}
	}()
	Register(Scenario{Name: "promote"})
}
