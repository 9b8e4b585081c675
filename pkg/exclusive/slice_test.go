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

package exclusive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSlice(t *testing.T) {
	var closed []string
	elems := []resource{
		{name: "a", closed: &closed},
		{name: "b", closed: &closed},
	}
	u := NewSlice(elems)
	if u.Len() != 2 || u.At(1).name != "b" {
		t.Fatalf("NewSlice: len=%d", u.Len())
	}
	u.At(0).name = "a2"
	if elems[0].name != "a2" {
		t.Errorf("At did not address the owned element")
	}

	v := u.Move()
	if u.Valid() || u.Len() != 0 {
		t.Errorf("moved-from slice still holds %d elements", u.Len())
	}
	v.MoveFrom(v)
	v.Close()
	if diff := cmp.Diff([]string{"a2", "b"}, closed); diff != "" {
		t.Errorf("destroyed mismatch (-want +got):\n%s", diff)
	}
}

type countingSliceDeleter struct {
	calls *int
}

func (d countingSliceDeleter) DeleteSlice([]int) {
	*d.calls++
}

func TestSliceDeleter(t *testing.T) {
	calls := 0
	u := NewSliceWithDeleter([]int{1, 2, 3}, countingSliceDeleter{calls: &calls})
	w := NewSliceWithDeleter([]int{4}, countingSliceDeleter{calls: &calls})
	w.MoveFrom(u)
	if calls != 1 {
		t.Errorf("MoveFrom disposed %d times, want 1", calls)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, w.Get()); diff != "" {
		t.Errorf("elements mismatch (-want +got):\n%s", diff)
	}
	if got := w.Release(); len(got) != 3 {
		t.Errorf("Release returned %v", got)
	}
	w.Close()
	if calls != 1 {
		t.Errorf("Close after Release disposed, calls=%d", calls)
	}
	w.Reset([]int{5})
	w.Swap(u)
	u.Close()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
