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

package shared

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

func TestBlockLifecycle(t *testing.T) {
	for _, c := range constructors {
		t.Run(c.name, func(t *testing.T) {
			checkLeaks(t)
			destroyed := 0
			p := c.make(1, &destroyed)
			blk := p.blk
			w := p.Weak()

			if diff := cmp.Diff(counts{Strong: 1, Weak: 1, State: blockLive}, snapshot(blk)); diff != "" {
				t.Errorf("after construction (-want +got):\n%s", diff)
			}

			p.Release()
			if destroyed != 1 {
				t.Errorf("got %d destructions after last strong release, want 1", destroyed)
			}
			if diff := cmp.Diff(counts{Strong: 0, Weak: 1, State: blockDestroyed}, snapshot(blk)); diff != "" {
				t.Errorf("after strong release (-want +got):\n%s", diff)
			}

			w.Release()
			if destroyed != 1 {
				t.Errorf("got %d destructions after weak release, want 1", destroyed)
			}
			if diff := cmp.Diff(counts{State: blockFreed}, snapshot(blk)); diff != "" {
				t.Errorf("after weak release (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBlockFreedWithoutWeak(t *testing.T) {
	for _, c := range constructors {
		t.Run(c.name, func(t *testing.T) {
			checkLeaks(t)
			destroyed := 0
			p := c.make(1, &destroyed)
			blk := p.blk
			p.Release()
			if destroyed != 1 {
				t.Errorf("got %d destructions, want 1", destroyed)
			}
			if blk.state != blockFreed {
				t.Errorf("got state %d, want %d", blk.state, blockFreed)
			}
		})
	}
}

func TestWeakReleasedFirst(t *testing.T) {
	checkLeaks(t)
	destroyed := 0
	p := New(&tracked{destroyed: &destroyed})
	blk := p.blk
	w := p.Weak()
	w.Release()
	if blk.state != blockLive {
		t.Errorf("block retired while a strong reference is held")
	}
	p.Release()
	if destroyed != 1 || blk.state != blockFreed {
		t.Errorf("got destroyed=%d state=%d, want destroyed=1 state=%d", destroyed, blk.state, blockFreed)
	}
}

func TestInPlaceValueCleared(t *testing.T) {
	destroyed := 0
	p := Make(tracked{id: 7, destroyed: &destroyed})
	b, ok := p.blk.payload.(*inPlaceBlock[tracked])
	if !ok {
		t.Fatalf("Make did not use an in-place block: %T", p.blk.payload)
	}
	if p.Get() != &b.value {
		t.Errorf("pointee is not stored in the control block")
	}
	w := p.Weak()
	p.Release()
	if b.value != (tracked{}) {
		t.Errorf("in-place value not cleared after destruction: %+v", b.value)
	}
	w.Release()
}

func TestDecrementNonPositivePanics(t *testing.T) {
	for _, tc := range []struct {
		name string
		dec  func(b *controlBlock)
	}{
		{"strong", (*controlBlock).decStrong},
		{"weak", (*controlBlock).decWeak},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b := newInPlaceBlock[int]()
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("decrement of a zero count did not panic")
				}
			}()
			tc.dec(&b.controlBlock)
		})
	}
}

func TestLeakReportNamesPointee(t *testing.T) {
	old := refs.GetLeakMode()
	refs.SetLeakMode(refs.LeaksLogWarning)
	defer refs.SetLeakMode(old)

	before := refs.LiveCount()
	p := Make(42)
	if got := refs.LiveCount(); got != before+1 {
		t.Errorf("LiveCount() = %d, want %d", got, before+1)
	}
	leaks := refs.Leaks()
	if len(leaks) == 0 || !strings.Contains(leaks[len(leaks)-1], "[int ") {
		t.Errorf("leak report %v does not name the pointee type", leaks)
	}
	p.Release()
	if got := refs.LiveCount(); got != before {
		t.Errorf("LiveCount() = %d after release, want %d", got, before)
	}
}

func TestMakeFuncPanicRetiresBlock(t *testing.T) {
	checkLeaks(t)
	func() {
		defer func() {
			if recover() == nil {
				t.Errorf("MakeFunc did not propagate the constructor panic")
			}
		}()
		MakeFunc(func(*tracked) {
			panic("constructor failed")
		})
	}()
}

// faulty is a pointee whose destructor panics.
type faulty struct{}

func (*faulty) Destroy() {
	panic("destructor failed")
}

func TestDestroyPanicRetiresBlock(t *testing.T) {
	for _, tc := range []struct {
		name     string
		withWeak bool
	}{
		{"last reference", false},
		{"weak reference held", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			checkLeaks(t)
			p := New(&faulty{})
			blk := p.blk
			var w *WeakPointer[faulty]
			if tc.withWeak {
				w = p.Weak()
			}
			func() {
				defer func() {
					if recover() == nil {
						t.Errorf("Release did not propagate the destructor panic")
					}
				}()
				p.Release()
			}()
			if blk.destroying {
				t.Errorf("block still marked as destroying")
			}
			if got := blk.strongCount(); got != 0 {
				t.Errorf("strong count = %d, want 0", got)
			}
			if !tc.withWeak {
				if blk.state != blockFreed {
					t.Errorf("got state %d, want %d", blk.state, blockFreed)
				}
				return
			}
			if blk.state != blockDestroyed {
				t.Errorf("got state %d, want %d", blk.state, blockDestroyed)
			}
			if !w.Expired() {
				t.Errorf("weak reference not expired after the destructor panicked")
			}
			if l := w.Lock(); l.Valid() {
				t.Errorf("Lock() after the destructor panicked is valid")
			}
			w.Release()
			if blk.state != blockFreed {
				t.Errorf("got state %d after releasing the weak reference, want %d", blk.state, blockFreed)
			}
		})
	}
}

func TestTryIncRef(t *testing.T) {
	checkLeaks(t)
	destroyed := 0
	p := New(&tracked{destroyed: &destroyed})
	w := p.Weak()
	var rc refs.TryRefCounter = p.blk
	if !rc.TryIncRef() {
		t.Fatalf("TryIncRef() on a live block = false, want true")
	}
	if got := p.UseCount(); got != 2 {
		t.Errorf("UseCount() = %d after TryIncRef, want 2", got)
	}
	rc.DecRef()
	p.Release()
	if destroyed != 1 {
		t.Errorf("got %d destructions, want 1", destroyed)
	}
	if rc.TryIncRef() {
		t.Errorf("TryIncRef() on an expired block = true, want false")
	}
	if got := w.UseCount(); got != 0 {
		t.Errorf("UseCount() = %d after a failed TryIncRef, want 0", got)
	}
	w.Release()
}

func TestPromotionDuringDestroyFails(t *testing.T) {
	checkLeaks(t)
	var locked, promoted bool
	p := Make(node{name: "a", onDestroy: func(n *node) {
		w := n.WeakSelf()
		defer w.Release()
		if l := w.Lock(); l.Valid() {
			locked = true
			l.Release()
		}
		if s, err := FromWeak(w); err == nil {
			promoted = true
			s.Release()
		}
	}})
	p.Release()
	if locked || promoted {
		t.Errorf("weak reference promoted during destruction: Lock=%v FromWeak=%v", locked, promoted)
	}
}

func TestTypeName(t *testing.T) {
	if got, want := typeName[tracked](), "shared.tracked"; got != want {
		t.Errorf("typeName = %q, want %q", got, want)
	}
}
