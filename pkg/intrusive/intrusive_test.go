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

package intrusive

import (
	"strings"
	"testing"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

type node struct {
	RefCounted
	name      string
	destroyed int
}

func newNode(name string) *node {
	n := &node{name: name}
	n.SetDestructor(func() { n.destroyed++ })
	return n
}

func TestCounting(t *testing.T) {
	n := newNode("a")
	p := New(n)
	if got := p.UseCount(); got != 1 {
		t.Errorf("UseCount() = %d, want 1", got)
	}
	q := p.Clone()
	r := q.Move()
	if q.Valid() {
		t.Errorf("moved-from handle still holds %v", q.Get())
	}
	if got := n.RefCount(); got != 2 {
		t.Errorf("RefCount() = %d, want 2", got)
	}
	p.Release()
	if n.destroyed != 0 {
		t.Fatalf("destroyed with a live handle")
	}
	r.Release()
	if n.destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", n.destroyed)
	}
	r.Release()
	if n.destroyed != 1 {
		t.Errorf("releasing an empty handle destroyed again")
	}
}

func TestAssign(t *testing.T) {
	a, b := newNode("a"), newNode("b")
	p, q := New(a), New(b)
	p.Assign(p)
	if a.RefCount() != 1 {
		t.Errorf("self assignment changed the count to %d", a.RefCount())
	}
	p.Assign(q)
	if a.destroyed != 1 || b.RefCount() != 2 {
		t.Errorf("after Assign: a.destroyed=%d b.RefCount()=%d, want 1 and 2", a.destroyed, b.RefCount())
	}
	p.MoveFrom(q)
	if b.RefCount() != 2 || !q.Valid() {
		t.Errorf("MoveFrom between handles to one object changed them: count=%d", b.RefCount())
	}
	q.Release()
	r := New(newNode("c"))
	r.MoveFrom(p)
	if p.Valid() || r.Get() != b || b.RefCount() != 1 {
		t.Errorf("MoveFrom: p.Valid()=%v r=%v count=%d", p.Valid(), r.Get().name, b.RefCount())
	}
	r.Release()
	if b.destroyed != 1 {
		t.Errorf("b destroyed %d times, want 1", b.destroyed)
	}
}

func TestResetToHeldObject(t *testing.T) {
	n := newNode("a")
	p := New(n)
	p.Reset(n)
	if n.destroyed != 0 || n.RefCount() != 1 {
		t.Errorf("Reset to the held object: destroyed=%d count=%d", n.destroyed, n.RefCount())
	}
	p.Reset(nil)
	if n.destroyed != 1 {
		t.Errorf("destroyed %d times, want 1", n.destroyed)
	}
}

func TestSwap(t *testing.T) {
	a, b := newNode("a"), newNode("b")
	p, q := New(a), New(b)
	p.Swap(q)
	if p.Get() != b || q.Get() != a {
		t.Errorf("Swap: p=%s q=%s", p.Get().name, q.Get().name)
	}
	if a.RefCount() != 1 || b.RefCount() != 1 {
		t.Errorf("Swap changed counts: a=%d b=%d", a.RefCount(), b.RefCount())
	}
	p.Release()
	q.Release()
}

func TestMake(t *testing.T) {
	p := Make[node](func(n *node) { n.name = "made" })
	if p.Get().name != "made" || p.UseCount() != 1 {
		t.Errorf("Make: name=%q count=%d", p.Get().name, p.UseCount())
	}
	p.Release()

	q := Make[node](nil)
	if !q.Valid() {
		t.Errorf("Make(nil) returned an empty handle")
	}
	q.Release()
}

func TestEmptyHandles(t *testing.T) {
	var p Ptr[*node]
	if p.Valid() || p.UseCount() != 0 {
		t.Errorf("zero handle: valid=%v count=%d", p.Valid(), p.UseCount())
	}
	p.Release()
	var nilPtr *Ptr[*node]
	if nilPtr.Valid() || nilPtr.Get() != nil {
		t.Errorf("nil handle reports an object")
	}
	if q := New[*node](nil); q.Valid() {
		t.Errorf("New(nil) is valid")
	}
}

func TestDecRefNonPositivePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("DecRef on a zero count did not panic")
		}
	}()
	var r RefCounted
	r.DecRef()
}

// sharedCounter lets several objects share one count.
type sharedCounter struct {
	SimpleCounter
	incs int
}

func (c *sharedCounter) IncRef() int64 {
	c.incs++
	return c.SimpleCounter.IncRef()
}

func TestCustomCounter(t *testing.T) {
	c := &sharedCounter{}
	a, b := newNode("a"), newNode("b")
	a.SetCounter(c)
	b.SetCounter(c)
	p, q := New(a), New(b)
	if c.RefCount() != 2 || c.incs != 2 {
		t.Errorf("shared counter: count=%d incs=%d, want 2 and 2", c.RefCount(), c.incs)
	}
	p.Release()
	if a.destroyed != 0 {
		t.Errorf("a destroyed while the shared count is positive")
	}
	q.Release()
	if b.destroyed != 1 {
		t.Errorf("b destroyed %d times, want 1", b.destroyed)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("SetCounter with live references did not panic")
		}
	}()
	n := New(newNode("c"))
	defer n.Release()
	n.Get().SetCounter(c)
}

func TestLeakCheck(t *testing.T) {
	prev := refs.GetLeakMode()
	refs.SetLeakMode(refs.LeaksLogWarning)
	t.Cleanup(func() { refs.SetLeakMode(prev) })

	n := newNode("a")
	n.EnableLeakCheck("intrusive.node")
	n.EnableLeakCheck("intrusive.node")
	p := New(n)
	leaks := refs.Leaks()
	if len(leaks) != 1 || !strings.Contains(leaks[0], "intrusive.node") {
		t.Fatalf("Leaks() = %q, want one report naming intrusive.node", leaks)
	}
	p.Release()
	if leaks := refs.Leaks(); len(leaks) != 0 {
		t.Errorf("Leaks() = %q after the last reference was dropped", leaks)
	}
}
