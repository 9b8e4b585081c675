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
	"errors"

	"github.com/cucumber95/Smart-pointers/pkg/cleanup"
	"github.com/cucumber95/Smart-pointers/pkg/shared"
)

// widget is the pointee used by the shared ownership scenarios.
type widget struct {
	shared.SelfObserving[widget]
	name      string
	part      int
	destroyed int
}

func (w *widget) Destroy() {
	w.destroyed++
}

// link is a graph node whose edges may be strong or weak.
type link struct {
	name   string
	next   *shared.Pointer[link]
	parent *shared.WeakPointer[link]
}

func (l *link) Destroy() {
	if l.next != nil {
		l.next.Release()
	}
	if l.parent != nil {
		l.parent.Release()
	}
}

func init() {
	Register(Scenario{
		Name:     "copy-weak-expire",
		Synopsis: "copies share one count and a weak handle expires with the last copy",
		Run:      copyWeakExpire,
	})
	Register(Scenario{
		Name:     "alias-keeps-alive",
		Synopsis: "a handle to a field keeps the whole object alive",
		Run:      aliasKeepsAlive,
	})
	Register(Scenario{
		Name:     "promote",
		Synopsis: "weak promotion before and after expiry",
		Run:      promote,
	})
	Register(Scenario{
		Name:     "in-place-vs-adopted",
		Synopsis: "in-place and adopted pointees count and expire alike",
		Run:      inPlaceVsAdopted,
	})
	Register(Scenario{
		Name:     "self-observing",
		Synopsis: "self handles agree with external handles",
		Run:      selfObserving,
	})
	Register(Scenario{
		Name:     "weak-back-edge",
		Synopsis: "a weak back-reference lets a parent and child be collected",
		Run:      weakBackEdge,
	})
	Register(Scenario{
		Name:     "strong-cycle",
		Synopsis: "two objects owning each other are never destroyed",
		Leaks:    true,
		Run:      strongCycle,
	})
}

func copyWeakExpire(r *Recorder) {
	obj := &widget{name: "a"}
	a := shared.New(obj)
	r.Record("A := New(obj)", a.UseCount(), false)
	r.Expect(a.UseCount() == 1, "A.UseCount() = %d, want 1", a.UseCount())

	b := a.Clone()
	r.Record("B := A.Clone()", b.UseCount(), false)
	r.Expect(a.UseCount() == 2 && b.UseCount() == 2, "after copy A=%d B=%d, want 2", a.UseCount(), b.UseCount())

	w := a.Weak()
	cu := cleanup.Make(w.Release)
	defer cu.Clean()
	r.Record("W := A.Weak()", w.UseCount(), w.Expired())

	a.Release()
	r.Record("A.Release()", b.UseCount(), w.Expired())
	r.Expect(b.UseCount() == 1 && !w.Expired(), "after releasing A: B=%d expired=%t", b.UseCount(), w.Expired())

	b.Release()
	r.Record("B.Release()", w.UseCount(), w.Expired())
	r.Expect(w.Expired(), "W not expired after the last strong handle")
	r.Expect(obj.destroyed == 1, "destroyed %d times, want 1", obj.destroyed)

	l := w.Lock()
	r.Record("W.Lock()", l.UseCount(), w.Expired())
	r.Expect(!l.Valid(), "Lock of an expired handle returned a live handle")
}

func aliasKeepsAlive(r *Recorder) {
	obj := &widget{name: "a", part: 42}
	a := shared.New(obj)
	b := a.Clone()
	c := shared.Alias(a, &obj.part)
	cu := cleanup.Make(c.Release)
	defer cu.Clean()
	r.Record("C := Alias(A, &obj.part)", c.UseCount(), false)
	r.Expect(c.UseCount() == 3, "C.UseCount() = %d, want 3", c.UseCount())

	a.Release()
	b.Release()
	r.Record("A, B released", c.UseCount(), false)
	r.Expect(obj.destroyed == 0, "object destroyed while C is alive")
	r.Expect(*c.Deref() == 42, "*C = %d, want 42", *c.Deref())

	cu.Clean()
	r.Record("C.Release()", c.UseCount(), false)
	r.Expect(obj.destroyed == 1, "destroyed %d times, want 1", obj.destroyed)
}

func promote(r *Recorder) {
	a := shared.Make(widget{name: "a"})
	w := a.Weak()
	cu := cleanup.Make(w.Release)
	defer cu.Clean()

	before := a.UseCount()
	p, err := shared.FromWeak(w)
	r.Expect(err == nil, "FromWeak of a live handle: %v", err)
	if err == nil {
		r.Record("FromWeak(W) while alive", p.UseCount(), w.Expired())
		r.Expect(p.UseCount() == before+1, "promotion gave use count %d, want %d", p.UseCount(), before+1)
		p.Release()
	}
	l := w.Lock()
	r.Record("W.Lock() while alive", l.UseCount(), w.Expired())
	r.Expect(l.UseCount() == before+1, "Lock gave use count %d, want %d", l.UseCount(), before+1)
	l.Release()

	a.Release()
	_, err = shared.FromWeak(w)
	r.Record("FromWeak(W) after expiry", w.UseCount(), w.Expired())
	r.Expect(errors.Is(err, shared.ErrBadWeakPointer), "FromWeak after expiry returned %v, want %v", err, shared.ErrBadWeakPointer)
	l = w.Lock()
	r.Record("W.Lock() after expiry", l.UseCount(), w.Expired())
	r.Expect(!l.Valid(), "Lock after expiry returned a live handle")
}

// lifecycle runs one fixed sequence of operations and returns the use counts
// and expiry states it observed.
func lifecycle(p *shared.Pointer[widget]) []Step {
	var steps []Step
	observe := func(label string, w *shared.WeakPointer[widget]) {
		steps = append(steps, Step{Label: label, UseCount: w.UseCount(), Expired: w.Expired()})
	}
	w := p.Weak()
	defer w.Release()
	observe("weak", w)
	q := p.Clone()
	observe("clone", w)
	p.Release()
	observe("release first", w)
	l := w.Lock()
	observe("lock", w)
	l.Release()
	q.Release()
	observe("release last", w)
	return steps
}

func inPlaceVsAdopted(r *Recorder) {
	adopted := lifecycle(shared.New(&widget{name: "adopted"}))
	inPlace := lifecycle(shared.Make(widget{name: "in-place"}))
	for i := range adopted {
		r.Record("adopted: "+adopted[i].Label, adopted[i].UseCount, adopted[i].Expired)
		r.Record("in-place: "+inPlace[i].Label, inPlace[i].UseCount, inPlace[i].Expired)
		r.Expect(adopted[i] == inPlace[i], "step %q differs: adopted %+v, in-place %+v", adopted[i].Label, adopted[i], inPlace[i])
	}
}

func selfObserving(r *Recorder) {
	a := shared.Make(widget{name: "self"})
	obj := a.Get()
	b := a.Clone()

	s := obj.SharedSelf()
	r.Record("S := obj.SharedSelf()", s.UseCount(), false)
	r.Expect(s.UseCount() == a.UseCount(), "self handle count %d, external %d", s.UseCount(), a.UseCount())
	r.Expect(s.Equal(a), "self handle does not share the external block")

	ws := obj.WeakSelf()
	r.Record("WS := obj.WeakSelf()", ws.UseCount(), ws.Expired())
	r.Expect(ws.UseCount() == b.UseCount(), "weak self count %d, external %d", ws.UseCount(), b.UseCount())

	v := obj.SharedSelfView()
	r.Record("V := obj.SharedSelfView()", v.UseCount(), false)
	r.Expect(v.Load().name == "self", "view reads %q", v.Load().name)

	for _, release := range []func(){v.Release, s.Release, b.Release, a.Release} {
		release()
	}
	r.Record("all strong handles released", ws.UseCount(), ws.Expired())
	r.Expect(ws.Expired(), "weak self handle outlived its object")
	ws.Release()
}

func weakBackEdge(r *Recorder) {
	parent := shared.New(&link{name: "parent"})
	child := shared.New(&link{name: "child"})
	parent.Get().next = child.Clone()
	child.Get().parent = parent.Weak()
	r.Record("parent", parent.UseCount(), false)
	r.Record("child", child.UseCount(), false)

	w := child.Weak()
	defer w.Release()
	child.Release()
	parent.Release()
	r.Record("child after releasing both", w.UseCount(), w.Expired())
	r.Expect(w.Expired(), "child kept alive by its parent")
}

func strongCycle(r *Recorder) {
	a := shared.New(&link{name: "a"})
	b := shared.New(&link{name: "b"})
	a.Get().next = b.Clone()
	b.Get().next = a.Clone()

	w := a.Weak()
	defer w.Release()
	a.Release()
	b.Release()
	r.Record("a after releasing both", w.UseCount(), w.Expired())
	r.Expect(!w.Expired(), "cycle was collected")
}
