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
	"github.com/cucumber95/Smart-pointers/pkg/cleanup"
	"github.com/cucumber95/Smart-pointers/pkg/exclusive"
	"github.com/cucumber95/Smart-pointers/pkg/intrusive"
)

// counted is an intrusively counted object.
type counted struct {
	intrusive.RefCounted
	destroyed int
}

// resource is disposed of by an exclusive owner.
type resource struct {
	closed int
}

func (r *resource) Destroy() {
	r.closed++
}

func init() {
	Register(Scenario{
		Name:     "intrusive",
		Synopsis: "the count lives in the object and handles share it",
		Run:      intrusiveCounting,
	})
	Register(Scenario{
		Name:     "exclusive",
		Synopsis: "ownership moves between exclusive handles and is disposed of once",
		Run:      exclusiveOwnership,
	})
}

func intrusiveCounting(r *Recorder) {
	p := intrusive.Make[counted](func(c *counted) {
		c.EnableLeakCheck("scenario.counted")
		c.SetDestructor(func() { c.destroyed++ })
	})
	obj := p.Get()
	r.Record("P := Make()", p.UseCount(), false)

	q := p.Clone()
	cu := cleanup.Make(q.Release)
	defer cu.Clean()
	r.Record("Q := P.Clone()", obj.RefCount(), false)
	r.Expect(obj.RefCount() == 2, "RefCount() = %d, want 2", obj.RefCount())

	// A second handle built from the raw object joins the same count.
	raw := intrusive.New(obj)
	r.Record("New(P.Get())", obj.RefCount(), false)
	r.Expect(raw.UseCount() == 3, "UseCount() = %d, want 3", raw.UseCount())
	raw.Release()
	p.Release()

	cu.Clean()
	r.Record("all released", obj.RefCount(), obj.destroyed != 0)
	r.Expect(obj.destroyed == 1, "destroyed %d times, want 1", obj.destroyed)
}

func exclusiveOwnership(r *Recorder) {
	obj := &resource{}
	u := exclusive.New(obj)
	r.Record("U := New(obj)", owners(u.Valid()), obj.closed != 0)

	v := u.Move()
	cu := cleanup.Make(v.Close)
	defer cu.Clean()
	r.Record("V := U.Move()", owners(v.Valid()), obj.closed != 0)
	r.Expect(!u.Valid() && v.Get() == obj, "Move left U=%v V=%v", u.Get(), v.Get())

	u.MoveFrom(v)
	r.Record("U.MoveFrom(V)", owners(u.Valid()), obj.closed != 0)
	u.Close()
	r.Record("U.Close()", owners(u.Valid()), obj.closed != 0)
	r.Expect(obj.closed == 1, "closed %d times, want 1", obj.closed)
}

func owners(valid bool) int64 {
	if valid {
		return 1
	}
	return 0
}
