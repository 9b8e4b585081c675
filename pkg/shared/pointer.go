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
	"errors"
	"time"

	"github.com/cucumber95/Smart-pointers/pkg/cleanup"
	"github.com/cucumber95/Smart-pointers/pkg/log"
)

// ErrBadWeakPointer is returned by FromWeak when the weak pointer's pointee
// has no strong owner left.
var ErrBadWeakPointer = errors.New("bad weak pointer: pointee already destroyed")

// staleLog reports reads through handles whose block lost all strong
// references without the handle being released.
var staleLog = log.BasicRateLimitedLogger(time.Minute)

// Pointer is a shared ownership handle. The zero value is an empty handle.
//
// Pointer must not be copied by value; use Clone.
type Pointer[T any] struct {
	// ptr is the dereferenceable view. It is usually the block's pointee,
	// but may point elsewhere for handles built with Alias.
	ptr *T

	// blk is nil iff the handle is empty.
	blk *controlBlock
}

// New returns a Pointer that owns p, which must not be owned by anything
// else. When the last strong reference is released, p.Destroy is called if
// *T implements Destroyer. New(nil) returns an empty Pointer.
func New[T any](p *T) *Pointer[T] {
	if p == nil {
		return &Pointer[T]{}
	}
	b := newAdoptedBlock(p, nil)
	return own(p, &b.controlBlock)
}

// NewWithDeleter is like New, but deleter is called on p instead of
// Destroy.
func NewWithDeleter[T any](p *T, deleter func(*T)) *Pointer[T] {
	if p == nil {
		return &Pointer[T]{}
	}
	b := newAdoptedBlock(p, deleter)
	return own(p, &b.controlBlock)
}

// Make returns a Pointer to a copy of v, stored in the same allocation as its
// control block.
func Make[T any](v T) *Pointer[T] {
	return MakeFunc(func(p *T) {
		*p = v
	})
}

// MakeFunc returns a Pointer to a value constructed in place by construct,
// stored in the same allocation as its control block. construct may be nil,
// in which case the pointee is the zero value.
//
// If construct panics, the block is retired before the panic propagates.
func MakeFunc[T any](construct func(*T)) *Pointer[T] {
	b := newInPlaceBlock[T]()
	cu := cleanup.Make(b.abandon)
	defer cu.Clean()
	if construct != nil {
		construct(&b.value)
	}
	cu.Release()
	return own(&b.value, &b.controlBlock)
}

// own takes the first strong reference on a new block and installs self
// references into the pointee if it embeds SelfObserving. Slots that do not
// refer to p through blk were copied from another object and never counted,
// so they are overwritten without being released.
func own[T any](p *T, blk *controlBlock) *Pointer[T] {
	sp := &Pointer[T]{ptr: p, blk: blk}
	blk.incStrong()
	if s, ok := any(p).(selfObserver[T]); ok {
		if slots := s.selfSlots(); !slots.installedFor(p, blk) {
			*slots = SelfObserving[T]{}
			slots.install(sp)
		}
	}
	return sp
}

// Alias returns a Pointer that shares ownership with owner but dereferences
// to view, typically a field of owner's pointee. The aliased handle keeps
// owner's pointee alive.
func Alias[T, U any](owner *Pointer[U], view *T) *Pointer[T] {
	sp := &Pointer[T]{ptr: view}
	if owner != nil && owner.blk != nil {
		sp.blk = owner.blk
		sp.blk.incStrong()
	}
	return sp
}

// FromWeak returns a new strong reference to w's pointee. It returns
// ErrBadWeakPointer if the pointee has no strong owner left. See also
// WeakPointer.Lock.
func FromWeak[T any](w *WeakPointer[T]) (*Pointer[T], error) {
	if w == nil || w.blk == nil || !w.blk.tryIncStrong() {
		return nil, ErrBadWeakPointer
	}
	return &Pointer[T]{ptr: w.ptr, blk: w.blk}, nil
}

// Clone returns a new handle sharing ownership with p.
func (p *Pointer[T]) Clone() *Pointer[T] {
	if p == nil {
		return &Pointer[T]{}
	}
	if p.blk != nil {
		p.blk.incStrong()
	}
	return &Pointer[T]{ptr: p.ptr, blk: p.blk}
}

// Move transfers p's reference to a new handle. p is left empty and the
// counts do not change.
func (p *Pointer[T]) Move() *Pointer[T] {
	n := &Pointer[T]{ptr: p.ptr, blk: p.blk}
	p.ptr, p.blk = nil, nil
	return n
}

// Assign makes p share ownership with o, releasing p's previous reference.
// Assigning a handle that already shares p's block only updates the view.
func (p *Pointer[T]) Assign(o *Pointer[T]) {
	if p == o {
		return
	}
	var (
		ptr *T
		blk *controlBlock
	)
	if o != nil {
		ptr, blk = o.ptr, o.blk
	}
	if blk == p.blk {
		p.ptr = ptr
		return
	}
	// Take the new reference before dropping the old one: o may only be
	// reachable through p's pointee.
	if blk != nil {
		blk.incStrong()
	}
	old := p.blk
	p.ptr, p.blk = ptr, blk
	if old != nil {
		old.decStrong()
	}
}

// MoveFrom transfers o's reference into p, releasing p's previous reference.
// o is left empty. MoveFrom(p) is a no-op.
func (p *Pointer[T]) MoveFrom(o *Pointer[T]) {
	if p == o {
		return
	}
	old := p.blk
	p.ptr, p.blk = nil, nil
	if o != nil {
		p.ptr, p.blk = o.ptr, o.blk
		o.ptr, o.blk = nil, nil
	}
	if old != nil {
		old.decStrong()
	}
}

// Release drops p's reference and leaves p empty. Releasing an empty handle
// is a no-op.
func (p *Pointer[T]) Release() {
	if p == nil || p.blk == nil {
		return
	}
	blk := p.blk
	p.ptr, p.blk = nil, nil
	blk.decStrong()
}

// Reset releases p's reference and makes p the sole owner of q, as New
// would. Reset(nil) is equivalent to Release.
func (p *Pointer[T]) Reset(q *T) {
	p.MoveFrom(New(q))
}

// ResetWithDeleter is like Reset, but deleter is called on q instead of
// Destroy.
func (p *Pointer[T]) ResetWithDeleter(q *T, deleter func(*T)) {
	p.MoveFrom(NewWithDeleter(q, deleter))
}

// Swap exchanges the contents of p and o.
func (p *Pointer[T]) Swap(o *Pointer[T]) {
	p.ptr, o.ptr = o.ptr, p.ptr
	p.blk, o.blk = o.blk, p.blk
}

// Get returns the pointee, or nil if p is empty.
//
// A handle that was copied by value can outlive its block's strong
// references; Get returns nil for such handles rather than a destroyed
// pointee.
func (p *Pointer[T]) Get() *T {
	if p == nil {
		return nil
	}
	if p.blk != nil && p.blk.strongCount() == 0 {
		staleLog.Warningf("Read through a %s handle whose strong count is 0; the handle was copied by value", p.blk.RefType())
		return nil
	}
	return p.ptr
}

// Deref returns the pointee and panics if there is none.
func (p *Pointer[T]) Deref() *T {
	v := p.Get()
	if v == nil {
		panic("shared: dereference of an empty Pointer")
	}
	return v
}

// UseCount returns the number of strong references to p's pointee, or 0 if
// p is empty.
func (p *Pointer[T]) UseCount() int64 {
	if p == nil || p.blk == nil {
		return 0
	}
	return p.blk.strongCount()
}

// Valid returns true if p has a non-nil view.
func (p *Pointer[T]) Valid() bool {
	return p != nil && p.ptr != nil
}

// Equal returns true if p and o dereference to the same object.
func (p *Pointer[T]) Equal(o *Pointer[T]) bool {
	return p.Get() == o.Get()
}

// Weak returns a weak reference to p's pointee.
func (p *Pointer[T]) Weak() *WeakPointer[T] {
	return NewWeak(p)
}
