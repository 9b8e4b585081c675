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

import "github.com/cucumber95/Smart-pointers/pkg/refs"

// Object is implemented by intrusively counted objects. The zero value of an
// Object type stands for no object, so Object types are normally pointers.
type Object interface {
	comparable
	refs.RefCounter

	// RefCount returns the current number of references.
	RefCount() int64
}

// Ptr holds one reference to an Object. The zero value is an empty handle.
//
// Copying a Ptr by value bypasses reference counting: use Clone, Move and
// Release instead.
type Ptr[T Object] struct {
	obj T
}

// New returns a handle holding a new reference to obj. New of the zero value
// returns an empty handle.
func New[T Object](obj T) *Ptr[T] {
	p := &Ptr[T]{}
	p.Reset(obj)
	return p
}

// Make allocates a T, lets construct initialize it and returns the first
// handle to it.
func Make[T any, PT interface {
	*T
	Object
}](construct func(PT)) *Ptr[PT] {
	obj := PT(new(T))
	if construct != nil {
		construct(obj)
	}
	return New(obj)
}

// Clone returns a new handle sharing the object with p.
func (p *Ptr[T]) Clone() *Ptr[T] {
	return New(p.Get())
}

// Move transfers p's reference to a new handle, leaving p empty. The count
// is unchanged.
func (p *Ptr[T]) Move() *Ptr[T] {
	var zero T
	n := &Ptr[T]{obj: p.obj}
	p.obj = zero
	return n
}

// Assign makes p share o's object, dropping p's previous reference. It is a
// no-op when both already hold the same object.
func (p *Ptr[T]) Assign(o *Ptr[T]) {
	if p.obj == o.obj {
		return
	}
	p.Reset(o.obj)
}

// MoveFrom transfers o's reference to p, dropping p's previous reference.
// It is a no-op when both hold the same object.
func (p *Ptr[T]) MoveFrom(o *Ptr[T]) {
	if p.obj == o.obj {
		return
	}
	var zero T
	old := p.obj
	p.obj = o.obj
	o.obj = zero
	decRef(old)
}

// Release drops p's reference, leaving p empty.
func (p *Ptr[T]) Release() {
	var zero T
	old := p.obj
	p.obj = zero
	decRef(old)
}

// Reset makes p hold a new reference to obj and drops the previous one. The
// new reference is taken first, so resetting to the held object keeps it
// alive.
func (p *Ptr[T]) Reset(obj T) {
	var zero T
	if obj != zero {
		obj.IncRef()
	}
	old := p.obj
	p.obj = obj
	decRef(old)
}

// Swap exchanges the objects of p and o.
func (p *Ptr[T]) Swap(o *Ptr[T]) {
	p.obj, o.obj = o.obj, p.obj
}

// Get returns the object, or the zero value if p is empty.
func (p *Ptr[T]) Get() T {
	if p == nil {
		var zero T
		return zero
	}
	return p.obj
}

// UseCount returns the object's reference count, or 0 if p is empty.
func (p *Ptr[T]) UseCount() int64 {
	if !p.Valid() {
		return 0
	}
	return p.obj.RefCount()
}

// Valid reports whether p holds an object.
func (p *Ptr[T]) Valid() bool {
	var zero T
	return p.Get() != zero
}

func decRef[T Object](obj T) {
	var zero T
	if obj != zero {
		obj.DecRef()
	}
}
