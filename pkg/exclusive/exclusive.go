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

// Package exclusive provides a single owner pointer handle with a pluggable
// deleter.
//
// A Ptr owns its pointee alone. Ownership moves between handles explicitly
// and the deleter runs exactly once, when the owning handle is reset or
// closed. A stateless deleter costs no storage: the handle is the size of a
// bare pointer.
package exclusive

import (
	"github.com/cucumber95/Smart-pointers/pkg/pair"
	"github.com/cucumber95/Smart-pointers/pkg/shared"
)

// Deleter disposes of a pointee when its owner lets go of it.
type Deleter[T any] interface {
	// Delete disposes of p. It is never called with nil.
	Delete(p *T)
}

// DefaultDeleter calls Destroy on pointees implementing shared.Destroyer and
// otherwise leaves them to the garbage collector.
type DefaultDeleter[T any] struct{}

// Delete implements Deleter.Delete.
func (DefaultDeleter[T]) Delete(p *T) {
	if d, ok := any(p).(shared.Destroyer); ok {
		d.Destroy()
	}
}

// FuncDeleter adapts a function to the Deleter interface.
type FuncDeleter[T any] func(*T)

// Delete implements Deleter.Delete.
func (f FuncDeleter[T]) Delete(p *T) {
	f(p)
}

// Ptr is an exclusive owner of a *T. The zero value is an empty handle
// using the zero value of D as its deleter.
//
// Ptr must not be copied by value after first use.
type Ptr[T any, D Deleter[T]] struct {
	data pair.Pair[*T, D]
}

// New returns a handle owning p with the default deleter.
func New[T any](p *T) *Ptr[T, DefaultDeleter[T]] {
	return NewWithDeleter[T](p, DefaultDeleter[T]{})
}

// NewWithDeleter returns a handle owning p that disposes of it with d.
func NewWithDeleter[T any, D Deleter[T]](p *T, d D) *Ptr[T, D] {
	return &Ptr[T, D]{data: pair.Make(p, d)}
}

// Move transfers ownership and the deleter to a new handle, leaving u empty.
func (u *Ptr[T, D]) Move() *Ptr[T, D] {
	return NewWithDeleter[T](u.Release(), *u.data.Second())
}

// MoveFrom takes ownership and the deleter from o, disposing of the pointee
// u held before. It is a no-op when both handles hold the same pointee,
// which includes moving a handle into itself.
func (u *Ptr[T, D]) MoveFrom(o *Ptr[T, D]) {
	if u.Get() == o.Get() {
		return
	}
	old := *u.data.First()
	*u.data.First() = o.Release()
	*u.data.Second() = *o.data.Second()
	u.delete(old)
}

// Release gives up ownership without disposing of the pointee and returns
// it. u is left empty.
func (u *Ptr[T, D]) Release() *T {
	p := *u.data.First()
	*u.data.First() = nil
	return p
}

// Reset takes ownership of p and disposes of the previous pointee. The new
// pointee is installed before the deleter runs.
func (u *Ptr[T, D]) Reset(p *T) {
	old := *u.data.First()
	*u.data.First() = p
	u.delete(old)
}

// Close disposes of the pointee, if any, and leaves u empty.
func (u *Ptr[T, D]) Close() {
	u.Reset(nil)
}

// Swap exchanges the pointees and deleters of u and o.
func (u *Ptr[T, D]) Swap(o *Ptr[T, D]) {
	u.data, o.data = o.data, u.data
}

// Get returns the pointee, or nil if u is empty.
func (u *Ptr[T, D]) Get() *T {
	if u == nil {
		return nil
	}
	return *u.data.First()
}

// Deref returns the pointee. It panics if u is empty.
func (u *Ptr[T, D]) Deref() *T {
	p := u.Get()
	if p == nil {
		panic("exclusive: dereference of an empty Ptr")
	}
	return p
}

// Deleter returns the address of the deleter, which may be modified in
// place.
func (u *Ptr[T, D]) Deleter() *D {
	return u.data.Second()
}

// Valid reports whether u holds a pointee.
func (u *Ptr[T, D]) Valid() bool {
	return u.Get() != nil
}

func (u *Ptr[T, D]) delete(p *T) {
	if p != nil {
		(*u.data.Second()).Delete(p)
	}
}
