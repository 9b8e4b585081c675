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
	"github.com/cucumber95/Smart-pointers/pkg/pair"
	"github.com/cucumber95/Smart-pointers/pkg/shared"
)

// SliceDeleter disposes of a sequence of elements when its owner lets go of
// it.
type SliceDeleter[T any] interface {
	// DeleteSlice disposes of s. It is never called with a nil slice.
	DeleteSlice(s []T)
}

// DefaultSliceDeleter calls Destroy on every element whose address
// implements shared.Destroyer.
type DefaultSliceDeleter[T any] struct{}

// DeleteSlice implements SliceDeleter.DeleteSlice.
func (DefaultSliceDeleter[T]) DeleteSlice(s []T) {
	for i := range s {
		if d, ok := any(&s[i]).(shared.Destroyer); ok {
			d.Destroy()
		}
	}
}

// Slice is an exclusive owner of a sequence of elements. It mirrors Ptr,
// with indexed access in place of dereference.
type Slice[T any, D SliceDeleter[T]] struct {
	data pair.Pair[[]T, D]
}

// NewSlice returns a handle owning s with the default deleter.
func NewSlice[T any](s []T) *Slice[T, DefaultSliceDeleter[T]] {
	return NewSliceWithDeleter[T](s, DefaultSliceDeleter[T]{})
}

// NewSliceWithDeleter returns a handle owning s that disposes of it with d.
func NewSliceWithDeleter[T any, D SliceDeleter[T]](s []T, d D) *Slice[T, D] {
	return &Slice[T, D]{data: pair.Make(s, d)}
}

// Move transfers ownership and the deleter to a new handle, leaving u empty.
func (u *Slice[T, D]) Move() *Slice[T, D] {
	return NewSliceWithDeleter[T](u.Release(), *u.data.Second())
}

// MoveFrom takes ownership and the deleter from o, disposing of the elements
// u held before. Moving a handle into itself is a no-op.
func (u *Slice[T, D]) MoveFrom(o *Slice[T, D]) {
	if u == o {
		return
	}
	old := *u.data.First()
	*u.data.First() = o.Release()
	*u.data.Second() = *o.data.Second()
	u.delete(old)
}

// Release gives up ownership and returns the elements. u is left empty.
func (u *Slice[T, D]) Release() []T {
	s := *u.data.First()
	*u.data.First() = nil
	return s
}

// Reset takes ownership of s and disposes of the previous elements.
func (u *Slice[T, D]) Reset(s []T) {
	old := *u.data.First()
	*u.data.First() = s
	u.delete(old)
}

// Close disposes of the elements, if any, and leaves u empty.
func (u *Slice[T, D]) Close() {
	u.Reset(nil)
}

// Swap exchanges the elements and deleters of u and o.
func (u *Slice[T, D]) Swap(o *Slice[T, D]) {
	u.data, o.data = o.data, u.data
}

// Get returns the owned elements, or nil if u is empty.
func (u *Slice[T, D]) Get() []T {
	if u == nil {
		return nil
	}
	return *u.data.First()
}

// At returns the address of element i. It panics if i is out of range.
func (u *Slice[T, D]) At(i int) *T {
	return &(*u.data.First())[i]
}

// Len returns the number of owned elements.
func (u *Slice[T, D]) Len() int {
	return len(u.Get())
}

// Deleter returns the address of the deleter.
func (u *Slice[T, D]) Deleter() *D {
	return u.data.Second()
}

// Valid reports whether u holds elements.
func (u *Slice[T, D]) Valid() bool {
	return u.Get() != nil
}

func (u *Slice[T, D]) delete(s []T) {
	if s != nil {
		(*u.data.Second()).DeleteSlice(s)
	}
}
