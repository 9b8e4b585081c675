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

// View is a read-only strong handle: it keeps the pointee alive like a
// Pointer, but only hands out copies of it.
type View[T any] struct {
	p *Pointer[T]
}

// NewView returns a read-only handle sharing ownership with p.
func NewView[T any](p *Pointer[T]) *View[T] {
	return &View[T]{p: p.Clone()}
}

// Load returns a copy of the pointee, or the zero value if v is empty.
func (v *View[T]) Load() T {
	if p := v.pointer().Get(); p != nil {
		return *p
	}
	var zero T
	return zero
}

// Clone returns a new read-only handle sharing ownership with v.
func (v *View[T]) Clone() *View[T] {
	return &View[T]{p: v.pointer().Clone()}
}

// Release drops v's reference and leaves v empty.
func (v *View[T]) Release() {
	v.pointer().Release()
}

// UseCount returns the number of strong references to v's pointee.
func (v *View[T]) UseCount() int64 {
	return v.pointer().UseCount()
}

// Valid returns true if v refers to a pointee.
func (v *View[T]) Valid() bool {
	return v.pointer().Valid()
}

// Weak returns a read-only weak reference to v's pointee.
func (v *View[T]) Weak() *WeakView[T] {
	return &WeakView[T]{w: NewWeak(v.pointer())}
}

func (v *View[T]) pointer() *Pointer[T] {
	if v == nil {
		return nil
	}
	return v.p
}

// WeakView is the read-only counterpart of WeakPointer.
type WeakView[T any] struct {
	w *WeakPointer[T]
}

// Lock returns a read-only strong handle, or an empty View if the pointee
// was destroyed.
func (w *WeakView[T]) Lock() *View[T] {
	return &View[T]{p: w.weak().Lock()}
}

// Clone returns a new read-only weak handle observing the same pointee.
func (w *WeakView[T]) Clone() *WeakView[T] {
	return &WeakView[T]{w: w.weak().Clone()}
}

// Release drops w's reference and leaves w empty.
func (w *WeakView[T]) Release() {
	w.weak().Release()
}

// Expired returns true if w's pointee was destroyed.
func (w *WeakView[T]) Expired() bool {
	return w.weak().Expired()
}

// UseCount returns the number of strong references to w's pointee.
func (w *WeakView[T]) UseCount() int64 {
	return w.weak().UseCount()
}

func (w *WeakView[T]) weak() *WeakPointer[T] {
	if w == nil {
		return nil
	}
	return w.w
}
