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

// WeakPointer observes a pointee owned by Pointers without keeping it
// alive. It keeps the control block around, so Expired and UseCount remain
// meaningful after the pointee is destroyed. The zero value is an empty
// handle.
//
// WeakPointer must not be copied by value; use Clone.
type WeakPointer[T any] struct {
	ptr *T
	blk *controlBlock
}

// NewWeak returns a weak reference to p's pointee. NewWeak of an empty
// Pointer returns an empty WeakPointer.
func NewWeak[T any](p *Pointer[T]) *WeakPointer[T] {
	w := &WeakPointer[T]{}
	w.AssignShared(p)
	return w
}

// Clone returns a new weak handle observing the same pointee as w.
func (w *WeakPointer[T]) Clone() *WeakPointer[T] {
	if w == nil {
		return &WeakPointer[T]{}
	}
	if w.blk != nil {
		w.blk.incWeak()
	}
	return &WeakPointer[T]{ptr: w.ptr, blk: w.blk}
}

// Move transfers w's reference to a new handle, leaving w empty.
func (w *WeakPointer[T]) Move() *WeakPointer[T] {
	n := &WeakPointer[T]{ptr: w.ptr, blk: w.blk}
	w.ptr, w.blk = nil, nil
	return n
}

// Assign makes w observe o's pointee, releasing w's previous reference.
func (w *WeakPointer[T]) Assign(o *WeakPointer[T]) {
	if w == o {
		return
	}
	if o == nil {
		w.reset(nil, nil)
		return
	}
	w.reset(o.ptr, o.blk)
}

// AssignShared makes w observe p's pointee, releasing w's previous
// reference.
func (w *WeakPointer[T]) AssignShared(p *Pointer[T]) {
	if p == nil {
		w.reset(nil, nil)
		return
	}
	w.reset(p.ptr, p.blk)
}

// reset points w at blk, taking the new weak reference before dropping the
// old one.
func (w *WeakPointer[T]) reset(ptr *T, blk *controlBlock) {
	if blk == w.blk {
		w.ptr = ptr
		return
	}
	if blk != nil {
		blk.incWeak()
	}
	old := w.blk
	w.ptr, w.blk = ptr, blk
	if old != nil {
		old.decWeak()
	}
}

// MoveFrom transfers o's reference into w, releasing w's previous
// reference. o is left empty.
func (w *WeakPointer[T]) MoveFrom(o *WeakPointer[T]) {
	if w == o {
		return
	}
	old := w.blk
	w.ptr, w.blk = nil, nil
	if o != nil {
		w.ptr, w.blk = o.ptr, o.blk
		o.ptr, o.blk = nil, nil
	}
	if old != nil {
		old.decWeak()
	}
}

// Release drops w's reference and leaves w empty.
func (w *WeakPointer[T]) Release() {
	if w == nil || w.blk == nil {
		return
	}
	blk := w.blk
	w.ptr, w.blk = nil, nil
	blk.decWeak()
}

// Swap exchanges the contents of w and o.
func (w *WeakPointer[T]) Swap(o *WeakPointer[T]) {
	w.ptr, o.ptr = o.ptr, w.ptr
	w.blk, o.blk = o.blk, w.blk
}

// Expired returns true if w is empty or its pointee was destroyed.
func (w *WeakPointer[T]) Expired() bool {
	return w == nil || w.blk == nil || w.blk.expired()
}

// UseCount returns the number of strong references to w's pointee, or 0 if
// w is empty.
func (w *WeakPointer[T]) UseCount() int64 {
	if w == nil || w.blk == nil {
		return 0
	}
	return w.blk.strongCount()
}

// Lock returns a new strong reference to w's pointee, or an empty Pointer if
// it was destroyed. Unlike FromWeak, Lock never fails.
func (w *WeakPointer[T]) Lock() *Pointer[T] {
	if w == nil || w.blk == nil || !w.blk.tryIncStrong() {
		return &Pointer[T]{}
	}
	return &Pointer[T]{ptr: w.ptr, blk: w.blk}
}
