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

// Package shared provides reference counted shared ownership handles.
//
// A Pointer owns its pointee jointly with every other Pointer sharing the
// same control block. A WeakPointer observes the pointee without keeping it
// alive. The pointee is destroyed exactly once, when the last Pointer is
// released, and the control block itself is retired once no WeakPointer
// refers to it either.
//
// Handles are not safe for concurrent use. Copying a handle by value
// bypasses reference counting: use Clone, Move and Release instead.
package shared

import (
	"fmt"
	"sync/atomic"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// Destroyer is implemented by pointees that must release resources when the
// last strong reference to them is dropped.
type Destroyer interface {
	// Destroy is called exactly once, when the strong count drops to zero.
	Destroy()
}

var (
	_ refs.CheckedObject = (*controlBlock)(nil)
	_ refs.TryRefCounter = (*controlBlock)(nil)
)

// blockState tracks the lifetime of a control block.
type blockState uint8

const (
	// blockLive means the pointee is alive.
	blockLive blockState = iota

	// blockDestroyed means the pointee was destroyed but weak references
	// keep the block around.
	blockDestroyed

	// blockFreed means the block was retired. No handle may refer to it.
	blockFreed
)

// payload is implemented by the concrete control blocks. It decides how the
// pointee is destroyed and what storage the block releases when it is
// retired.
type payload interface {
	// destroyPayload destroys the pointee.
	destroyPayload()

	// releaseStorage drops every reference the block still holds.
	releaseStorage()

	// refType names the pointee type for leak reports.
	refType() string
}

// refLogging is copied into every new control block. See SetRefLogging.
var refLogging atomic.Bool

// SetRefLogging enables logging of reference count events for control blocks
// created after the call. Events are only emitted while leak checking is
// enabled, see refs.SetLeakMode.
func SetRefLogging(enabled bool) {
	refLogging.Store(enabled)
}

// controlBlock holds the strong and weak counts shared by all handles to one
// pointee. It is the only place where the counts are inspected to decide
// when to destroy the pointee and when to retire the block.
//
// controlBlock implements refs.CheckedObject and refs.TryRefCounter.
type controlBlock struct {
	strong int64
	weak   int64
	state  blockState

	// destroying is set while the payload is being destroyed. The block
	// reports itself expired during that window, so the pointee cannot
	// hand out new strong references to itself from Destroy.
	destroying bool

	// registered is true if the block is in the leak checker's live set.
	registered bool

	logRefs bool

	payload payload
}

// init binds the block to its concrete variant and registers it with the
// leak checker.
func (b *controlBlock) init(p payload) {
	b.payload = p
	b.logRefs = refLogging.Load()
	b.registered = refs.Register(b)
}

// RefType implements refs.CheckedObject.RefType.
func (b *controlBlock) RefType() string {
	return b.payload.refType()
}

// LeakMessage implements refs.CheckedObject.LeakMessage.
func (b *controlBlock) LeakMessage() string {
	return fmt.Sprintf("[%s %p] strong count of %d and weak count of %d instead of 0", b.RefType(), b, b.strong, b.weak)
}

// LogRefs implements refs.CheckedObject.LogRefs.
func (b *controlBlock) LogRefs() bool {
	return b.logRefs
}

func (b *controlBlock) strongCount() int64 {
	return b.strong
}

func (b *controlBlock) weakCount() int64 {
	return b.weak
}

// expired returns true if no new strong reference may be taken.
func (b *controlBlock) expired() bool {
	return b.strong == 0 || b.destroying
}

func (b *controlBlock) incStrong() {
	b.strong++
	if b.logRefs {
		refs.LogIncRef(b, b.strong)
	}
}

// tryIncStrong takes a strong reference unless the block is expired. It
// is how weak references are promoted.
func (b *controlBlock) tryIncStrong() bool {
	if b.expired() {
		return false
	}
	b.strong++
	if b.logRefs {
		refs.LogTryIncRef(b, b.strong)
	}
	return true
}

// IncRef implements refs.RefCounter.IncRef for strong references.
func (b *controlBlock) IncRef() {
	b.incStrong()
}

// DecRef implements refs.RefCounter.DecRef for strong references.
func (b *controlBlock) DecRef() {
	b.decStrong()
}

// TryIncRef implements refs.TryRefCounter.TryIncRef.
func (b *controlBlock) TryIncRef() bool {
	return b.tryIncStrong()
}

func (b *controlBlock) incWeak() {
	b.weak++
	if b.logRefs {
		refs.LogIncRef(b, b.weak)
	}
}

// decStrong drops a strong reference. The last one destroys the pointee and,
// if no weak reference remains, retires the block.
func (b *controlBlock) decStrong() {
	if b.strong <= 0 {
		panic(fmt.Sprintf("Decrementing non-positive strong count %p, owned by %s", b, b.RefType()))
	}
	if b.logRefs {
		refs.LogDecRef(b, b.strong-1)
	}
	if b.strong > 1 {
		b.strong--
		return
	}

	// The strong count stays at 1 while the payload is destroyed: weak
	// references released by the pointee itself must not retire the
	// block underneath us.
	// The transition completes even if the pointee's destructor panics.
	b.destroying = true
	defer func() {
		b.destroying = false
		b.state = blockDestroyed
		b.strong = 0
		if b.weak == 0 {
			b.free()
		}
	}()
	b.payload.destroyPayload()
}

// decWeak drops a weak reference and retires the block if it was the last
// reference of any kind.
func (b *controlBlock) decWeak() {
	if b.weak <= 0 {
		panic(fmt.Sprintf("Decrementing non-positive weak count %p, owned by %s", b, b.RefType()))
	}
	b.weak--
	if b.logRefs {
		refs.LogDecRef(b, b.weak)
	}
	if b.weak == 0 && b.strong == 0 {
		b.free()
	}
}

// free retires the block. It is called exactly once, by whichever of
// decStrong and decWeak observes both counts at zero.
func (b *controlBlock) free() {
	if b.state == blockFreed {
		panic(fmt.Sprintf("Control block %p owned by %s freed twice", b, b.RefType()))
	}
	b.state = blockFreed
	b.payload.releaseStorage()
	if b.registered {
		b.registered = false
		refs.Unregister(b)
	}
}

// abandon retires a block whose pointee was never constructed.
func (b *controlBlock) abandon() {
	b.state = blockFreed
	if b.registered {
		b.registered = false
		refs.Unregister(b)
	}
}

// adoptedBlock is the control block for a pointee allocated by the caller
// and handed over by pointer.
type adoptedBlock[T any] struct {
	controlBlock
	ptr     *T
	deleter func(*T)
}

func newAdoptedBlock[T any](p *T, deleter func(*T)) *adoptedBlock[T] {
	b := &adoptedBlock[T]{ptr: p, deleter: deleter}
	b.init(b)
	return b
}

func (b *adoptedBlock[T]) destroyPayload() {
	p := b.ptr
	b.ptr = nil
	releaseSelf(p)
	if b.deleter != nil {
		b.deleter(p)
		return
	}
	destroy(p)
}

func (b *adoptedBlock[T]) releaseStorage() {
	b.deleter = nil
}

func (b *adoptedBlock[T]) refType() string {
	return typeName[T]()
}

// inPlaceBlock is the control block for a pointee constructed inside the
// block itself, so that the block and the pointee share one allocation.
type inPlaceBlock[T any] struct {
	controlBlock
	value T
}

func newInPlaceBlock[T any]() *inPlaceBlock[T] {
	b := &inPlaceBlock[T]{}
	b.init(b)
	return b
}

func (b *inPlaceBlock[T]) destroyPayload() {
	releaseSelf(&b.value)
	destroy(&b.value)
	var zero T
	b.value = zero
}

// releaseStorage is a no-op: the pointee was already cleared by
// destroyPayload and shares the block's allocation.
func (b *inPlaceBlock[T]) releaseStorage() {}

func (b *inPlaceBlock[T]) refType() string {
	return typeName[T]()
}

// destroy runs the pointee's destructor, if it has one.
func destroy[T any](p *T) {
	if d, ok := any(p).(Destroyer); ok {
		d.Destroy()
	}
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}
