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

// Package intrusive provides reference counting where the count lives inside
// the counted object.
//
// Objects embed RefCounted, or implement Object themselves, and are held by
// Ptr handles. Unlike shared.Pointer no control block is allocated and weak
// references are not supported.
package intrusive

import (
	"fmt"
	"sync/atomic"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// Counter counts references to one object.
type Counter interface {
	// IncRef increments the count and returns the new value.
	IncRef() int64

	// DecRef decrements the count and returns the new value. It panics if
	// the count is not positive.
	DecRef() int64

	// RefCount returns the current count.
	RefCount() int64
}

// SimpleCounter is a Counter that is not safe for concurrent use. The zero
// value is a count of zero.
type SimpleCounter struct {
	count int64
}

// IncRef implements Counter.IncRef.
func (c *SimpleCounter) IncRef() int64 {
	c.count++
	return c.count
}

// DecRef implements Counter.DecRef.
func (c *SimpleCounter) DecRef() int64 {
	if c.count <= 0 {
		panic(fmt.Sprintf("Decrementing non-positive ref count %p", c))
	}
	c.count--
	return c.count
}

// RefCount implements Counter.RefCount.
func (c *SimpleCounter) RefCount() int64 {
	return c.count
}

// refLogging is copied into objects when leak checking is enabled for them.
var refLogging atomic.Bool

// SetRefLogging enables logging of reference count events for objects that
// enable leak checking after the call.
func SetRefLogging(enabled bool) {
	refLogging.Store(enabled)
}

// RefCounted implements the reference counting half of Object. It is meant
// to be embedded:
//
//	type node struct {
//		intrusive.RefCounted
//		...
//	}
//
// The zero value counts with a SimpleCounter and has no destructor.
type RefCounted struct {
	simple  SimpleCounter
	counter Counter

	destructor func()

	refType    string
	registered bool
	logRefs    bool
}

func (r *RefCounted) impl() Counter {
	if r.counter != nil {
		return r.counter
	}
	return &r.simple
}

// SetCounter replaces the embedded SimpleCounter with c. It must be called
// before the first reference is taken.
func (r *RefCounted) SetCounter(c Counter) {
	if n := r.RefCount(); n != 0 {
		panic(fmt.Sprintf("Replacing the counter of %s with %d live references", r.RefType(), n))
	}
	r.counter = c
}

// SetDestructor sets the function DecRef runs when the count drops to zero.
func (r *RefCounted) SetDestructor(destroy func()) {
	r.destructor = destroy
}

// EnableLeakCheck registers the object with the leak checker under the given
// type name. It is unregistered when its count drops to zero. This is a
// no-op unless leak checking is enabled.
func (r *RefCounted) EnableLeakCheck(refType string) {
	if r.registered {
		return
	}
	r.refType = refType
	r.logRefs = refLogging.Load()
	r.registered = refs.Register(r)
}

// IncRef implements refs.RefCounter.IncRef.
func (r *RefCounted) IncRef() {
	n := r.impl().IncRef()
	if r.registered && r.logRefs {
		refs.LogIncRef(r, n)
	}
}

// DecRef implements refs.RefCounter.DecRef. The destructor set with
// SetDestructor runs when the count drops to zero.
func (r *RefCounted) DecRef() {
	r.DecRefWithDestructor(r.destructor)
}

// DecRefWithDestructor drops a reference and runs destroy, if not nil, when
// the count drops to zero.
func (r *RefCounted) DecRefWithDestructor(destroy func()) {
	n := r.impl().DecRef()
	if r.registered && r.logRefs {
		refs.LogDecRef(r, n)
	}
	if n != 0 {
		return
	}
	if r.registered {
		r.registered = false
		refs.Unregister(r)
	}
	if destroy != nil {
		destroy()
	}
}

// RefCount returns the current number of references.
func (r *RefCounted) RefCount() int64 {
	return r.impl().RefCount()
}

// RefType implements refs.CheckedObject.RefType.
func (r *RefCounted) RefType() string {
	if r.refType == "" {
		return "intrusive.RefCounted"
	}
	return r.refType
}

// LeakMessage implements refs.CheckedObject.LeakMessage.
func (r *RefCounted) LeakMessage() string {
	return fmt.Sprintf("[%s %p] reference count of %d instead of 0", r.RefType(), r, r.RefCount())
}

// LogRefs implements refs.CheckedObject.LogRefs.
func (r *RefCounted) LogRefs() bool {
	return r.logRefs
}
