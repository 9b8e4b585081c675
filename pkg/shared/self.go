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

import "fmt"

// SelfObserving lets a pointee hand out handles to itself. Embed
// SelfObserving[T] in T; the first Pointer that takes ownership of a T, via
// New or Make, installs weak references to the T into it.
//
//	type node struct {
//		shared.SelfObserving[node]
//		children []*shared.Pointer[node]
//	}
//
// Only weak references are stored, so the pointee does not keep itself
// alive. They are released when the pointee is destroyed.
type SelfObserving[T any] struct {
	self     WeakPointer[T]
	selfView WeakPointer[T]
}

// selfObserver is satisfied by every type embedding SelfObserving[T].
type selfObserver[T any] interface {
	selfSlots() *SelfObserving[T]
}

func (s *SelfObserving[T]) selfSlots() *SelfObserving[T] {
	return s
}

// installedFor reports whether the slots refer to p through blk.
func (s *SelfObserving[T]) installedFor(p *T, blk *controlBlock) bool {
	return s.self.ptr == p && s.self.blk == blk
}

func (s *SelfObserving[T]) install(sp *Pointer[T]) {
	s.self.AssignShared(sp)
	s.selfView.AssignShared(sp)
}

func (s *SelfObserving[T]) release() {
	s.self.Release()
	s.selfView.Release()
}

// releaseSelf drops the self references held by p, if any.
func releaseSelf[T any](p *T) {
	if s, ok := any(p).(selfObserver[T]); ok {
		s.selfSlots().release()
	}
}

// SharedSelf returns a new strong reference to the embedding object. It
// panics if the object is not owned by a Pointer.
func (s *SelfObserving[T]) SharedSelf() *Pointer[T] {
	sp, err := FromWeak(&s.self)
	if err != nil {
		panic(fmt.Sprintf("SharedSelf called on a %s not owned by a shared.Pointer", typeName[T]()))
	}
	return sp
}

// WeakSelf returns a weak reference to the embedding object. The result is
// empty if the object was never owned by a Pointer.
func (s *SelfObserving[T]) WeakSelf() *WeakPointer[T] {
	return s.self.Clone()
}

// SharedSelfView is like SharedSelf, but returns a read-only handle.
func (s *SelfObserving[T]) SharedSelfView() *View[T] {
	sp, err := FromWeak(&s.selfView)
	if err != nil {
		panic(fmt.Sprintf("SharedSelfView called on a %s not owned by a shared.Pointer", typeName[T]()))
	}
	return &View[T]{p: sp}
}

// WeakSelfView is like WeakSelf, but returns a read-only handle.
func (s *SelfObserving[T]) WeakSelfView() *WeakView[T] {
	return &WeakView[T]{w: s.selfView.Clone()}
}
