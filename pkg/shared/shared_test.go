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
	"testing"

	"github.com/cucumber95/Smart-pointers/pkg/refs"
)

// tracked counts how many times it was destroyed.
type tracked struct {
	id        int
	destroyed *int
}

func (t *tracked) Destroy() {
	*t.destroyed++
}

// node is a self observing pointee.
type node struct {
	SelfObserving[node]
	name      string
	destroyed int
	onDestroy func(*node)
}

func (n *node) Destroy() {
	n.destroyed++
	if n.onDestroy != nil {
		n.onDestroy(n)
	}
}

// counts is a snapshot of a control block.
type counts struct {
	Strong int64
	Weak   int64
	State  blockState
}

func snapshot(b *controlBlock) counts {
	return counts{Strong: b.strongCount(), Weak: b.weakCount(), State: b.state}
}

// checkLeaks enables leak checking for the duration of the test and fails
// the test if any control block created during it is still live at the end.
func checkLeaks(t *testing.T) {
	t.Helper()
	old := refs.GetLeakMode()
	refs.SetLeakMode(refs.LeaksLogWarning)
	t.Cleanup(func() {
		if leaks := refs.Leaks(); len(leaks) != 0 {
			t.Errorf("leaked control blocks: %v", leaks)
		}
		refs.SetLeakMode(old)
	})
}

// constructors builds the same tracked object through both allocation
// paths.
var constructors = []struct {
	name string
	make func(id int, destroyed *int) *Pointer[tracked]
}{
	{
		name: "adopted",
		make: func(id int, destroyed *int) *Pointer[tracked] {
			return New(&tracked{id: id, destroyed: destroyed})
		},
	},
	{
		name: "in-place",
		make: func(id int, destroyed *int) *Pointer[tracked] {
			return Make(tracked{id: id, destroyed: destroyed})
		},
	},
}
