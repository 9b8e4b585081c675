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

package refs

import (
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/cucumber95/Smart-pointers/pkg/log"
)

// liveObject is an entry in the live object set.
type liveObject struct {
	// seq orders entries by registration time so leak reports are stable.
	seq uint64

	obj CheckedObject

	// stack is the registration stack. It is only recorded in
	// LeaksLogTraces mode.
	stack []uintptr
}

var (
	// liveObjects is a global map of reference-counted objects. Objects are
	// inserted when leak check is enabled, and they are removed when they are
	// destroyed. liveOrder holds the same entries ordered by registration.
	// Both are protected by liveObjectsMu.
	liveObjects   map[CheckedObject]*liveObject
	liveOrder     *btree.BTreeG[*liveObject]
	liveSeq       uint64
	liveObjectsMu sync.Mutex
)

// CheckedObject represents a reference-counted object with an informative
// leak detection message.
type CheckedObject interface {
	// RefType is the type of the reference-counted object.
	RefType() string

	// LeakMessage supplies a warning to be printed upon leak detection.
	LeakMessage() string

	// LogRefs indicates whether reference-related events should be logged.
	LogRefs() bool
}

func init() {
	liveObjects = make(map[CheckedObject]*liveObject)
	liveOrder = btree.NewG(8, func(a, b *liveObject) bool {
		return a.seq < b.seq
	})
}

// LeakCheckEnabled returns whether leak checking is enabled. The following
// functions should only be called if it returns true.
func LeakCheckEnabled() bool {
	mode := GetLeakMode()
	return mode != NoLeakChecking && mode != UninitializedLeakChecking
}

// leakCheckPanicEnabled returns whether DoLeakCheck() should panic when leaks
// are detected.
func leakCheckPanicEnabled() bool {
	return GetLeakMode() == LeaksPanic
}

// Register adds obj to the live object map. It returns true if the object was
// registered, which is the case only when leak checking is enabled. Callers
// must only call Unregister for objects that were registered.
func Register(obj CheckedObject) bool {
	if !LeakCheckEnabled() {
		return false
	}
	liveObjectsMu.Lock()
	if _, ok := liveObjects[obj]; ok {
		liveObjectsMu.Unlock()
		panic(fmt.Sprintf("Unexpected entry in leak checking map: reference %p already added", obj))
	}
	liveSeq++
	entry := &liveObject{seq: liveSeq, obj: obj}
	if GetLeakMode() == LeaksLogTraces {
		entry.stack = RecordStack()
	}
	liveObjects[obj] = entry
	liveOrder.ReplaceOrInsert(entry)
	liveObjectsMu.Unlock()
	if obj.LogRefs() {
		logEvent(obj, "registered")
	}
	return true
}

// Unregister removes obj from the live object map.
func Unregister(obj CheckedObject) {
	liveObjectsMu.Lock()
	entry, ok := liveObjects[obj]
	if !ok {
		liveObjectsMu.Unlock()
		panic(fmt.Sprintf("Expected to find entry in leak checking map for reference %p", obj))
	}
	delete(liveObjects, obj)
	liveOrder.Delete(entry)
	liveObjectsMu.Unlock()
	if obj.LogRefs() {
		logEvent(obj, "unregistered")
	}
}

// LogIncRef logs a reference increment.
func LogIncRef(obj CheckedObject, refs int64) {
	if obj.LogRefs() {
		logEvent(obj, fmt.Sprintf("IncRef to %d", refs))
	}
}

// LogTryIncRef logs a successful TryIncRef call.
func LogTryIncRef(obj CheckedObject, refs int64) {
	if obj.LogRefs() {
		logEvent(obj, fmt.Sprintf("TryIncRef to %d", refs))
	}
}

// LogDecRef logs a reference decrement.
func LogDecRef(obj CheckedObject, refs int64) {
	if obj.LogRefs() {
		logEvent(obj, fmt.Sprintf("DecRef to %d", refs))
	}
}

// logEvent logs a message for the given reference-counted object.
//
// obj.LogRefs() should be checked before calling logEvent, in order to avoid
// calling any text processing needed to evaluate msg.
func logEvent(obj CheckedObject, msg string) {
	if GetLeakMode() == LeaksLogTraces {
		log.Infof("[%s %p] %s:\n%s", obj.RefType(), obj, msg, FormatStack(RecordStack()))
		return
	}
	log.Infof("[%s %p] %s", obj.RefType(), obj, msg)
}

// checkOnce makes sure that leak checking is only done once. DoLeakCheck is
// called from multiple places (which may overlap) to cover different exit
// scenarios.
var checkOnce sync.Once

// DoLeakCheck iterates through the live object map and logs a message for each
// object. It should be called when no reference-counted objects are reachable
// anymore, at which point anything left in the map is considered a leak. On
// multiple calls, only the first call will perform the leak check.
func DoLeakCheck() {
	if LeakCheckEnabled() {
		checkOnce.Do(doLeakCheck)
	}
}

// DoRepeatedLeakCheck is the same as DoLeakCheck except that it can be called
// multiple times by the caller to incrementally perform leak checking.
func DoRepeatedLeakCheck() {
	if LeakCheckEnabled() {
		doLeakCheck()
	}
}

// LiveCount returns the number of registered objects.
func LiveCount() int {
	liveObjectsMu.Lock()
	defer liveObjectsMu.Unlock()
	return liveOrder.Len()
}

// Mark returns the current position in the registration order. Objects
// registered after the call are reported by LeaksSince(mark), even if
// objects registered before it change or go away in the meantime.
func Mark() uint64 {
	liveObjectsMu.Lock()
	defer liveObjectsMu.Unlock()
	return liveSeq
}

// Leaks returns one message per live object, in registration order.
func Leaks() []string {
	return LeaksSince(0)
}

// LeaksSince is like Leaks, but only reports objects registered after mark
// was returned by Mark.
func LeaksSince(mark uint64) []string {
	liveObjectsMu.Lock()
	defer liveObjectsMu.Unlock()
	var msgs []string
	liveOrder.AscendGreaterOrEqual(&liveObject{seq: mark + 1}, func(entry *liveObject) bool {
		msg := entry.obj.LeakMessage()
		if entry.stack != nil {
			msg += "\nregistered at:\n" + FormatStack(entry.stack)
		}
		msgs = append(msgs, msg)
		return true
	})
	return msgs
}

func doLeakCheck() {
	leaks := Leaks()
	if len(leaks) == 0 {
		return
	}
	msg := fmt.Sprintf("Leak checking detected %d leaked objects:\n", len(leaks))
	for _, l := range leaks {
		msg += l + "\n"
	}
	if leakCheckPanicEnabled() {
		panic(msg)
	}
	log.Warningf("%s", msg)
}
