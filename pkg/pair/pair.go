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

// Package pair provides a two element container that does not spend storage
// on stateless elements.
//
// Go gives zero-size fields no storage unless they are the last field of a
// struct, where they are padded so that taking their address cannot point
// past the end of the allocation. Pair therefore lays out its second element
// first: the common case of a pointer paired with a stateless policy (a
// deleter, a comparator) costs exactly one pointer.
package pair

import "unsafe"

// Pair holds two values. The zero value holds two zero values.
type Pair[F, S any] struct {
	second S
	first  F
}

// Make returns a Pair holding first and second.
func Make[F, S any](first F, second S) Pair[F, S] {
	return Pair[F, S]{first: first, second: second}
}

// First returns the address of the first element.
func (p *Pair[F, S]) First() *F {
	return &p.first
}

// Second returns the address of the second element.
func (p *Pair[F, S]) Second() *S {
	return &p.second
}

// Elided reports which elements occupy no storage. Two zero-size elements
// may share an address, which Go permits.
func (p *Pair[F, S]) Elided() (first, second bool) {
	return unsafe.Sizeof(p.first) == 0, unsafe.Sizeof(p.second) == 0
}
