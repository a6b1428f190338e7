// Copyright 2024 The TurboKit Authors
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

// Package ilist implements an intrusive doubly linked list: elements embed
// a Hook and the list links through it, so membership costs no per-element
// allocation and removal is O(1) given only the element.
//
// An element can be on at most one list per embedded Hook; embedding
// several hooks puts the same element on several lists.
package ilist

// Hook is the linkage embedded in list elements. The zero Hook is
// detached.
type Hook[T any] struct {
	prev, next *Hook[T]
	elem       *T
}

// Linked reports whether the hook is currently on a list.
func (h *Hook[T]) Linked() bool { return h.next != nil }

// List is a sentinel-based doubly linked list over elements embedding
// Hook[T]. New must be used to create one.
//
// A List is NOT goroutine-safe.
type List[T any] struct {
	root Hook[T]
	// hook maps an element to its embedded linkage, fixed at New. The
	// member-pointer analog.
	hook func(*T) *Hook[T]
	size int
}

// New creates a list linking through the hook selected by hookOf,
// typically `func(e *E) *ilist.Hook[E] { return &e.hook }`.
func New[T any](hookOf func(*T) *Hook[T]) *List[T] {
	l := &List[T]{hook: hookOf}
	l.root.prev = &l.root
	l.root.next = &l.root
	return l
}

// Len returns the number of elements on the list.
func (l *List[T]) Len() int { return l.size }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.size == 0 }

// Front returns the first element, or nil if the list is empty.
func (l *List[T]) Front() *T {
	if l.size == 0 {
		return nil
	}
	return l.root.next.elem
}

// Back returns the last element, or nil if the list is empty.
func (l *List[T]) Back() *T {
	if l.size == 0 {
		return nil
	}
	return l.root.prev.elem
}

func (l *List[T]) insertAfter(at *Hook[T], e *T) {
	h := l.hook(e)
	if h.Linked() {
		panic("ilist: element is already on a list")
	}
	h.elem = e
	h.prev = at
	h.next = at.next
	at.next.prev = h
	at.next = h
	l.size++
}

// PushFront inserts e at the front. Panics if e's hook is already linked.
func (l *List[T]) PushFront(e *T) {
	l.insertAfter(&l.root, e)
}

// PushBack inserts e at the back. Panics if e's hook is already linked.
func (l *List[T]) PushBack(e *T) {
	l.insertAfter(l.root.prev, e)
}

// InsertBefore inserts e in front of mark, which must be on the list.
// Panics if e's hook is already linked.
func (l *List[T]) InsertBefore(e, mark *T) {
	l.insertAfter(l.hook(mark).prev, e)
}

// Remove unlinks e from the list in O(1). Panics if e is not on a list.
func (l *List[T]) Remove(e *T) {
	h := l.hook(e)
	if !h.Linked() {
		panic("ilist: removing an element that is not on a list")
	}
	h.prev.next = h.next
	h.next.prev = h.prev
	*h = Hook[T]{}
	l.size--
}

// PopFront removes and returns the first element, or nil if the list is
// empty.
func (l *List[T]) PopFront() *T {
	e := l.Front()
	if e != nil {
		l.Remove(e)
	}
	return e
}

// Next returns the element after e, or nil at the end. e must be on the
// list.
func (l *List[T]) Next(e *T) *T {
	return l.hook(e).next.elem
}

// Prev returns the element before e, or nil at the front. e must be on
// the list.
func (l *List[T]) Prev(e *T) *T {
	return l.hook(e).prev.elem
}

// All calls yield for each element front to back, stopping early if yield
// returns false. The element passed to yield may be removed during the
// iteration; removing any other element is unsupported.
func (l *List[T]) All(yield func(*T) bool) {
	for h := l.root.next; h != &l.root; {
		next := h.next
		if !yield(h.elem) {
			return
		}
		h = next
	}
}

// Clear detaches every element, leaving them all unlinked.
func (l *List[T]) Clear() {
	for h := l.root.next; h != &l.root; {
		next := h.next
		*h = Hook[T]{}
		h = next
	}
	l.root.prev = &l.root
	l.root.next = &l.root
	l.size = 0
}
