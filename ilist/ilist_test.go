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

package ilist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type task struct {
	id   int
	hook Hook[task]
}

func taskList() *List[task] {
	return New(func(e *task) *Hook[task] { return &e.hook })
}

func ids(l *List[task]) []int {
	var r []int
	l.All(func(e *task) bool {
		r = append(r, e.id)
		return true
	})
	return r
}

func TestEmpty(t *testing.T) {
	l := taskList()
	require.True(t, l.Empty())
	require.Equal(t, 0, l.Len())
	require.Nil(t, l.Front())
	require.Nil(t, l.Back())
	require.Nil(t, l.PopFront())
}

func TestPushOrder(t *testing.T) {
	l := taskList()
	a, b, c := &task{id: 1}, &task{id: 2}, &task{id: 3}
	l.PushBack(b)
	l.PushFront(a)
	l.PushBack(c)
	require.Equal(t, []int{1, 2, 3}, ids(l))
	require.Equal(t, a, l.Front())
	require.Equal(t, c, l.Back())
	require.Equal(t, 3, l.Len())

	require.Equal(t, b, l.Next(a))
	require.Equal(t, b, l.Prev(c))
	require.Nil(t, l.Next(c))
	require.Nil(t, l.Prev(a))
}

func TestInsertBefore(t *testing.T) {
	l := taskList()
	a, c := &task{id: 1}, &task{id: 3}
	l.PushBack(a)
	l.PushBack(c)
	b := &task{id: 2}
	l.InsertBefore(b, c)
	require.Equal(t, []int{1, 2, 3}, ids(l))
}

func TestRemove(t *testing.T) {
	l := taskList()
	a, b, c := &task{id: 1}, &task{id: 2}, &task{id: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(b)
	require.Equal(t, []int{1, 3}, ids(l))
	require.False(t, b.hook.Linked())

	// A removed element can rejoin.
	l.PushBack(b)
	require.Equal(t, []int{1, 3, 2}, ids(l))

	require.Panics(t, func() { l.PushBack(a) })
	l.Remove(a)
	require.Panics(t, func() { l.Remove(a) })
}

func TestPopFront(t *testing.T) {
	l := taskList()
	for i := 1; i <= 3; i++ {
		l.PushBack(&task{id: i})
	}
	require.Equal(t, 1, l.PopFront().id)
	require.Equal(t, 2, l.PopFront().id)
	require.Equal(t, 3, l.PopFront().id)
	require.Nil(t, l.PopFront())
}

func TestRemoveDuringAll(t *testing.T) {
	l := taskList()
	elems := make([]*task, 10)
	for i := range elems {
		elems[i] = &task{id: i}
		l.PushBack(elems[i])
	}
	l.All(func(e *task) bool {
		if e.id%2 == 0 {
			l.Remove(e)
		}
		return true
	})
	require.Equal(t, []int{1, 3, 5, 7, 9}, ids(l))
}

func TestClear(t *testing.T) {
	l := taskList()
	a, b := &task{id: 1}, &task{id: 2}
	l.PushBack(a)
	l.PushBack(b)
	l.Clear()
	require.True(t, l.Empty())
	require.False(t, a.hook.Linked())
	require.False(t, b.hook.Linked())
	l.PushBack(a)
	require.Equal(t, []int{1}, ids(l))
}

func TestTwoLists(t *testing.T) {
	// Distinct hooks put one element on two lists at once.
	type job struct {
		id          int
		byAge, byID Hook[job]
	}
	age := New(func(e *job) *Hook[job] { return &e.byAge })
	byID := New(func(e *job) *Hook[job] { return &e.byID })

	j := &job{id: 1}
	age.PushBack(j)
	byID.PushFront(j)
	require.Equal(t, 1, age.Len())
	require.Equal(t, 1, byID.Len())
	age.Remove(j)
	require.Equal(t, 1, byID.Len())
}
