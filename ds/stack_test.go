package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Peek(t *testing.T) {
	type T struct {
		Value1 int
		Value2 int
	}
	stack := NewStack[T]()
	stack.Push(
		T{
			Value1: 1,
			Value2: 2,
		},
	)

	last, ok := stack.Peek()

	assert.True(t, ok)
	assert.Equal(t, 1, last.Value1)
	assert.Equal(t, 2, last.Value2)
}

func TestStack_Pop(t *testing.T) {
	stack := NewStack("/", "/saves")
	stack.Push("/saves/Barb")

	last, ok := stack.Pop()
	assert.True(t, ok)
	assert.Equal(t, "/saves/Barb", last)
	assert.Equal(t, []string{"/", "/saves"}, stack.Items())

	stack.Pop()
	stack.Pop()
	_, ok = stack.Pop()
	assert.False(t, ok)
	_, ok = stack.Peek()
	assert.False(t, ok)
}
