package ds

type Stack[T any] struct {
	slice []T
}

func NewStack[T any](initial ...T) *Stack[T] {
	slice := make([]T, 0, len(initial))
	slice = append(slice, initial...)
	return &Stack[T]{
		slice: slice,
	}
}

func (r *Stack[T]) Len() int {
	return len(r.slice)
}

func (r *Stack[T]) Push(t T) T {
	r.slice = append(r.slice, t)
	return t
}

// Pop removes the last element. The second value is false when the stack is empty.
func (r *Stack[T]) Pop() (T, bool) {
	var zero T
	if r.Len() == 0 {
		return zero, false
	}
	last := r.slice[r.Len()-1]
	r.slice = r.slice[:r.Len()-1]
	return last, true
}

func (r *Stack[T]) Peek() (T, bool) {
	var zero T
	if r.Len() == 0 {
		return zero, false
	}
	return r.slice[r.Len()-1], true
}

// Items returns a copy of the stack content, bottom first.
func (r *Stack[T]) Items() []T {
	return ShallowCopy(r.slice)
}
