package ds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeRange(t *testing.T) {
	assert.Equal(t, []int{6, 7, 8, 9}, MakeRange(6, 10, 1))
	assert.Equal(t, []uint16{0, 3, 6}, MakeRange[uint16](0, 7, 3))
	assert.Equal(t, []int{}, MakeRange(5, 5, 1))
}

func TestNearestDivisibleByM(t *testing.T) {
	assert.Equal(t, 0, NearestDivisibleByM(0, 8))
	assert.Equal(t, 8, NearestDivisibleByM(1, 8))
	assert.Equal(t, 8, NearestDivisibleByM(8, 8))
	assert.Equal(t, 16, NearestDivisibleByM(9, 8))
	assert.Panics(t, func() { NearestDivisibleByM(3, 0) })
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, []bool{false, false, false}, Repeat(3, false))
	assert.Empty(t, Repeat(0, 1))
}
