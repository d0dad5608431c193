package ds

import (
	"fmt"
)

// NearestDivisibleByM rounds n up to the nearest multiple of m.
func NearestDivisibleByM(n int, m int) int {
	if m <= 0 {
		err := fmt.Errorf(
			`NearestDivisibleByM unreachable code with n = %d and m = %d`,
			n, m,
		)
		panic(err)
	}
	remainder := n % m
	if remainder == 0 {
		return n
	}
	return n + m - remainder
}
