// Package assert holds precondition checks for constructors. A failed check is a
// programming error, so it panics instead of returning an error.
package assert

import "fmt"

func NotNil(value any) {
	if value == nil {
		panic("expected value to be not nil")
	}
}

func NotEmptyStr(str string) {
	if str == "" {
		panic("expected string to be non-empty")
	}
}

// NotNegative panics if n is below zero.
func NotNegative[T ~int | ~int64 | ~float64](name string, n T) {
	if n < 0 {
		panic(fmt.Sprintf("expected %s to be >= 0, got %v", name, n))
	}
}
