package domain

import "fmt"

// Unreachable panics for a value a switch should have handled. Call it from
// the default branch of switches over closed enums so that adding a new
// member fails loudly at the first switch that was not updated.
func Unreachable[T any](what string, value any) T {
	panic(fmt.Sprintf("unhandled %s: %v", what, value))
}
