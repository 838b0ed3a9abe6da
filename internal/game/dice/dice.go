// Package dice provides the randomness abstraction and dice-expression
// evaluation used by the Duskmud simulation core.
package dice

import "fmt"

// Source is the randomness provider for all simulation rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Expression is a parsed dice expression such as "2d6+3".
//
// Invariant: after a successful Parse, Count >= 1 and Sides >= 2.
// The zero Expression (Count == 0) rolls to 0.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// Roll evaluates the expression using src.
//
// Precondition: src must be non-nil.
// Postcondition: for a parsed expression the result is in
// [Count+Modifier, Count*Sides+Modifier]; the zero Expression returns 0.
func (e Expression) Roll(src Source) int {
	if e.Count == 0 {
		return 0
	}
	total := e.Modifier
	for i := 0; i < e.Count; i++ {
		total += src.Intn(e.Sides) + 1
	}
	return total
}

// Min returns the smallest value Roll can produce.
func (e Expression) Min() int {
	if e.Count == 0 {
		return 0
	}
	return e.Count + e.Modifier
}

// Max returns the largest value Roll can produce.
func (e Expression) Max() int {
	if e.Count == 0 {
		return 0
	}
	return e.Count*e.Sides + e.Modifier
}

// String returns the canonical expression form, e.g. "2d6+3".
func (e Expression) String() string {
	if e.Count == 0 {
		return "0"
	}
	if e.Modifier == 0 {
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", e.Count, e.Sides, e.Modifier)
}

// Percent returns a uniform roll in [1, 100].
//
// Precondition: src must be non-nil.
func Percent(src Source) int {
	return src.Intn(100) + 1
}
