package solver

import "fmt"

// IncompleteError reports that eliminating an integer variable produced a
// divisibility condition on the surviving variables. The relation language
// has no quantifier-free form for it, so the formula stays undecided; the
// caller may fall back to the rational domain or restructure the input.
type IncompleteError struct {
	// Var is the variable whose elimination was cut short.
	Var string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("eliminating %s leaves a divisibility constraint on the remaining variables", e.Var)
}
