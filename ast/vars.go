package ast

import "fmt"

// WellFormedError reports a structurally ill-formed formula, such as a
// quantifier re-binding a variable that an enclosing quantifier already
// binds. It is recoverable by the caller: fix the input and reparse.
type WellFormedError struct {
	Var Var
	Msg string
}

func (e *WellFormedError) Error() string {
	return fmt.Sprintf("ill-formed formula: %s: %s", e.Var.Name, e.Msg)
}

// FreeVars returns the set of variables occurring free in f. Propositional
// variables are always free; a numeric variable is free unless enclosed by
// a quantifier binding it.
func FreeVars(f Formula) map[Var]bool {
	free := make(map[Var]bool)
	collectFree(f, make(map[Var]bool), free)
	return free
}

// SortedFreeVars returns the free variables ordered by name, for
// deterministic output.
func SortedFreeVars(f Formula) []Var {
	return sortVars(FreeVars(f))
}

func collectFree(f Formula, bound, free map[Var]bool) {
	switch p := f.(type) {
	case Atomic:
		collectAtomVars(p.Atom, bound, free)
	case Not:
		collectFree(p.Operand, bound, free)
	case And:
		collectFree(p.Left, bound, free)
		collectFree(p.Right, bound, free)
	case Or:
		collectFree(p.Left, bound, free)
		collectFree(p.Right, bound, free)
	case Implies:
		collectFree(p.Left, bound, free)
		collectFree(p.Right, bound, free)
	case Iff:
		collectFree(p.Left, bound, free)
		collectFree(p.Right, bound, free)
	case Exists:
		collectQuantVars(p.Bound, p.Body, bound, free)
	case Forall:
		collectQuantVars(p.Bound, p.Body, bound, free)
	}
}

func collectQuantVars(v Var, body Formula, bound, free map[Var]bool) {
	wasBound := bound[v]
	bound[v] = true
	collectFree(body, bound, free)
	if !wasBound {
		delete(bound, v)
	}
}

func collectAtomVars(a Atom, bound, free map[Var]bool) {
	switch at := a.(type) {
	case Truth:
	case Prop:
		free[at.Var] = true
	case Eq:
		collectTermVars(at.Lhs, bound, free)
		collectTermVars(at.Rhs, bound, free)
	case LessEq:
		collectTermVars(at.Lhs, bound, free)
		collectTermVars(at.Rhs, bound, free)
	case Less:
		collectTermVars(at.Lhs, bound, free)
		collectTermVars(at.Rhs, bound, free)
	}
}

func collectTermVars(t Term, bound, free map[Var]bool) {
	switch tm := t.(type) {
	case Num:
	case ScalarVar:
		if !bound[tm.Var] {
			free[tm.Var] = true
		}
	case Add:
		collectTermVars(tm.Left, bound, free)
		collectTermVars(tm.Right, bound, free)
	}
}

// CheckWellFormed verifies that quantifiers bind only numeric variables and
// never re-bind a variable already bound in enclosing scope. Shadowing is an
// error rather than something alpha-renaming resolves silently.
func CheckWellFormed(f Formula) error {
	return checkWF(f, make(map[Var]bool))
}

func checkWF(f Formula, bound map[Var]bool) error {
	switch p := f.(type) {
	case Atomic:
		return nil
	case Not:
		return checkWF(p.Operand, bound)
	case And:
		if err := checkWF(p.Left, bound); err != nil {
			return err
		}
		return checkWF(p.Right, bound)
	case Or:
		if err := checkWF(p.Left, bound); err != nil {
			return err
		}
		return checkWF(p.Right, bound)
	case Implies:
		if err := checkWF(p.Left, bound); err != nil {
			return err
		}
		return checkWF(p.Right, bound)
	case Iff:
		if err := checkWF(p.Left, bound); err != nil {
			return err
		}
		return checkWF(p.Right, bound)
	case Exists:
		return checkQuantWF(p.Bound, p.Body, bound)
	case Forall:
		return checkQuantWF(p.Bound, p.Body, bound)
	default:
		return nil
	}
}

func checkQuantWF(v Var, body Formula, bound map[Var]bool) error {
	if v.Kind != Numeric {
		return &WellFormedError{Var: v, Msg: "quantifier binds a propositional variable"}
	}
	if bound[v] {
		return &WellFormedError{Var: v, Msg: "quantifier re-binds a variable bound in enclosing scope"}
	}
	bound[v] = true
	err := checkWF(body, bound)
	delete(bound, v)
	return err
}
