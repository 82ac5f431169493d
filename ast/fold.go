package ast

import "math/big"

// Fold performs constant folding: subformulas that reduce to a boolean
// literal through propagation of @T/@F across the connectives collapse
// eagerly, and ground relational atoms (no variables on either side)
// evaluate to their truth value. Fold never touches atoms containing
// variables, so And(A, ~A) with A free is left structurally intact.
func Fold(f Formula) Formula {
	switch p := f.(type) {
	case Atomic:
		if v, ok := groundAtomValue(p.Atom); ok {
			return TruthF(v)
		}
		return p
	case Not:
		inner := Fold(p.Operand)
		if v, ok := truthValue(inner); ok {
			return TruthF(!v)
		}
		return Not{Operand: inner}
	case And:
		left := Fold(p.Left)
		right := Fold(p.Right)
		if v, ok := truthValue(left); ok {
			if !v {
				return TruthF(false)
			}
			return right
		}
		if v, ok := truthValue(right); ok {
			if !v {
				return TruthF(false)
			}
			return left
		}
		return And{Left: left, Right: right}
	case Or:
		left := Fold(p.Left)
		right := Fold(p.Right)
		if v, ok := truthValue(left); ok {
			if v {
				return TruthF(true)
			}
			return right
		}
		if v, ok := truthValue(right); ok {
			if v {
				return TruthF(true)
			}
			return left
		}
		return Or{Left: left, Right: right}
	case Implies:
		left := Fold(p.Left)
		right := Fold(p.Right)
		if v, ok := truthValue(left); ok {
			if !v {
				return TruthF(true)
			}
			return right
		}
		if v, ok := truthValue(right); ok && v {
			return TruthF(true)
		}
		return Implies{Left: left, Right: right}
	case Iff:
		left := Fold(p.Left)
		right := Fold(p.Right)
		lv, lok := truthValue(left)
		rv, rok := truthValue(right)
		switch {
		case lok && rok:
			return TruthF(lv == rv)
		case lok && lv:
			return right
		case rok && rv:
			return left
		}
		return Iff{Left: left, Right: right}
	case Exists:
		body := Fold(p.Body)
		// The numeric domain is nonempty, so a literal body decides the
		// quantifier.
		if v, ok := truthValue(body); ok {
			return TruthF(v)
		}
		return Exists{Bound: p.Bound, Body: body}
	case Forall:
		body := Fold(p.Body)
		if v, ok := truthValue(body); ok {
			return TruthF(v)
		}
		return Forall{Bound: p.Bound, Body: body}
	default:
		return f
	}
}

// truthValue extracts the boolean from a literal formula.
func truthValue(f Formula) (bool, bool) {
	if a, ok := f.(Atomic); ok {
		if t, ok := a.Atom.(Truth); ok {
			return t.Val, true
		}
	}
	return false, false
}

// groundAtomValue evaluates a relational atom with no variables.
func groundAtomValue(a Atom) (bool, bool) {
	switch at := a.(type) {
	case Truth:
		return at.Val, true
	case Eq:
		l, lok := groundTermValue(at.Lhs)
		r, rok := groundTermValue(at.Rhs)
		if lok && rok {
			return l.Cmp(r) == 0, true
		}
	case LessEq:
		l, lok := groundTermValue(at.Lhs)
		r, rok := groundTermValue(at.Rhs)
		if lok && rok {
			return l.Cmp(r) <= 0, true
		}
	case Less:
		l, lok := groundTermValue(at.Lhs)
		r, rok := groundTermValue(at.Rhs)
		if lok && rok {
			return l.Cmp(r) < 0, true
		}
	}
	return false, false
}

func groundTermValue(t Term) (*big.Rat, bool) {
	switch tm := t.(type) {
	case Num:
		return tm.Val, true
	case ScalarVar:
		return nil, false
	case Add:
		l, lok := groundTermValue(tm.Left)
		r, rok := groundTermValue(tm.Right)
		if lok && rok {
			return new(big.Rat).Add(l, r), true
		}
	}
	return nil, false
}
