package ast

import (
	"fmt"
	"math/big"
)

// Assignment maps variables to concrete values for evaluation. Numeric
// variables map to exact rationals, propositional variables to booleans.
type Assignment struct {
	Nums  map[string]*big.Rat
	Props map[string]bool
}

// NewAssignment creates an empty assignment.
func NewAssignment() *Assignment {
	return &Assignment{
		Nums:  make(map[string]*big.Rat),
		Props: make(map[string]bool),
	}
}

// SetNum binds a numeric variable.
func (a *Assignment) SetNum(name string, v *big.Rat) *Assignment {
	a.Nums[name] = v
	return a
}

// SetInt binds a numeric variable to an integer value.
func (a *Assignment) SetInt(name string, v int64) *Assignment {
	return a.SetNum(name, big.NewRat(v, 1))
}

// SetProp binds a propositional variable.
func (a *Assignment) SetProp(name string, v bool) *Assignment {
	a.Props[name] = v
	return a
}

// Eval evaluates a quantifier-free formula under the assignment. Every free
// variable of f must be bound; quantified formulas cannot be evaluated.
func Eval(f Formula, env *Assignment) (bool, error) {
	switch p := f.(type) {
	case Atomic:
		return evalAtom(p.Atom, env)
	case Not:
		v, err := Eval(p.Operand, env)
		return !v, err
	case And:
		l, err := Eval(p.Left, env)
		if err != nil {
			return false, err
		}
		r, err := Eval(p.Right, env)
		return l && r, err
	case Or:
		l, err := Eval(p.Left, env)
		if err != nil {
			return false, err
		}
		r, err := Eval(p.Right, env)
		return l || r, err
	case Implies:
		l, err := Eval(p.Left, env)
		if err != nil {
			return false, err
		}
		r, err := Eval(p.Right, env)
		return !l || r, err
	case Iff:
		l, err := Eval(p.Left, env)
		if err != nil {
			return false, err
		}
		r, err := Eval(p.Right, env)
		return l == r, err
	case Exists, Forall:
		return false, fmt.Errorf("cannot evaluate quantified formula %s", f)
	default:
		return false, fmt.Errorf("unexpected formula node %T", f)
	}
}

func evalAtom(a Atom, env *Assignment) (bool, error) {
	switch at := a.(type) {
	case Truth:
		return at.Val, nil
	case Prop:
		v, ok := env.Props[at.Var.Name]
		if !ok {
			return false, fmt.Errorf("unbound propositional variable %s", at.Var.Name)
		}
		return v, nil
	case Eq:
		l, r, err := evalSides(at.Lhs, at.Rhs, env)
		if err != nil {
			return false, err
		}
		return l.Cmp(r) == 0, nil
	case LessEq:
		l, r, err := evalSides(at.Lhs, at.Rhs, env)
		if err != nil {
			return false, err
		}
		return l.Cmp(r) <= 0, nil
	case Less:
		l, r, err := evalSides(at.Lhs, at.Rhs, env)
		if err != nil {
			return false, err
		}
		return l.Cmp(r) < 0, nil
	default:
		return false, fmt.Errorf("unexpected atom %T", a)
	}
}

func evalSides(lhs, rhs Term, env *Assignment) (*big.Rat, *big.Rat, error) {
	l, err := EvalTerm(lhs, env)
	if err != nil {
		return nil, nil, err
	}
	r, err := EvalTerm(rhs, env)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// EvalTerm evaluates a term to an exact rational under the assignment.
func EvalTerm(t Term, env *Assignment) (*big.Rat, error) {
	switch tm := t.(type) {
	case Num:
		return tm.Val, nil
	case ScalarVar:
		v, ok := env.Nums[tm.Var.Name]
		if !ok {
			return nil, fmt.Errorf("unbound numeric variable %s", tm.Var.Name)
		}
		return new(big.Rat).Mul(tm.Coeff, v), nil
	case Add:
		l, err := EvalTerm(tm.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := EvalTerm(tm.Right, env)
		if err != nil {
			return nil, err
		}
		return new(big.Rat).Add(l, r), nil
	default:
		return nil, fmt.Errorf("unexpected term node %T", t)
	}
}
