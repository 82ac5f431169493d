package qe

import (
	"fmt"

	"github.com/arithlab/presburger/ast"
	"github.com/arithlab/presburger/internal/solver"
)

// dnf distributes a quantifier-free formula in negation normal form into a
// disjunction of conjunctions of literals. A literal is an atomic formula
// or a negated propositional atom; every other negation has already been
// pushed into the atoms.
//
// Distribution of `and` over `or` multiplies conjunct counts, so each
// produced conjunct charges the budget.
func dnf(f ast.Formula, b *solver.Budget) ([][]ast.Formula, error) {
	switch f := f.(type) {
	case ast.Atomic:
		return [][]ast.Formula{{f}}, nil
	case ast.Not:
		if _, ok := f.Operand.(ast.Atomic); !ok {
			panic(fmt.Sprintf("qe: negation of %T survived negation normal form", f.Operand))
		}
		return [][]ast.Formula{{f}}, nil
	case ast.Or:
		left, err := dnf(f.Left, b)
		if err != nil {
			return nil, err
		}
		right, err := dnf(f.Right, b)
		if err != nil {
			return nil, err
		}
		return append(left, right...), nil
	case ast.And:
		left, err := dnf(f.Left, b)
		if err != nil {
			return nil, err
		}
		right, err := dnf(f.Right, b)
		if err != nil {
			return nil, err
		}
		out := make([][]ast.Formula, 0, len(left)*len(right))
		for _, l := range left {
			for _, r := range right {
				if err := b.ChargeRels(1); err != nil {
					return nil, err
				}
				conj := make([]ast.Formula, 0, len(l)+len(r))
				conj = append(conj, l...)
				conj = append(conj, r...)
				out = append(out, conj)
			}
		}
		return out, nil
	default:
		panic(fmt.Sprintf("qe: %T in a formula expected to be quantifier-free negation normal form", f))
	}
}
