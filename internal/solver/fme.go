package solver

import (
	"math/big"

	"github.com/arithlab/presburger/internal/linear"
)

// EliminateRational removes x from a conjunction of canonical relations
// over the rationals by Fourier-Motzkin elimination.
//
// Soundness: an assignment to the remaining variables satisfies the output
// iff some rational value of x extends it to satisfy the input. unsat is
// reported when the conjunction is contradictory regardless of x; an empty,
// non-unsat output means the conjunction holds for every assignment.
func EliminateRational(rels []*linear.Rel, x string, b *Budget) (out []*linear.Rel, unsat bool, err error) {
	var eqs, lowers, uppers, rest []*linear.Rel
	for _, r := range rels {
		c := r.Expr.Coeff(x)
		switch {
		case c.Sign() == 0:
			rest = append(rest, r)
		case r.Kind == linear.RelEq:
			eqs = append(eqs, r)
		case c.Sign() > 0:
			// c x + r' <= 0 bounds x from above.
			uppers = append(uppers, r)
		default:
			lowers = append(lowers, r)
		}
	}

	// An equality pins x: substituting it into every other bound avoids
	// the pairwise blow-up entirely, and x always has the rational witness
	// the equality dictates.
	if len(eqs) > 0 {
		eq := eqs[0]
		derived := rest
		for _, r := range append(append(eqs[1:], lowers...), uppers...) {
			derived = append(derived, r.Substitute(x, eq))
		}
		if err := b.ChargeRels(len(derived) - len(rest)); err != nil {
			return nil, false, err
		}
		out, unsat = linear.Simplify(derived)
		return out, unsat, nil
	}

	derived := rest
	for _, lo := range lowers {
		for _, up := range uppers {
			if err := b.ChargeRels(1); err != nil {
				return nil, false, err
			}
			derived = append(derived, combineBounds(lo, up, x))
		}
	}
	out, unsat = linear.Simplify(derived)
	return out, unsat, nil
}

// combineBounds cancels x between a lower bound (negative coefficient) and
// an upper bound (positive coefficient): lo*up_c + up*(-lo_c) has a zero
// coefficient on x and both scales are positive, so the inequality
// direction is preserved. The result is strict if either input was.
func combineBounds(lo, up *linear.Rel, x string) *linear.Rel {
	loC := lo.Expr.Coeff(x) // negative
	upC := up.Expr.Coeff(x) // positive
	e := lo.Expr.Clone().Scale(upC)
	e.AddScaled(up.Expr, new(big.Rat).Neg(loC))
	kind := linear.RelLe
	if lo.Kind == linear.RelLt || up.Kind == linear.RelLt {
		kind = linear.RelLt
	}
	return &linear.Rel{Expr: e, Kind: kind}
}

// SatisfiableRational decides a conjunction over the rationals by
// eliminating every variable in turn.
func SatisfiableRational(rels []*linear.Rel, b *Budget) (bool, error) {
	current, unsat := linear.Simplify(rels)
	if unsat {
		return false, nil
	}
	for len(current) > 0 {
		x := firstVar(current)
		if x == "" {
			// Simplify leaves no ground relations behind.
			return true, nil
		}
		next, unsat, err := EliminateRational(current, x, b)
		if err != nil {
			return false, err
		}
		if unsat {
			return false, nil
		}
		current = next
	}
	return true, nil
}

func firstVar(rels []*linear.Rel) string {
	for _, r := range rels {
		if vars := r.Expr.Vars(); len(vars) > 0 {
			return vars[0]
		}
	}
	return ""
}
