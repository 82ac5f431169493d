package solver

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/arithlab/presburger/internal/linear"
)

// EliminateInteger removes x from a conjunction of canonical relations,
// preserving integer-solution equivalence by the Omega Test: every relation
// is scaled to integer coefficients and tightened, equalities are resolved
// by substitution, and inequality pairs go through the dark shadow with
// case-split enumeration when the `(a-1)(b-1)` exactness margin fails.
//
// The result is a disjunction of conjunctions: an integer assignment to the
// remaining variables extends to an integer x satisfying the input iff it
// satisfies some returned conjunction. An empty disjunction means unsat; a
// conjunction that is itself empty means the disjunct holds everywhere.
// When the equality pinning x demands a divisibility of the surviving
// variables, which plain relations cannot state, the conjunction carries it
// as an equality on a fresh auxiliary variable (see Auxiliary), to be read
// as existentially quantified.
func EliminateInteger(rels []*linear.Rel, x string, b *Budget) ([][]*linear.Rel, error) {
	norm, unsat := normalizeSystem(rels)
	if unsat {
		return nil, nil
	}
	norm, unsat, err := propagateEqualities(norm, x, b)
	if err != nil {
		return nil, err
	}
	if unsat {
		return nil, nil
	}

	// Equality fast path, as in the rational solver but integer-sound.
	if eq := pickEquality(norm, x); eq != nil {
		return eliminateWithEquality(norm, eq, x, b)
	}

	var lowers, uppers, rest []*linear.Rel
	for _, r := range norm {
		c := r.Expr.Coeff(x)
		switch {
		case c.Sign() == 0:
			rest = append(rest, r)
		case c.Sign() > 0:
			uppers = append(uppers, r)
		default:
			lowers = append(lowers, r)
		}
	}

	// x unbounded on one side: every x-involving relation is satisfiable
	// by pushing x far enough.
	if len(lowers) == 0 || len(uppers) == 0 {
		return simplifyDisjunct(rest), nil
	}

	dark := append([]*linear.Rel{}, rest...)
	exact := true
	for _, lo := range lowers {
		a := new(big.Int).Neg(lo.Expr.Coeff(x).Num())
		for _, up := range uppers {
			if err := b.ChargeRels(1); err != nil {
				return nil, err
			}
			bb := up.Expr.Coeff(x).Num()
			if a.Cmp(intOne) != 0 && bb.Cmp(intOne) != 0 {
				exact = false
			}
			dark = append(dark, darkShadow(lo, up, x, a, bb))
		}
	}

	darkNorm, unsat := normalizeSystem(dark)
	var disjuncts [][]*linear.Rel
	if !unsat {
		disjuncts = simplifyDisjunct(darkNorm)
	}
	if exact {
		// Every pair has a unit coefficient, so the dark shadow equals
		// the real shadow: no integer solution escapes it.
		return disjuncts, nil
	}

	// Gray region: an integer solution missed by the dark shadow sits
	// within ((a-1)(bmax-1) - 1)/bmax of some lower bound, with bmax the
	// largest upper-bound coefficient. Enumerate those offsets as added
	// equalities and recurse.
	bmax := big.NewInt(1)
	for _, up := range uppers {
		if c := up.Expr.Coeff(x).Num(); c.Cmp(bmax) > 0 {
			bmax = c
		}
	}
	for _, lo := range lowers {
		a := new(big.Int).Neg(lo.Expr.Coeff(x).Num())
		maxOffset := new(big.Int).Mul(a, bmax)
		maxOffset.Sub(maxOffset, a)
		maxOffset.Sub(maxOffset, bmax)
		maxOffset = floorDiv(maxOffset, bmax)
		for i := new(big.Int); i.Cmp(maxOffset) <= 0; i.Add(i, intOne) {
			if err := b.ChargeStep(); err != nil {
				return nil, err
			}
			// a*x = alpha + i, with alpha the x-free part of the bound.
			pin := lo.Expr.Clone()
			pin.SetCoeff(x, new(big.Rat))
			pin.AddConst(new(big.Rat).SetInt(i))
			pin.AddCoeff(x, new(big.Rat).Neg(new(big.Rat).SetInt(a)))
			branch := append(append([]*linear.Rel{}, norm...), linear.NewEq(pin))
			sub, err := EliminateInteger(branch, x, b)
			if err != nil {
				return nil, err
			}
			disjuncts = append(disjuncts, sub...)
		}
	}
	return disjuncts, nil
}

// darkShadow derives the x-free relation b*alpha - a*beta + (a-1)(b-1) <= 0
// from a lower bound a*x >= alpha and an upper bound b*x <= beta.
func darkShadow(lo, up *linear.Rel, x string, a, bb *big.Int) *linear.Rel {
	// lo.Expr = -a*x + alpha', with alpha = alpha' in a*x >= alpha.
	alpha := lo.Expr.Clone()
	alpha.SetCoeff(x, new(big.Rat))
	// up.Expr = b*x + beta', with beta = -beta' in b*x <= beta.
	beta := up.Expr.Clone()
	beta.SetCoeff(x, new(big.Rat))

	e := alpha.Scale(new(big.Rat).SetInt(bb))
	e.AddScaled(beta, new(big.Rat).SetInt(a))
	margin := new(big.Int).Sub(a, intOne)
	margin.Mul(margin, new(big.Int).Sub(bb, intOne))
	e.AddConst(new(big.Rat).SetInt(margin))
	return linear.NewLe(e)
}

// propagateEqualities triangularizes the equalities that do not involve x:
// each substitutes its smallest-coefficient variable through every other
// relation and is itself kept, since it still constrains the surviving
// variables. Afterwards any x-involving equality has absorbed what the rest
// of the system pins down, so ground chains resolve before the divisibility
// analysis.
func propagateEqualities(rels []*linear.Rel, x string, b *Budget) (out []*linear.Rel, unsat bool, err error) {
	out = rels
	done := make(map[string]bool)
	for {
		var eq *linear.Rel
		var pivot string
		for _, r := range out {
			if r.Kind != linear.RelEq || r.Expr.Supported(x) {
				continue
			}
			v := pivotVar(r.Expr)
			if done[v] || !appearsOutside(out, r, v) {
				continue
			}
			eq, pivot = r, v
			break
		}
		if eq == nil {
			return out, false, nil
		}
		if err := b.ChargeStep(); err != nil {
			return nil, false, err
		}
		next := make([]*linear.Rel, 0, len(out))
		for _, r := range out {
			if r != eq && r.Expr.Supported(pivot) {
				r = r.Substitute(pivot, eq)
			}
			next = append(next, r)
		}
		out, unsat = normalizeSystem(next)
		if unsat {
			return nil, true, nil
		}
		done[pivot] = true
	}
}

// eliminateWithEquality removes x by substituting the equality eq through
// every other relation, which leaves eq itself as the only constraint on x:
// c*x pinned to minus its x-free remainder. An integer x then exists iff
// |c| divides that remainder, and with a non-unit |c| the divisibility
// becomes an equality on a fresh auxiliary variable ranging over the
// multiples of |c|. The remainder keeps a nonzero residue coefficient
// there: normalization already divided out any factor shared by the whole
// coefficient row.
func eliminateWithEquality(norm []*linear.Rel, eq *linear.Rel, x string, b *Budget) ([][]*linear.Rel, error) {
	var out []*linear.Rel
	for _, r := range norm {
		if r == eq {
			continue
		}
		if r.Expr.Supported(x) {
			r = r.Substitute(x, eq)
		}
		out = append(out, r)
	}
	if err := b.ChargeRels(len(out)); err != nil {
		return nil, err
	}

	g := new(big.Int).Abs(eq.Expr.Coeff(x).Num())
	if g.Cmp(intOne) > 0 {
		if err := b.ChargeStep(); err != nil {
			return nil, err
		}
		stride := linear.NewExpr()
		for _, v := range eq.Expr.Vars() {
			if v == x {
				continue
			}
			if s := symmod(eq.Expr.Coeff(v).Num(), g); s.Sign() != 0 {
				stride.SetCoeff(v, new(big.Rat).SetInt(s))
			}
		}
		stride.SetConst(new(big.Rat).SetInt(symmod(eq.Expr.Const().Num(), g)))
		stride.SetCoeff(freshVar(norm), new(big.Rat).SetInt(g))
		out = append(out, linear.NewEq(stride))
	}

	next, unsat := normalizeSystem(out)
	if unsat {
		return nil, nil
	}
	return simplifyDisjunct(next), nil
}

// pivotVar returns the variable with the smallest absolute coefficient,
// ties broken by variable order.
func pivotVar(e *linear.Expr) string {
	var best string
	var bestAbs *big.Rat
	for _, v := range e.Vars() {
		abs := new(big.Rat).Abs(e.Coeff(v))
		if best == "" || abs.Cmp(bestAbs) < 0 {
			best, bestAbs = v, abs
		}
	}
	return best
}

// appearsOutside reports whether v occurs in a relation other than skip.
func appearsOutside(rels []*linear.Rel, skip *linear.Rel, v string) bool {
	for _, r := range rels {
		if r != skip && r.Expr.Supported(v) {
			return true
		}
	}
	return false
}

// pickEquality returns the equality with the smallest coefficient magnitude
// on x, or nil.
func pickEquality(rels []*linear.Rel, x string) *linear.Rel {
	var best *linear.Rel
	var bestAbs *big.Int
	for _, r := range rels {
		if r.Kind != linear.RelEq || !r.Expr.Supported(x) {
			continue
		}
		abs := new(big.Int).Abs(r.Expr.Coeff(x).Num())
		if best == nil || abs.Cmp(bestAbs) < 0 {
			best, bestAbs = r, abs
		}
	}
	return best
}

// normalizeSystem integer-normalizes every relation, dropping ground-true
// ones. unsat is reported on any ground-false relation or an equality whose
// constant the coefficient gcd does not divide.
func normalizeSystem(rels []*linear.Rel) (out []*linear.Rel, unsat bool) {
	for _, r := range rels {
		nr, bad := intNormalize(r)
		if bad {
			return nil, true
		}
		if nr.Ground() {
			if !nr.Truth() {
				return nil, true
			}
			continue
		}
		out = append(out, nr)
	}
	return out, false
}

// intNormalize scales a relation to integer coefficients, rewrites the
// strict form `e < 0` as `e + 1 <= 0` (sound once coefficients are
// integral), and divides by the coefficient gcd: equalities fail the
// divisibility test or divide exactly, inequalities tighten the constant to
// the next integer (the `c*x <= k` to `x <= floor(k/c)` rule, applied to
// the whole coefficient row).
func intNormalize(r *linear.Rel) (out *linear.Rel, unsat bool) {
	out = r.Clone()

	scale := big.NewInt(1)
	for _, v := range out.Expr.Vars() {
		scale = lcmInt(scale, out.Expr.Coeff(v).Denom())
	}
	scale = lcmInt(scale, out.Expr.Const().Denom())
	if scale.Cmp(intOne) != 0 {
		out.Expr.Scale(new(big.Rat).SetInt(scale))
	}

	if out.Kind == linear.RelLt {
		out.Expr.AddConst(big.NewRat(1, 1))
		out.Kind = linear.RelLe
	}

	if out.Expr.Ground() {
		return out, false
	}

	g := new(big.Int)
	for _, v := range out.Expr.Vars() {
		g = gcdInt(g, out.Expr.Coeff(v).Num())
	}
	if g.Cmp(intOne) == 0 {
		return out, false
	}

	k := out.Expr.Const().Num()
	switch out.Kind {
	case linear.RelEq:
		if new(big.Int).Mod(k, g).Sign() != 0 {
			return nil, true
		}
		out.Expr.Scale(new(big.Rat).SetFrac(intOne, g))
	case linear.RelLe:
		tightened := ceilDiv(k, g)
		out.Expr.SetConst(new(big.Rat))
		out.Expr.Scale(new(big.Rat).SetFrac(intOne, g))
		out.Expr.SetConst(new(big.Rat).SetInt(tightened))
	default:
		panic(fmt.Sprintf("solver: relation kind %s after strict rewrite", out.Kind))
	}
	return out, false
}

// simplifyDisjunct wraps a single conjunction as a disjunction, or returns
// the empty disjunction when it is contradictory.
func simplifyDisjunct(rels []*linear.Rel) [][]*linear.Rel {
	out, unsat := linear.Simplify(rels)
	if unsat {
		return nil
	}
	return [][]*linear.Rel{out}
}

const auxPrefix = "_s"

// Auxiliary reports whether the variable was coined by the integer solver
// to carry a divisibility condition. Auxiliary variables in a returned
// system are existential: an assignment to the ordinary variables satisfies
// the system if some integer value for them does.
func Auxiliary(name string) bool { return strings.HasPrefix(name, auxPrefix) }

// freshVar coins an auxiliary variable name not used anywhere in the
// system. Source variables are purely alphabetic, so the underscore prefix
// cannot collide with them.
func freshVar(rels []*linear.Rel) string {
	max := 0
	for _, r := range rels {
		for _, v := range r.Expr.Vars() {
			if n, ok := strings.CutPrefix(v, auxPrefix); ok {
				if i, err := strconv.Atoi(n); err == nil && i > max {
					max = i
				}
			}
		}
	}
	return auxPrefix + strconv.Itoa(max+1)
}
