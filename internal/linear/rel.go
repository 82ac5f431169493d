package linear

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// RelKind is the relation of an Expr with zero.
type RelKind int

const (
	// RelEq is `e = 0`.
	RelEq RelKind = iota
	// RelLe is `e <= 0`.
	RelLe
	// RelLt is `e < 0`. It only arises internally, from negation normal
	// form over the rationals; the integer solver never sees it.
	RelLt
)

func (k RelKind) String() string {
	switch k {
	case RelEq:
		return "="
	case RelLe:
		return "<="
	case RelLt:
		return "<"
	default:
		return "?"
	}
}

// Rel is a canonical linear relation `e kind 0`.
type Rel struct {
	Expr *Expr
	Kind RelKind
}

// NewEq creates `e = 0`.
func NewEq(e *Expr) *Rel { return &Rel{Expr: e, Kind: RelEq} }

// NewLe creates `e <= 0`.
func NewLe(e *Expr) *Rel { return &Rel{Expr: e, Kind: RelLe} }

// NewLt creates `e < 0`.
func NewLt(e *Expr) *Rel { return &Rel{Expr: e, Kind: RelLt} }

// Clone returns a deep copy of r.
func (r *Rel) Clone() *Rel { return &Rel{Expr: r.Expr.Clone(), Kind: r.Kind} }

// Ground reports whether the relation has no variables.
func (r *Rel) Ground() bool { return r.Expr.Ground() }

// Truth evaluates a ground relation. It panics on non-ground relations:
// calling it on one is an internal invariant violation, not an input error.
func (r *Rel) Truth() bool {
	if !r.Ground() {
		panic(fmt.Sprintf("linear: Truth on non-ground relation %s", r))
	}
	switch r.Kind {
	case RelEq:
		return r.Expr.Const().Sign() == 0
	case RelLe:
		return r.Expr.Const().Sign() <= 0
	case RelLt:
		return r.Expr.Const().Sign() < 0
	default:
		panic(fmt.Sprintf("linear: unknown relation kind %d", r.Kind))
	}
}

func (r *Rel) String() string {
	return r.Expr.String() + " " + r.Kind.String() + " 0"
}

// Key renders a canonical signature of the relation after scale
// normalization, so that scalar multiples of the same relation share a key.
func (r *Rel) Key() string {
	n := r.normalized()
	return n.Kind.String() + "|" + n.Expr.key()
}

// SystemKey renders an order-independent canonical signature of a
// conjunction of relations, used as the memoization key.
func SystemKey(rels []*Rel) string {
	keys := make([]string, len(rels))
	for i, r := range rels {
		keys[i] = r.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "&")
}

// normalized returns a copy scaled so that the coefficient of the first
// variable (in lexicographic order) has magnitude one, with its sign kept
// for inequalities and forced positive for equalities. Ground relations are
// returned as-is.
func (r *Rel) normalized() *Rel {
	if r.Ground() {
		return r.Clone()
	}
	lead := r.Expr.Vars()[0]
	a := r.Expr.Coeff(lead)
	scale := new(big.Rat).Abs(a)
	if r.Kind == RelEq {
		scale = new(big.Rat).Set(a)
	}
	return &Rel{Expr: r.Expr.Clone().Scale(new(big.Rat).Inv(scale)), Kind: r.Kind}
}

// rowKey is the signature of the variable coefficients alone, after scale
// normalization.
func (r *Rel) rowKey() string {
	n := r.normalized()
	var b strings.Builder
	for _, v := range n.Expr.Vars() {
		b.WriteString(v)
		b.WriteByte(':')
		b.WriteString(n.Expr.Coeff(v).RatString())
		b.WriteByte('|')
	}
	return b.String()
}

// Substitute eliminates x from r using the equality eq, which must involve
// x: r := r - (coeff_r(x) / coeff_eq(x)) * eq. The relation kind of r is
// kept. Panics if eq is not an equality supporting x.
func (r *Rel) Substitute(x string, eq *Rel) *Rel {
	if eq.Kind != RelEq || !eq.Expr.Supported(x) {
		panic(fmt.Sprintf("linear: substitution for %s requires an equality involving it, got %s", x, eq))
	}
	scale := new(big.Rat).Quo(r.Expr.Coeff(x), eq.Expr.Coeff(x))
	scale.Neg(scale)
	out := r.Clone()
	out.Expr.AddScaled(eq.Expr, scale)
	if out.Expr.Supported(x) {
		panic(fmt.Sprintf("linear: substitution failed to cancel %s in %s", x, out))
	}
	return out
}

// Subsumes reports whether r implies other. It is a syntactic test: both
// must be inequalities over the identical scale-normalized coefficient row;
// the one with the larger constant (on `row + k <= 0`) is the stronger.
func (r *Rel) Subsumes(other *Rel) bool {
	if r.Kind == RelEq || other.Kind == RelEq {
		return false
	}
	if r.Ground() || other.Ground() {
		return false
	}
	rn, on := r.normalized(), other.normalized()
	if rn.rowKey() != on.rowKey() {
		return false
	}
	cmp := rn.Expr.Const().Cmp(on.Expr.Const())
	if r.Kind == RelLe && other.Kind == RelLt {
		// row + k1 <= 0 implies row + k2 < 0 only with slack.
		return cmp > 0
	}
	return cmp >= 0
}

// Simplify drops ground-true relations, detects ground-false ones, and
// removes relations subsumed by a stronger one. It reports unsat when any
// ground relation evaluates to false. Input order of the survivors is
// preserved.
func Simplify(rels []*Rel) (out []*Rel, unsat bool) {
	kept := make([]*Rel, 0, len(rels))
	seen := make(map[string]bool)
	for _, r := range rels {
		if r.Ground() {
			if !r.Truth() {
				return nil, true
			}
			continue
		}
		key := r.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, r)
	}
	for i, r := range kept {
		redundant := false
		for j, s := range kept {
			if i != j && s.Subsumes(r) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, r)
		}
	}
	return out, false
}
