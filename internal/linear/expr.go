// Package linear implements the normal linear form used by the solvers: a
// canonical variable-to-coefficient mapping plus a rational constant, and
// relations of the shape `k + sum a_i x_i {=, <=, <} 0`.
package linear

import (
	"math/big"
	"sort"
	"strings"
)

// Expr is an affine linear expression `k + sum a_i x_i` in normal form:
// exact rational coefficients, no zero-coefficient entries ever retained.
type Expr struct {
	coeffs map[string]*big.Rat
	konst  *big.Rat
}

// NewExpr creates the zero expression.
func NewExpr() *Expr {
	return &Expr{
		coeffs: make(map[string]*big.Rat),
		konst:  new(big.Rat),
	}
}

// Clone returns a deep copy of e.
func (e *Expr) Clone() *Expr {
	c := &Expr{
		coeffs: make(map[string]*big.Rat, len(e.coeffs)),
		konst:  new(big.Rat).Set(e.konst),
	}
	for v, a := range e.coeffs {
		c.coeffs[v] = new(big.Rat).Set(a)
	}
	return c
}

// Coeff returns the coefficient of x, zero if x has no entry.
func (e *Expr) Coeff(x string) *big.Rat {
	if a, ok := e.coeffs[x]; ok {
		return a
	}
	return new(big.Rat)
}

// SetCoeff sets the coefficient of x, deleting the entry when a is zero.
func (e *Expr) SetCoeff(x string, a *big.Rat) {
	if a.Sign() == 0 {
		delete(e.coeffs, x)
		return
	}
	e.coeffs[x] = new(big.Rat).Set(a)
}

// AddCoeff adds a to the coefficient of x.
func (e *Expr) AddCoeff(x string, a *big.Rat) {
	sum := new(big.Rat).Add(e.Coeff(x), a)
	e.SetCoeff(x, sum)
}

// Const returns the constant term.
func (e *Expr) Const() *big.Rat { return e.konst }

// SetConst sets the constant term.
func (e *Expr) SetConst(k *big.Rat) { e.konst = new(big.Rat).Set(k) }

// AddConst adds k to the constant term.
func (e *Expr) AddConst(k *big.Rat) { e.konst.Add(e.konst, k) }

// Supported reports whether x has a nonzero coefficient.
func (e *Expr) Supported(x string) bool {
	_, ok := e.coeffs[x]
	return ok
}

// Ground reports whether the expression has no variables.
func (e *Expr) Ground() bool { return len(e.coeffs) == 0 }

// NumVars returns the number of variables with nonzero coefficient.
func (e *Expr) NumVars() int { return len(e.coeffs) }

// Vars returns the variable names in lexicographic order.
func (e *Expr) Vars() []string {
	vars := make([]string, 0, len(e.coeffs))
	for v := range e.coeffs {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	return vars
}

// AddScaled adds s*other to e in place and returns e.
func (e *Expr) AddScaled(other *Expr, s *big.Rat) *Expr {
	for v, a := range other.coeffs {
		e.AddCoeff(v, new(big.Rat).Mul(s, a))
	}
	e.AddConst(new(big.Rat).Mul(s, other.konst))
	return e
}

// Scale multiplies e by s in place and returns e.
func (e *Expr) Scale(s *big.Rat) *Expr {
	if s.Sign() == 0 {
		e.coeffs = make(map[string]*big.Rat)
		e.konst = new(big.Rat)
		return e
	}
	for v, a := range e.coeffs {
		e.coeffs[v] = new(big.Rat).Mul(a, s)
	}
	e.konst.Mul(e.konst, s)
	return e
}

// Equal reports mathematical equality: same coefficients on the same
// variables and the same constant.
func (e *Expr) Equal(other *Expr) bool {
	if e.konst.Cmp(other.konst) != 0 || len(e.coeffs) != len(other.coeffs) {
		return false
	}
	for v, a := range e.coeffs {
		b, ok := other.coeffs[v]
		if !ok || a.Cmp(b) != 0 {
			return false
		}
	}
	return true
}

// String renders the expression with variables in lexicographic order and
// only nonzero monomials, e.g. "5 + -10 x".
func (e *Expr) String() string {
	var parts []string
	if e.konst.Sign() != 0 || len(e.coeffs) == 0 {
		parts = append(parts, e.konst.RatString())
	}
	for _, v := range e.Vars() {
		a := e.coeffs[v]
		if a.Cmp(big.NewRat(1, 1)) == 0 {
			parts = append(parts, v)
		} else {
			parts = append(parts, a.RatString()+" "+v)
		}
	}
	return strings.Join(parts, " + ")
}

// key renders a canonical signature of the expression, used for relation
// ordering and memoization keys.
func (e *Expr) key() string {
	var b strings.Builder
	b.WriteString(e.konst.RatString())
	for _, v := range e.Vars() {
		b.WriteByte('|')
		b.WriteString(v)
		b.WriteByte(':')
		b.WriteString(e.coeffs[v].RatString())
	}
	return b.String()
}
