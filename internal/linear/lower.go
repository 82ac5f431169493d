package linear

import (
	"fmt"
	"math/big"

	"github.com/arithlab/presburger/ast"
)

// LowerTerm canonicalizes a surface term into normal linear form: nested
// sums flatten, coefficients of identical variables combine by addition,
// zero entries drop, and the constant reduces to lowest terms. Idempotent
// in the sense that lowering the printed form of the result lowers back to
// an equal expression.
func LowerTerm(t ast.Term) *Expr {
	e := NewExpr()
	accumulate(t, e)
	return e
}

func accumulate(t ast.Term, e *Expr) {
	switch tm := t.(type) {
	case ast.Num:
		e.AddConst(tm.Val)
	case ast.ScalarVar:
		e.AddCoeff(tm.Var.Name, tm.Coeff)
	case ast.Add:
		accumulate(tm.Left, e)
		accumulate(tm.Right, e)
	default:
		panic(fmt.Sprintf("linear: unexpected term node %T", t))
	}
}

// LowerAtom canonicalizes a relational atom to `lhs - rhs kind 0`. Only
// relational atoms lower; truth literals and propositional atoms are
// handled before lowering, and passing one here is an internal invariant
// violation.
//
// The result may be ground; callers detect that with Rel.Ground and decide
// it with Rel.Truth.
func LowerAtom(a ast.Atom) *Rel {
	switch at := a.(type) {
	case ast.Eq:
		return NewEq(lowerSides(at.Lhs, at.Rhs))
	case ast.LessEq:
		return NewLe(lowerSides(at.Lhs, at.Rhs))
	case ast.Less:
		return NewLt(lowerSides(at.Lhs, at.Rhs))
	default:
		panic(fmt.Sprintf("linear: atom %T cannot lower to a relation", a))
	}
}

func lowerSides(lhs, rhs ast.Term) *Expr {
	e := LowerTerm(lhs)
	e.AddScaled(LowerTerm(rhs), big.NewRat(-1, 1))
	return e
}

// Term converts an expression back to a surface term: a right-nested sum of
// monomials in variable order with the constant last. The zero expression
// becomes the literal 0.
func (e *Expr) Term() ast.Term {
	var parts []ast.Term
	for _, v := range e.Vars() {
		parts = append(parts, ast.ScalarVar{Coeff: new(big.Rat).Set(e.Coeff(v)), Var: ast.NumVar(v)})
	}
	if e.konst.Sign() != 0 || len(parts) == 0 {
		parts = append(parts, ast.Num{Val: new(big.Rat).Set(e.konst)})
	}
	return ast.Sum(parts...)
}

// Atom converts a relation back to a surface atom `e kind 0`.
func (r *Rel) Atom() ast.Atom {
	zero := ast.Num{Val: new(big.Rat)}
	switch r.Kind {
	case RelEq:
		return ast.Eq{Lhs: r.Expr.Term(), Rhs: zero}
	case RelLe:
		return ast.LessEq{Lhs: r.Expr.Term(), Rhs: zero}
	case RelLt:
		return ast.Less{Lhs: r.Expr.Term(), Rhs: zero}
	default:
		panic(fmt.Sprintf("linear: unknown relation kind %d", r.Kind))
	}
}
