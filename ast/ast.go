// Package ast defines the abstract syntax of Presburger formulas:
// first-order formulas over linear terms with exact rational coefficients,
// the relations = and <=, the usual propositional connectives, and
// quantifiers over numeric variables.
//
// Values are immutable once built. Every pipeline stage consumes a Formula
// and produces a new one, so subtrees may be shared freely.
package ast

import (
	"math/big"
	"strings"
)

// Domain selects the arithmetic the decision procedure works over.
type Domain int

const (
	// Rational interprets numeric variables over the rationals.
	Rational Domain = iota
	// Integer interprets numeric variables over the integers.
	Integer
)

func (d Domain) String() string {
	switch d {
	case Rational:
		return "rational"
	case Integer:
		return "integer"
	default:
		return "?"
	}
}

// VarKind distinguishes numeric variables (quantifiable) from
// propositional ones (never bound).
type VarKind int

const (
	Numeric VarKind = iota
	Propositional
)

// Var is a named variable. Numeric variables are lowercase identifiers,
// propositional variables uppercase; the parser enforces this.
type Var struct {
	Name string
	Kind VarKind
}

// NumVar creates a numeric variable.
func NumVar(name string) Var {
	return Var{Name: name, Kind: Numeric}
}

// PropVar creates a propositional variable.
func PropVar(name string) Var {
	return Var{Name: name, Kind: Propositional}
}

func (v Var) String() string { return v.Name }

// Term is a linear expression over numeric variables in surface form,
// as produced by the parser: literals, scaled variables, and sums.
type Term interface {
	isTerm()
	String() string
}

// Num is an exact rational literal. The value is always in lowest terms
// with the sign on the numerator (big.Rat maintains this).
type Num struct {
	Val *big.Rat
}

// ScalarVar is a monomial: a rational coefficient times a numeric variable.
type ScalarVar struct {
	Coeff *big.Rat
	Var   Var
}

// Add is the sum of two terms. The parser produces right-nested sums.
type Add struct {
	Left, Right Term
}

func (Num) isTerm()       {}
func (ScalarVar) isTerm() {}
func (Add) isTerm()       {}

func (t Num) String() string { return t.Val.RatString() }

func (t ScalarVar) String() string {
	one := big.NewRat(1, 1)
	if t.Coeff.Cmp(one) == 0 {
		return t.Var.Name
	}
	return t.Coeff.RatString() + " * " + t.Var.Name
}

func (t Add) String() string {
	// Sums print without parentheses: + is the only term operator and the
	// grammar does not accept parenthesized sums.
	return t.Left.String() + " + " + t.Right.String()
}

// Atom is an atomic predicate with respect to the logical connectives.
type Atom interface {
	isAtom()
	String() string
}

// Truth is a boolean literal, written @T or @F.
type Truth struct {
	Val bool
}

// Prop is a propositional variable used as an atom.
type Prop struct {
	Var Var
}

// Eq is the relation Lhs = Rhs.
type Eq struct {
	Lhs, Rhs Term
}

// LessEq is the relation Lhs <= Rhs.
type LessEq struct {
	Lhs, Rhs Term
}

// Less is the strict relation Lhs < Rhs. It is internal to the decision
// procedure: negation normal form over the rationals introduces it, and the
// parser never produces it.
type Less struct {
	Lhs, Rhs Term
}

func (Truth) isAtom()  {}
func (Prop) isAtom()   {}
func (Eq) isAtom()     {}
func (LessEq) isAtom() {}
func (Less) isAtom()   {}

func (a Truth) String() string {
	if a.Val {
		return "@T"
	}
	return "@F"
}

func (a Prop) String() string   { return a.Var.Name }
func (a Eq) String() string     { return a.Lhs.String() + " = " + a.Rhs.String() }
func (a LessEq) String() string { return a.Lhs.String() + " <= " + a.Rhs.String() }
func (a Less) String() string   { return a.Lhs.String() + " < " + a.Rhs.String() }

// Formula is a first-order Presburger formula.
type Formula interface {
	isFormula()
	String() string
}

// Atomic wraps an Atom as a Formula.
type Atomic struct {
	Atom Atom
}

// Not is negation.
type Not struct {
	Operand Formula
}

// And is conjunction.
type And struct {
	Left, Right Formula
}

// Or is inclusive disjunction.
type Or struct {
	Left, Right Formula
}

// Implies is implication, Left ==> Right.
type Implies struct {
	Left, Right Formula
}

// Iff is bi-implication, Left <=> Right.
type Iff struct {
	Left, Right Formula
}

// Exists binds a numeric variable existentially over Body.
type Exists struct {
	Bound Var
	Body  Formula
}

// Forall binds a numeric variable universally over Body.
type Forall struct {
	Bound Var
	Body  Formula
}

func (Atomic) isFormula()  {}
func (Not) isFormula()     {}
func (And) isFormula()     {}
func (Or) isFormula()      {}
func (Implies) isFormula() {}
func (Iff) isFormula()     {}
func (Exists) isFormula()  {}
func (Forall) isFormula()  {}

func (f Atomic) String() string  { return f.Atom.String() }
func (f Not) String() string     { return "~" + f.Operand.String() }
func (f And) String() string     { return "(" + f.Left.String() + " /\\ " + f.Right.String() + ")" }
func (f Or) String() string      { return "(" + f.Left.String() + " \\/ " + f.Right.String() + ")" }
func (f Implies) String() string { return "(" + f.Left.String() + " ==> " + f.Right.String() + ")" }
func (f Iff) String() string     { return "(" + f.Left.String() + " <=> " + f.Right.String() + ")" }
func (f Exists) String() string {
	return "(exists " + f.Bound.Name + " . " + f.Body.String() + ")"
}
func (f Forall) String() string {
	return "(forall " + f.Bound.Name + " . " + f.Body.String() + ")"
}

// Helper constructors.

// Rat builds an exact rational from a numerator and denominator.
func Rat(num, den int64) *big.Rat { return big.NewRat(num, den) }

// Int builds an exact integer-valued rational.
func Int(v int64) *big.Rat { return big.NewRat(v, 1) }

// NumT creates a literal term.
func NumT(v *big.Rat) Term { return Num{Val: v} }

// VarT creates the term 1 * x.
func VarT(name string) Term {
	return ScalarVar{Coeff: big.NewRat(1, 1), Var: NumVar(name)}
}

// Scaled creates the monomial c * x.
func Scaled(c *big.Rat, name string) Term {
	return ScalarVar{Coeff: c, Var: NumVar(name)}
}

// Sum folds terms into a right-nested sum, matching the parser's shape.
func Sum(ts ...Term) Term {
	if len(ts) == 0 {
		return Num{Val: new(big.Rat)}
	}
	result := ts[len(ts)-1]
	for i := len(ts) - 2; i >= 0; i-- {
		result = Add{Left: ts[i], Right: result}
	}
	return result
}

// TruthF creates a boolean literal formula.
func TruthF(v bool) Formula { return Atomic{Atom: Truth{Val: v}} }

// PropF creates a propositional variable formula.
func PropF(name string) Formula { return Atomic{Atom: Prop{Var: PropVar(name)}} }

// Conj folds formulas into a right-nested conjunction. An empty conjunction
// is true.
func Conj(fs ...Formula) Formula {
	if len(fs) == 0 {
		return TruthF(true)
	}
	result := fs[len(fs)-1]
	for i := len(fs) - 2; i >= 0; i-- {
		result = And{Left: fs[i], Right: result}
	}
	return result
}

// Disj folds formulas into a right-nested disjunction. An empty disjunction
// is false.
func Disj(fs ...Formula) Formula {
	if len(fs) == 0 {
		return TruthF(false)
	}
	result := fs[len(fs)-1]
	for i := len(fs) - 2; i >= 0; i-- {
		result = Or{Left: fs[i], Right: result}
	}
	return result
}

// Equal reports structural equality of two formulas.
func Equal(p, q Formula) bool {
	switch a := p.(type) {
	case Atomic:
		b, ok := q.(Atomic)
		return ok && EqualAtom(a.Atom, b.Atom)
	case Not:
		b, ok := q.(Not)
		return ok && Equal(a.Operand, b.Operand)
	case And:
		b, ok := q.(And)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Or:
		b, ok := q.(Or)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Implies:
		b, ok := q.(Implies)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Iff:
		b, ok := q.(Iff)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	case Exists:
		b, ok := q.(Exists)
		return ok && a.Bound == b.Bound && Equal(a.Body, b.Body)
	case Forall:
		b, ok := q.(Forall)
		return ok && a.Bound == b.Bound && Equal(a.Body, b.Body)
	default:
		return false
	}
}

// EqualAtom reports structural equality of two atoms.
func EqualAtom(p, q Atom) bool {
	switch a := p.(type) {
	case Truth:
		b, ok := q.(Truth)
		return ok && a.Val == b.Val
	case Prop:
		b, ok := q.(Prop)
		return ok && a.Var == b.Var
	case Eq:
		b, ok := q.(Eq)
		return ok && EqualTerm(a.Lhs, b.Lhs) && EqualTerm(a.Rhs, b.Rhs)
	case LessEq:
		b, ok := q.(LessEq)
		return ok && EqualTerm(a.Lhs, b.Lhs) && EqualTerm(a.Rhs, b.Rhs)
	case Less:
		b, ok := q.(Less)
		return ok && EqualTerm(a.Lhs, b.Lhs) && EqualTerm(a.Rhs, b.Rhs)
	default:
		return false
	}
}

// EqualTerm reports structural equality of two terms.
func EqualTerm(s, t Term) bool {
	switch a := s.(type) {
	case Num:
		b, ok := t.(Num)
		return ok && a.Val.Cmp(b.Val) == 0
	case ScalarVar:
		b, ok := t.(ScalarVar)
		return ok && a.Var == b.Var && a.Coeff.Cmp(b.Coeff) == 0
	case Add:
		b, ok := t.(Add)
		return ok && EqualTerm(a.Left, b.Left) && EqualTerm(a.Right, b.Right)
	default:
		return false
	}
}

// sortVars returns variable names in lexicographic order.
func sortVars(set map[Var]bool) []Var {
	vars := make([]Var, 0, len(set))
	for v := range set {
		vars = append(vars, v)
	}
	for i := 1; i < len(vars); i++ {
		for j := i; j > 0 && strings.Compare(vars[j].Name, vars[j-1].Name) < 0; j-- {
			vars[j], vars[j-1] = vars[j-1], vars[j]
		}
	}
	return vars
}
