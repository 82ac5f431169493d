package ast

import (
	"fmt"
	"math/big"
)

// ToNNF rewrites f into negation normal form: implication and bi-implication
// are removed, negation is pushed down to atom level through De Morgan's laws
// and the quantifier dualities, and negated relational atoms are rewritten
// into positive relations.
//
// The rewrite of a negated relation depends on the domain. Over the
// rationals, ~(s <= t) becomes the internal strict relation t < s. Over the
// integers, it becomes t + 1 <= s, which keeps the constraint language to
// = and <= alone.
//
// ToNNF is idempotent and preserves the truth value of f under every
// variable assignment. The only negations in the result sit directly on
// propositional atoms.
func ToNNF(f Formula, d Domain) Formula {
	switch p := f.(type) {
	case Atomic:
		return p
	case Not:
		return nnfNot(p.Operand, d)
	case And:
		return And{Left: ToNNF(p.Left, d), Right: ToNNF(p.Right, d)}
	case Or:
		return Or{Left: ToNNF(p.Left, d), Right: ToNNF(p.Right, d)}
	case Implies:
		// p ==> q  ~~>  ~p \/ q
		return Or{Left: nnfNot(p.Left, d), Right: ToNNF(p.Right, d)}
	case Iff:
		// p <=> q  ~~>  (p /\ q) \/ (~p /\ ~q)
		return Or{
			Left:  And{Left: ToNNF(p.Left, d), Right: ToNNF(p.Right, d)},
			Right: And{Left: nnfNot(p.Left, d), Right: nnfNot(p.Right, d)},
		}
	case Exists:
		return Exists{Bound: p.Bound, Body: ToNNF(p.Body, d)}
	case Forall:
		return Forall{Bound: p.Bound, Body: ToNNF(p.Body, d)}
	default:
		panic(fmt.Sprintf("ast: unexpected formula node %T", f))
	}
}

// nnfNot computes the NNF of ~f.
func nnfNot(f Formula, d Domain) Formula {
	switch p := f.(type) {
	case Atomic:
		return negateAtom(p.Atom, d)
	case Not:
		// ~~p
		return ToNNF(p.Operand, d)
	case And:
		return Or{Left: nnfNot(p.Left, d), Right: nnfNot(p.Right, d)}
	case Or:
		return And{Left: nnfNot(p.Left, d), Right: nnfNot(p.Right, d)}
	case Implies:
		// ~(p ==> q)  ~~>  p /\ ~q
		return And{Left: ToNNF(p.Left, d), Right: nnfNot(p.Right, d)}
	case Iff:
		// ~(p <=> q)  ~~>  (p /\ ~q) \/ (~p /\ q)
		return Or{
			Left:  And{Left: ToNNF(p.Left, d), Right: nnfNot(p.Right, d)},
			Right: And{Left: nnfNot(p.Left, d), Right: ToNNF(p.Right, d)},
		}
	case Exists:
		return Forall{Bound: p.Bound, Body: nnfNot(p.Body, d)}
	case Forall:
		return Exists{Bound: p.Bound, Body: nnfNot(p.Body, d)}
	default:
		panic(fmt.Sprintf("ast: unexpected formula node %T", f))
	}
}

func negateAtom(a Atom, d Domain) Formula {
	switch at := a.(type) {
	case Truth:
		return Atomic{Atom: Truth{Val: !at.Val}}
	case Prop:
		// Propositional atoms are opaque: the negation stays on the atom.
		return Not{Operand: Atomic{Atom: at}}
	case LessEq:
		// ~(s <= t)  ~~>  t < s
		return Atomic{Atom: strictLess(at.Rhs, at.Lhs, d)}
	case Less:
		// ~(s < t)  ~~>  t <= s
		return Atomic{Atom: LessEq{Lhs: at.Rhs, Rhs: at.Lhs}}
	case Eq:
		// ~(s = t)  ~~>  s < t \/ t < s
		return Or{
			Left:  Atomic{Atom: strictLess(at.Lhs, at.Rhs, d)},
			Right: Atomic{Atom: strictLess(at.Rhs, at.Lhs, d)},
		}
	default:
		panic(fmt.Sprintf("ast: unexpected atom %T", a))
	}
}

// strictLess builds the atom for s < t. Over the integers this is expressed
// as s + 1 <= t; over the rationals as the internal strict relation.
func strictLess(s, t Term, d Domain) Atom {
	if d == Integer {
		return LessEq{Lhs: Add{Left: s, Right: Num{Val: big.NewRat(1, 1)}}, Rhs: t}
	}
	return Less{Lhs: s, Rhs: t}
}
