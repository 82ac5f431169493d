package qe

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arithlab/presburger/ast"
	"github.com/arithlab/presburger/internal/linear"
	"github.com/arithlab/presburger/internal/solver"
)

// Engine eliminates quantifiers from formulas over a fixed domain. It is
// safe for concurrent use.
type Engine struct {
	domain  ast.Domain
	budget  *solver.Budget
	workers int
	cache   *memo
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBudget bounds the work the solvers may perform. A nil budget means
// unlimited.
func WithBudget(b *solver.Budget) Option {
	return func(e *Engine) { e.budget = b }
}

// WithWorkers sets the number of disjuncts solved concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine for the given domain.
func New(d ast.Domain, opts ...Option) *Engine {
	e := &Engine{
		domain:  d,
		workers: 1,
		cache:   newMemo(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eliminate returns a quantifier-free formula equivalent to f over the
// engine's domain, with constant subformulas folded away. Quantifiers are
// resolved innermost first, so each elimination works on a quantifier-free
// body.
func (e *Engine) Eliminate(ctx context.Context, f ast.Formula) (ast.Formula, error) {
	out, err := e.eliminate(ctx, f)
	if err != nil {
		return nil, err
	}
	return ast.Fold(out), nil
}

func (e *Engine) eliminate(ctx context.Context, f ast.Formula) (ast.Formula, error) {
	switch p := f.(type) {
	case ast.Atomic:
		return p, nil
	case ast.Not:
		op, err := e.eliminate(ctx, p.Operand)
		if err != nil {
			return nil, err
		}
		return ast.Not{Operand: op}, nil
	case ast.And:
		l, r, err := e.eliminatePair(ctx, p.Left, p.Right)
		if err != nil {
			return nil, err
		}
		return ast.And{Left: l, Right: r}, nil
	case ast.Or:
		l, r, err := e.eliminatePair(ctx, p.Left, p.Right)
		if err != nil {
			return nil, err
		}
		return ast.Or{Left: l, Right: r}, nil
	case ast.Implies:
		l, r, err := e.eliminatePair(ctx, p.Left, p.Right)
		if err != nil {
			return nil, err
		}
		return ast.Implies{Left: l, Right: r}, nil
	case ast.Iff:
		l, r, err := e.eliminatePair(ctx, p.Left, p.Right)
		if err != nil {
			return nil, err
		}
		return ast.Iff{Left: l, Right: r}, nil
	case ast.Exists:
		body, err := e.eliminate(ctx, p.Body)
		if err != nil {
			return nil, err
		}
		return e.eliminateExists(ctx, p.Bound, body)
	case ast.Forall:
		// forall x. p  ==  ~exists x. ~p
		body, err := e.eliminate(ctx, p.Body)
		if err != nil {
			return nil, err
		}
		inner, err := e.eliminateExists(ctx, p.Bound, ast.Not{Operand: body})
		if err != nil {
			return nil, err
		}
		return ast.ToNNF(ast.Not{Operand: inner}, e.domain), nil
	default:
		panic(fmt.Sprintf("qe: unexpected formula node %T", f))
	}
}

func (e *Engine) eliminatePair(ctx context.Context, left, right ast.Formula) (ast.Formula, ast.Formula, error) {
	l, err := e.eliminate(ctx, left)
	if err != nil {
		return nil, nil, err
	}
	r, err := e.eliminate(ctx, right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// eliminateExists resolves `exists v. body` for a quantifier-free body: the
// body goes to negation normal form, is folded, distributed to disjunctive
// normal form, and each disjunct is handed to the domain solver. Disjuncts
// are independent, so they fan out across the worker pool.
func (e *Engine) eliminateExists(ctx context.Context, v ast.Var, body ast.Formula) (ast.Formula, error) {
	nnf := ast.Fold(ast.ToNNF(body, e.domain))
	if !ast.FreeVars(nnf)[v] {
		return nnf, nil
	}

	disjuncts, err := dnf(nnf, e.budget)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("eliminating quantifier",
		zap.String("var", v.Name),
		zap.String("domain", e.domain.String()),
		zap.Int("disjuncts", len(disjuncts)))

	results := make([]ast.Formula, len(disjuncts))
	errs := make([]error, len(disjuncts))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, conj := range disjuncts {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		default:
			sem <- struct{}{}
		}
		wg.Add(1)
		go func(i int, conj []ast.Formula) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = e.eliminateConjunct(v, conj)
		}(i, conj)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return ast.Fold(ast.Disj(results...)), nil
}

// eliminateConjunct removes v from a single conjunction of literals.
// Propositional literals cannot mention v and pass through; relational
// literals are lowered and solved. Solver results are memoized on the
// canonical system signature.
func (e *Engine) eliminateConjunct(v ast.Var, lits []ast.Formula) (ast.Formula, error) {
	var rels []*linear.Rel
	var opaque []ast.Formula
	for _, lit := range lits {
		switch p := lit.(type) {
		case ast.Atomic:
			switch at := p.Atom.(type) {
			case ast.Truth:
				if !at.Val {
					return ast.TruthF(false), nil
				}
			case ast.Prop:
				opaque = append(opaque, lit)
			default:
				rels = append(rels, linear.LowerAtom(at))
			}
		case ast.Not:
			opaque = append(opaque, lit)
		default:
			panic(fmt.Sprintf("qe: %T is not a literal", lit))
		}
	}

	key := e.domain.String() + "|" + v.Name + "|" + linear.SystemKey(rels)
	solved, ok := e.cache.get(key)
	if !ok {
		var err error
		solved, err = e.solve(rels, v.Name)
		if err != nil {
			return nil, err
		}
		e.cache.set(key, solved)
	}

	out := make([]ast.Formula, 0, len(opaque)+1)
	out = append(out, solved)
	out = append(out, opaque...)
	return ast.Fold(ast.Conj(out...)), nil
}

func (e *Engine) solve(rels []*linear.Rel, x string) (ast.Formula, error) {
	switch e.domain {
	case ast.Rational:
		out, unsat, err := solver.EliminateRational(rels, x, e.budget)
		if err != nil {
			return nil, err
		}
		if unsat {
			return ast.TruthF(false), nil
		}
		return relsFormula(out), nil
	case ast.Integer:
		systems, err := solver.EliminateInteger(rels, x, e.budget)
		if err != nil {
			return nil, err
		}
		branches := make([]ast.Formula, len(systems))
		for i, sys := range systems {
			if auxiliaries(sys) {
				return nil, &solver.IncompleteError{Var: x}
			}
			branches[i] = relsFormula(sys)
		}
		return ast.Disj(branches...), nil
	default:
		panic(fmt.Sprintf("qe: unknown domain %d", e.domain))
	}
}

// auxiliaries reports whether any relation mentions a solver-coined
// auxiliary variable, which marks a divisibility condition with no
// quantifier-free rendering.
func auxiliaries(sys []*linear.Rel) bool {
	for _, r := range sys {
		for _, v := range r.Expr.Vars() {
			if solver.Auxiliary(v) {
				return true
			}
		}
	}
	return false
}

// relsFormula renders a conjunction of relations back into formula syntax.
func relsFormula(rels []*linear.Rel) ast.Formula {
	fs := make([]ast.Formula, len(rels))
	for i, r := range rels {
		fs[i] = ast.Atomic{Atom: r.Atom()}
	}
	return ast.Conj(fs...)
}
