// Package presburger decides formulas of Presburger arithmetic, linear
// arithmetic with quantifiers over the rationals or the integers, by
// quantifier elimination: Fourier-Motzkin over the rationals and the Omega
// Test over the integers.
package presburger

import (
	"context"

	"go.uber.org/zap"

	"github.com/arithlab/presburger/ast"
	"github.com/arithlab/presburger/internal/qe"
	"github.com/arithlab/presburger/internal/solver"
	"github.com/arithlab/presburger/parser"
)

// BudgetError reports that elimination gave up because a work limit was
// reached. It carries which resource ran out; the formula is not decided.
type BudgetError = solver.BudgetError

// IncompleteError reports that an integer elimination needed a
// divisibility constraint on the remaining free variables, which the
// quantifier-free output language cannot express. Deciding the same
// formula over Rational never produces it.
type IncompleteError = solver.IncompleteError

// Result is the outcome of deciding a formula.
type Result struct {
	// Decided reports that elimination reduced the formula to a constant.
	// Formulas with free variables reduce to a quantifier-free residue
	// instead, carried in Formula.
	Decided bool
	// Value is the truth value when Decided.
	Value bool
	// Formula is the quantifier-free equivalent of the input.
	Formula ast.Formula
}

type config struct {
	budget  *solver.Budget
	workers int
	logger  *zap.Logger
}

// Option configures Decide.
type Option func(*config)

// WithBudget bounds elimination work: maxRels limits derived relations,
// maxSteps limits case splits and equality reductions. Non-positive values
// mean unlimited. When a limit is hit, Decide returns a *BudgetError.
func WithBudget(maxRels, maxSteps int64) Option {
	return func(c *config) { c.budget = solver.NewBudget(maxRels, maxSteps) }
}

// WithWorkers sets how many case splits are solved concurrently.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithLogger enables debug logging of elimination progress.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Parse parses a formula from concrete syntax.
func Parse(input string) (ast.Formula, error) { return parser.Parse(input) }

// Decide eliminates every quantifier from f over the given domain. A closed
// formula decides to a truth value; a formula with free variables reduces
// to a quantifier-free equivalent in Result.Formula. Ill-formed formulas
// (propositional binding, re-binding) are rejected with an
// *ast.WellFormedError; integer eliminations that would need a
// divisibility constraint on free variables fail with an *IncompleteError.
func Decide(ctx context.Context, f ast.Formula, d ast.Domain, opts ...Option) (Result, error) {
	if err := ast.CheckWellFormed(f); err != nil {
		return Result{}, err
	}

	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	engine := qe.New(d,
		qe.WithBudget(cfg.budget),
		qe.WithWorkers(cfg.workers),
		qe.WithLogger(cfg.logger),
	)

	out, err := engine.Eliminate(ctx, f)
	if err != nil {
		return Result{}, err
	}

	res := Result{Formula: out}
	if a, ok := out.(ast.Atomic); ok {
		if t, ok := a.Atom.(ast.Truth); ok {
			res.Decided = true
			res.Value = t.Val
		}
	}
	return res, nil
}

// DecideString parses and decides in one step.
func DecideString(ctx context.Context, input string, d ast.Domain, opts ...Option) (Result, error) {
	f, err := Parse(input)
	if err != nil {
		return Result{}, err
	}
	return Decide(ctx, f, d, opts...)
}
