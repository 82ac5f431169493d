// Package solver implements variable elimination over conjunctions of
// canonical linear relations: Fourier-Motzkin elimination over the
// rationals and the Omega Test over the integers.
package solver

import (
	"fmt"
	"sync/atomic"
)

// BudgetError reports that an elimination exceeded its resource budget. It
// is recoverable: the caller may retry with a larger budget.
type BudgetError struct {
	Resource string
	Limit    int64
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("elimination budget exceeded: more than %d %s", e.Limit, e.Resource)
}

// Budget bounds the work a single decision is allowed to perform. Relations
// charges accrue per derived relation, step charges per case-split branch
// and per equality-reduction step. A Budget is shared across the concurrent
// disjunct fan-out, so the counters are atomic.
type Budget struct {
	maxRels  int64
	maxSteps int64
	rels     atomic.Int64
	steps    atomic.Int64
}

// NewBudget creates a budget with the given ceilings. Non-positive ceilings
// mean unlimited.
func NewBudget(maxRels, maxSteps int64) *Budget {
	return &Budget{maxRels: maxRels, maxSteps: maxSteps}
}

// ChargeRels records n derived relations.
func (b *Budget) ChargeRels(n int) error {
	if b == nil || b.maxRels <= 0 {
		return nil
	}
	if b.rels.Add(int64(n)) > b.maxRels {
		return &BudgetError{Resource: "derived relations", Limit: b.maxRels}
	}
	return nil
}

// ChargeStep records one case-split branch or equality-reduction step.
func (b *Budget) ChargeStep() error {
	if b == nil || b.maxSteps <= 0 {
		return nil
	}
	if b.steps.Add(1) > b.maxSteps {
		return &BudgetError{Resource: "elimination steps", Limit: b.maxSteps}
	}
	return nil
}
