package qe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithlab/presburger/ast"
	"github.com/arithlab/presburger/internal/solver"
)

func TestDNF(t *testing.T) {
	t.Parallel()
	p, q, r, s := ast.PropF("P"), ast.PropF("Q"), ast.PropF("R"), ast.PropF("S")

	tests := []struct {
		name string
		in   ast.Formula
		want [][]ast.Formula
	}{
		{"literal", p, [][]ast.Formula{{p}}},
		{
			"negated literal",
			ast.Not{Operand: p},
			[][]ast.Formula{{ast.Not{Operand: p}}},
		},
		{
			"disjunction concatenates",
			ast.Or{Left: p, Right: q},
			[][]ast.Formula{{p}, {q}},
		},
		{
			"conjunction of literals",
			ast.And{Left: p, Right: q},
			[][]ast.Formula{{p, q}},
		},
		{
			"and distributes over or",
			ast.And{Left: ast.Or{Left: p, Right: q}, Right: ast.Or{Left: r, Right: s}},
			[][]ast.Formula{{p, r}, {p, s}, {q, r}, {q, s}},
		},
		{
			"nested",
			ast.Or{Left: ast.And{Left: p, Right: ast.Or{Left: q, Right: r}}, Right: s},
			[][]ast.Formula{{p, q}, {p, r}, {s}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dnf(tt.in, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDNFBudget(t *testing.T) {
	t.Parallel()
	p, q, r, s := ast.PropF("P"), ast.PropF("Q"), ast.PropF("R"), ast.PropF("S")

	// Four product conjuncts against a budget of three.
	f := ast.And{Left: ast.Or{Left: p, Right: q}, Right: ast.Or{Left: r, Right: s}}
	_, err := dnf(f, solver.NewBudget(3, 0))
	var budgetErr *solver.BudgetError
	require.ErrorAs(t, err, &budgetErr)
}

func TestDNFPanicsOutsideNNF(t *testing.T) {
	t.Parallel()
	p, q := ast.PropF("P"), ast.PropF("Q")

	assert.Panics(t, func() { dnf(ast.Implies{Left: p, Right: q}, nil) })
	assert.Panics(t, func() { dnf(ast.Not{Operand: ast.And{Left: p, Right: q}}, nil) })
}
