package presburger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithlab/presburger/ast"
)

func TestDecideClosedFormulas(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		domain ast.Domain
		input  string
		want   bool
	}{
		{"bounded window", ast.Integer, `exists x . x <= 5 /\ 3 <= x`, true},
		{"successor monotone", ast.Integer, "forall x . 0 <= x ==> 0 <= x + 1", true},
		{"point window", ast.Integer, `exists x . 2 <= x /\ x <= 2`, true},
		{"unit open interval integer", ast.Integer, `exists x . ~(2 * x <= 2) /\ ~(3 <= 2 * x)`, false},
		{"unit open interval rational", ast.Rational, `exists x . ~(2 * x <= 2) /\ ~(3 <= 2 * x)`, true},
		{"alternating quantifiers", ast.Rational, "forall x . exists y . x + 1 <= y", true},
		{"biconditional", ast.Integer, `(exists x . x = 1) <=> (forall y . y <= y)`, true},
		{"equality chain", ast.Rational, `exists x . exists y . x = y + 1 /\ y = 3 /\ x = 4`, true},
		{"inconsistent equality chain", ast.Rational, `exists x . exists y . x = y + 1 /\ y = 3 /\ x = 5`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecideString(context.Background(), tt.input, tt.domain)
			require.NoError(t, err)
			require.True(t, res.Decided, "expected a verdict, got %s", res.Formula)
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestDecideContradictionWithFreeProposition(t *testing.T) {
	t.Parallel()

	// A /\ ~A is false under every assignment, but with A free no
	// constant-folding step may collapse the atoms; the reduced formula
	// keeps its shape.
	res, err := DecideString(context.Background(), `A /\ ~A`, ast.Integer)
	require.NoError(t, err)
	assert.False(t, res.Decided)

	want := ast.And{Left: ast.PropF("A"), Right: ast.Not{Operand: ast.PropF("A")}}
	assert.True(t, ast.Equal(want, res.Formula), "got %s", res.Formula)

	for _, a := range []bool{false, true} {
		v, err := ast.Eval(res.Formula, ast.NewAssignment().SetProp("A", a))
		require.NoError(t, err)
		assert.False(t, v)
	}
}

func TestDecideBoundChainResidue(t *testing.T) {
	t.Parallel()

	// Scenario: the chain x <= y <= 10 collapses to x <= 10 and the
	// y <= x + 2 bound drops as redundant.
	res, err := DecideString(context.Background(),
		`exists y . x <= y /\ y <= x + 2 /\ y <= 10`, ast.Rational)
	require.NoError(t, err)
	require.False(t, res.Decided)

	want := ast.Atomic{Atom: ast.LessEq{
		Lhs: ast.Sum(ast.VarT("x"), ast.NumT(ast.Int(-10))),
		Rhs: ast.NumT(ast.Int(0)),
	}}
	assert.True(t, ast.Equal(want, res.Formula), "got %s", res.Formula)
}

func TestDecideResidueAgreesWithEval(t *testing.T) {
	t.Parallel()

	input := `exists x . a <= x /\ x <= b`
	res, err := DecideString(context.Background(), input, ast.Rational)
	require.NoError(t, err)
	require.False(t, res.Decided)

	// The residue must hold exactly when some rational x fits between a
	// and b, which is a <= b.
	cases := []struct {
		a, b int64
		want bool
	}{
		{0, 0, true},
		{0, 3, true},
		{3, 0, false},
	}
	for _, c := range cases {
		env := ast.NewAssignment().SetInt("a", c.a).SetInt("b", c.b)
		got, err := ast.Eval(res.Formula, env)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "a=%d b=%d", c.a, c.b)
	}
}

func TestDecideBudgetExhaustion(t *testing.T) {
	t.Parallel()

	input := `exists x . (y <= x /\ z <= x) /\ (x <= w /\ x <= u)`
	_, err := DecideString(context.Background(), input, ast.Integer, WithBudget(2, 0))
	var budgetErr *BudgetError
	require.ErrorAs(t, err, &budgetErr)

	// An ample budget lets the same elimination finish.
	res, err := DecideString(context.Background(), input, ast.Integer,
		WithBudget(10000, 1000))
	require.NoError(t, err)
	assert.False(t, res.Decided)
}

func TestDecideIncompleteDivisibility(t *testing.T) {
	t.Parallel()

	// "x is even" has no quantifier-free form over the integers in this
	// language, so the elimination reports the formula undecided.
	_, err := DecideString(context.Background(), "exists y . 2 * y = x", ast.Integer)
	var incErr *IncompleteError
	require.ErrorAs(t, err, &incErr)
	assert.Equal(t, "y", incErr.Var)

	// Over the rationals the same formula decides immediately.
	res, err := DecideString(context.Background(), "exists y . 2 * y = x", ast.Rational)
	require.NoError(t, err)
	require.True(t, res.Decided)
	assert.True(t, res.Value)
}

func TestDecideEqualityChain(t *testing.T) {
	t.Parallel()

	// x = 2y pins y through x alone; the x = 4 conjunct grounds the chain
	// and the whole formula decides.
	res, err := DecideString(context.Background(),
		`exists x . exists y . x = 2 * y /\ x = 4`, ast.Integer)
	require.NoError(t, err)
	require.True(t, res.Decided)
	assert.True(t, res.Value)

	res, err = DecideString(context.Background(),
		`exists x . exists y . x = 2 * y /\ x = 5`, ast.Integer)
	require.NoError(t, err)
	require.True(t, res.Decided)
	assert.False(t, res.Value)

	res, err = DecideString(context.Background(),
		`exists x . exists y . x = 2 * y /\ x = 5`, ast.Rational)
	require.NoError(t, err)
	require.True(t, res.Decided)
	assert.True(t, res.Value)
}

func TestDecideRejectsIllFormed(t *testing.T) {
	t.Parallel()

	f := ast.Exists{
		Bound: ast.NumVar("x"),
		Body: ast.Forall{
			Bound: ast.NumVar("x"),
			Body:  ast.TruthF(true),
		},
	}
	_, err := Decide(context.Background(), f, ast.Integer)
	var wfErr *ast.WellFormedError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "x", wfErr.Var.Name)
}

func TestDecideStringParseError(t *testing.T) {
	t.Parallel()

	_, err := DecideString(context.Background(), "exists x .", ast.Integer)
	assert.Error(t, err)
}

func TestDecideWithOptions(t *testing.T) {
	t.Parallel()

	res, err := DecideString(context.Background(),
		`forall x . exists y . (x <= y \/ y <= x) /\ x + -1 <= y`,
		ast.Integer, WithWorkers(4), WithBudget(10000, 1000))
	require.NoError(t, err)
	require.True(t, res.Decided)
	assert.True(t, res.Value)
}
