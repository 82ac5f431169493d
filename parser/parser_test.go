package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithlab/presburger/ast"
)

func TestParseTerm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  ast.Term
	}{
		{"integer", "42", ast.NumT(ast.Int(42))},
		{"negative rational", "-7/2", ast.NumT(ast.Rat(-7, 2))},
		{"variable", "x", ast.VarT("x")},
		{"monomial", "3 * x", ast.Scaled(ast.Int(3), "x")},
		{"rational coefficient", "1/3 * x", ast.Scaled(ast.Rat(1, 3), "x")},
		{"parenthesized coefficient", "(1/3) * x", ast.Scaled(ast.Rat(1, 3), "x")},
		{"parenthesized variable", "((x))", ast.VarT("x")},
		{"parenthesized literal", "(3)", ast.NumT(ast.Int(3))},
		{
			"sum is right-nested",
			"2 * x + y + 1",
			ast.Add{Left: ast.Scaled(ast.Int(2), "x"), Right: ast.Add{Left: ast.VarT("y"), Right: ast.NumT(ast.Int(1))}},
		},
		{"unnormalized rational", "2/4", ast.NumT(ast.Rat(1, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTerm(tt.input)
			require.NoError(t, err)
			assert.True(t, ast.EqualTerm(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseTermErrors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"",
		"x +",
		"3 *",
		"3 * 4",    // coefficient must multiply a variable
		"1/0",      // zero denominator
		"(x + y)",  // parenthesized sums are not in the grammar
		"x * 3",    // coefficient comes first
		"exists",   // keyword
		"3 x",      // missing operator
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTerm(input)
			assert.Error(t, err)
		})
	}
}

func TestParseAtom(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  ast.Atom
	}{
		{"truth", "@T", ast.Truth{Val: true}},
		{"falsity", "@F", ast.Truth{Val: false}},
		{"proposition", "PQ", ast.Prop{Var: ast.PropVar("PQ")}},
		{"equality", "x = 3", ast.Eq{Lhs: ast.VarT("x"), Rhs: ast.NumT(ast.Int(3))}},
		{
			"less-equal",
			"2 * x + 1 <= y",
			ast.LessEq{
				Lhs: ast.Add{Left: ast.Scaled(ast.Int(2), "x"), Right: ast.NumT(ast.Int(1))},
				Rhs: ast.VarT("y"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAtom(tt.input)
			require.NoError(t, err)
			assert.True(t, ast.EqualAtom(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}

	// '<' alone is not a surface relation.
	_, err := ParseAtom("x < y")
	assert.Error(t, err)
}

func TestParseFormula(t *testing.T) {
	t.Parallel()
	x, y := ast.VarT("x"), ast.VarT("y")
	leq := func(l, r ast.Term) ast.Formula { return ast.Atomic{Atom: ast.LessEq{Lhs: l, Rhs: r}} }
	eq := func(l, r ast.Term) ast.Formula { return ast.Atomic{Atom: ast.Eq{Lhs: l, Rhs: r}} }

	tests := []struct {
		name  string
		input string
		want  ast.Formula
	}{
		{
			"and binds tighter than or",
			`P /\ Q \/ R`,
			ast.Or{Left: ast.And{Left: ast.PropF("P"), Right: ast.PropF("Q")}, Right: ast.PropF("R")},
		},
		{
			"or in right operand",
			`P \/ Q /\ R`,
			ast.Or{Left: ast.PropF("P"), Right: ast.And{Left: ast.PropF("Q"), Right: ast.PropF("R")}},
		},
		{
			"implication is right-associative",
			"P ==> Q ==> R",
			ast.Implies{Left: ast.PropF("P"), Right: ast.Implies{Left: ast.PropF("Q"), Right: ast.PropF("R")}},
		},
		{
			"iff loosest",
			`P <=> Q ==> R`,
			ast.Iff{Left: ast.PropF("P"), Right: ast.Implies{Left: ast.PropF("Q"), Right: ast.PropF("R")}},
		},
		{
			"negation binds tightest",
			`~P /\ Q`,
			ast.And{Left: ast.Not{Operand: ast.PropF("P")}, Right: ast.PropF("Q")},
		},
		{
			"double negation",
			"~~@T",
			ast.Not{Operand: ast.Not{Operand: ast.TruthF(true)}},
		},
		{
			"quantifier extends right",
			`exists x . x <= y /\ P`,
			ast.Exists{Bound: ast.NumVar("x"), Body: ast.And{Left: leq(x, y), Right: ast.PropF("P")}},
		},
		{
			"quantifier in implication tail",
			"x = 1 ==> exists y . x <= y",
			ast.Implies{Left: eq(x, ast.NumT(ast.Int(1))), Right: ast.Exists{Bound: ast.NumVar("y"), Body: leq(x, y)}},
		},
		{
			"parenthesized quantifier scopes narrowly",
			`(exists x . x <= y) /\ x = 1`,
			ast.And{
				Left:  ast.Exists{Bound: ast.NumVar("x"), Body: leq(x, y)},
				Right: eq(x, ast.NumT(ast.Int(1))),
			},
		},
		{
			"nested quantifiers",
			"forall x . exists y . x + 1 <= y",
			ast.Forall{
				Bound: ast.NumVar("x"),
				Body: ast.Exists{
					Bound: ast.NumVar("y"),
					Body:  leq(ast.Add{Left: x, Right: ast.NumT(ast.Int(1))}, y),
				},
			},
		},
		{
			"parenthesized relation",
			"(x + 1 <= y)",
			leq(ast.Add{Left: x, Right: ast.NumT(ast.Int(1))}, y),
		},
		{
			"deeply parenthesized formula",
			"((P))",
			ast.PropF("P"),
		},
		{
			"parenthesized coefficient in relation",
			"(1/2) * x <= y",
			leq(ast.Scaled(ast.Rat(1, 2), "x"), y),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, ast.Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"",
		"P /\\",
		"(P",
		"P)",
		"exists . @T",
		"exists forall . @T", // keyword as bound variable
		"exists x @T",        // missing dot
		"exists X . @T",      // uppercase cannot be bound
		"x <= y z",           // trailing garbage
	} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsRebinding(t *testing.T) {
	t.Parallel()

	_, err := Parse("exists x . forall x . x <= 0")
	var wfErr *ast.WellFormedError
	require.ErrorAs(t, err, &wfErr)
	assert.Equal(t, "x", wfErr.Var.Name)

	// Sibling scopes may reuse the name.
	_, err = Parse(`(exists x . x <= 0) /\ (exists x . 0 <= x)`)
	assert.NoError(t, err)
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"@T",
		"2 * x + -1/2 <= y",
		`forall x . exists y . (x <= y /\ ~(y = x)) ==> P`,
		`P <=> Q \/ ~R`,
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			f, err := Parse(input)
			require.NoError(t, err)
			again, err := Parse(f.String())
			require.NoError(t, err)
			assert.True(t, ast.Equal(f, again), "%s reparsed as %s", f, again)
		})
	}
}
