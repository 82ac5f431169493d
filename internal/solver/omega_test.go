package solver

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arithlab/presburger/internal/linear"
)

func TestIntNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		in    *linear.Rel
		want  *linear.Rel
		unsat bool
	}{
		{
			name: "tightens inequality constant",
			// 2x - 1 <= 0, so x <= 1/2, so x <= 0.
			in:   le(-1, map[string]int64{"x": 2}),
			want: le(0, map[string]int64{"x": 1}),
		},
		{
			name: "strict becomes slack",
			// 2x - 3 < 0, so 2x - 2 <= 0, so x <= 1.
			in:   lt(-3, map[string]int64{"x": 2}),
			want: le(-1, map[string]int64{"x": 1}),
		},
		{
			name: "clears denominators",
			// x/2 - 1/3 <= 0 scales to 3x - 2 <= 0, tightening to x <= 0.
			in: func() *linear.Rel {
				e := linear.NewExpr()
				e.SetCoeff("x", big.NewRat(1, 2))
				e.SetConst(big.NewRat(-1, 3))
				return linear.NewLe(e)
			}(),
			want: le(0, map[string]int64{"x": 1}),
		},
		{
			name: "divides equality by content",
			// 3x - 6y + 9 = 0 reduces to x - 2y + 3 = 0.
			in:   eq(9, map[string]int64{"x": 3, "y": -6}),
			want: eq(3, map[string]int64{"x": 1, "y": -2}),
		},
		{
			name: "equality divisibility failure",
			// 2x - 5 = 0 has no integer solution.
			in:    eq(-5, map[string]int64{"x": 2}),
			unsat: true,
		},
		{
			name: "ground passes through",
			in:   le(-1, nil),
			want: le(-1, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unsat := intNormalize(tt.in)
			if tt.unsat {
				assert.True(t, unsat)
				return
			}
			require.False(t, unsat)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.True(t, tt.want.Expr.Equal(got.Expr), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEliminateIntegerUnitEquality(t *testing.T) {
	t.Parallel()

	// x = 2y and x <= 5: eliminating x gives 2y <= 5, tightened to y <= 2.
	rels := []*linear.Rel{
		eq(0, map[string]int64{"x": 1, "y": -2}),
		le(-5, map[string]int64{"x": 1}),
	}
	systems, err := EliminateInteger(rels, "x", nil)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Len(t, systems[0], 1)
	assert.True(t, systems[0][0].Expr.Equal(expr(-2, map[string]int64{"y": 1})), "got %s", systems[0][0])
}

func TestEliminateIntegerEmptyGap(t *testing.T) {
	t.Parallel()

	// 2 < 2x and 2x < 3: rationally satisfiable, but no integer fits.
	rels := []*linear.Rel{
		lt(2, map[string]int64{"x": -2}),
		lt(-3, map[string]int64{"x": 2}),
	}
	systems, err := EliminateInteger(rels, "x", nil)
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func TestEliminateIntegerExactShadow(t *testing.T) {
	t.Parallel()

	// y <= x and x <= z with unit coefficients: the dark shadow y <= z is
	// exact.
	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 1, "x": -1}),
		le(0, map[string]int64{"x": 1, "z": -1}),
	}
	systems, err := EliminateInteger(rels, "x", nil)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Len(t, systems[0], 1)
	assert.True(t, systems[0][0].Expr.Equal(expr(0, map[string]int64{"y": 1, "z": -1})), "got %s", systems[0][0])
}

func TestEliminateIntegerUnboundedSide(t *testing.T) {
	t.Parallel()

	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 1, "x": -1}),
		le(-1, map[string]int64{"z": 1}),
	}
	systems, err := EliminateInteger(rels, "x", nil)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Len(t, systems[0], 1)
	assert.True(t, systems[0][0].Expr.Equal(expr(-1, map[string]int64{"z": 1})))
}

func TestEliminateIntegerGroundContradiction(t *testing.T) {
	t.Parallel()

	rels := []*linear.Rel{
		le(1, nil),
		le(0, map[string]int64{"x": 1}),
	}
	systems, err := EliminateInteger(rels, "x", nil)
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func TestEliminateIntegerSplinters(t *testing.T) {
	t.Parallel()

	// x - 1 <= 2y <= x with x free: for every integer x the floor of x/2
	// witnesses y, so no disjunct may be lost. The pair has coefficients
	// 2 and 2, forcing the splinter path; the union of the returned
	// systems must cover every x. Spot-check a few x values by
	// substituting them in.
	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 2, "x": -1}),
		le(-1, map[string]int64{"x": 1, "y": -2}),
	}
	systems, err := EliminateInteger(rels, "y", NewBudget(0, 1000))
	require.NoError(t, err)
	require.NotEmpty(t, systems)

	for _, sys := range systems {
		for _, r := range sys {
			for _, v := range r.Expr.Vars() {
				if !Auxiliary(v) {
					require.Equal(t, "x", v, "unexpected variable %s in %s", v, r)
				}
			}
		}
	}
	for _, xv := range []int64{-3, -2, -1, 0, 1, 2, 7} {
		covered := false
		for _, sys := range systems {
			if holdsAt(sys, map[string]int64{"x": xv}) {
				covered = true
				break
			}
		}
		assert.True(t, covered, "x = %d not covered", xv)
	}
}

func TestEliminateIntegerSplinterCoverage(t *testing.T) {
	t.Parallel()

	// y <= 5x and 2x <= z with mismatched coefficients: the dark shadow is
	// not exact, and the case split must reach offsets past what the upper
	// coefficient alone would suggest. Compare the returned disjunction
	// against a direct witness search on a grid.
	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 1, "x": -5}),
		le(0, map[string]int64{"x": 2, "z": -1}),
	}
	systems, err := EliminateInteger(rels, "x", NewBudget(0, 1000))
	require.NoError(t, err)
	require.NotEmpty(t, systems)

	for yv := int64(-8); yv <= 12; yv++ {
		for zv := int64(-6); zv <= 6; zv++ {
			want := false
			for xv := int64(-20); xv <= 20; xv++ {
				if yv <= 5*xv && 2*xv <= zv {
					want = true
					break
				}
			}
			got := false
			for _, sys := range systems {
				if holdsAt(sys, map[string]int64{"y": yv, "z": zv}) {
					got = true
					break
				}
			}
			assert.Equal(t, want, got, "y = %d, z = %d", yv, zv)
		}
	}
}

func TestEliminateIntegerEqualityChain(t *testing.T) {
	t.Parallel()

	// x = 2y pins y only through x, and x = 4 grounds it: the chain must
	// resolve by substitution against the x-free equality instead of
	// walking the y-equality forever.
	rels := []*linear.Rel{
		eq(0, map[string]int64{"x": 1, "y": -2}),
		eq(-4, map[string]int64{"x": 1}),
	}
	systems, err := EliminateInteger(rels, "y", NewBudget(0, 100))
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Len(t, systems[0], 1)
	assert.Equal(t, linear.RelEq, systems[0][0].Kind)
	assert.True(t, systems[0][0].Expr.Equal(expr(-4, map[string]int64{"x": 1})), "got %s", systems[0][0])

	// With x = 5 no integer y halves it.
	rels = []*linear.Rel{
		eq(0, map[string]int64{"x": 1, "y": -2}),
		eq(-5, map[string]int64{"x": 1}),
	}
	systems, err = EliminateInteger(rels, "y", NewBudget(0, 100))
	require.NoError(t, err)
	assert.Empty(t, systems)
}

func TestEliminateIntegerStrideEquality(t *testing.T) {
	t.Parallel()

	// 2y = x with x surviving: an integer y exists exactly for even x. The
	// divisibility surfaces as an equality on an auxiliary variable.
	rels := []*linear.Rel{
		eq(0, map[string]int64{"y": 2, "x": -1}),
	}
	systems, err := EliminateInteger(rels, "y", NewBudget(0, 100))
	require.NoError(t, err)
	require.Len(t, systems, 1)

	sawAux := false
	for _, r := range systems[0] {
		for _, v := range r.Expr.Vars() {
			if Auxiliary(v) {
				sawAux = true
			} else {
				assert.Equal(t, "x", v)
			}
		}
	}
	assert.True(t, sawAux)

	for xv := int64(-4); xv <= 4; xv++ {
		want := xv%2 == 0
		assert.Equal(t, want, holdsAt(systems[0], map[string]int64{"x": xv}), "x = %d", xv)
	}
}

func TestEliminateIntegerBudget(t *testing.T) {
	t.Parallel()

	// Two lower and two upper bounds derive four shadow relations.
	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 1, "x": -1}),
		le(0, map[string]int64{"z": 1, "x": -1}),
		le(0, map[string]int64{"x": 1, "w": -1}),
		le(0, map[string]int64{"x": 1, "u": -1}),
	}
	_, err := EliminateInteger(rels, "x", NewBudget(3, 0))
	var budgetErr *BudgetError
	require.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, "derived relations", budgetErr.Resource)
}

func TestEliminateIntegerStepBudget(t *testing.T) {
	t.Parallel()

	// The non-exact pair forces a case split, and each branch resolves its
	// pinned equality in a further step.
	rels := []*linear.Rel{
		le(0, map[string]int64{"y": 1, "x": -5}),
		le(0, map[string]int64{"x": 2, "z": -1}),
	}
	_, err := EliminateInteger(rels, "x", NewBudget(0, 1))
	var budgetErr *BudgetError
	require.ErrorAs(t, err, &budgetErr)
	assert.Equal(t, "elimination steps", budgetErr.Resource)
}

// holdsAt evaluates a conjunction at the assignment. Auxiliary variables
// are existential: a small scan stands in for the quantifier, wide enough
// for the moduli these tests produce.
func holdsAt(sys []*linear.Rel, assign map[string]int64) bool {
	var aux []string
	seen := make(map[string]bool)
	for _, r := range sys {
		for _, v := range r.Expr.Vars() {
			if Auxiliary(v) && !seen[v] {
				seen[v] = true
				aux = append(aux, v)
			}
		}
	}
	return scanAux(sys, assign, aux)
}

func scanAux(sys []*linear.Rel, assign map[string]int64, aux []string) bool {
	if len(aux) == 0 {
		for _, r := range sys {
			if !relHolds(r, assign) {
				return false
			}
		}
		return true
	}
	defer delete(assign, aux[0])
	for v := int64(-12); v <= 12; v++ {
		assign[aux[0]] = v
		if scanAux(sys, assign, aux[1:]) {
			return true
		}
	}
	return false
}

func relHolds(r *linear.Rel, assign map[string]int64) bool {
	sum := new(big.Rat).Set(r.Expr.Const())
	for _, v := range r.Expr.Vars() {
		val, ok := assign[v]
		if !ok {
			panic("solver test: unassigned variable " + v)
		}
		sum.Add(sum, new(big.Rat).Mul(r.Expr.Coeff(v), big.NewRat(val, 1)))
	}
	switch r.Kind {
	case linear.RelEq:
		return sum.Sign() == 0
	case linear.RelLe:
		return sum.Sign() <= 0
	default:
		return sum.Sign() < 0
	}
}

func TestIntArith(t *testing.T) {
	t.Parallel()

	div := func(f func(a, b *big.Int) *big.Int, a, b int64) int64 {
		return f(big.NewInt(a), big.NewInt(b)).Int64()
	}

	assert.Equal(t, int64(2), div(floorDiv, 7, 3))
	assert.Equal(t, int64(-3), div(floorDiv, -7, 3))
	assert.Equal(t, int64(-3), div(floorDiv, 7, -3))
	assert.Equal(t, int64(2), div(floorDiv, -7, -3))
	assert.Equal(t, int64(2), div(floorDiv, 6, 3))

	assert.Equal(t, int64(3), div(ceilDiv, 7, 3))
	assert.Equal(t, int64(-2), div(ceilDiv, -7, 3))
	assert.Equal(t, int64(2), div(ceilDiv, 6, 3))

	// symmod lands in [-m/2, m/2).
	assert.Equal(t, int64(1), div(symmod, 7, 3))
	assert.Equal(t, int64(-1), div(symmod, 2, 3))
	assert.Equal(t, int64(-2), div(symmod, 2, 4))
	assert.Equal(t, int64(-2), div(symmod, 6, 4))
	assert.Equal(t, int64(0), div(symmod, 6, 3))
	assert.Equal(t, int64(-1), div(symmod, -7, 3))

	assert.Equal(t, int64(6), div(gcdInt, -12, 18))
	assert.Equal(t, int64(5), div(gcdInt, 0, 5))
	assert.Equal(t, int64(12), div(lcmInt, 4, 6))
}
