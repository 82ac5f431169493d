package solver

import "math/big"

var (
	intOne = big.NewInt(1)
	intTwo = big.NewInt(2)
)

// floorDiv is the integer quotient of a by b rounding towards negative
// infinity. b must be nonzero.
func floorDiv(a, b *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && (r.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, intOne)
	}
	return q
}

// ceilDiv is the integer quotient of a by b rounding towards positive
// infinity. b must be nonzero.
func ceilDiv(a, b *big.Int) *big.Int {
	q := floorDiv(a, b)
	if new(big.Int).Mul(q, b).Cmp(a) != 0 {
		q.Add(q, intOne)
	}
	return q
}

// symmod is the symmetric modulo: a - m*floor(a/m + 1/2), computed as
// a - m*floor((2a + m) / (2m)). The result lies in [-m/2, m/2).
func symmod(a, m *big.Int) *big.Int {
	num := new(big.Int).Mul(intTwo, a)
	num.Add(num, m)
	den := new(big.Int).Mul(intTwo, m)
	out := floorDiv(num, den)
	out.Mul(out, m)
	return out.Sub(a, out)
}

// gcdInt is the non-negative gcd, with gcd(0, b) = |b|.
func gcdInt(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, new(big.Int).Abs(a), new(big.Int).Abs(b))
}

// lcmInt is the non-negative lcm of two positive integers.
func lcmInt(a, b *big.Int) *big.Int {
	g := gcdInt(a, b)
	out := new(big.Int).Mul(a, b)
	out.Abs(out)
	return out.Quo(out, g)
}
