package funcana

import (
	"math"
	"math/big"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Polynomial root solving
// ============================================================

// RootKind distinguishes how a root was obtained and what it represents.
type RootKind int

const (
	RootSimple RootKind = iota
	RootRepeated
	RootComplex
)

func (k RootKind) String() string {
	switch k {
	case RootSimple:
		return "simple"
	case RootRepeated:
		return "repeated"
	case RootComplex:
		return "complex"
	}
	return "unknown"
}

// Root is one zero of a function. Position is an expression so that exact
// radicals and parameterized positions survive unevaluated. IsExact is
// false whenever the position came through a floating-point step.
type Root struct {
	Position     Expr
	Multiplicity int
	Kind         RootKind
	IsExact      bool
}

// polynomialRoots computes the real roots of the polynomial described by
// coeffs (degree -> coefficient) in exact arithmetic where possible. For
// rational coefficients it runs closed forms through degree two and
// rational-root extraction with deflation above that; what remains falls
// back to companion-matrix eigenvalues and is flagged inexact. Symbolic
// coefficients are handled through degree two only.
func polynomialRoots(coeffs map[int]Expr) ([]Root, error) {
	deg := 0
	for d, c := range coeffs {
		if n, ok := asNum(c); ok && n.IsZero() {
			continue
		}
		if d > deg {
			deg = d
		}
	}
	rational, allRational := rationalCoeffs(coeffs, deg)
	if !allRational {
		return symbolicPolyRoots(coeffs, deg)
	}
	if deg == 0 {
		if rational[0].Sign() == 0 {
			return nil, &UnsupportedOperationError{
				Family:    FamilyPolynomial,
				Operation: "roots",
				Reason:    "the zero polynomial vanishes everywhere",
			}
		}
		return []Root{}, nil
	}
	roots := []Root{}
	work := rational
	// Strip roots at zero first.
	shift := 0
	for shift < len(work)-1 && work[0].Sign() == 0 {
		shift++
		work = work[1:]
	}
	if shift > 0 {
		kind := RootSimple
		if shift > 1 {
			kind = RootRepeated
		}
		roots = append(roots, Root{Position: N(0), Multiplicity: shift, Kind: kind, IsExact: true})
	}
	exact, remainder := extractRationalRoots(work)
	roots = append(roots, exact...)
	switch len(remainder) - 1 {
	case 0:
		// fully factored
	case 1:
		roots = append(roots, linearRoot(remainder))
	case 2:
		roots = append(roots, quadraticRoots(remainder)...)
	default:
		numeric, err := companionRoots(remainder)
		if err != nil {
			return nil, err
		}
		roots = append(roots, numeric...)
	}
	sortRoots(roots)
	return roots, nil
}

func rationalCoeffs(coeffs map[int]Expr, deg int) ([]*big.Rat, bool) {
	out := make([]*big.Rat, deg+1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for d, c := range coeffs {
		n, ok := asNum(c)
		if !ok || n.approx {
			return nil, false
		}
		if d <= deg {
			out[d].Set(n.val)
		}
	}
	return out, true
}

func linearRoot(c []*big.Rat) Root {
	// c1*x + c0 = 0
	r := new(big.Rat).Quo(c[0], c[1])
	r.Neg(r)
	return Root{Position: RatNum(r), Multiplicity: 1, Kind: RootSimple, IsExact: true}
}

// quadraticRoots solves c2*x^2 + c1*x + c0 = 0 exactly. Irrational roots
// keep their radical form; a negative discriminant yields no real roots.
func quadraticRoots(c []*big.Rat) []Root {
	a, b, c0 := RatNum(c[2]), RatNum(c[1]), RatNum(c[0])
	disc := numSub(numMul(b, b), numMul(numMul(N(4), a), c0))
	switch disc.val.Sign() {
	case -1:
		return []Root{}
	case 0:
		pos := numDiv(numNeg(b), numMul(N(2), a))
		return []Root{{Position: pos, Multiplicity: 2, Kind: RootRepeated, IsExact: true}}
	}
	twoA := numMul(N(2), a)
	sq := SqrtOf(disc)
	lo := AddOf(MulOf(numNeg(b), PowOf(twoA, N(-1))), MulOf(N(-1), sq, PowOf(twoA, N(-1)))).Simplify()
	hi := AddOf(MulOf(numNeg(b), PowOf(twoA, N(-1))), MulOf(sq, PowOf(twoA, N(-1)))).Simplify()
	if a.IsNegative() {
		lo, hi = hi, lo
	}
	return []Root{
		{Position: lo, Multiplicity: 1, Kind: RootSimple, IsExact: true},
		{Position: hi, Multiplicity: 1, Kind: RootSimple, IsExact: true},
	}
}

// complexQuadraticRoots returns the conjugate pair for a negative
// discriminant as a +- b*i expressions with i kept symbolic.
func complexQuadraticRoots(c []*big.Rat) []Root {
	a, b, c0 := RatNum(c[2]), RatNum(c[1]), RatNum(c[0])
	disc := numSub(numMul(b, b), numMul(numMul(N(4), a), c0))
	if disc.val.Sign() >= 0 {
		return nil
	}
	twoA := numMul(N(2), a)
	re := numDiv(numNeg(b), twoA)
	imagSq := numDiv(numNeg(disc), numMul(twoA, twoA))
	im := SqrtOf(imagSq)
	i := S("i")
	plus := AddOf(re, MulOf(im, i)).Simplify()
	minus := AddOf(re, MulOf(N(-1), im, i)).Simplify()
	return []Root{
		{Position: plus, Multiplicity: 1, Kind: RootComplex, IsExact: true},
		{Position: minus, Multiplicity: 1, Kind: RootComplex, IsExact: true},
	}
}

// extractRationalRoots removes every rational root from the polynomial via
// candidate testing and synthetic deflation, returning the found roots and
// the deflated coefficient slice.
func extractRationalRoots(c []*big.Rat) ([]Root, []*big.Rat) {
	if len(c) <= 3 {
		return nil, c
	}
	// Scale to integer coefficients.
	lcm := big.NewInt(1)
	for _, r := range c {
		lcm.Mul(lcm, new(big.Int).Div(r.Denom(), new(big.Int).GCD(nil, nil, lcm, r.Denom())))
	}
	ints := make([]*big.Int, len(c))
	for i, r := range c {
		v := new(big.Rat).Mul(r, new(big.Rat).SetInt(lcm))
		ints[i] = v.Num()
	}
	a0, an := ints[0], ints[len(ints)-1]
	ps, ok1 := smallDivisors(a0)
	qs, ok2 := smallDivisors(an)
	if !ok1 || !ok2 {
		return nil, c
	}
	roots := []Root{}
	work := c
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*p, q)
				mult := 0
				for len(work) > 1 && polyEvalRat(work, cand).Sign() == 0 {
					work = deflate(work, cand)
					mult++
				}
				if mult > 0 {
					kind := RootSimple
					if mult > 1 {
						kind = RootRepeated
					}
					roots = append(roots, Root{
						Position: RatNum(cand), Multiplicity: mult, Kind: kind, IsExact: true,
					})
				}
				if len(work) <= 3 {
					return roots, work
				}
			}
		}
	}
	return roots, work
}

// smallDivisors lists the positive divisors of n; it refuses magnitudes
// that would make candidate testing pathological.
func smallDivisors(n *big.Int) ([]int64, bool) {
	if !n.IsInt64() {
		return nil, false
	}
	v := n.Int64()
	if v < 0 {
		v = -v
	}
	if v == 0 || v > 1_000_000 {
		return nil, v == 0
	}
	var ds []int64
	for d := int64(1); d*d <= v; d++ {
		if v%d == 0 {
			ds = append(ds, d)
			if d != v/d {
				ds = append(ds, v/d)
			}
		}
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	return ds, true
}

func polyEvalRat(c []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(c) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, c[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r), assuming r is a root.
func deflate(c []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(c) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat).Set(c[n])
	out[n-1] = new(big.Rat).Set(carry)
	for i := n - 1; i >= 1; i-- {
		carry.Mul(carry, r)
		carry.Add(carry, c[i])
		out[i-1] = new(big.Rat).Set(carry)
	}
	return out
}

// companionRoots finds the real eigenvalues of the companion matrix of a
// monic-normalized polynomial. Results are numeric and flagged inexact.
func companionRoots(c []*big.Rat) ([]Root, error) {
	n := len(c) - 1
	lead, _ := c[n].Float64()
	if lead == 0 {
		return nil, &UnsupportedOperationError{
			Family:    FamilyPolynomial,
			Operation: "roots",
			Reason:    "degenerate leading coefficient",
		}
	}
	comp := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		ci, _ := c[i].Float64()
		comp.Set(i, n-1, -ci/lead)
		if i > 0 {
			comp.Set(i, i-1, 1)
		}
	}
	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, &UnsupportedOperationError{
			Family:    FamilyPolynomial,
			Operation: "roots",
			Reason:    "eigenvalue factorization did not converge",
		}
	}
	values := eig.Values(nil)
	roots := []Root{}
	const imagTol = 1e-9
	for _, v := range values {
		if math.Abs(imag(v)) > imagTol*(1+math.Abs(real(v))) {
			continue
		}
		roots = append(roots, Root{
			Position: NFloat(real(v)), Multiplicity: 1, Kind: RootSimple, IsExact: false,
		})
	}
	return dedupeNumericRoots(roots), nil
}

func dedupeNumericRoots(roots []Root) []Root {
	sort.Slice(roots, func(i, j int) bool {
		a, _ := roots[i].Position.Eval()
		b, _ := roots[j].Position.Eval()
		return a < b
	})
	out := []Root{}
	for _, r := range roots {
		if len(out) > 0 {
			a, _ := out[len(out)-1].Position.Eval()
			b, _ := r.Position.Eval()
			if math.Abs(a-b) < 1e-7*(1+math.Abs(a)) {
				out[len(out)-1].Multiplicity++
				out[len(out)-1].Kind = RootRepeated
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// symbolicPolyRoots solves polynomials whose coefficients carry parameters.
// Closed forms exist through degree two; beyond that the query is refused.
func symbolicPolyRoots(coeffs map[int]Expr, deg int) ([]Root, error) {
	switch deg {
	case 0:
		return []Root{}, nil
	case 1:
		c1 := coeffAt(coeffs, 1)
		c0 := coeffAt(coeffs, 0)
		pos := MulOf(N(-1), c0, PowOf(c1, N(-1))).Simplify()
		return []Root{{Position: pos, Multiplicity: 1, Kind: RootSimple, IsExact: IsExactExpr(pos)}}, nil
	case 2:
		a := coeffAt(coeffs, 2)
		b := coeffAt(coeffs, 1)
		c := coeffAt(coeffs, 0)
		disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c)).Simplify()
		twoA := MulOf(N(2), a)
		sq := SqrtOf(disc)
		lo := MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), sq)), PowOf(twoA, N(-1))).Simplify()
		hi := MulOf(AddOf(MulOf(N(-1), b), sq), PowOf(twoA, N(-1))).Simplify()
		return []Root{
			{Position: lo, Multiplicity: 1, Kind: RootSimple, IsExact: IsExactExpr(lo)},
			{Position: hi, Multiplicity: 1, Kind: RootSimple, IsExact: IsExactExpr(hi)},
		}, nil
	}
	return nil, &UnsupportedOperationError{
		Family:    FamilyPolynomial,
		Operation: "roots",
		Reason:    "no closed form for parameterized polynomials above degree two",
	}
}

func coeffAt(coeffs map[int]Expr, d int) Expr {
	if c, ok := coeffs[d]; ok {
		return c
	}
	return N(0)
}

// sortRoots orders roots by their numeric position where evaluable.
func sortRoots(roots []Root) {
	sort.SliceStable(roots, func(i, j int) bool {
		a, aok := roots[i].Position.Eval()
		b, bok := roots[j].Position.Eval()
		if !aok || !bok {
			return false
		}
		return a < b
	})
}

// ============================================================
// Numeric fallback for composite shapes
// ============================================================

// newtonScanRoots scans [lo, hi] for sign changes and critical dips of an
// arbitrary evaluable function and polishes each bracket with Newton
// iteration. All results are numeric approximations.
func newtonScanRoots(f, df Expr, varName string, lo, hi float64, steps int) []Root {
	if steps < 2 {
		steps = 2
	}
	eval := func(e Expr, x float64) (float64, bool) {
		v, ok := e.Sub(varName, NFloat(x)).Eval()
		return v, ok
	}
	var seeds []float64
	h := (hi - lo) / float64(steps)
	prevX := lo
	prevY, prevOK := eval(f, lo)
	for i := 1; i <= steps; i++ {
		x := lo + float64(i)*h
		y, ok := eval(f, x)
		if ok && prevOK {
			if y == 0 {
				seeds = append(seeds, x)
			} else if prevY*y < 0 {
				seeds = append(seeds, (prevX+x)/2)
			}
		}
		prevX, prevY, prevOK = x, y, ok
	}
	roots := []Root{}
	for _, seed := range seeds {
		x := seed
		converged := false
		for iter := 0; iter < 60; iter++ {
			fx, ok1 := eval(f, x)
			dfx, ok2 := eval(df, x)
			if !ok1 || !ok2 || dfx == 0 {
				break
			}
			next := x - fx/dfx
			if math.Abs(next-x) < 1e-12*(1+math.Abs(next)) {
				x = next
				converged = true
				break
			}
			x = next
		}
		if fx, ok := eval(f, x); converged || (ok && math.Abs(fx) < 1e-9) {
			roots = append(roots, Root{
				Position: NFloat(x), Multiplicity: 1, Kind: RootSimple, IsExact: false,
			})
		}
	}
	return dedupeNumericRoots(roots)
}
