package funcana

import "math"

// ============================================================
// Exponential and trigonometric analysis
// ============================================================

// splitTransTerm decomposes a one-carrier transcendental shape
// A*carrier(u) + D, where A and D are free of the principal variable and
// carrier is the single function or power term containing it.
func splitTransTerm(f *Function) (coeff Expr, carrier Expr, offset Expr, err error) {
	terms := []Expr{f.expr}
	if a, ok := f.expr.(*Add); ok {
		terms = a.Terms()
	}
	var varTerms, constTerms []Expr
	for _, t := range terms {
		if containsSym(t, f.variable) {
			varTerms = append(varTerms, t)
		} else {
			constTerms = append(constTerms, t)
		}
	}
	if len(varTerms) != 1 {
		return nil, nil, nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "expression is not a single-carrier transcendental shape",
		}
	}
	coeff = N(1)
	carrierTerm := varTerms[0]
	if m, ok := carrierTerm.(*Mul); ok {
		var free []Expr
		var bound []Expr
		for _, fac := range m.Factors() {
			if containsSym(fac, f.variable) {
				bound = append(bound, fac)
			} else {
				free = append(free, fac)
			}
		}
		if len(bound) != 1 {
			return nil, nil, nil, &UnsupportedOperationError{
				Family:    f.family,
				Operation: "roots",
				Reason:    "more than one variable-bearing factor",
			}
		}
		if len(free) > 0 {
			coeff = MulOf(free...)
		}
		carrierTerm = bound[0]
	}
	offset = N(0)
	if len(constTerms) > 0 {
		offset = AddOf(constTerms...)
	}
	return coeff, carrierTerm, offset, nil
}

// linearArg extracts slope and intercept of an argument linear in the
// principal variable.
func linearArg(u Expr, varName string, fam Family) (slope, intercept Expr, err error) {
	if !isPolynomialIn(u, varName) || Degree(u, varName) != 1 {
		return nil, nil, &UnsupportedOperationError{
			Family:    fam,
			Operation: "roots",
			Reason:    "argument " + u.String() + " is not linear in " + varName,
		}
	}
	coeffs := PolyCoeffs(u, varName)
	slope = coeffAt(coeffs, 1)
	intercept = coeffAt(coeffs, 0)
	return slope, intercept, nil
}

// exponentialRoots solves A*exp(k*x+c) + D = 0. The carrier may also be a
// power b**u with a positive numeric base, rewritten through exp(u*ln b).
func exponentialRoots(f *Function) ([]Root, error) {
	coeff, carrier, offset, err := splitTransTerm(f)
	if err != nil {
		return nil, err
	}
	var u Expr
	switch c := carrier.(type) {
	case *Func:
		if c.FuncName() != "exp" {
			return nil, &UnsupportedOperationError{
				Family:    f.family,
				Operation: "roots",
				Reason:    "carrier " + c.FuncName() + " is not exponential",
			}
		}
		u = c.Arg()
	case *Pow:
		base, ok := asNum(c.Base())
		if !ok || !base.IsPositive() || base.IsOne() {
			return nil, &UnsupportedOperationError{
				Family:    f.family,
				Operation: "roots",
				Reason:    "power base must be a positive constant other than one",
			}
		}
		u = MulOf(c.Exponent(), LnOf(base)).Simplify()
	default:
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "unrecognized exponential carrier",
		}
	}
	slope, intercept, err := linearArg(u, f.variable, f.family)
	if err != nil {
		return nil, err
	}
	// A*exp(u) + D = 0  =>  exp(u) = -D/A
	ratio := MulOf(N(-1), offset, PowOf(coeff, N(-1))).Simplify()
	if n, ok := asNum(ratio); ok {
		if n.val.Sign() <= 0 {
			// exp never reaches zero or negative values.
			return []Root{}, nil
		}
	}
	// u = ln(ratio)  =>  x = (ln(ratio) - intercept) / slope
	pos := MulOf(
		AddOf(LnOf(ratio), MulOf(N(-1), intercept)),
		PowOf(slope, N(-1)),
	).Simplify()
	exact := IsExactExpr(pos)
	return []Root{{Position: pos, Multiplicity: 1, Kind: RootSimple, IsExact: exact}}, nil
}

func piFrac(p, q int64) Expr { return MulOf(F(p, q), Pi()) }

// baseSolutions lists the solutions t of trig(t) = r within one period
// starting at zero. The bool reports whether the values are exact.
func baseSolutions(name string, r Expr) (sols []Expr, exact bool, err error) {
	n, isNum := asNum(r)
	if isNum && !n.approx {
		if sols, ok := exactBaseSolutions(name, n); ok {
			return sols, true, nil
		}
	}
	rf, ok := r.Eval()
	if !ok {
		return nil, false, &UnsupportedOperationError{
			Operation: "roots",
			Family:    FamilyTrigonometric,
			Reason:    "cannot solve " + name + "(t) = " + r.String(),
		}
	}
	switch name {
	case "sin":
		if math.Abs(rf) > 1 {
			return []Expr{}, true, nil
		}
		t := math.Asin(rf)
		return []Expr{NFloat(mod2Pi(t)), NFloat(mod2Pi(math.Pi - t))}, false, nil
	case "cos":
		if math.Abs(rf) > 1 {
			return []Expr{}, true, nil
		}
		t := math.Acos(rf)
		return []Expr{NFloat(mod2Pi(t)), NFloat(mod2Pi(2*math.Pi - t))}, false, nil
	case "tan":
		t := math.Atan(rf)
		return []Expr{NFloat(math.Mod(t+math.Pi, math.Pi))}, false, nil
	}
	return nil, false, &UnsupportedOperationError{
		Operation: "roots",
		Family:    FamilyTrigonometric,
		Reason:    "unknown trigonometric carrier " + name,
	}
}

// exactBaseSolutions covers the schoolbook values of the unit circle.
func exactBaseSolutions(name string, r *Num) ([]Expr, bool) {
	key := r.val.RatString()
	switch name {
	case "sin":
		switch key {
		case "0":
			return []Expr{N(0), Pi()}, true
		case "1":
			return []Expr{piFrac(1, 2)}, true
		case "-1":
			return []Expr{piFrac(3, 2)}, true
		case "1/2":
			return []Expr{piFrac(1, 6), piFrac(5, 6)}, true
		case "-1/2":
			return []Expr{piFrac(7, 6), piFrac(11, 6)}, true
		}
	case "cos":
		switch key {
		case "0":
			return []Expr{piFrac(1, 2), piFrac(3, 2)}, true
		case "1":
			return []Expr{N(0)}, true
		case "-1":
			return []Expr{Pi()}, true
		case "1/2":
			return []Expr{piFrac(1, 3), piFrac(5, 3)}, true
		case "-1/2":
			return []Expr{piFrac(2, 3), piFrac(4, 3)}, true
		}
	case "tan":
		switch key {
		case "0":
			return []Expr{N(0)}, true
		case "1":
			return []Expr{piFrac(1, 4)}, true
		case "-1":
			return []Expr{piFrac(3, 4)}, true
		}
	}
	if numCmp(numAbs(r), N(1)) > 0 && (name == "sin" || name == "cos") {
		return []Expr{}, true
	}
	return nil, false
}

func mod2Pi(t float64) float64 {
	m := math.Mod(t, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m
}

// trigShape captures the canonical A*trig(w*x + phi) + D decomposition.
type trigShape struct {
	name      string
	coeff     Expr
	slope     Expr
	intercept Expr
	offset    Expr
}

func splitTrigShape(f *Function) (*trigShape, error) {
	coeff, carrier, offset, err := splitTransTerm(f)
	if err != nil {
		return nil, err
	}
	fn, ok := carrier.(*Func)
	if !ok || (fn.FuncName() != "sin" && fn.FuncName() != "cos" && fn.FuncName() != "tan") {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "carrier is not a trigonometric function",
		}
	}
	slope, intercept, err := linearArg(fn.Arg(), f.variable, f.family)
	if err != nil {
		return nil, err
	}
	return &trigShape{
		name:      fn.FuncName(),
		coeff:     coeff,
		slope:     slope,
		intercept: intercept,
		offset:    offset,
	}, nil
}

func (s *trigShape) period() Expr {
	if s.name == "tan" {
		return Pi()
	}
	return MulOf(N(2), Pi())
}

// position builds the exact root x = (t0 + n*period - phi) / w.
func (s *trigShape) position(t0 Expr, n int64) Expr {
	return MulOf(
		AddOf(t0, MulOf(N(n), s.period()), MulOf(N(-1), s.intercept)),
		PowOf(s.slope, N(-1)),
	).Simplify()
}

// trigRoots returns the representative roots inside one period of the
// function, measured from zero.
func trigRoots(f *Function) ([]Root, error) {
	shape, err := splitTrigShape(f)
	if err != nil {
		return nil, err
	}
	span, err := shape.span(f)
	if err != nil {
		return nil, err
	}
	return trigRootsWindow(f, shape, 0, span)
}

// trigRootsIn enumerates the periodic root set restricted to [lo, hi).
func trigRootsIn(f *Function, lo, hi float64) ([]Root, error) {
	shape, err := splitTrigShape(f)
	if err != nil {
		return nil, err
	}
	return trigRootsWindow(f, shape, lo, hi)
}

// span is the length of one period of the composed function, period/|w|.
func (s *trigShape) span(f *Function) (float64, error) {
	wf, ok := s.slope.Eval()
	if !ok || wf == 0 {
		return 0, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "angular frequency " + s.slope.String() + " is not numeric",
		}
	}
	periodF, _ := s.period().Eval()
	return math.Abs(periodF / wf), nil
}

func trigRootsWindow(f *Function, shape *trigShape, lo, hi float64) ([]Root, error) {
	ratio := MulOf(N(-1), shape.offset, PowOf(shape.coeff, N(-1))).Simplify()
	sols, exact, err := baseSolutions(shape.name, ratio)
	if err != nil {
		return nil, err
	}
	wf, ok := shape.slope.Eval()
	if !ok || wf == 0 {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "angular frequency " + shape.slope.String() + " is not numeric",
		}
	}
	phiF, ok := shape.intercept.Eval()
	if !ok {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "phase " + shape.intercept.String() + " is not numeric",
		}
	}
	periodF, _ := shape.period().Eval()
	roots := []Root{}
	for _, t0 := range sols {
		t0f, ok := t0.Eval()
		if !ok {
			continue
		}
		// Invert x = (t0 + n*period - phi)/w for the window edges to get
		// the exact branch index range.
		nA := (lo*wf + phiF - t0f) / periodF
		nB := (hi*wf + phiF - t0f) / periodF
		if nA > nB {
			nA, nB = nB, nA
		}
		for n := int64(math.Floor(nA)) - 1; n <= int64(math.Ceil(nB))+1; n++ {
			pos := shape.position(t0, n)
			xf, ok := pos.Eval()
			if !ok {
				continue
			}
			if xf >= lo-1e-12 && xf < hi-1e-12 {
				roots = append(roots, Root{
					Position:     pos,
					Multiplicity: 1,
					Kind:         RootSimple,
					IsExact:      exact && IsExactExpr(pos),
				})
			}
		}
	}
	sortRoots(roots)
	return roots, nil
}

// trigRootGenerators returns, per solution branch, the expression over the
// integer symbol n that enumerates every root of the function.
func trigRootGenerators(f *Function) ([]Expr, error) {
	shape, err := splitTrigShape(f)
	if err != nil {
		return nil, err
	}
	ratio := MulOf(N(-1), shape.offset, PowOf(shape.coeff, N(-1))).Simplify()
	sols, _, err := baseSolutions(shape.name, ratio)
	if err != nil {
		return nil, err
	}
	n := S("n")
	gens := make([]Expr, 0, len(sols))
	for _, t0 := range sols {
		g := MulOf(
			AddOf(t0, MulOf(n, shape.period()), MulOf(N(-1), shape.intercept)),
			PowOf(shape.slope, N(-1)),
		).Simplify()
		gens = append(gens, g)
	}
	return gens, nil
}
