package funcana

// ============================================================
// Rational-quotient analysis
// ============================================================

// quotientParts splits a rational-quotient function into expanded
// numerator and denominator polynomials.
func quotientParts(f *Function) (num, den Expr, err error) {
	n, d, ok := asRationalIn(f.expr, f.variable)
	if !ok {
		return nil, nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "quotient_split",
			Reason:    "expression is not a quotient in " + f.variable,
		}
	}
	return Expand(n), Expand(d), nil
}

// rationalRoots returns the zeros of the numerator that do not coincide
// with a zero of the denominator. Shared positions are removable gaps,
// not zeros of the function.
func rationalRoots(f *Function) ([]Root, error) {
	num, den, err := quotientParts(f)
	if err != nil {
		return nil, err
	}
	numRoots, err := polynomialRoots(PolyCoeffs(num, f.variable))
	if err != nil {
		return nil, err
	}
	out := []Root{}
	for _, r := range numRoots {
		if vanishesAt(den, f.variable, r.Position) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// rationalPoles returns the zeros of the denominator that the numerator
// does not fully cancel. A shared zero reduces the pole order by the
// numerator's multiplicity there; the position is a removable gap only
// when the numerator's order matches or exceeds the denominator's.
func rationalPoles(f *Function) ([]Root, error) {
	num, den, err := quotientParts(f)
	if err != nil {
		return nil, err
	}
	denRoots, err := polynomialRoots(PolyCoeffs(den, f.variable))
	if err != nil {
		return nil, err
	}
	numMult := map[string]int{}
	if numRoots, err := polynomialRoots(PolyCoeffs(num, f.variable)); err == nil {
		for _, r := range numRoots {
			numMult[r.Position.String()] = r.Multiplicity
		}
	}
	out := []Root{}
	for _, r := range denRoots {
		if r.Kind == RootComplex {
			continue
		}
		shared := numMult[r.Position.String()]
		if shared == 0 && vanishesAt(num, f.variable, r.Position) {
			// The numerator vanishes but its roots were not enumerable;
			// without an order to compare, treat the zero as fully shared.
			shared = r.Multiplicity
		}
		order := r.Multiplicity - shared
		if order <= 0 {
			continue
		}
		pole := r
		pole.Multiplicity = order
		pole.Kind = RootSimple
		if order > 1 {
			pole.Kind = RootRepeated
		}
		out = append(out, pole)
	}
	return out, nil
}

// vanishesAt substitutes the position exactly and checks for zero.
func vanishesAt(e Expr, varName string, position Expr) bool {
	v := Expand(e.Sub(varName, position)).Simplify()
	if n, ok := asNum(v); ok {
		return n.IsZero()
	}
	return false
}
