package funcana

import "math"

// ============================================================
// Curve analysis
// ============================================================

// ExtremumKind labels a stationary point.
type ExtremumKind int

const (
	Minimum ExtremumKind = iota
	Maximum
	SaddlePoint
	// Undetermined marks a critical point whose kind could not be decided,
	// e.g. when the second derivative stays symbolic in a parameter.
	Undetermined
)

func (k ExtremumKind) String() string {
	switch k {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case SaddlePoint:
		return "saddle"
	case Undetermined:
		return "undetermined"
	}
	return "unknown"
}

// Extremum is a classified stationary point. Position and Value stay
// symbolic; IsExact is false when either came through a numeric step.
type Extremum struct {
	Position Expr
	Value    Expr
	Kind     ExtremumKind
	IsExact  bool
}

// InflectionPoint is a zero of the second derivative. Simple reports that
// the third derivative confirmed a genuine curvature change; candidates
// that could not be confirmed are surfaced with Simple=false rather than
// silently accepted.
type InflectionPoint struct {
	Position Expr
	Value    Expr
	Simple   bool
	IsExact  bool
}

// SymmetryKind is the result of the parity test about the origin.
type SymmetryKind int

const (
	SymmetryNone SymmetryKind = iota
	SymmetryEven
	SymmetryOdd
)

func (s SymmetryKind) String() string {
	switch s {
	case SymmetryEven:
		return "even"
	case SymmetryOdd:
		return "odd"
	}
	return "none"
}

// computeExtrema finds stationary points as roots of f' and classifies
// each by the sign of f'' there, falling back to a numeric sign-change
// probe of f' when the second derivative vanishes or stays symbolic.
func computeExtrema(f *Function) ([]Extremum, error) {
	df, err := f.Derivative(1)
	if err != nil {
		return nil, err
	}
	if isZeroExpr(df.Expr()) {
		// Constant function: every point is stationary, none is an extremum.
		return []Extremum{}, nil
	}
	critical, err := df.Roots()
	if err != nil {
		return nil, err
	}
	ddf, err := f.Derivative(2)
	if err != nil {
		return nil, err
	}
	out := []Extremum{}
	for _, c := range critical {
		if c.Kind == RootComplex {
			continue
		}
		value, err := f.Evaluate(c.Position)
		if err != nil {
			return nil, err
		}
		kind, decided := secondDerivativeTest(ddf, c.Position)
		if !decided {
			kind, decided = signChangeProbe(df, f.variable, c.Position)
		}
		if !decided {
			kind = Undetermined
		}
		out = append(out, Extremum{
			Position: c.Position,
			Value:    value,
			Kind:     kind,
			IsExact:  c.IsExact && IsExactExpr(value),
		})
	}
	return out, nil
}

// secondDerivativeTest evaluates f'' at the position and reads off the
// kind from an exact sign. It declines when the sign is zero or the value
// stays symbolic.
func secondDerivativeTest(ddf *Function, position Expr) (ExtremumKind, bool) {
	v, err := ddf.Evaluate(position)
	if err != nil {
		return SaddlePoint, false
	}
	if n, ok := asNum(v); ok {
		switch n.val.Sign() {
		case 1:
			return Minimum, true
		case -1:
			return Maximum, true
		}
		return SaddlePoint, false
	}
	// Symbolic but evaluable result, e.g. an exact radical.
	if fv, ok := v.Eval(); ok && fv != 0 {
		if fv > 0 {
			return Minimum, true
		}
		return Maximum, true
	}
	return SaddlePoint, false
}

// signChangeProbe samples f' on both sides of the position. Probing is
// purely a classification aid: the recorded position stays exact.
func signChangeProbe(df *Function, varName string, position Expr) (ExtremumKind, bool) {
	x0, ok := position.Eval()
	if !ok {
		return SaddlePoint, false
	}
	h := 1e-6 * (1 + math.Abs(x0))
	left, okL := df.Expr().Sub(varName, NFloat(x0-h)).Eval()
	right, okR := df.Expr().Sub(varName, NFloat(x0+h)).Eval()
	if !okL || !okR {
		return SaddlePoint, false
	}
	switch {
	case left > 0 && right < 0:
		return Maximum, true
	case left < 0 && right > 0:
		return Minimum, true
	case left*right > 0:
		return SaddlePoint, true
	}
	return SaddlePoint, false
}

// computeInflections finds zeros of f'' and checks each against f'''.
func computeInflections(f *Function) ([]InflectionPoint, error) {
	ddf, err := f.Derivative(2)
	if err != nil {
		return nil, err
	}
	if isZeroExpr(ddf.Expr()) {
		// Curvature is identically zero below degree two: no inflections.
		return []InflectionPoint{}, nil
	}
	candidates, err := ddf.Roots()
	if err != nil {
		return nil, err
	}
	dddf, err := f.Derivative(3)
	if err != nil {
		return nil, err
	}
	out := []InflectionPoint{}
	for _, c := range candidates {
		if c.Kind == RootComplex {
			continue
		}
		value, err := f.Evaluate(c.Position)
		if err != nil {
			return nil, err
		}
		simple := false
		if third, err := dddf.Evaluate(c.Position); err == nil {
			if n, ok := asNum(third); ok {
				simple = n.val.Sign() != 0
			} else if fv, ok := third.Eval(); ok {
				simple = math.Abs(fv) > 1e-12
			}
		}
		if !simple {
			// Confirm by curvature sign change when f''' is inconclusive.
			if x0, ok := c.Position.Eval(); ok {
				h := 1e-6 * (1 + math.Abs(x0))
				l, okL := ddf.Expr().Sub(f.variable, NFloat(x0-h)).Eval()
				r, okR := ddf.Expr().Sub(f.variable, NFloat(x0+h)).Eval()
				simple = okL && okR && l*r < 0
			}
		}
		out = append(out, InflectionPoint{
			Position: c.Position,
			Value:    value,
			Simple:   simple,
			IsExact:  c.IsExact && IsExactExpr(value),
		})
	}
	return out, nil
}

// computeSymmetry compares f(x) against f(-x) by exact cancellation.
func computeSymmetry(f *Function) SymmetryKind {
	if f.variable == "" {
		return SymmetryEven
	}
	mirrored := f.expr.Sub(f.variable, MulOf(N(-1), S(f.variable)))
	diff := Expand(AddOf(f.expr, MulOf(N(-1), mirrored))).Simplify()
	if isZeroExpr(diff) {
		return SymmetryEven
	}
	sum := Expand(AddOf(f.expr, mirrored)).Simplify()
	if isZeroExpr(sum) {
		return SymmetryOdd
	}
	return SymmetryNone
}

func isZeroExpr(e Expr) bool {
	n, ok := asNum(e)
	return ok && n.IsZero()
}

// compositeRoots is the fallback adapter: a numeric Newton scan over a
// default window. Every result is flagged inexact.
func compositeRoots(f *Function) ([]Root, error) {
	if f.variable == "" {
		return []Root{}, nil
	}
	if len(f.parameters) > 0 {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "no closed form for parameterized composite expressions",
		}
	}
	df := DiffExpr(f.expr, f.variable)
	return newtonScanRoots(f.expr, df, f.variable, -20, 20, 2000), nil
}
