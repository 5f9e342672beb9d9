package funcana

import (
	"fmt"
	"sort"
	"strconv"
)

// ============================================================
// Function instance
// ============================================================

// Function is an immutable analyzed function: a canonical expression, its
// family tag, the principal variable, the parameter symbols, and a private
// cache of derived quantities. All analysis entry points live here.
type Function struct {
	expr       Expr
	family     Family
	variable   string
	parameters []string
	cache      *derivedCache
}

// ClassifyAndBuild normalizes raw input, classifies it, and returns the
// analyzed function. Accepted shapes: a string (parsed through the
// whitelist parser), an Expr, a coefficient slice ordered
// highest-degree-first, or a degree->coefficient map. An optional hint
// names the principal variable and overrides the heuristic.
func ClassifyAndBuild(raw interface{}, hint ...string) (*Function, error) {
	var expr Expr
	switch v := raw.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return nil, err
		}
		expr = parsed
	case Expr:
		expr = v
	case []int64:
		expr = coeffSliceExpr(int64Coeffs(v), hintVariable(hint))
	case []Expr:
		expr = coeffSliceExpr(v, hintVariable(hint))
	case map[int]int64:
		m := map[int]Expr{}
		for d, c := range v {
			m[d] = N(c)
		}
		expr = coeffMapExpr(m, hintVariable(hint))
	case map[int]Expr:
		expr = coeffMapExpr(v, hintVariable(hint))
	default:
		return nil, &ExpressionParseError{
			Input:  fmt.Sprintf("%v", raw),
			Reason: fmt.Sprintf("unsupported input shape %T", raw),
		}
	}
	return buildFromExpr(expr.Simplify(), hint...)
}

func hintVariable(hint []string) string {
	if len(hint) > 0 && hint[0] != "" {
		return hint[0]
	}
	return "x"
}

func int64Coeffs(v []int64) []Expr {
	out := make([]Expr, len(v))
	for i, c := range v {
		out[i] = N(c)
	}
	return out
}

// coeffSliceExpr builds a polynomial from coefficients ordered
// highest-degree-first, matching written notation.
func coeffSliceExpr(coeffs []Expr, varName string) Expr {
	terms := []Expr{}
	n := len(coeffs)
	for i, c := range coeffs {
		deg := n - 1 - i
		terms = append(terms, MulOf(c, PowOf(S(varName), N(int64(deg)))))
	}
	return AddOf(terms...)
}

func coeffMapExpr(coeffs map[int]Expr, varName string) Expr {
	degs := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degs = append(degs, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degs)))
	terms := []Expr{}
	for _, d := range degs {
		terms = append(terms, MulOf(coeffs[d], PowOf(S(varName), N(int64(d)))))
	}
	return AddOf(terms...)
}

func buildFromExpr(expr Expr, hint ...string) (*Function, error) {
	cls, err := Classify(expr)
	if err != nil {
		return nil, err
	}
	if len(hint) > 0 && hint[0] != "" && hint[0] != cls.Variable {
		return newFunction(expr).WithExplicitRoles(hint[0], nil)
	}
	return &Function{
		expr:       expr,
		family:     cls.Family,
		variable:   cls.Variable,
		parameters: cls.Parameters,
		cache:      newDerivedCache(),
	}, nil
}

func newFunction(expr Expr) *Function {
	return &Function{expr: expr, cache: newDerivedCache()}
}

// FromCoeffs builds a polynomial function from coefficients ordered
// highest-degree-first in the given variable.
func FromCoeffs(varName string, coeffs ...Expr) (*Function, error) {
	return ClassifyAndBuild(coeffSliceExpr(coeffs, varName), varName)
}

// FromCoeffMap builds a polynomial function from a degree->coefficient map.
func FromCoeffMap(varName string, coeffs map[int]Expr) (*Function, error) {
	return ClassifyAndBuild(coeffMapExpr(coeffs, varName), varName)
}

// Expr returns the canonical expression.
func (f *Function) Expr() Expr { return f.expr }

// Family returns the family tag assigned at construction.
func (f *Function) Family() Family { return f.family }

// Variable returns the principal variable, empty for a constant.
func (f *Function) Variable() string { return f.variable }

// Parameters returns the parameter symbols in sorted order.
func (f *Function) Parameters() []string {
	out := make([]string, len(f.parameters))
	copy(out, f.parameters)
	return out
}

func (f *Function) String() string { return f.expr.String() }

// LaTeX renders the canonical expression for display.
func (f *Function) LaTeX() string { return f.expr.LaTeX() }

// WithParameter substitutes an exact value for one parameter and returns a
// freshly classified instance with an empty cache. The receiver is left
// untouched.
func (f *Function) WithParameter(name string, value Expr) (*Function, error) {
	if name == f.variable {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "with_parameter",
			Reason:    "cannot bind the principal variable " + name + " as a parameter",
		}
	}
	if !contains(f.parameters, name) {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "with_parameter",
			Reason:    "unknown parameter " + name,
		}
	}
	subbed := f.expr.Sub(name, value.Simplify()).Simplify()
	return buildFromExpr(subbed, f.variable)
}

// WithExplicitRoles overrides the classifier's variable/parameter split.
// The family is re-derived for the chosen variable; the result owns a
// fresh cache.
func (f *Function) WithExplicitRoles(variable string, parameters []string) (*Function, error) {
	// A variable that no longer occurs is fine: the function is constant
	// in it, which happens naturally when differentiation exhausts it.
	syms := sortedSymbols(f.expr)
	for _, p := range parameters {
		if !contains(syms, p) {
			return nil, &UnsupportedOperationError{
				Family:    f.family,
				Operation: "with_explicit_roles",
				Reason:    p + " is not a free symbol of " + f.expr.String(),
			}
		}
		if p == variable {
			return nil, &UnsupportedOperationError{
				Family:    f.family,
				Operation: "with_explicit_roles",
				Reason:    p + " cannot be both variable and parameter",
			}
		}
	}
	params := make([]string, 0, len(syms))
	for _, s := range syms {
		if s != variable {
			params = append(params, s)
		}
	}
	fam, _ := familyFor(f.expr, variable, syms)
	return &Function{
		expr:       f.expr,
		family:     fam,
		variable:   variable,
		parameters: params,
		cache:      newDerivedCache(),
	}, nil
}

// Evaluate substitutes the principal variable and simplifies exactly. When
// the point is exact, the result is validated against float leakage.
func (f *Function) Evaluate(point Expr) (Expr, error) {
	point = point.Simplify()
	key := cacheKey("evaluate", point.String())
	if v, ok := f.cache.lookup(key); ok {
		return v.(Expr), nil
	}
	result := Expand(f.expr.Sub(f.variable, point)).Simplify()
	if IsExactExpr(point) && IsExactExpr(f.expr) {
		if err := validateExact("evaluate", result); err != nil {
			return nil, err
		}
	}
	f.cache.store(key, result)
	return result, nil
}

// EvaluateNumeric is the explicit approximation path.
func (f *Function) EvaluateNumeric(x float64) (float64, error) {
	v, ok := f.expr.Sub(f.variable, NFloat(x)).Eval()
	if !ok {
		return 0, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "evaluate_numeric",
			Reason:    "expression is not numerically evaluable at " + strconv.FormatFloat(x, 'g', -1, 64),
		}
	}
	return v, nil
}

// Derivative returns the order-th derivative as a freshly classified
// function. Order zero returns the receiver.
func (f *Function) Derivative(order int) (*Function, error) {
	if order < 0 {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "derivative",
			Reason:    "negative order",
		}
	}
	if order == 0 {
		return f, nil
	}
	key := cacheKey("derivative", strconv.Itoa(order))
	if v, ok := f.cache.lookup(key); ok {
		return v.(*Function), nil
	}
	d := DiffN(f.expr, f.variable, order)
	out, err := buildFromExpr(d, f.variable)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, out)
	return out, nil
}

// Roots returns the zeros of the function via the family adapter selected
// at classification time. Exact records are validated before returning.
func (f *Function) Roots() ([]Root, error) {
	key := cacheKey("roots")
	if v, ok := f.cache.lookup(key); ok {
		return v.([]Root), nil
	}
	var roots []Root
	var err error
	switch f.family {
	case FamilyPolynomial:
		roots, err = polynomialRoots(PolyCoeffs(f.expr, f.variable))
	case FamilyRationalQuotient:
		roots, err = rationalRoots(f)
	case FamilyExponential:
		roots, err = exponentialRoots(f)
	case FamilyTrigonometric:
		roots, err = trigRoots(f)
	default:
		roots, err = compositeRoots(f)
	}
	if err != nil {
		return nil, err
	}
	if err := validateRoots("roots", roots); err != nil {
		return nil, err
	}
	f.cache.store(key, roots)
	return roots, nil
}

// RootsIn restricts the root set to the interval [lo, hi). Trigonometric
// functions enumerate their periodic set across the interval; other
// families filter the full root set, keeping positions that cannot be
// placed numerically (symbolic parameters).
func (f *Function) RootsIn(lo, hi float64) ([]Root, error) {
	if hi <= lo {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "roots",
			Reason:    "interval is empty",
		}
	}
	key := cacheKey("roots_in",
		strconv.FormatFloat(lo, 'g', -1, 64), strconv.FormatFloat(hi, 'g', -1, 64))
	if v, ok := f.cache.lookup(key); ok {
		return v.([]Root), nil
	}
	var roots []Root
	var err error
	if f.family == FamilyTrigonometric {
		roots, err = trigRootsIn(f, lo, hi)
	} else {
		var all []Root
		all, err = f.Roots()
		if err == nil {
			roots = []Root{}
			for _, r := range all {
				if x, ok := r.Position.Eval(); ok && (x < lo || x >= hi) {
					continue
				}
				roots = append(roots, r)
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if err := validateRoots("roots", roots); err != nil {
		return nil, err
	}
	f.cache.store(key, roots)
	return roots, nil
}

// ComplexRoots additionally reports conjugate pairs for quadratic shapes
// with negative discriminant. Families without complex support return the
// real roots unchanged.
func (f *Function) ComplexRoots() ([]Root, error) {
	realRoots, err := f.Roots()
	if err != nil {
		return nil, err
	}
	if f.family != FamilyPolynomial {
		return realRoots, nil
	}
	coeffs := PolyCoeffs(f.expr, f.variable)
	rational, ok := rationalCoeffs(coeffs, polyDegreeOf(coeffs))
	if !ok || len(rational) != 3 {
		return realRoots, nil
	}
	out := make([]Root, len(realRoots))
	copy(out, realRoots)
	return append(out, complexQuadraticRoots(rational)...), nil
}

func polyDegreeOf(coeffs map[int]Expr) int {
	deg := 0
	for d, c := range coeffs {
		if n, ok := asNum(c); ok && n.IsZero() {
			continue
		}
		if d > deg {
			deg = d
		}
	}
	return deg
}

// Poles reports positions where the denominator vanishes. Only the
// rational-quotient family has poles.
func (f *Function) Poles() ([]Root, error) {
	if f.family != FamilyRationalQuotient {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "poles",
			Reason:    "only rational quotients have poles",
		}
	}
	key := cacheKey("poles")
	if v, ok := f.cache.lookup(key); ok {
		return v.([]Root), nil
	}
	poles, err := rationalPoles(f)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, poles)
	return poles, nil
}

// Extrema locates interior extrema through the stationary points of the
// first derivative.
func (f *Function) Extrema() ([]Extremum, error) {
	key := cacheKey("extrema")
	if v, ok := f.cache.lookup(key); ok {
		return v.([]Extremum), nil
	}
	ext, err := computeExtrema(f)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, ext)
	return ext, nil
}

// InflectionPoints locates curvature changes through the zeros of the
// second derivative.
func (f *Function) InflectionPoints() ([]InflectionPoint, error) {
	key := cacheKey("inflection_points")
	if v, ok := f.cache.lookup(key); ok {
		return v.([]InflectionPoint), nil
	}
	pts, err := computeInflections(f)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, pts)
	return pts, nil
}

// Symmetry tests for axis symmetry about x=0 and point symmetry about the
// origin by exact cancellation.
func (f *Function) Symmetry() (SymmetryKind, error) {
	key := cacheKey("symmetry")
	if v, ok := f.cache.lookup(key); ok {
		return v.(SymmetryKind), nil
	}
	s := computeSymmetry(f)
	f.cache.store(key, s)
	return s, nil
}

// Tangent returns the first-order approximation at the given exact point
// as a new linear function.
func (f *Function) Tangent(point Expr) (*Function, error) {
	point = point.Simplify()
	key := cacheKey("tangent", point.String())
	if v, ok := f.cache.lookup(key); ok {
		return v.(*Function), nil
	}
	value, err := f.Evaluate(point)
	if err != nil {
		return nil, err
	}
	df, err := f.Derivative(1)
	if err != nil {
		return nil, err
	}
	slope, err := df.Evaluate(point)
	if err != nil {
		return nil, err
	}
	x := S(f.variable)
	tangent := AddOf(value, MulOf(slope, AddOf(x, MulOf(N(-1), point)))).Simplify()
	out, err := buildFromExpr(tangent, f.variable)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, out)
	return out, nil
}

// Sample is one row of a numeric value table.
type Sample struct {
	X float64
	Y float64
}

// ValueTable samples the function numerically on [lo, hi] with n points.
// Points where the function is undefined are skipped.
func (f *Function) ValueTable(lo, hi float64, n int) ([]Sample, error) {
	if n < 2 || hi <= lo {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "value_table",
			Reason:    "need an increasing interval and at least two samples",
		}
	}
	step := (hi - lo) / float64(n-1)
	out := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		x := lo + float64(i)*step
		y, ok := f.expr.Sub(f.variable, NFloat(x)).Eval()
		if !ok {
			continue
		}
		out = append(out, Sample{X: x, Y: y})
	}
	return out, nil
}

// PeriodicGenerator returns, for trigonometric functions, expressions over
// the integer symbol n that enumerate the full root set.
func (f *Function) PeriodicGenerator() ([]Expr, error) {
	if f.family != FamilyTrigonometric {
		return nil, &UnsupportedOperationError{
			Family:    f.family,
			Operation: "periodic_generator",
			Reason:    "only trigonometric functions have periodic root sets",
		}
	}
	key := cacheKey("periodic_generator")
	if v, ok := f.cache.lookup(key); ok {
		return v.([]Expr), nil
	}
	gens, err := trigRootGenerators(f)
	if err != nil {
		return nil, err
	}
	f.cache.store(key, gens)
	return gens, nil
}
