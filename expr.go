// Package funcana provides exact symbolic analysis of single-variable
// functions for an educational audience.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat); float-born values carry a
//     marker and are never silently promoted to exact results
//   - Deterministic simplification and stable output
//   - Structural classification into function families with per-family
//     exact calculus (roots, extrema, inflection points, symmetry)
//   - JSON, LaTeX, and tool-call APIs for embedding in services
package funcana

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable symbolic expression. All transformations return new
// expressions; no method mutates its receiver.
type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	// Eval approximates the expression numerically. It is the explicitly
	// named non-exact path; exact queries never call it on their results.
	Eval() (float64, bool)
	Equal(other Expr) bool
	exprKind() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num — exact rational number, with float provenance
// ============================================================

// Num is a rational number. approx records that the value entered the
// system as a floating-point literal; arithmetic propagates the marker so
// the exactness validator can reject laundered floats.
type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("funcana: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a float64 as a Num carrying the approximation marker.
func NFloat(f float64) *Num {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		panic("funcana: NFloat of non-finite value")
	}
	return &Num{val: r, approx: true}
}

// RatNum wraps an exact big.Rat.
func RatNum(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (float64, bool) { f, _ := n.val.Float64(); return f, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprKind() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) IsApprox() bool        { return n.approx }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }

var (
	ratOne    = new(big.Rat).SetInt64(1)
	ratNegOne = new(big.Rat).SetInt64(-1)
)

func (n *Num) String() string {
	if n.approx {
		f, _ := n.val.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.approx || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	j := map[string]interface{}{"type": "num", "value": n.val.RatString()}
	if n.approx {
		j["approx"] = true
	}
	return j
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val), approx: a.approx || b.approx} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("funcana: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), approx: a.approx}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r, approx: a.approx}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

func numPow(a *Num, e int64) *Num {
	if e < 0 {
		return numPow(numRecip(a), -e)
	}
	num := new(big.Int).Exp(a.val.Num(), big.NewInt(e), nil)
	den := new(big.Int).Exp(a.val.Denom(), big.NewInt(e), nil)
	return &Num{val: new(big.Rat).SetFrac(num, den), approx: a.approx}
}

// asNum returns the expression as an exact-or-approx rational if it is one.
func asNum(e Expr) (*Num, bool) {
	n, ok := e.(*Num)
	return n, ok
}

// ============================================================
// Sym — symbolic variable or parameter
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (float64, bool) {
	return 0, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprKind() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const — exact named constants (pi, e)
// ============================================================

// Const is an exact transcendental constant. It evaluates numerically only
// through the explicit Eval path.
type Const struct{ name string }

func Pi() *Const    { return &Const{name: "pi"} }
func EConst() *Const { return &Const{name: "e"} }

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Name() string          { return c.name }
func (c *Const) exprKind() string      { return "const" }
func (c *Const) Eval() (float64, bool) {
	switch c.name {
	case "pi":
		return math.Pi, true
	case "e":
		return math.E, true
	}
	return 0, false
}
func (c *Const) Equal(other Expr) bool {
	o, ok := other.(*Const)
	return ok && c.name == o.name
}
func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return c.name
}
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

// ============================================================
// Add — sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// splitCoeff separates a term into its rational coefficient and the
// remaining factor. A pure Num yields a nil rest.
func splitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, nil
	case *Mul:
		if len(v.factors) >= 2 {
			if c, ok := v.factors[0].(*Num); ok {
				rest := v.factors[1:]
				if len(rest) == 1 {
					return c, rest[0]
				}
				return c, &Mul{factors: rest}
			}
		}
	}
	return N(1), e
}

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		c, rest := splitCoeff(t)
		if rest == nil {
			numAccum = numAdd(numAccum, c)
			continue
		}
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}
	result := []Expr{}
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.IsOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		part := t.String()
		if i == 0 {
			sb.WriteString(part)
			continue
		}
		if strings.HasPrefix(part, "-") {
			sb.WriteString(" - ")
			sb.WriteString(part[1:])
		} else {
			sb.WriteString(" + ")
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		part := t.LaTeX()
		if i == 0 {
			sb.WriteString(part)
			continue
		}
		if strings.HasPrefix(part, "-") {
			sb.WriteString(" - ")
			sb.WriteString(part[1:])
		} else {
			sb.WriteString(" + ")
			sb.WriteString(part)
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (float64, bool) {
	acc := 0.0
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return 0, false
		}
		acc += v
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprKind() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul — product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		return N(0)
	}

	// Merge repeated bases into powers: x*x -> x^2, x*x^-1 -> 1.
	type baseEntry struct {
		base Expr
		exp  *Num
	}
	byKey := map[string]*baseEntry{}
	order := []string{}
	merged := []Expr{}
	for _, f := range others {
		base, exp := f, N(1)
		if p, ok := f.(*Pow); ok {
			if en, ok2 := p.exp.(*Num); ok2 {
				base, exp = p.base, en
			}
		}
		key := base.String()
		if e, seen := byKey[key]; seen {
			e.exp = numAdd(e.exp, exp)
			continue
		}
		byKey[key] = &baseEntry{base: base, exp: exp}
		order = append(order, key)
	}
	for _, key := range order {
		e := byKey[key]
		switch {
		case e.exp.IsZero():
			// x^0 -> 1, drops out of the product
		case e.exp.IsOne():
			merged = append(merged, e.base)
		default:
			merged = append(merged, (&Pow{base: e.base, exp: e.exp}).Simplify())
		}
	}
	others = merged

	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys for a stable factor order.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sortedOthers := make([]Expr, len(ks))
	for i := range ks {
		sortedOthers[i] = ks[i].e
	}
	others = sortedOthers

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, 0, len(m.factors))
	neg := false
	for i, f := range m.factors {
		if i == 0 {
			if n, ok := f.(*Num); ok && n.IsNegOne() {
				neg = true
				continue
			}
		}
		s := f.String()
		if _, isAdd := f.(*Add); isAdd {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	out := strings.Join(parts, "*")
	if neg {
		return "-" + out
	}
	return out
}

func (m *Mul) LaTeX() string {
	parts := make([]string, 0, len(m.factors))
	neg := false
	for i, f := range m.factors {
		if i == 0 {
			if n, ok := f.(*Num); ok && n.IsNegOne() {
				neg = true
				continue
			}
		}
		s := f.LaTeX()
		if _, isAdd := f.(*Add); isAdd {
			s = "\\left(" + s + "\\right)"
		}
		parts = append(parts, s)
	}
	out := strings.Join(parts, " ")
	if neg {
		return "-" + out
	}
	return out
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (float64, bool) {
	acc := 1.0
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return 0, false
		}
		acc *= v
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprKind() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow — base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf builds the exact square root base^(1/2).
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := asNum(exp); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}

	// Handle 0^exp carefully.
	if bn, ok := asNum(base); ok && bn.IsZero() {
		if en, ok2 := asNum(exp); ok2 {
			// 0^0 is indeterminate; 0^negative is division by zero.
			if en.IsZero() || en.IsNegative() {
				return &Pow{base: base, exp: exp}
			}
		}
		return N(0)
	}

	if bn, ok := asNum(base); ok {
		if bn.IsOne() {
			return N(1)
		}
		if en, ok2 := asNum(exp); ok2 {
			if en.IsInteger() && en.val.Num().IsInt64() {
				e := en.val.Num().Int64()
				if e >= -64 && e <= 64 {
					return numPow(bn, e)
				}
			} else if r, ok3 := exactSqrt(bn, en); ok3 {
				return r
			}
		}
	}
	// e^u normalizes to exp(u).
	if c, ok := base.(*Const); ok && c.name == "e" {
		return ExpOf(exp)
	}
	if inner, ok := base.(*Pow); ok {
		newExp := MulOf(inner.exp, exp).Simplify()
		return PowOf(inner.base, newExp)
	}
	return &Pow{base: base, exp: exp}
}

// exactSqrt reduces b^(k/2) for integer b and half-integer exponents,
// extracting the largest square divisor: sqrt(8) -> 2*sqrt(2).
func exactSqrt(b *Num, e *Num) (Expr, bool) {
	if b.approx || !b.IsInteger() || b.IsNegative() {
		return nil, false
	}
	if e.val.Denom().Int64() != 2 {
		return nil, false
	}
	k := e.val.Num().Int64() // exponent is k/2 in lowest terms, k odd
	n := new(big.Int).Set(b.val.Num())
	root := new(big.Int).Sqrt(n)
	if new(big.Int).Mul(root, root).Cmp(n) == 0 {
		// Perfect square: b^(k/2) = root^k.
		return numPow(&Num{val: new(big.Rat).SetInt(root)}, k), true
	}
	// Pull out the square part by trial division.
	square := big.NewInt(1)
	rest := new(big.Int).Set(n)
	for p := int64(2); p <= 97; p++ {
		pp := big.NewInt(p * p)
		for new(big.Int).Mod(rest, pp).Sign() == 0 {
			rest.Div(rest, pp)
			square.Mul(square, big.NewInt(p))
		}
	}
	if square.Cmp(big.NewInt(1)) == 0 {
		return nil, false
	}
	outer := numPow(&Num{val: new(big.Rat).SetInt(square)}, k)
	radical := &Pow{base: &Num{val: new(big.Rat).SetInt(rest)}, exp: e}
	return MulOf(outer, radical), true
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "(" + baseStr + ")"
	}
	expStr := p.exp.String()
	needsParens := true
	if en, ok := asNum(p.exp); ok && en.IsInteger() && !en.IsNegative() {
		needsParens = false
	}
	if needsParens {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := asNum(p.exp); ok && !en.approx && numCmp(en, F(1, 2)) == 0 {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := asNum(p.exp); expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !containsSym(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (float64, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return 0, false
	}
	pf := math.Pow(b, e)
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return 0, false
	}
	return pf, true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprKind() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

// ============================================================
// Func — named function applications (sin, cos, tan, exp, ln, abs)
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr  { return funcOf("ln", arg).Simplify() }
func AbsOf(arg Expr) Expr { return funcOf("abs", arg).Simplify() }

// piMultiple reports the rational k such that e == k*pi.
func piMultiple(e Expr) (*Num, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return N(0), true
		}
	case *Const:
		if v.name == "pi" {
			return N(1), true
		}
	case *Mul:
		if len(v.factors) == 2 {
			if c, ok := v.factors[0].(*Num); ok && !c.approx {
				if p, ok2 := v.factors[1].(*Const); ok2 && p.name == "pi" {
					return c, true
				}
			}
		}
	}
	return nil, false
}

// sinExact returns sin(k*pi) for rational k when it is a schoolbook value.
func sinExact(k *Num) (Expr, bool) {
	den := k.val.Denom().Int64()
	twice := numMul(k, N(2)) // k*2, integer for half-integer k
	switch den {
	case 1:
		return N(0), true
	case 2:
		// sin(m*pi/2) alternates 1, -1 for odd m.
		m := twice.val.Num().Int64()
		if ((m-1)/2)%2 == 0 {
			return N(1), true
		}
		return N(-1), true
	case 6:
		m := k.val.Num().Int64() % 12
		if m < 0 {
			m += 12
		}
		if m == 1 || m == 5 {
			return F(1, 2), true
		}
		if m == 7 || m == 11 {
			return F(-1, 2), true
		}
	}
	return nil, false
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	// Float-born arguments are already approximate; fold numerically.
	if n, ok := asNum(arg); ok && n.approx {
		if v, ok2 := (&Func{name: f.name, arg: n}).Eval(); ok2 {
			return NFloat(v)
		}
	}
	// Parity reduction: pull a negative coefficient out of the argument.
	if c, rest := splitCoeff(arg); rest != nil && c.IsNegative() {
		pos := MulOf(numNeg(c), rest)
		switch f.name {
		case "sin":
			return MulOf(N(-1), SinOf(pos))
		case "cos":
			return CosOf(pos)
		case "tan":
			return MulOf(N(-1), TanOf(pos))
		case "abs":
			return AbsOf(pos)
		}
	}
	switch f.name {
	case "sin":
		if k, ok := piMultiple(arg); ok {
			if r, ok2 := sinExact(k); ok2 {
				return r
			}
		}
	case "cos":
		if k, ok := piMultiple(arg); ok {
			// cos(x) = sin(x + pi/2)
			if r, ok2 := sinExact(numAdd(k, F(1, 2))); ok2 {
				return r
			}
		}
	case "tan":
		if k, ok := piMultiple(arg); ok && k.IsInteger() {
			return N(0)
		}
	case "ln":
		if n, ok := asNum(arg); ok && n.IsOne() {
			return N(0)
		}
		if c, ok := arg.(*Const); ok && c.name == "e" {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if n, ok := asNum(arg); ok && n.IsZero() {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if n, ok := asNum(arg); ok {
			return numAbs(n)
		}
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 1 {
			if c, ok2 := m.factors[0].(*Num); ok2 && c.IsNegative() {
				inner := make([]Expr, 0, len(m.factors))
				inner = append(inner, numNeg(c))
				inner = append(inner, m.factors[1:]...)
				return AbsOf(MulOf(inner...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	default:
		// Every constructible function name has a derivative case above;
		// reaching here means a name bypassed the constructors.
		panic("funcana: no derivative rule for function " + f.name)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (float64, bool) {
	v, ok := f.arg.Eval()
	if !ok {
		return 0, false
	}
	switch f.name {
	case "sin":
		return math.Sin(v), true
	case "cos":
		return math.Cos(v), true
	case "tan":
		return math.Tan(v), true
	case "exp":
		return math.Exp(v), true
	case "ln":
		if v > 0 {
			return math.Log(v), true
		}
	case "abs":
		return math.Abs(v), true
	}
	return 0, false
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprKind() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func SubExpr(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func DiffExpr(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = DiffExpr(result, varName)
	}
	return result
}

// Expand distributes products over sums and expands small integer powers.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		terms := []Expr{N(1)}
		for _, f := range v.factors {
			terms = crossMul(terms, addendsOf(expandExpr(f)))
		}
		return AddOf(terms...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		if n, ok := asNum(v.exp); ok && n.IsInteger() {
			exp := n.val.Num().Int64()
			if exp >= 0 && exp <= 10 {
				base := addendsOf(expandExpr(v.base))
				terms := []Expr{N(1)}
				for i := int64(0); i < exp; i++ {
					terms = crossMul(terms, base)
				}
				return AddOf(terms...)
			}
		}
		return &Pow{base: expandExpr(v.base), exp: expandExpr(v.exp)}
	}
	return e
}

// addendsOf lists the top-level addends of an already-expanded expression.
func addendsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// crossMul distributes two addend lists into the addend list of their
// product. The operands are fully expanded, so the pairwise products
// contain no sums left to distribute and no further expansion pass is
// needed.
func crossMul(a, b []Expr) []Expr {
	out := make([]Expr, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, MulOf(x, y))
		}
	}
	return out
}

// ============================================================
// Free symbols and structural helpers
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

func sortedSymbols(e Expr) []string {
	set := FreeSymbols(e)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func containsSym(e Expr, name string) bool {
	_, ok := FreeSymbols(e)[name]
	return ok
}

// isPolynomialIn reports whether e is a polynomial in varName: no division
// by it, no non-integer power of it, no occurrence inside a function.
func isPolynomialIn(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Num, *Const:
		return true
	case *Sym:
		return true
	case *Add:
		for _, t := range v.terms {
			if !isPolynomialIn(t, varName) {
				return false
			}
		}
		return true
	case *Mul:
		for _, f := range v.factors {
			if !isPolynomialIn(f, varName) {
				return false
			}
		}
		return true
	case *Pow:
		if !containsSym(v.base, varName) && !containsSym(v.exp, varName) {
			return true
		}
		if containsSym(v.exp, varName) {
			return false
		}
		n, ok := asNum(v.exp)
		if !ok || !n.IsInteger() || n.IsNegative() {
			return false
		}
		return isPolynomialIn(v.base, varName)
	case *Func:
		return !containsSym(v.arg, varName)
	}
	return false
}

// ============================================================
// Polynomial utilities
// ============================================================

func Degree(expr Expr, varName string) int {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Num, *Const:
		return 0
	case *Sym:
		if v.name == varName {
			return 1
		}
		return 0
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := asNum(v.exp); ok2 && n.IsInteger() {
				return int(n.val.Num().Int64())
			}
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		totalDeg := 0
		for _, f := range v.factors {
			totalDeg += Degree(f, varName)
		}
		return totalDeg
	}
	return 0
}

// PolyCoeffs maps degree -> coefficient expression for a polynomial in
// varName. Coefficients may be symbolic (parameters).
func PolyCoeffs(expr Expr, varName string) map[int]Expr {
	result := map[int]Expr{}
	extractCoeffs(Expand(expr), varName, result)
	return result
}

func extractCoeffs(e Expr, varName string, out map[int]Expr) {
	switch v := e.(type) {
	case *Num, *Const:
		addCoeff(out, 0, e)
	case *Sym:
		if v.name == varName {
			addCoeff(out, 1, N(1))
		} else {
			addCoeff(out, 0, v)
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := asNum(v.exp); ok2 && n.IsInteger() && !n.IsNegative() {
				addCoeff(out, int(n.val.Num().Int64()), N(1))
				return
			}
		}
		addCoeff(out, 0, e)
	case *Mul:
		deg := 0
		coeffFactors := []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, varName); d > 0 {
				deg += d
			} else {
				coeffFactors = append(coeffFactors, f)
			}
		}
		var coeff Expr
		switch len(coeffFactors) {
		case 0:
			coeff = N(1)
		case 1:
			coeff = coeffFactors[0]
		default:
			coeff = MulOf(coeffFactors...)
		}
		addCoeff(out, deg, coeff)
	case *Add:
		for _, t := range v.terms {
			extractCoeffs(t, varName, out)
		}
	default:
		addCoeff(out, 0, e)
	}
}

func addCoeff(out map[int]Expr, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val).Simplify()
	} else {
		out[deg] = val.Simplify()
	}
}

// Collect groups terms by powers of varName, highest degree first.
func Collect(expr Expr, varName string) Expr {
	coeffs := PolyCoeffs(expr, varName)
	if len(coeffs) == 0 {
		return N(0)
	}
	degrees := make([]int, 0, len(coeffs))
	for d := range coeffs {
		degrees = append(degrees, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))
	terms := make([]Expr, 0, len(degrees))
	for _, d := range degrees {
		c := coeffs[d]
		if cn, ok := asNum(c); ok && cn.IsZero() {
			continue
		}
		switch d {
		case 0:
			terms = append(terms, c)
		case 1:
			terms = append(terms, MulOf(c, S(varName)))
		default:
			terms = append(terms, MulOf(c, PowOf(S(varName), N(int64(d)))))
		}
	}
	if len(terms) == 0 {
		return N(0)
	}
	return AddOf(terms...).Simplify()
}

// extractQuotient splits a product into numerator and denominator parts,
// where the denominator collects factors raised to negative powers.
func extractQuotient(e Expr) (num, denom Expr, ok bool) {
	m, isMul := e.(*Mul)
	if !isMul {
		return nil, nil, false
	}
	var numFactors, denomFactors []Expr
	for _, f := range m.factors {
		if p, isPow := f.(*Pow); isPow {
			if en, isNum := asNum(p.exp); isNum && en.IsNegative() {
				if en.IsNegOne() {
					denomFactors = append(denomFactors, p.base)
				} else {
					denomFactors = append(denomFactors, PowOf(p.base, numNeg(en)))
				}
				continue
			}
		}
		numFactors = append(numFactors, f)
	}
	if len(denomFactors) == 0 {
		return nil, nil, false
	}
	var n, d Expr
	switch len(numFactors) {
	case 0:
		n = N(1)
	case 1:
		n = numFactors[0]
	default:
		n = &Mul{factors: numFactors}
	}
	if len(denomFactors) == 1 {
		d = denomFactors[0]
	} else {
		d = &Mul{factors: denomFactors}
	}
	return n, d, true
}
