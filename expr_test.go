package funcana_test

import (
	"testing"

	funcana "github.com/funcana/funcana"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := funcana.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := funcana.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	n := funcana.F(2, 5)
	if n.LaTeX() != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", n.LaTeX())
	}
}

func TestNum_FloatProvenance(t *testing.T) {
	n := funcana.NFloat(0.5)
	if funcana.IsExactExpr(n) {
		t.Error("float-born numbers must carry the approx marker")
	}
	exact := funcana.F(1, 2)
	if !funcana.IsExactExpr(exact) {
		t.Error("exact rationals must not carry the approx marker")
	}
}

func TestNum_ApproxPropagates(t *testing.T) {
	sum := funcana.AddOf(funcana.NFloat(0.5), funcana.F(1, 2))
	if funcana.IsExactExpr(sum) {
		t.Errorf("approx marker lost in %s", sum.String())
	}
}

// ============================================================
// Simplification tests
// ============================================================

func TestAdd_LikeTerms(t *testing.T) {
	x := funcana.S("x")
	e := funcana.AddOf(x, x, x, funcana.N(2))
	if e.String() != "3*x + 2" {
		t.Errorf("want 3*x + 2, got %s", e.String())
	}
}

func TestAdd_ExactCancellation(t *testing.T) {
	x := funcana.S("x")
	sq := funcana.PowOf(x, funcana.N(2))
	e := funcana.AddOf(sq, funcana.MulOf(funcana.N(-1), sq))
	if e.String() != "0" {
		t.Errorf("x^2 - x^2 should cancel, got %s", e.String())
	}
}

func TestMul_MergeBases(t *testing.T) {
	x := funcana.S("x")
	e := funcana.MulOf(x, x, x)
	if e.String() != "x^3" {
		t.Errorf("want x^3, got %s", e.String())
	}
	inv := funcana.MulOf(x, funcana.PowOf(x, funcana.N(-1)))
	if inv.String() != "1" {
		t.Errorf("x*x^-1 should be 1, got %s", inv.String())
	}
}

func TestPow_ExactSquareRoot(t *testing.T) {
	if got := funcana.SqrtOf(funcana.N(4)).String(); got != "2" {
		t.Errorf("sqrt(4): want 2, got %s", got)
	}
	if got := funcana.SqrtOf(funcana.N(8)).String(); got != "2*2^(1/2)" {
		t.Errorf("sqrt(8): want 2*2^(1/2), got %s", got)
	}
	if got := funcana.SqrtOf(funcana.N(5)).String(); got != "5^(1/2)" {
		t.Errorf("sqrt(5): want 5^(1/2), got %s", got)
	}
}

func TestPow_RadicalSquares(t *testing.T) {
	root2 := funcana.SqrtOf(funcana.N(2))
	sq := funcana.PowOf(root2, funcana.N(2))
	if sq.String() != "2" {
		t.Errorf("(sqrt 2)^2 should fold to 2, got %s", sq.String())
	}
}

func TestFunc_ExactSpecialValues(t *testing.T) {
	cases := []struct {
		name string
		e    funcana.Expr
		want string
	}{
		{"sin(0)", funcana.SinOf(funcana.N(0)), "0"},
		{"sin(pi)", funcana.SinOf(funcana.Pi()), "0"},
		{"sin(pi/2)", funcana.SinOf(funcana.MulOf(funcana.F(1, 2), funcana.Pi())), "1"},
		{"sin(pi/6)", funcana.SinOf(funcana.MulOf(funcana.F(1, 6), funcana.Pi())), "1/2"},
		{"cos(0)", funcana.CosOf(funcana.N(0)), "1"},
		{"cos(pi)", funcana.CosOf(funcana.Pi()), "-1"},
		{"tan(pi)", funcana.TanOf(funcana.Pi()), "0"},
		{"ln(1)", funcana.LnOf(funcana.N(1)), "0"},
		{"ln(e)", funcana.LnOf(funcana.EConst()), "1"},
		{"exp(0)", funcana.ExpOf(funcana.N(0)), "1"},
	}
	for _, c := range cases {
		if got := c.e.String(); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestFunc_NoFloatFoldingOfExactArgs(t *testing.T) {
	// sin(1) has no exact closed form and must stay symbolic.
	e := funcana.SinOf(funcana.N(1))
	if e.String() != "sin(1)" {
		t.Errorf("sin(1) must stay symbolic, got %s", e.String())
	}
	if !funcana.IsExactExpr(e) {
		t.Error("symbolic sin(1) is still exact")
	}
}

func TestFunc_ParityReduction(t *testing.T) {
	x := funcana.S("x")
	negX := funcana.MulOf(funcana.N(-1), x)
	if got := funcana.SinOf(negX).String(); got != "-sin(x)" {
		t.Errorf("sin(-x): want -sin(x), got %s", got)
	}
	if got := funcana.CosOf(negX).String(); got != "cos(x)" {
		t.Errorf("cos(-x): want cos(x), got %s", got)
	}
	if got := funcana.TanOf(negX).String(); got != "-tan(x)" {
		t.Errorf("tan(-x): want -tan(x), got %s", got)
	}
}

// ============================================================
// Calculus tests
// ============================================================

func TestDiff_Polynomial(t *testing.T) {
	e, err := funcana.Parse("x^2 - 4x + 4")
	if err != nil {
		t.Fatal(err)
	}
	d := funcana.DiffExpr(e, "x")
	if d.String() != "2*x - 4" {
		t.Errorf("want 2*x - 4, got %s", d.String())
	}
}

func TestDiff_ChainRule(t *testing.T) {
	e, err := funcana.Parse("sin(2x)")
	if err != nil {
		t.Fatal(err)
	}
	d := funcana.DiffExpr(e, "x")
	if d.String() != "2*cos(2*x)" {
		t.Errorf("want 2*cos(2*x), got %s", d.String())
	}
}

func TestDiffN_Exhausts(t *testing.T) {
	e := funcana.PowOf(funcana.S("x"), funcana.N(4))
	if got := funcana.DiffN(e, "x", 4).String(); got != "24" {
		t.Errorf("d^4/dx^4 x^4: want 24, got %s", got)
	}
	if got := funcana.DiffN(e, "x", 5).String(); got != "0" {
		t.Errorf("d^5/dx^5 x^4: want 0, got %s", got)
	}
}

func TestExpand_Binomial(t *testing.T) {
	x := funcana.S("x")
	e := funcana.PowOf(funcana.AddOf(x, funcana.N(1)), funcana.N(2))
	if got := funcana.Expand(e).String(); got != "x^2 + 2*x + 1" {
		t.Errorf("want x^2 + 2*x + 1, got %s", got)
	}
}

func TestExpand_BarePowerTerminates(t *testing.T) {
	e := funcana.PowOf(funcana.S("x"), funcana.N(2))
	if got := funcana.Expand(e).String(); got != "x^2" {
		t.Errorf("want x^2, got %s", got)
	}
}

func TestExpand_CubeOfBinomial(t *testing.T) {
	x := funcana.S("x")
	e := funcana.PowOf(funcana.AddOf(x, funcana.N(1)), funcana.N(3))
	if got := funcana.Expand(e).String(); got != "x^3 + 3*x^2 + 3*x + 1" {
		t.Errorf("want x^3 + 3*x^2 + 3*x + 1, got %s", got)
	}
}

func TestExpand_ProductWithSquare(t *testing.T) {
	e, err := funcana.Parse("x*(x-1)^2")
	if err != nil {
		t.Fatal(err)
	}
	if got := funcana.Expand(e).String(); got != "x^3 - 2*x^2 + x" {
		t.Errorf("want x^3 - 2*x^2 + x, got %s", got)
	}
}

func TestCollect_DegreeDescending(t *testing.T) {
	e, err := funcana.Parse("1 + x^2 + x")
	if err != nil {
		t.Fatal(err)
	}
	if got := funcana.Collect(e, "x").String(); got != "x^2 + x + 1" {
		t.Errorf("want x^2 + x + 1, got %s", got)
	}
}

// ============================================================
// JSON round trip
// ============================================================

func TestJSON_RoundTrip(t *testing.T) {
	e, err := funcana.Parse("x^2 + 1/3*sin(x)")
	if err != nil {
		t.Fatal(err)
	}
	data, err := funcana.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	back, err := funcana.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Equal(back) {
		t.Errorf("round trip changed expression: %s vs %s", e.String(), back.String())
	}
}

func TestJSON_ApproxMarkerSurvives(t *testing.T) {
	e := funcana.MulOf(funcana.NFloat(1.5), funcana.S("x"))
	data, err := funcana.ToJSON(e)
	if err != nil {
		t.Fatal(err)
	}
	back, err := funcana.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if funcana.IsExactExpr(back) {
		t.Error("approx marker lost over the wire")
	}
}

func TestJSON_RejectsUnknownFunctionName(t *testing.T) {
	// The derivative table is closed over the constructible names, so the
	// wire format must refuse anything outside it.
	raw := `{"type":"func","name":"sinh","arg":{"type":"sym","name":"x"}}`
	if _, err := funcana.FromJSON([]byte(raw)); err == nil {
		t.Error("unknown function name must be rejected")
	}
}

func TestJSON_Constant(t *testing.T) {
	data, err := funcana.ToJSON(funcana.Pi())
	if err != nil {
		t.Fatal(err)
	}
	back, err := funcana.FromJSON(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.String() != "pi" {
		t.Errorf("want pi, got %s", back.String())
	}
}

// ============================================================
// LaTeX rendering
// ============================================================

func TestLaTeX_Fraction(t *testing.T) {
	e, err := funcana.Parse("1/2*x")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.LaTeX(); got != `\frac{1}{2} x` {
		t.Errorf("want \\frac{1}{2} x, got %s", got)
	}
}

func TestLaTeX_Sqrt(t *testing.T) {
	e := funcana.SqrtOf(funcana.S("x"))
	if got := e.LaTeX(); got != `\sqrt{x}` {
		t.Errorf("want \\sqrt{x}, got %s", got)
	}
}
