package funcana_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================
// Trigonometric root tests
// ============================================================

func TestTrigRoots_SinDoubleFrequency(t *testing.T) {
	fn := build(t, "sin(2x)")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0", "1/2*pi"}
	if diff := cmp.Diff(want, rootPositions(roots)); diff != "" {
		t.Errorf("representative roots mismatch (-want +got):\n%s", diff)
	}
	for _, r := range roots {
		if !r.IsExact {
			t.Errorf("unit-circle root %s must be exact", r.Position)
		}
	}
}

func TestTrigRoots_ShiftedSine(t *testing.T) {
	fn := build(t, "2sin(x) - 1")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1/6*pi", "5/6*pi"}
	if diff := cmp.Diff(want, rootPositions(roots)); diff != "" {
		t.Errorf("sin(x)=1/2 roots mismatch (-want +got):\n%s", diff)
	}
}

func TestTrigRoots_CosineNone(t *testing.T) {
	// cos(x) = 2 has no solutions.
	fn := build(t, "cos(x) - 2")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 0 {
		t.Errorf("want no roots, got %v", rootPositions(roots))
	}
}

func TestTrigRoots_NonTableValueIsInexact(t *testing.T) {
	// sin(x) = 1/3 is off the unit-circle table; positions come from
	// math.Asin and must carry the inexact flag.
	fn := build(t, "3sin(x) - 1")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 2 {
		t.Fatalf("want two roots per period, got %d", len(roots))
	}
	for _, r := range roots {
		if r.IsExact {
			t.Errorf("arcsine-derived root %s must be inexact", r.Position)
		}
	}
	x, ok := roots[0].Position.Eval()
	if !ok || math.Abs(math.Sin(x)-1.0/3.0) > 1e-9 {
		t.Errorf("root %v does not satisfy sin(x)=1/3", x)
	}
}

func TestTrigRootsIn_EnumeratesInterval(t *testing.T) {
	fn := build(t, "sin(x)")
	roots, err := fn.RootsIn(-7, 7)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-2*pi", "-pi", "0", "pi", "2*pi"}
	if diff := cmp.Diff(want, rootPositions(roots)); diff != "" {
		t.Errorf("interval roots mismatch (-want +got):\n%s", diff)
	}
}

func TestTrigRootsIn_WindowAwayFromZero(t *testing.T) {
	fn := build(t, "sin(2x)")
	roots, err := fn.RootsIn(10, 13)
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) == 0 {
		t.Fatal("sin(2x) has roots every pi/2; the window cannot be empty")
	}
	for _, r := range roots {
		x, ok := r.Position.Eval()
		if !ok || x < 10 || x >= 13 {
			t.Errorf("root %s outside [10, 13)", r.Position)
		}
		if math.Abs(math.Sin(2*x)) > 1e-9 {
			t.Errorf("position %v is not a zero of sin(2x)", x)
		}
	}
}

func TestPeriodicGenerator_Sine(t *testing.T) {
	fn := build(t, "sin(x)")
	gens, err := fn.PeriodicGenerator()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, g := range gens {
		got = append(got, g.String())
	}
	want := []string{"2*n*pi", "pi + 2*n*pi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("generator mismatch (-want +got):\n%s", diff)
	}
}

func TestPeriodicGenerator_RequiresTrigFamily(t *testing.T) {
	fn := build(t, "x^2")
	if _, err := fn.PeriodicGenerator(); err == nil {
		t.Error("polynomials have no periodic root set")
	}
}

// ============================================================
// Exponential root tests
// ============================================================

func TestExpRoots_ShiftedExp(t *testing.T) {
	fn := build(t, "exp(x) - 1")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("want one root, got %d", len(roots))
	}
	r := roots[0]
	if r.Position.String() != "0" || !r.IsExact {
		t.Errorf("want exact root 0, got %s exact=%t", r.Position, r.IsExact)
	}
}

func TestExpRoots_PowerBase(t *testing.T) {
	// 2^x = 8 keeps its position as ln(8)/ln(2), exact and evaluable to 3.
	fn := build(t, "2^x - 8")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("want one root, got %d", len(roots))
	}
	r := roots[0]
	if !r.IsExact {
		t.Error("logarithmic closed form is exact")
	}
	x, ok := r.Position.Eval()
	if !ok || math.Abs(x-3) > 1e-12 {
		t.Errorf("want ln(8)/ln(2) = 3, got %v", x)
	}
}

func TestExpRoots_NeverReachesZero(t *testing.T) {
	fn := build(t, "exp(x) + 1")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 0 {
		t.Errorf("exp(x) = -1 has no solutions, got %v", rootPositions(roots))
	}
}

func TestExpRoots_ScaledAndShiftedArgument(t *testing.T) {
	// 4*exp(2x - 2) - 4 = 0  =>  x = 1.
	fn := build(t, "4*exp(2x + -2) - 4")
	roots, err := fn.Roots()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 {
		t.Fatalf("want one root, got %d", len(roots))
	}
	if got := roots[0].Position.String(); got != "1" {
		t.Errorf("want root 1, got %s", got)
	}
}
