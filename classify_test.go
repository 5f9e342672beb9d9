package funcana_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	funcana "github.com/funcana/funcana"
)

// ============================================================
// Classifier tests
// ============================================================

func mustParse(t *testing.T, input string) funcana.Expr {
	t.Helper()
	e, err := funcana.Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return e
}

func TestClassify_Families(t *testing.T) {
	cases := []struct {
		input string
		want  funcana.Family
	}{
		{"x^2 + 1", funcana.FamilyPolynomial},
		{"3x - 7", funcana.FamilyPolynomial},
		{"42", funcana.FamilyPolynomial},
		{"a*x^2 + b*x + c", funcana.FamilyPolynomial},
		{"(x^2+1)/(x-1)", funcana.FamilyRationalQuotient},
		{"1/x + x", funcana.FamilyRationalQuotient},
		{"2^x", funcana.FamilyExponential},
		{"a*e^(2x) + b", funcana.FamilyExponential},
		{"exp(x) - 1", funcana.FamilyExponential},
		{"2sin(x) - 1", funcana.FamilyTrigonometric},
		{"cos(3x) + 2", funcana.FamilyTrigonometric},
		{"sin(x) + x^2", funcana.FamilyComposite},
		{"sin(x) + exp(x)", funcana.FamilyComposite},
		{"x*exp(x)", funcana.FamilyComposite},
	}
	for _, c := range cases {
		cls, err := funcana.Classify(mustParse(t, c.input))
		if err != nil {
			t.Errorf("Classify(%q): unexpected error %v", c.input, err)
			continue
		}
		if cls.Family != c.want {
			t.Errorf("Classify(%q): want %s, got %s", c.input, c.want, cls.Family)
		}
	}
}

func TestClassify_PrecedenceQuotientBeforeTrig(t *testing.T) {
	// A quotient of polynomials wins over the composite fallback even with
	// several free symbols around.
	cls, err := funcana.Classify(mustParse(t, "(a*x+1)/(x-2)"))
	if err != nil {
		t.Fatal(err)
	}
	if cls.Family != funcana.FamilyRationalQuotient {
		t.Errorf("want rational-quotient, got %s", cls.Family)
	}
	if cls.Variable != "x" {
		t.Errorf("division symbol should be principal, got %q", cls.Variable)
	}
}

func TestClassify_VariableShortlist(t *testing.T) {
	cls, err := funcana.Classify(mustParse(t, "a*t + b"))
	if err != nil {
		t.Fatal(err)
	}
	if cls.Variable != "t" {
		t.Errorf("want variable t, got %q", cls.Variable)
	}
	if diff := cmp.Diff([]string{"a", "b"}, cls.Parameters); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_EvidenceWinsWithoutShortlist(t *testing.T) {
	// q appears inside a function argument, so it outranks the
	// alphabetical rule.
	cls, err := funcana.Classify(mustParse(t, "a*sin(q)"))
	if err != nil {
		t.Fatal(err)
	}
	if cls.Variable != "q" {
		t.Errorf("want variable q, got %q", cls.Variable)
	}
	if cls.Family != funcana.FamilyTrigonometric {
		t.Errorf("want trigonometric, got %s", cls.Family)
	}
}

func TestClassify_AlphabeticalFallback(t *testing.T) {
	cls, err := funcana.Classify(mustParse(t, "a + b"))
	if err != nil {
		t.Fatal(err)
	}
	if cls.Variable != "a" {
		t.Errorf("want variable a, got %q", cls.Variable)
	}
}

func TestClassify_Ambiguous(t *testing.T) {
	_, err := funcana.Classify(mustParse(t, "sin(a) + sin(b)"))
	var amb *funcana.AmbiguousClassificationError
	if !errors.As(err, &amb) {
		t.Fatalf("want AmbiguousClassificationError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("want two candidates, got %v", amb.Candidates)
	}
}

func TestClassify_Constant(t *testing.T) {
	cls, err := funcana.Classify(funcana.F(3, 4))
	if err != nil {
		t.Fatal(err)
	}
	if cls.Family != funcana.FamilyPolynomial || cls.Variable != "" {
		t.Errorf("constant should be degree-0 polynomial with no variable, got %s %q",
			cls.Family, cls.Variable)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		cls, err := funcana.Classify(mustParse(t, "x^3+-2x+1"))
		if err != nil {
			t.Fatal(err)
		}
		if cls.Family != funcana.FamilyPolynomial || cls.Variable != "x" {
			t.Fatalf("run %d: classification drifted: %s %q", i, cls.Family, cls.Variable)
		}
	}
}
