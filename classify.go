package funcana

import "sort"

// ============================================================
// Structural Classifier
// ============================================================

// Family is the closed classification of a function's algebraic shape.
type Family int

const (
	FamilyPolynomial Family = iota
	FamilyRationalQuotient
	FamilyExponential
	FamilyTrigonometric
	FamilyComposite
)

func (f Family) String() string {
	switch f {
	case FamilyPolynomial:
		return "polynomial"
	case FamilyRationalQuotient:
		return "rational-quotient"
	case FamilyExponential:
		return "exponential"
	case FamilyTrigonometric:
		return "trigonometric"
	case FamilyComposite:
		return "composite"
	}
	return "unknown"
}

// variableShortlist is the fixed priority order for picking the principal
// variable when several free symbols qualify.
var variableShortlist = []string{"x", "y", "z", "t", "u", "v", "w"}

// Classification is the classifier's verdict: the family, the principal
// variable (empty for a pure constant) and the remaining free symbols,
// which become parameters.
type Classification struct {
	Family     Family
	Variable   string
	Parameters []string
}

// Classify inspects a canonical expression and assigns exactly one family,
// one principal variable, and the parameter set. The heuristic is
// best-effort; callers may override the result via WithExplicitRoles.
func Classify(e Expr) (Classification, error) {
	e = e.Simplify()
	syms := sortedSymbols(e)
	if len(syms) == 0 {
		// A pure constant is a polynomial of degree 0 with no variable.
		return Classification{Family: FamilyPolynomial}, nil
	}
	variable, err := principalVariable(e, syms)
	if err != nil {
		return Classification{}, err
	}
	family, variable := familyFor(e, variable, syms)
	params := make([]string, 0, len(syms)-1)
	for _, s := range syms {
		if s != variable {
			params = append(params, s)
		}
	}
	return Classification{Family: family, Variable: variable, Parameters: params}, nil
}

func principalVariable(e Expr, syms []string) (string, error) {
	present := map[string]bool{}
	for _, s := range syms {
		present[s] = true
	}
	for _, s := range variableShortlist {
		if present[s] {
			return s, nil
		}
	}
	evidence := structuralCandidates(e)
	var withEvidence []string
	for _, s := range syms {
		if evidence[s] {
			withEvidence = append(withEvidence, s)
		}
	}
	if len(withEvidence) == 1 {
		return withEvidence[0], nil
	}
	if len(withEvidence) >= 2 {
		return "", &AmbiguousClassificationError{Candidates: withEvidence}
	}
	return syms[0], nil
}

// structuralCandidates collects symbols that carry variable evidence:
// occurrence inside a function argument, a denominator, or an exponent.
func structuralCandidates(e Expr) map[string]bool {
	out := map[string]bool{}
	mark := func(sub Expr) {
		set := map[string]struct{}{}
		collectSymbols(sub, set)
		for s := range set {
			out[s] = true
		}
	}
	var walk func(Expr)
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			mark(v.exp)
			if en, ok := asNum(v.exp); ok && en.IsNegative() {
				mark(v.base)
			}
			walk(v.base)
		case *Func:
			mark(v.arg)
		}
	}
	walk(e)
	return out
}

func familyFor(e Expr, variable string, syms []string) (Family, string) {
	// Rule 1: polynomial in the principal variable, no occurrence of it
	// inside a function, a denominator, or an exponent.
	if isPolynomialIn(e, variable) {
		return FamilyPolynomial, variable
	}
	// Rule 2: quotient with a denominator that is non-constant in the
	// principal variable; the division symbol takes over as variable.
	if num, den, ok := asRationalIn(e, variable); ok && containsSym(den, variable) &&
		isPolynomialIn(num, variable) && isPolynomialIn(den, variable) {
		return FamilyRationalQuotient, variable
	}
	for _, s := range divisionCandidates(e, syms, variable) {
		if num, den, ok := asRationalIn(e, s); ok && containsSym(den, s) &&
			isPolynomialIn(num, s) && isPolynomialIn(den, s) {
			return FamilyRationalQuotient, s
		}
	}
	// Rule 3: the variable appears only in exponent positions.
	if occurrencesOutsideExponents(e, variable) == 0 && containsSym(e, variable) {
		return FamilyExponential, variable
	}
	// Rule 4: the variable appears only inside trigonometric arguments.
	if occurrencesOutsideTrig(e, variable) == 0 && containsTrig(e) {
		return FamilyTrigonometric, variable
	}
	// Rule 5: fallback.
	return FamilyComposite, variable
}

// divisionCandidates lists symbols other than the current variable that
// appear in denominators, in short-list priority order.
func divisionCandidates(e Expr, syms []string, variable string) []string {
	inDenom := map[string]bool{}
	var walk func(Expr)
	walk = func(x Expr) {
		switch v := x.(type) {
		case *Add:
			for _, t := range v.terms {
				walk(t)
			}
		case *Mul:
			for _, f := range v.factors {
				walk(f)
			}
		case *Pow:
			if en, ok := asNum(v.exp); ok && en.IsNegative() {
				for s := range FreeSymbols(v.base) {
					inDenom[s] = true
				}
			}
			walk(v.base)
		case *Func:
			walk(v.arg)
		}
	}
	walk(e)
	ordered := []string{}
	for _, s := range variableShortlist {
		if s != variable && inDenom[s] {
			ordered = append(ordered, s)
		}
	}
	rest := []string{}
	for s := range inDenom {
		if s != variable && !contains(ordered, s) {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// occurrencesOutsideExponents counts occurrences of name that are not
// inside a Pow exponent or an exp() argument.
func occurrencesOutsideExponents(e Expr, name string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
	case *Add:
		n := 0
		for _, t := range v.terms {
			n += occurrencesOutsideExponents(t, name)
		}
		return n
	case *Mul:
		n := 0
		for _, f := range v.factors {
			n += occurrencesOutsideExponents(f, name)
		}
		return n
	case *Pow:
		return occurrencesOutsideExponents(v.base, name)
	case *Func:
		if v.name == "exp" {
			return 0
		}
		return countSym(v.arg, name)
	}
	return 0
}

// occurrencesOutsideTrig counts occurrences of name that are not inside a
// sin/cos/tan argument.
func occurrencesOutsideTrig(e Expr, name string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
	case *Add:
		n := 0
		for _, t := range v.terms {
			n += occurrencesOutsideTrig(t, name)
		}
		return n
	case *Mul:
		n := 0
		for _, f := range v.factors {
			n += occurrencesOutsideTrig(f, name)
		}
		return n
	case *Pow:
		return occurrencesOutsideTrig(v.base, name) + occurrencesOutsideTrig(v.exp, name)
	case *Func:
		if v.name == "sin" || v.name == "cos" || v.name == "tan" {
			return 0
		}
		return countSym(v.arg, name)
	}
	return 0
}

func countSym(e Expr, name string) int {
	switch v := e.(type) {
	case *Sym:
		if v.name == name {
			return 1
		}
	case *Add:
		n := 0
		for _, t := range v.terms {
			n += countSym(t, name)
		}
		return n
	case *Mul:
		n := 0
		for _, f := range v.factors {
			n += countSym(f, name)
		}
		return n
	case *Pow:
		return countSym(v.base, name) + countSym(v.exp, name)
	case *Func:
		return countSym(v.arg, name)
	}
	return 0
}

func containsTrig(e Expr) bool {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			if containsTrig(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if containsTrig(f) {
				return true
			}
		}
	case *Pow:
		return containsTrig(v.base) || containsTrig(v.exp)
	case *Func:
		if v.name == "sin" || v.name == "cos" || v.name == "tan" {
			return true
		}
		return containsTrig(v.arg)
	}
	return false
}

// ============================================================
// Rational decomposition
// ============================================================

// asRationalIn rewrites e as a single quotient num/den with respect to
// varName, combining sums of fractions over a common denominator. It fails
// when varName occurs inside a function or a non-integer power.
func asRationalIn(e Expr, varName string) (num, den Expr, ok bool) {
	switch v := e.(type) {
	case *Num, *Const, *Sym:
		return e, N(1), true
	case *Add:
		num, den = N(0), N(1)
		for _, t := range v.terms {
			tn, td, tok := asRationalIn(t, varName)
			if !tok {
				return nil, nil, false
			}
			num = AddOf(MulOf(num, td), MulOf(tn, den))
			den = MulOf(den, td)
		}
		return num.Simplify(), den.Simplify(), true
	case *Mul:
		num, den = N(1), N(1)
		for _, f := range v.factors {
			fn, fd, fok := asRationalIn(f, varName)
			if !fok {
				return nil, nil, false
			}
			num = MulOf(num, fn)
			den = MulOf(den, fd)
		}
		return num.Simplify(), den.Simplify(), true
	case *Pow:
		if !containsSym(v.base, varName) && !containsSym(v.exp, varName) {
			return e, N(1), true
		}
		if containsSym(v.exp, varName) {
			return nil, nil, false
		}
		en, isN := asNum(v.exp)
		if !isN || !en.IsInteger() || !en.val.Num().IsInt64() {
			return nil, nil, false
		}
		k := en.val.Num().Int64()
		bn, bd, bok := asRationalIn(v.base, varName)
		if !bok {
			return nil, nil, false
		}
		if k >= 0 {
			return PowOf(bn, N(k)), PowOf(bd, N(k)), true
		}
		return PowOf(bd, N(-k)), PowOf(bn, N(-k)), true
	case *Func:
		if containsSym(v.arg, varName) {
			return nil, nil, false
		}
		return e, N(1), true
	}
	return nil, nil, false
}
