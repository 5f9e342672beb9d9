package funcana

// ============================================================
// Exactness Validator
// ============================================================

// findApprox returns the first sub-expression carrying float provenance,
// or nil when the expression is fully exact.
func findApprox(e Expr) Expr {
	switch v := e.(type) {
	case *Num:
		if v.approx {
			return v
		}
	case *Add:
		for _, t := range v.terms {
			if hit := findApprox(t); hit != nil {
				return hit
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if hit := findApprox(f); hit != nil {
				return hit
			}
		}
	case *Pow:
		if hit := findApprox(v.base); hit != nil {
			return hit
		}
		return findApprox(v.exp)
	case *Func:
		return findApprox(v.arg)
	}
	return nil
}

// IsExactExpr reports whether e contains no approximate atoms.
func IsExactExpr(e Expr) bool { return findApprox(e) == nil }

// validateExact rejects a result that silently picked up float
// provenance during an operation that promised exact arithmetic.
func validateExact(op string, e Expr) error {
	if hit := findApprox(e); hit != nil {
		return &ExactnessViolation{Operation: op, Offending: hit}
	}
	return nil
}

// validateRoots checks every root record against its own exactness flag:
// a record marked exact must not carry an approximate position.
func validateRoots(op string, roots []Root) error {
	for _, r := range roots {
		if r.IsExact {
			if err := validateExact(op, r.Position); err != nil {
				return err
			}
		}
	}
	return nil
}
