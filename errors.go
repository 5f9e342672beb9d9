package funcana

import "fmt"

// ============================================================
// Error taxonomy
// ============================================================
//
// All errors are recoverable: the library never terminates the process on
// bad input. Callers match with errors.As.

// ParseSecurityViolation is raised when raw text contains tokens outside
// the input whitelist.
type ParseSecurityViolation struct {
	Input     string
	Offending string
}

func (e *ParseSecurityViolation) Error() string {
	return fmt.Sprintf("disallowed token %q in input %q", e.Offending, e.Input)
}

// ExpressionParseError is raised for structurally malformed input:
// unbalanced parentheses, unknown function names, dangling operators.
type ExpressionParseError struct {
	Input     string
	Offending string
	Reason    string
}

func (e *ExpressionParseError) Error() string {
	if e.Offending != "" {
		return fmt.Sprintf("cannot parse %q: %s at %q", e.Input, e.Reason, e.Offending)
	}
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// UnsupportedOperationError is raised when a query is not meaningful or not
// solvable for the classified family.
type UnsupportedOperationError struct {
	Family    Family
	Operation string
	Reason    string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s not supported for %s: %s", e.Operation, e.Family, e.Reason)
}

// ExactnessViolation is raised when an exact-promising operation produced a
// result containing a float-born numeric atom.
type ExactnessViolation struct {
	Operation string
	Offending Expr
}

func (e *ExactnessViolation) Error() string {
	return fmt.Sprintf("%s produced an approximate sub-expression %s where an exact value was required",
		e.Operation, e.Offending.String())
}

// AmbiguousClassificationError is raised when structural evidence points at
// more than one candidate principal variable and the canonical short-list
// cannot break the tie.
type AmbiguousClassificationError struct {
	Candidates []string
}

func (e *AmbiguousClassificationError) Error() string {
	return fmt.Sprintf("ambiguous principal variable, candidates: %v", e.Candidates)
}
