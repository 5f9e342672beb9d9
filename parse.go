package funcana

import (
	"math/big"
	"strings"
	"unicode"
)

// ============================================================
// Expression Normalizer — text input
// ============================================================
//
// Conventional infix notation with ^ for exponents and schoolbook implicit
// multiplication: 2x, )( and x( multiply, xsin(x) is x*sin(x). The token
// whitelist is enforced before parsing; anything outside it is a
// ParseSecurityViolation rather than a syntax error.

// knownNames are the multi-character names the lexer may resolve inside a
// letter run, longest first so "exp" wins over "e".
var knownNames = []string{"sqrt", "sin", "cos", "tan", "abs", "exp", "log", "ln", "pi", "e"}

var functionNames = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"exp": true, "ln": true, "log": true,
	"sqrt": true, "abs": true,
}

type tokenKind int

const (
	tokNum tokenKind = iota
	tokName
	tokOp
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// Parse normalizes raw text into a canonical expression.
func Parse(input string) (Expr, error) {
	if err := checkWhitelist(input); err != nil {
		return nil, err
	}
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{input: input, toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, &ExpressionParseError{Input: input, Offending: p.peek().text, Reason: "unexpected trailing input"}
	}
	return e.Simplify(), nil
}

func checkWhitelist(input string) error {
	for _, r := range input {
		switch {
		case unicode.IsDigit(r) || unicode.IsLetter(r):
		case strings.ContainsRune("+-*/^(). \t\r\n", r):
		default:
			return &ParseSecurityViolation{Input: input, Offending: string(r)}
		}
	}
	return nil
}

func lex(input string) ([]token, error) {
	toks := []token{}
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c >= '0' && c <= '9':
			start := i
			seenDot := false
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.' && !seenDot) {
				if input[i] == '.' {
					seenDot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNum, text: input[start:i], pos: start})
		case isLetterByte(c):
			start := i
			for i < len(input) && isLetterByte(input[i]) {
				i++
			}
			toks = append(toks, token{kind: tokName, text: input[start:i], pos: start})
		case strings.IndexByte("+-*/^()", c) >= 0:
			toks = append(toks, token{kind: tokOp, text: string(c), pos: i})
			i++
		default:
			return nil, &ExpressionParseError{Input: input, Offending: string(c), Reason: "unexpected character"}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(input)})
	return toks, nil
}

func isLetterByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type parser struct {
	input string
	toks  []token
	pos   int
}

func (p *parser) peek() token { return p.toks[p.pos] }
func (p *parser) next() token { t := p.toks[p.pos]; p.pos++; return t }

func (p *parser) expectOp(op string) error {
	t := p.peek()
	if t.kind == tokOp && t.text == op {
		p.pos++
		return nil
	}
	if op == ")" {
		return &ExpressionParseError{Input: p.input, Reason: "unbalanced parentheses"}
	}
	return &ExpressionParseError{Input: p.input, Offending: t.text, Reason: "expected " + op}
}

// parseSum handles + and -. Sign runs like "+-" fold deterministically into
// a single unary sign, so "x^3+-2x+1" parses as x^3 - 2x + 1.
func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	terms := []Expr{left}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			break
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			right = MulOf(N(-1), right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return AddOf(terms...), nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	factors := []Expr{left}
	for {
		t := p.peek()
		if t.kind == tokOp && (t.text == "*" || t.text == "/") {
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			if t.text == "/" {
				right = PowOf(right, N(-1))
			}
			factors = append(factors, right)
			continue
		}
		// Implicit multiplication: a number, name, or opening parenthesis
		// directly after a completed factor.
		if t.kind == tokNum || t.kind == tokName || (t.kind == tokOp && t.text == "(") {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			factors = append(factors, right)
			continue
		}
		break
	}
	if len(factors) == 1 {
		return factors[0], nil
	}
	return MulOf(factors...), nil
}

func (p *parser) parseUnary() (Expr, error) {
	sign := int64(1)
	for {
		t := p.peek()
		if t.kind == tokOp && (t.text == "+" || t.text == "-") {
			p.next()
			if t.text == "-" {
				sign = -sign
			}
			continue
		}
		break
	}
	e, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	if sign < 0 {
		return MulOf(N(-1), e), nil
	}
	return e, nil
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp && t.text == "^" {
		p.next()
		// Right-associative; the exponent may carry its own sign: x^-2.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokNum:
		p.next()
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, &ExpressionParseError{Input: p.input, Offending: t.text, Reason: "invalid number"}
		}
		// Decimal literals are finite rationals; they stay exact.
		return RatNum(r), nil
	case t.kind == tokName:
		p.next()
		return p.resolveRun(t.text)
	case t.kind == tokOp && t.text == "(":
		p.next()
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return e, nil
	case t.kind == tokEOF:
		return nil, &ExpressionParseError{Input: p.input, Reason: "unexpected end of input"}
	}
	return nil, &ExpressionParseError{Input: p.input, Offending: t.text, Reason: "unexpected token"}
}

// resolveRun turns a maximal letter run into an expression: a function
// application when the run ends in a function name, otherwise an implicit
// product of constants and single-letter symbols ("ax" -> a*x).
func (p *parser) resolveRun(run string) (Expr, error) {
	pieces := splitRun(run)
	last := pieces[len(pieces)-1]
	followedByParen := p.peek().kind == tokOp && p.peek().text == "("

	var factors []Expr
	for i, piece := range pieces {
		isLast := i == len(pieces)-1
		if functionNames[piece] {
			if !isLast || !followedByParen {
				return nil, &ExpressionParseError{Input: p.input, Offending: piece, Reason: "function name requires parentheses"}
			}
			continue // handled below
		}
		factors = append(factors, nameExpr(piece))
	}

	if functionNames[last] && followedByParen {
		p.next() // consume "("
		arg, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		factors = append(factors, applyFunc(last, arg))
	} else if followedByParen && len(run) > 1 && last != "pi" && last != "e" {
		// A multi-letter run applied like a call is a typo'd function name,
		// not implicit multiplication. Known constants still multiply:
		// pi(x+1) is pi*(x+1).
		return nil, &ExpressionParseError{Input: p.input, Offending: run, Reason: "unrecognized function name"}
	}

	if len(factors) == 1 {
		return factors[0], nil
	}
	return MulOf(factors...), nil
}

func splitRun(run string) []string {
	pieces := []string{}
	for len(run) > 0 {
		matched := false
		for _, name := range knownNames {
			if strings.HasPrefix(run, name) {
				pieces = append(pieces, name)
				run = run[len(name):]
				matched = true
				break
			}
		}
		if !matched {
			pieces = append(pieces, run[:1])
			run = run[1:]
		}
	}
	return pieces
}

func nameExpr(piece string) Expr {
	switch piece {
	case "pi":
		return Pi()
	case "e":
		return EConst()
	}
	return S(piece)
}

func applyFunc(name string, arg Expr) Expr {
	switch name {
	case "sin":
		return SinOf(arg)
	case "cos":
		return CosOf(arg)
	case "tan":
		return TanOf(arg)
	case "exp":
		return ExpOf(arg)
	case "ln", "log":
		return LnOf(arg)
	case "sqrt":
		return SqrtOf(arg)
	case "abs":
		return AbsOf(arg)
	}
	return funcOf(name, arg).Simplify()
}
