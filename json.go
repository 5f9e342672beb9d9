package funcana

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON serialization
// ============================================================

// ToJSON serializes an expression tree. Numbers travel as exact rational
// strings; float-born atoms carry an approx marker so provenance survives
// the wire.
func ToJSON(e Expr) ([]byte, error) {
	return json.Marshal(e.toJSON())
}

// FromJSON rebuilds an expression tree. The result is simplified once so
// that a round trip lands back in canonical form.
func FromJSON(data []byte) (Expr, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	e, err := exprFromJSON(raw)
	if err != nil {
		return nil, err
	}
	return e.Simplify(), nil
}

func exprFromJSON(raw map[string]interface{}) (Expr, error) {
	kind, _ := raw["type"].(string)
	switch kind {
	case "num":
		s, _ := raw["value"].(string)
		r := new(big.Rat)
		if _, ok := r.SetString(s); !ok {
			return nil, fmt.Errorf("invalid rational %q", s)
		}
		n := RatNum(r)
		if approx, _ := raw["approx"].(bool); approx {
			n.approx = true
		}
		return n, nil
	case "sym":
		name, _ := raw["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("sym node without name")
		}
		return S(name), nil
	case "const":
		name, _ := raw["name"].(string)
		switch name {
		case "pi":
			return Pi(), nil
		case "e":
			return EConst(), nil
		}
		return nil, fmt.Errorf("unknown constant %q", name)
	case "add":
		terms, err := exprListFromJSON(raw["terms"])
		if err != nil {
			return nil, err
		}
		return &Add{terms: terms}, nil
	case "mul":
		factors, err := exprListFromJSON(raw["factors"])
		if err != nil {
			return nil, err
		}
		return &Mul{factors: factors}, nil
	case "pow":
		base, err := childFromJSON(raw["base"])
		if err != nil {
			return nil, err
		}
		exp, err := childFromJSON(raw["exp"])
		if err != nil {
			return nil, err
		}
		return &Pow{base: base, exp: exp}, nil
	case "func":
		name, _ := raw["name"].(string)
		arg, err := childFromJSON(raw["arg"])
		if err != nil {
			return nil, err
		}
		if _, ok := knownFuncs[name]; !ok {
			return nil, fmt.Errorf("unknown function %q", name)
		}
		return funcOf(name, arg), nil
	}
	return nil, fmt.Errorf("unknown node type %q", kind)
}

var knownFuncs = map[string]struct{}{
	"sin": {}, "cos": {}, "tan": {}, "exp": {}, "ln": {}, "abs": {},
}

func childFromJSON(v interface{}) (Expr, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed child node %v", v)
	}
	return exprFromJSON(m)
}

func exprListFromJSON(v interface{}) ([]Expr, error) {
	list, ok := v.([]interface{})
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("malformed node list %v", v)
	}
	out := make([]Expr, len(list))
	for i, item := range list {
		e, err := childFromJSON(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
