package funcana

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// Tool-call layer
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches one request against the analysis engine. The
// function accepts an expression either as raw text (run through the
// whitelist parser) or as a serialized tree, with optional explicit roles.
func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return int(f), nil
	}
	getFloat := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return Parse(val)
		case float64:
			if val == float64(int64(val)) {
				return N(int64(val)), nil
			}
			return NFloat(val), nil
		case map[string]interface{}:
			return exprFromJSON(val)
		}
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	getFunction := func() (*Function, error) {
		e, err := getExpr("expr")
		if err != nil {
			return nil, err
		}
		fn, err := ClassifyAndBuild(e)
		if err != nil {
			return nil, err
		}
		if v, ok := req.Params["variable"].(string); ok && v != "" {
			return fn.WithExplicitRoles(v, nil)
		}
		return fn, nil
	}
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(), String: e.String()}
	}
	respondFunction := func(fn *Function) ToolResponse {
		return ToolResponse{
			Result: map[string]interface{}{
				"expr":       fn.Expr().toJSON(),
				"family":     fn.Family().String(),
				"variable":   fn.Variable(),
				"parameters": fn.Parameters(),
			},
			LaTeX:  fn.LaTeX(),
			String: fn.String(),
		}
	}
	respondRoots := func(roots []Root) ToolResponse {
		out := make([]map[string]interface{}, len(roots))
		strs := ""
		for i, r := range roots {
			out[i] = map[string]interface{}{
				"position":     r.Position.String(),
				"latex":        r.Position.LaTeX(),
				"multiplicity": r.Multiplicity,
				"kind":         r.Kind.String(),
				"is_exact":     r.IsExact,
			}
			if i > 0 {
				strs += ", "
			}
			strs += r.Position.String()
		}
		return ToolResponse{Result: out, String: strs}
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "classify_and_build":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		return respondFunction(fn)

	case "evaluate":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		point, err := getExpr("point")
		if err != nil {
			return fail(err)
		}
		v, err := fn.Evaluate(point)
		if err != nil {
			return fail(err)
		}
		return respond(v)

	case "evaluate_numeric":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		x, err := getFloat("x")
		if err != nil {
			return fail(err)
		}
		y, err := fn.EvaluateNumeric(x)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: y, String: fmt.Sprintf("%g", y)}

	case "derivative":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		order := 1
		if _, ok := req.Params["order"]; ok {
			if order, err = getInt("order"); err != nil {
				return fail(err)
			}
		}
		df, err := fn.Derivative(order)
		if err != nil {
			return fail(err)
		}
		return respondFunction(df)

	case "roots":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		var roots []Root
		_, hasLo := req.Params["lo"]
		_, hasHi := req.Params["hi"]
		withComplex, _ := req.Params["include_complex"].(bool)
		if hasLo && hasHi {
			var lo, hi float64
			if lo, err = getFloat("lo"); err != nil {
				return fail(err)
			}
			if hi, err = getFloat("hi"); err != nil {
				return fail(err)
			}
			roots, err = fn.RootsIn(lo, hi)
		} else if withComplex {
			roots, err = fn.ComplexRoots()
		} else {
			roots, err = fn.Roots()
		}
		if err != nil {
			return fail(err)
		}
		return respondRoots(roots)

	case "poles":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		poles, err := fn.Poles()
		if err != nil {
			return fail(err)
		}
		return respondRoots(poles)

	case "extrema":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		ext, err := fn.Extrema()
		if err != nil {
			return fail(err)
		}
		out := make([]map[string]interface{}, len(ext))
		for i, e := range ext {
			out[i] = map[string]interface{}{
				"position": e.Position.String(),
				"value":    e.Value.String(),
				"kind":     e.Kind.String(),
				"is_exact": e.IsExact,
			}
		}
		return ToolResponse{Result: out}

	case "inflection_points":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		pts, err := fn.InflectionPoints()
		if err != nil {
			return fail(err)
		}
		out := make([]map[string]interface{}, len(pts))
		for i, p := range pts {
			out[i] = map[string]interface{}{
				"position": p.Position.String(),
				"value":    p.Value.String(),
				"simple":   p.Simple,
				"is_exact": p.IsExact,
			}
		}
		return ToolResponse{Result: out}

	case "symmetry":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		s, err := fn.Symmetry()
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: s.String(), String: s.String()}

	case "tangent":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		point, err := getExpr("point")
		if err != nil {
			return fail(err)
		}
		t, err := fn.Tangent(point)
		if err != nil {
			return fail(err)
		}
		return respondFunction(t)

	case "with_parameter":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		name, err := getString("name")
		if err != nil {
			return fail(err)
		}
		value, err := getExpr("value")
		if err != nil {
			return fail(err)
		}
		bound, err := fn.WithParameter(name, value)
		if err != nil {
			return fail(err)
		}
		return respondFunction(bound)

	case "periodic_generator":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		gens, err := fn.PeriodicGenerator()
		if err != nil {
			return fail(err)
		}
		strs := make([]string, len(gens))
		for i, g := range gens {
			strs[i] = g.String()
		}
		return ToolResponse{Result: strs}

	case "value_table":
		fn, err := getFunction()
		if err != nil {
			return fail(err)
		}
		lo, err := getFloat("lo")
		if err != nil {
			return fail(err)
		}
		hi, err := getFloat("hi")
		if err != nil {
			return fail(err)
		}
		n := 11
		if _, ok := req.Params["n"]; ok {
			if n, err = getInt("n"); err != nil {
				return fail(err)
			}
		}
		samples, err := fn.ValueTable(lo, hi, n)
		if err != nil {
			return fail(err)
		}
		out := make([]map[string]interface{}, len(samples))
		for i, s := range samples {
			out[i] = map[string]interface{}{"x": s.X, "y": s.Y}
		}
		return ToolResponse{Result: out}

	case "to_latex":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: e.Simplify().LaTeX(), LaTeX: e.Simplify().LaTeX()}

	case "simplify":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(e.Simplify())

	case "expand":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(Expand(e))

	case "substitute":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := getString("var")
		if err != nil {
			return fail(err)
		}
		value, err := getExpr("value")
		if err != nil {
			return fail(err)
		}
		return respond(e.Sub(v, value).Simplify())

	case "tool_spec":
		return ToolResponse{Result: ToolSpec(), String: "analysis tool specification"}
	}

	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("classify_and_build", "Parse and classify a function; returns family, variable, parameters", []string{"expr"}, map[string]string{"expr": "string", "variable": "string"}),
		ts("evaluate", "Exact evaluation at a point", []string{"expr", "point"}, map[string]string{"expr": "string", "point": "string"}),
		ts("evaluate_numeric", "Floating-point evaluation. Requires x (number)", []string{"expr", "x"}, map[string]string{"expr": "string", "x": "number"}),
		ts("derivative", "Derivative as a new classified function. Optional order (int)", []string{"expr"}, map[string]string{"expr": "string", "order": "integer"}),
		ts("roots", "Zeros with multiplicity, kind, and exactness. Optional include_complex (bool) or interval lo/hi (numbers)", []string{"expr"}, map[string]string{"expr": "string", "include_complex": "boolean", "lo": "number", "hi": "number"}),
		ts("poles", "Denominator zeros of a rational quotient", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("extrema", "Classified stationary points", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("inflection_points", "Curvature changes confirmed by the third derivative", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("symmetry", "Even/odd/none about the origin", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("tangent", "Tangent line at a point as a new function", []string{"expr", "point"}, map[string]string{"expr": "string", "point": "string"}),
		ts("with_parameter", "Bind one parameter to an exact value and re-classify", []string{"expr", "name", "value"}, map[string]string{"expr": "string", "name": "string", "value": "string"}),
		ts("periodic_generator", "Root-set generators over integer n for trigonometric functions", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("value_table", "Numeric samples on [lo, hi]. Optional n (int)", []string{"expr", "lo", "hi"}, map[string]string{"expr": "string", "lo": "number", "hi": "number", "n": "integer"}),
		ts("to_latex", "Convert to LaTeX", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("expand", "Algebraically expand expression", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "string", "var": "string", "value": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
