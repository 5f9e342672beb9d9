package funcana_test

import (
	"encoding/json"
	"strings"
	"testing"

	funcana "github.com/funcana/funcana"
)

// ============================================================
// Tool-call layer tests
// ============================================================

func call(tool string, params map[string]interface{}) funcana.ToolResponse {
	return funcana.HandleToolCall(funcana.ToolRequest{Tool: tool, Params: params})
}

func TestToolCall_ClassifyAndBuild(t *testing.T) {
	resp := call("classify_and_build", map[string]interface{}{"expr": "x^2 - 4x + 3"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("want object result, got %T", resp.Result)
	}
	if result["family"] != "polynomial" || result["variable"] != "x" {
		t.Errorf("want polynomial in x, got family=%v variable=%v", result["family"], result["variable"])
	}
	if resp.String != "x^2 - 4*x + 3" {
		t.Errorf("canonical string mismatch: %s", resp.String)
	}
}

func TestToolCall_RootsString(t *testing.T) {
	resp := call("roots", map[string]interface{}{"expr": "x^2 - 4x + 3"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "1, 3" {
		t.Errorf("want \"1, 3\", got %q", resp.String)
	}
}

func TestToolCall_RootsWithinInterval(t *testing.T) {
	resp := call("roots", map[string]interface{}{
		"expr": "sin(x)", "lo": float64(-7), "hi": float64(7),
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "-2*pi, -pi, 0, pi, 2*pi" {
		t.Errorf("want the five roots inside [-7, 7), got %q", resp.String)
	}
}

func TestToolCall_DerivativeWithOrder(t *testing.T) {
	resp := call("derivative", map[string]interface{}{"expr": "x^3", "order": float64(2)})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "6*x" {
		t.Errorf("want 6*x, got %s", resp.String)
	}
}

func TestToolCall_ExplicitVariable(t *testing.T) {
	resp := call("derivative", map[string]interface{}{"expr": "a*x + b", "variable": "a"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "x" {
		t.Errorf("d/da (a*x+b) should be x, got %s", resp.String)
	}
}

func TestToolCall_EvaluateExact(t *testing.T) {
	resp := call("evaluate", map[string]interface{}{"expr": "x^2 - 4x + 3", "point": "1/2"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "5/4" {
		t.Errorf("want 5/4, got %s", resp.String)
	}
}

func TestToolCall_ParseErrorSurfaces(t *testing.T) {
	resp := call("roots", map[string]interface{}{"expr": "x; drop table"})
	if resp.Error == "" {
		t.Fatal("whitelist violation must surface as an error")
	}
	if !strings.Contains(resp.Error, "disallowed token") {
		t.Errorf("error should name the rejected token, got %q", resp.Error)
	}
}

func TestToolCall_UnknownTool(t *testing.T) {
	resp := call("divide_by_zero", nil)
	if resp.Error == "" || !strings.Contains(resp.Error, "unknown tool") {
		t.Errorf("want unknown-tool error, got %+v", resp)
	}
}

func TestToolCall_SymmetryString(t *testing.T) {
	resp := call("symmetry", map[string]interface{}{"expr": "x^3"})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "odd" {
		t.Errorf("want odd, got %s", resp.String)
	}
}

func TestToolSpec_IsValidJSON(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string                 `json:"name"`
			InputSchema map[string]interface{} `json:"inputSchema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(funcana.ToolSpec()), &spec); err != nil {
		t.Fatal(err)
	}
	if len(spec.Tools) != 18 {
		t.Errorf("want 18 tools, got %d", len(spec.Tools))
	}
	for _, tool := range spec.Tools {
		if tool.Name == "" || tool.InputSchema == nil {
			t.Errorf("incomplete tool entry: %+v", tool)
		}
	}
}
