package tools

import (
	"context"
	"fmt"
)

// PythonTool is the restricted expression/statement tool named in spec
// §4.3. It evaluates the same whitelisted arithmetic grammar as the
// calculator tool (see calculator.go) rather than a general-purpose
// interpreter — the spec calls it "restricted," and a whitelist
// evaluator is the restriction; it is kept as a distinct tool because
// callers address it by a distinct name and description in prompts.
type PythonTool struct {
	calc *CalculatorTool
}

// NewPythonTool constructs the python tool.
func NewPythonTool() *PythonTool { return &PythonTool{calc: NewCalculatorTool()} }

func (t *PythonTool) Name() string { return "python" }

func (t *PythonTool) Description() string {
	return `Evaluate a restricted arithmetic expression (no imports, no statements). Args: {"expression": "2 * (3 + 4)"}`
}

func (t *PythonTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"expression": map[string]any{"type": "string"}},
		"required":   []string{"expression"},
	}
}

func (t *PythonTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	expr, ok := args["expression"].(string)
	if !ok || expr == "" {
		return "", fmt.Errorf("python requires an 'expression' argument")
	}
	return t.calc.Execute(ctx, args)
}
