package tools

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
)

// calculatorWhitelist is the exact function/constant whitelist from spec
// §4.3; any other identifier is rejected.
var calculatorFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"log10": math.Log10,
}

var calculatorConsts = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// CalculatorTool is a safe evaluator over a whitelist of functions,
// grounded on spec §4.3. It uses go/parser to parse the expression into
// an AST and walks it directly rather than executing anything, which is
// why this tool is one of the few built on the standard library alone —
// see DESIGN.md.
type CalculatorTool struct{}

// NewCalculatorTool constructs the calculator tool.
func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

func (t *CalculatorTool) Name() string { return "calculator" }

func (t *CalculatorTool) Description() string {
	return `Evaluate a numeric expression. Whitelisted functions: sqrt, pow, sin, cos, tan, log, log10; constants: pi, e. Args: {"expression": "sqrt(2) + pow(2, 10)"}`
}

func (t *CalculatorTool) ParametersSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{"expression": map[string]any{"type": "string"}},
		"required":   []string{"expression"},
	}
}

func (t *CalculatorTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	expr, ok := args["expression"].(string)
	if !ok || expr == "" {
		return `{"error": "calculator requires an 'expression' argument"}`, nil
	}

	node, err := parser.ParseExpr(expr)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, "could not parse expression: "+err.Error()), nil
	}

	result, err := evalCalculatorNode(node)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error()), nil
	}
	return fmt.Sprintf(`{"result": %v}`, result), nil
}

// evalCalculatorNode evaluates a parsed expression AST, rejecting any
// identifier not in the whitelist (spec §4.3: "rejects any unknown name").
func evalCalculatorNode(n ast.Expr) (float64, error) {
	switch e := n.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return 0, fmt.Errorf("unsupported literal kind")
		}
		var f float64
		if _, err := fmt.Sscanf(e.Value, "%g", &f); err != nil {
			return 0, fmt.Errorf("invalid numeric literal %q", e.Value)
		}
		return f, nil
	case *ast.Ident:
		if v, ok := calculatorConsts[e.Name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown identifier %q", e.Name)
	case *ast.ParenExpr:
		return evalCalculatorNode(e.X)
	case *ast.UnaryExpr:
		v, err := evalCalculatorNode(e.X)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		default:
			return 0, fmt.Errorf("unsupported unary operator %v", e.Op)
		}
	case *ast.BinaryExpr:
		left, err := evalCalculatorNode(e.X)
		if err != nil {
			return 0, err
		}
		right, err := evalCalculatorNode(e.Y)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case token.ADD:
			return left + right, nil
		case token.SUB:
			return left - right, nil
		case token.MUL:
			return left * right, nil
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		default:
			return 0, fmt.Errorf("unsupported operator %v", e.Op)
		}
	case *ast.CallExpr:
		fnIdent, ok := e.Fun.(*ast.Ident)
		if !ok {
			return 0, fmt.Errorf("unsupported function expression")
		}
		if fnIdent.Name == "pow" {
			if len(e.Args) != 2 {
				return 0, fmt.Errorf("pow requires exactly 2 arguments")
			}
			base, err := evalCalculatorNode(e.Args[0])
			if err != nil {
				return 0, err
			}
			exp, err := evalCalculatorNode(e.Args[1])
			if err != nil {
				return 0, err
			}
			return math.Pow(base, exp), nil
		}
		fn, ok := calculatorFuncs[fnIdent.Name]
		if !ok {
			return 0, fmt.Errorf("unknown function %q", fnIdent.Name)
		}
		if len(e.Args) != 1 {
			return 0, fmt.Errorf("%s requires exactly 1 argument", fnIdent.Name)
		}
		arg, err := evalCalculatorNode(e.Args[0])
		if err != nil {
			return 0, err
		}
		return fn(arg), nil
	default:
		return 0, fmt.Errorf("unsupported expression")
	}
}
