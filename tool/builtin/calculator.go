// Package builtin provides small ready-made tools for the CLI and examples.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/agentloop/tool"
)

// CalculatorName is the registered name of the calculator tool.
const CalculatorName = "calculator"

type calculatorArgs struct {
	Operation string   `json:"operation" description:"Operation to perform" enum:"add,subtract,multiply,divide,power,sqrt"`
	A         float64  `json:"a" description:"First number"`
	B         *float64 `json:"b,omitempty" description:"Second number (not used for sqrt)"`
}

// NewCalculator returns a tool performing basic arithmetic.
func NewCalculator() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		CalculatorName,
		"Perform basic math operations (add, subtract, multiply, divide, power, sqrt)",
		calculatorArgs{},
		calculate,
	)
}

func calculate(_ context.Context, args map[string]any) (any, error) {
	op, _ := args["operation"].(string)
	a, _ := args["a"].(float64)
	b, hasB := args["b"].(float64)

	if op != "sqrt" && !hasB {
		return nil, fmt.Errorf("operation %s requires b", op)
	}

	switch op {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	case "divide":
		if b == 0 {
			return nil, errors.New("division by zero")
		}
		return a / b, nil
	case "power":
		return math.Pow(a, b), nil
	case "sqrt":
		if a < 0 {
			return nil, errors.New("sqrt of negative number")
		}
		return math.Sqrt(a), nil
	}
	return nil, fmt.Errorf("unsupported operation %q", op)
}
