// Package calc implements the arithmetic shared by the MCP tool handlers and
// the direct /calculate endpoint. Both paths go through Apply so their
// semantics cannot drift, divide-by-zero handling included.
package calc

import (
	"errors"
	"fmt"
	"strconv"
)

// Operation identifies one of the supported arithmetic operations.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
)

var (
	ErrDivideByZero     = errors.New("division by zero")
	ErrUnknownOperation = errors.New("unknown operation")
)

// Operations lists every supported operation in wire order.
func Operations() []Operation {
	return []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide}
}

// ParseOperation converts a wire name into an Operation.
func ParseOperation(name string) (Operation, error) {
	switch Operation(name) {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return Operation(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
}

// Apply performs the operation on a and b. The divisor is checked before
// dividing so a zero divisor is an error, never Inf or NaN.
func (op Operation) Apply(a, b float64) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivideByZero
		}
		return a / b, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}
}

// Noun returns the name of the operation's result, used in summaries
// ("The quotient of 10 and 4 is 2.5").
func (op Operation) Noun() string {
	switch op {
	case OpAdd:
		return "sum"
	case OpSubtract:
		return "difference"
	case OpMultiply:
		return "product"
	case OpDivide:
		return "quotient"
	default:
		return "result"
	}
}

// Summary renders the human-readable sentence for a completed operation.
func (op Operation) Summary(a, b, result float64) string {
	return fmt.Sprintf("The %s of %s and %s is %s.",
		op.Noun(), FormatNumber(a), FormatNumber(b), FormatNumber(result))
}

// FormatNumber renders a float with the fewest digits that round-trip, so
// whole numbers print without a decimal point.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
