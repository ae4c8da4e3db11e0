package mapper

import (
	"fmt"
	"strings"
)

// EvalConcat evaluates a restricted concatenation expression against the
// given variables. The grammar is deliberately tiny: operands joined by
// '+', where each operand is either a quoted string literal ('...' or
// "...") or a label identifier looked up in vars. Label identifiers may
// contain spaces ("Full Name"). There are no other operators, no
// escapes, no function calls.
func EvalConcat(expr string, vars map[string]string) (string, error) {
	operands, err := splitOperands(expr)
	if err != nil {
		return "", err
	}
	if len(operands) == 0 {
		return "", fmt.Errorf("empty expression")
	}

	var b strings.Builder
	for _, op := range operands {
		part, err := evalOperand(op, vars)
		if err != nil {
			return "", err
		}
		b.WriteString(part)
	}
	return b.String(), nil
}

// splitOperands splits on '+' at quote depth zero
func splitOperands(expr string) ([]string, error) {
	var (
		operands []string
		current  strings.Builder
		quote    rune
	)

	for _, r := range expr {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == '+':
			operands = append(operands, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string literal in %q", expr)
	}
	operands = append(operands, current.String())
	return operands, nil
}

func evalOperand(op string, vars map[string]string) (string, error) {
	op = strings.TrimSpace(op)
	if op == "" {
		return "", fmt.Errorf("empty operand")
	}

	if op[0] == '\'' || op[0] == '"' {
		if len(op) < 2 || op[len(op)-1] != op[0] {
			return "", fmt.Errorf("malformed string literal %q", op)
		}
		return op[1 : len(op)-1], nil
	}

	v, ok := vars[op]
	if !ok {
		return "", fmt.Errorf("unknown label %q", op)
	}
	return v, nil
}
