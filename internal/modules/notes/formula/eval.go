package formula

import (
	"fmt"
	"strconv"
)

func evalExpr(e expr, src string, lookup Lookup) (any, error) {
	switch n := e.(type) {
	case *literalExpr:
		return n.value, nil
	case *pathExpr:
		v, ok := lookup(n.path)
		if !ok {
			return nil, &EvalError{Formula: src, Message: fmt.Sprintf("unresolved reference %q", n.path)}
		}
		return v, nil
	case *binaryExpr:
		return evalBinary(n, src, lookup)
	case *ternaryExpr:
		cond, err := evalExpr(n.cond, src, lookup)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return evalExpr(n.then, src, lookup)
		}
		return evalExpr(n.els, src, lookup)
	}
	return nil, &EvalError{Formula: src, Message: "unknown expression form"}
}

func evalBinary(n *binaryExpr, src string, lookup Lookup) (any, error) {
	left, err := evalExpr(n.left, src, lookup)
	if err != nil {
		return nil, err
	}
	right, err := evalExpr(n.right, src, lookup)
	if err != nil {
		return nil, err
	}
	switch n.op {
	case "+":
		if ls, ok := left.(string); ok {
			return ls + toString(right), nil
		}
		if rs, ok := right.(string); ok {
			return toString(left) + rs, nil
		}
		lf, rf, err := numericPair(left, right, n.op, src)
		if err != nil {
			return nil, err
		}
		return lf + rf, nil
	case "-", "*", "/":
		lf, rf, err := numericPair(left, right, n.op, src)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "-":
			return lf - rf, nil
		case "*":
			return lf * rf, nil
		}
		if rf == 0 {
			return nil, &EvalError{Formula: src, Message: "division by zero"}
		}
		return lf / rf, nil
	case "==", "!=":
		eq := looseEqual(left, right)
		if n.op == "!=" {
			return !eq, nil
		}
		return eq, nil
	case "<", "<=", ">", ">=":
		return compare(left, right, n.op, src)
	}
	return nil, &EvalError{Formula: src, Message: fmt.Sprintf("unknown operator %q", n.op)}
}

func compare(left, right any, op, src string) (any, error) {
	if ls, lok := left.(string); lok {
		rs, rok := right.(string)
		if !rok {
			return nil, &EvalError{Formula: src, Message: fmt.Sprintf("operator %q needs two strings or two numbers", op)}
		}
		switch op {
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		}
		return ls >= rs, nil
	}
	lf, rf, err := numericPair(left, right, op, src)
	if err != nil {
		return nil, err
	}
	switch op {
	case "<":
		return lf < rf, nil
	case "<=":
		return lf <= rf, nil
	case ">":
		return lf > rf, nil
	}
	return lf >= rf, nil
}

func numericPair(left, right any, op, src string) (float64, float64, error) {
	lf, lok := asNumber(left)
	rf, rok := asNumber(right)
	if !lok || !rok {
		return 0, 0, &EvalError{Formula: src, Message: fmt.Sprintf("operator %q needs numeric operands, got %T and %T", op, left, right)}
	}
	return lf, rf, nil
}

// asNumber accepts the numeric shapes JSON, YAML and earlier resolver writes
// can produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func looseEqual(left, right any) bool {
	if lf, ok := asNumber(left); ok {
		if rf, ok := asNumber(right); ok {
			return lf == rf
		}
		return false
	}
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		return ok && ls == rs
	}
	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)
		return ok && lb == rb
	}
	return left == nil && right == nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	if f, ok := asNumber(v); ok {
		return f != 0
	}
	return true
}

// toString renders a value for string concatenation; numbers use the
// shortest form that round-trips.
func toString(v any) string {
	if f, ok := asNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
