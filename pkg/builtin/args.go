package builtin

import (
	"fmt"
	"strconv"
	"strings"
)

func argCountError(name string, min, max, got int) error {
	switch {
	case min == max:
		return fmt.Errorf("%s requires exactly %d argument(s), got %d", name, min, got)
	case max < 0:
		return fmt.Errorf("%s requires at least %d argument(s), got %d", name, min, got)
	default:
		return fmt.Errorf("%s requires %d to %d arguments, got %d", name, min, max, got)
	}
}

func checkArgs(name string, args []interface{}, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return argCountError(name, min, max, len(args))
	}
	return nil
}

func hasNull(args []interface{}) bool {
	for _, a := range args {
		if a == nil {
			return true
		}
	}
	return false
}

// nullSafe makes a handler return SQL NULL when any argument is NULL.
func nullSafe(h FunctionHandle) FunctionHandle {
	return func(args []interface{}) (interface{}, error) {
		if hasNull(args) {
			return nil, nil
		}
		return h(args)
	}
}

func toStringArg(arg interface{}) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot convert %T to string", arg)
	}
}

func toFloat64Arg(arg interface{}) (float64, error) {
	switch v := arg.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to float64", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", arg)
	}
}

func toInt64Arg(arg interface{}) (int64, error) {
	switch v := arg.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int64", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to int64", arg)
	}
}

func boolResult(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
