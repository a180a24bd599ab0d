package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weight is the cost of an edge in whole units (meters, dollars, ...).
//
// Fractional inputs are truncated toward zero when parsed, so 12.9 becomes 12
// and -3.7 becomes -3. Negative weights are allowed. Parsed weights are
// bounded by MaxWeight in absolute value.
type Weight int64

// MaxWeight is the largest accepted absolute weight, 2^53-1, the largest
// integer a float64 JSON number holds exactly.
const MaxWeight Weight = 1<<53 - 1

// Int64 returns the weight as an int64
func (w Weight) Int64() int64 {
	return int64(w)
}

// ParseWeight normalizes a decoded value into a Weight.
//
// Accepted: any Go integer or float type, json.Number, and strings holding a
// decimal number. Rejected with ErrInvalidWeight: nil, booleans, empty or
// non-numeric strings, NaN, infinities and values beyond MaxWeight.
func ParseWeight(v any) (Weight, error) {
	w, err := parseWeight(v)
	if err != nil {
		return 0, err
	}
	if err := w.Check(); err != nil {
		return 0, err
	}
	return w, nil
}

// Check reports ErrInvalidWeight if w is beyond MaxWeight in absolute value
func (w Weight) Check() error {
	if w > MaxWeight || w < -MaxWeight {
		return fmt.Errorf("%w: %d out of range", ErrInvalidWeight, w)
	}
	return nil
}

func parseWeight(v any) (Weight, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidWeight)
	case Weight:
		return x, nil
	case int:
		return Weight(x), nil
	case int8:
		return Weight(x), nil
	case int16:
		return Weight(x), nil
	case int32:
		return Weight(x), nil
	case int64:
		return Weight(x), nil
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return Weight(x), nil
	case uint16:
		return Weight(x), nil
	case uint32:
		return Weight(x), nil
	case uint64:
		return fromUint(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		return parseWeightString(string(x))
	case string:
		return parseWeightString(x)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidWeight, v)
	}
}

// UnmarshalJSON accepts JSON numbers and numeric strings
func (w *Weight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: missing", ErrInvalidWeight)
	}

	var v any = json.Number(string(data))
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidWeight, err)
		}
		v = s
	}

	parsed, err := ParseWeight(v)
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// UnmarshalYAML accepts YAML integers, floats and numeric strings
func (w *Weight) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a number", ErrInvalidWeight, value.Line)
	}

	var parsed Weight
	var err error
	switch value.ShortTag() {
	case "!!int":
		var i int64
		if err = value.Decode(&i); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidWeight, value.Line, err)
		}
		parsed = Weight(i)
	case "!!float":
		var f float64
		if err = value.Decode(&f); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidWeight, value.Line, err)
		}
		parsed, err = fromFloat(f)
	case "!!str":
		parsed, err = parseWeightString(value.Value)
	default:
		err = fmt.Errorf("%w: line %d: unsupported value %q", ErrInvalidWeight, value.Line, value.Value)
	}
	if err != nil {
		return err
	}
	if err := parsed.Check(); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*w = parsed
	return nil
}

func parseWeightString(s string) (Weight, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidWeight)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Weight(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidWeight, s)
	}
	return fromFloat(f)
}

func fromFloat(f float64) (Weight, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidWeight, f)
	}
	t := math.Trunc(f)
	// 2^63 is exactly representable; anything at or beyond it overflows int64.
	if t >= math.Exp2(63) || t < -math.Exp2(63) {
		return 0, fmt.Errorf("%w: %v out of range", ErrInvalidWeight, f)
	}
	return Weight(int64(t)), nil
}

func fromUint(u uint64) (Weight, error) {
	if u > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d out of range", ErrInvalidWeight, u)
	}
	return Weight(u), nil
}
