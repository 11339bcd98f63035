package segmentation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ignite/audience-engine/internal/domain"
)

// predicate evaluates one coerced comparison. fv is the customer's field
// value (already typed by fieldValue), raw is the condition's untyped value.
type predicate func(field string, fv, raw interface{}, now time.Time) bool

type dispatchKey struct {
	fieldType FieldType
	op        Operator
}

// dispatch maps (field type, operator) to a predicate. Pairs absent from
// the table fail closed: a known operator on an incompatible type matches
// nothing rather than raising.
var dispatch = map[dispatchKey]predicate{
	{FieldNumeric, OpEquals}:      numericEquals,
	{FieldNumeric, OpContains}:    textContains,
	{FieldNumeric, OpGreaterThan}: numericGreaterThan,
	{FieldNumeric, OpLessThan}:    numericLessThan,

	{FieldBoolean, OpEquals}:   booleanEquals,
	{FieldBoolean, OpContains}: textContains,

	{FieldText, OpEquals}:   textEquals,
	{FieldText, OpContains}: textContains,

	// Enum fields carry text semantics; the distinct type exists so the
	// registry can advertise allowed values to segment builders.
	{FieldEnum, OpEquals}:   textEquals,
	{FieldEnum, OpContains}: textContains,

	{FieldTimestamp, OpEquals}:      timestampEquals,
	{FieldTimestamp, OpContains}:    textContains,
	{FieldTimestamp, OpGreaterThan}: timestampGreaterThan,
	{FieldTimestamp, OpLessThan}:    timestampLessThan,
	{FieldTimestamp, OpInLastDays}:  timestampInLastDays,
}

// EvaluateCondition applies one condition to one customer. It is a pure
// predicate: no side effects, deterministic for a fixed now.
//
// Unknown operators make the condition a no-op filter (every record
// passes), legacy permissive behavior that is preserved, not validated
// away. Coercion failures on ordering operators fail closed.
func EvaluateCondition(cond domain.Condition, c *domain.Customer, now time.Time) bool {
	op := Operator(cond.Operator)
	if !knownOperators[op] {
		return true
	}

	fv := fieldValue(c, cond.Field)

	// equals on the email field doubles as domain matching: a value with
	// no "@" is treated as a domain fragment and matched as a
	// case-insensitive substring, so "gmail.com" selects the whole domain
	// without special syntax.
	if cond.Field == "email" && op == OpEquals {
		if s := stringify(cond.Value); !strings.Contains(s, "@") {
			return containsFold(stringify(fv), s)
		}
	}

	p, ok := dispatch[dispatchKey{TypeOf(cond.Field), op}]
	if !ok {
		return false
	}
	return p(cond.Field, fv, cond.Value, now)
}

// ==========================================
// PREDICATES
// ==========================================

func numericEquals(field string, fv, raw interface{}, _ time.Time) bool {
	if integerFields[field] {
		want, ok := toInt(raw)
		if !ok {
			// Parse failure degrades to string comparison rather than
			// raising; documented quirk of the legacy evaluator.
			return stringify(fv) == stringify(raw)
		}
		have, _ := toInt(fv)
		return have == want
	}
	want, ok := toFloat(raw)
	if !ok {
		return stringify(fv) == stringify(raw)
	}
	have, _ := toFloat(fv)
	return have == want
}

func numericGreaterThan(field string, fv, raw interface{}, _ time.Time) bool {
	want, ok := toFloat(raw)
	if !ok {
		return false
	}
	have, ok := toFloat(fv)
	if !ok {
		return false
	}
	return have > want
}

func numericLessThan(field string, fv, raw interface{}, _ time.Time) bool {
	want, ok := toFloat(raw)
	if !ok {
		return false
	}
	have, ok := toFloat(fv)
	if !ok {
		return false
	}
	return have < want
}

func booleanEquals(_ string, fv, raw interface{}, _ time.Time) bool {
	have, _ := fv.(bool)
	return have == coerceBool(raw)
}

func textEquals(_ string, fv, raw interface{}, _ time.Time) bool {
	return stringify(fv) == stringify(raw)
}

func textContains(_ string, fv, raw interface{}, _ time.Time) bool {
	return containsFold(stringify(fv), stringify(raw))
}

func timestampEquals(_ string, fv, raw interface{}, _ time.Time) bool {
	have, ok := fv.(time.Time)
	if !ok {
		return false
	}
	want, ok := parseTime(raw)
	if !ok {
		return false
	}
	return have.Equal(want)
}

func timestampGreaterThan(_ string, fv, raw interface{}, _ time.Time) bool {
	have, ok := fv.(time.Time)
	if !ok {
		return false
	}
	want, ok := parseTime(raw)
	if !ok {
		return false
	}
	return have.After(want)
}

func timestampLessThan(_ string, fv, raw interface{}, _ time.Time) bool {
	have, ok := fv.(time.Time)
	if !ok {
		return false
	}
	want, ok := parseTime(raw)
	if !ok {
		return false
	}
	return have.Before(want)
}

// timestampInLastDays matches field_value >= now - N days. The boundary is
// inclusive: a timestamp exactly N days old matches. Null timestamps never
// match.
func timestampInLastDays(_ string, fv, raw interface{}, now time.Time) bool {
	have, ok := fv.(time.Time)
	if !ok {
		return false
	}
	days, ok := toInt(raw)
	if !ok {
		return false
	}
	cutoff := now.AddDate(0, 0, -days)
	return !have.Before(cutoff)
}

// ==========================================
// COERCION
// ==========================================

// coerceBool converts a condition value to a boolean. Strings coerce via a
// case-insensitive match against {"true","1","yes","on"}; everything else
// follows truthiness (non-zero numbers and true are true).
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case float64:
		return t != 0
	case int:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toInt truncates floats (matching int() semantics of the legacy coercion)
// but rejects non-integer strings.
func toInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// stringify renders any field or condition value in its canonical string
// form for text-mode comparisons.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
