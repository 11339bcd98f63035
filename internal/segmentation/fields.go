// Package segmentation implements the customer segmentation engine: a field
// registry describing each customer field's semantic type, a pure condition
// evaluator with per-type coercion, an eager conjunctive filter pipeline,
// and the nearest-rank percentile estimator used by rule-based segment
// synthesis.
package segmentation

import (
	"sort"

	"github.com/ignite/audience-engine/internal/domain"
)

// ==========================================
// OPERATORS
// ==========================================

// Operator is a comparison operator in a condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpInLastDays  Operator = "in_last_days"
)

// knownOperators distinguishes "unknown operator" (skipped as a no-op
// filter, legacy permissive behavior) from a known operator applied to an
// incompatible field type (fails closed).
var knownOperators = map[Operator]bool{
	OpEquals:      true,
	OpContains:    true,
	OpGreaterThan: true,
	OpLessThan:    true,
	OpInLastDays:  true,
}

// ==========================================
// FIELD TYPES
// ==========================================

// FieldType is the semantic type of a customer field.
type FieldType string

const (
	FieldNumeric   FieldType = "numeric"
	FieldBoolean   FieldType = "boolean"
	FieldText      FieldType = "text"
	FieldTimestamp FieldType = "timestamp"
	FieldEnum      FieldType = "enum"
)

// fieldTypes is the field registry. Unknown field names are accepted and
// coerce as text. Intentional lenience carried over from the legacy
// implementation, not validation.
var fieldTypes = map[string]FieldType{
	"email":              FieldText,
	"first_name":         FieldText,
	"last_name":          FieldText,
	"phone":              FieldText,
	"address_line1":      FieldText,
	"address_line2":      FieldText,
	"city":               FieldText,
	"state":              FieldText,
	"zip_code":           FieldText,
	"country":            FieldText,
	"total_orders":       FieldNumeric,
	"lifetime_value":     FieldNumeric,
	"avg_order_value":    FieldNumeric,
	"last_order_date":    FieldTimestamp,
	"email_subscribed":   FieldBoolean,
	"acquisition_source": FieldEnum,
	"created_at":         FieldTimestamp,
	"updated_at":         FieldTimestamp,
}

// integerFields are numeric fields parsed as integers rather than decimals.
var integerFields = map[string]bool{
	"total_orders": true,
}

// TypeOf returns the declared type of a customer field. Unknown fields
// default to text.
func TypeOf(field string) FieldType {
	if t, ok := fieldTypes[field]; ok {
		return t
	}
	return FieldText
}

// ValidOperator reports whether the operator has defined semantics for the
// field's type, i.e. whether the evaluator's dispatch table has an entry
// for the pair. Unknown operators are never valid.
func ValidOperator(field string, op Operator) bool {
	if !knownOperators[op] {
		return false
	}
	_, ok := dispatch[dispatchKey{TypeOf(field), op}]
	return ok
}

// FieldNames returns all registered field names, sorted. Generated segment
// criteria are constrained to this set.
func FieldNames() []string {
	names := make([]string, 0, len(fieldTypes))
	for name := range fieldTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fieldValue resolves a registered field name against a customer record.
// Unregistered fields resolve to the empty string so they evaluate with
// text semantics. A nil last_order_date resolves to nil.
func fieldValue(c *domain.Customer, field string) interface{} {
	switch field {
	case "email":
		return c.Email
	case "first_name":
		return c.FirstName
	case "last_name":
		return c.LastName
	case "phone":
		return c.Phone
	case "address_line1":
		return c.AddressLine1
	case "address_line2":
		return c.AddressLine2
	case "city":
		return c.City
	case "state":
		return c.State
	case "zip_code":
		return c.ZipCode
	case "country":
		return c.Country
	case "total_orders":
		return c.TotalOrders
	case "lifetime_value":
		return c.LifetimeValue
	case "avg_order_value":
		return c.AvgOrderValue
	case "last_order_date":
		if c.LastOrderDate == nil {
			return nil
		}
		return *c.LastOrderDate
	case "email_subscribed":
		return c.EmailSubscribed
	case "acquisition_source":
		return c.AcquisitionSource
	case "created_at":
		return c.CreatedAt
	case "updated_at":
		return c.UpdatedAt
	default:
		return ""
	}
}
