package segmentation_test

import (
	"testing"
	"time"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
)

var evalNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func testCustomer() *domain.Customer {
	lastOrder := evalNow.AddDate(0, 0, -10)
	return &domain.Customer{
		ID:                "c-1",
		Email:             "jane.doe@example.com",
		FirstName:         "Jane",
		LastName:          "Doe",
		City:              "Portland",
		Country:           "US",
		TotalOrders:       12,
		LifetimeValue:     842.50,
		AvgOrderValue:     70.20,
		LastOrderDate:     &lastOrder,
		EmailSubscribed:   true,
		AcquisitionSource: "organic",
		CreatedAt:         evalNow.AddDate(-1, 0, 0),
		UpdatedAt:         evalNow,
	}
}

func eval(t *testing.T, field, op string, value interface{}, c *domain.Customer) bool {
	t.Helper()
	return segmentation.EvaluateCondition(domain.Condition{Field: field, Operator: op, Value: value}, c, evalNow)
}

func TestEqualsText(t *testing.T) {
	c := testCustomer()
	if !eval(t, "city", "equals", "Portland", c) {
		t.Fatal("exact city match should pass")
	}
	if eval(t, "city", "equals", "portland", c) {
		t.Fatal("text equals is case-sensitive")
	}
}

func TestEqualsEmailDomainFragment(t *testing.T) {
	c := testCustomer()
	c.Email = "A@GMAIL.com"
	if !eval(t, "email", "equals", "gmail.com", c) {
		t.Fatal("domain fragment should match case-insensitively")
	}
	if !eval(t, "email", "equals", "GMAIL.COM", c) {
		t.Fatal("domain fragment match should ignore value casing too")
	}
	if eval(t, "email", "equals", "yahoo.com", c) {
		t.Fatal("non-matching domain should be excluded")
	}
}

func TestEqualsEmailFullAddress(t *testing.T) {
	c := testCustomer()
	if !eval(t, "email", "equals", "jane.doe@example.com", c) {
		t.Fatal("full address should match exactly")
	}
	if eval(t, "email", "equals", "JANE.DOE@example.com", c) {
		t.Fatal("full address match stays exact, not folded")
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	c := testCustomer()
	if !eval(t, "first_name", "contains", "JAN", c) {
		t.Fatal("contains should fold case")
	}
	if !eval(t, "email", "contains", "Example.COM", c) {
		t.Fatal("contains should fold case on both sides")
	}
	if eval(t, "first_name", "contains", "bob", c) {
		t.Fatal("non-substring should be excluded")
	}
}

func TestNumericComparisons(t *testing.T) {
	c := testCustomer()
	if !eval(t, "lifetime_value", "greater_than", 500, c) {
		t.Fatal("842.50 > 500")
	}
	if !eval(t, "lifetime_value", "greater_than", "500", c) {
		t.Fatal("string thresholds coerce to decimals")
	}
	if eval(t, "lifetime_value", "less_than", 500.0, c) {
		t.Fatal("842.50 is not < 500")
	}
	if !eval(t, "total_orders", "equals", "12", c) {
		t.Fatal("integer field equality coerces string values")
	}
	if !eval(t, "total_orders", "equals", float64(12), c) {
		t.Fatal("JSON numbers arrive as float64 and must coerce")
	}
}

func TestNumericCoercionFailureFailsClosed(t *testing.T) {
	c := testCustomer()
	if eval(t, "lifetime_value", "greater_than", "not a number", c) {
		t.Fatal("unparseable ordering threshold must match nothing")
	}
	if eval(t, "lifetime_value", "less_than", "high", c) {
		t.Fatal("unparseable ordering threshold must match nothing")
	}
}

func TestNumericEqualsDegradesToStringOnParseFailure(t *testing.T) {
	// The legacy evaluator fell back to the raw value when numeric
	// parsing failed, degrading equals to a string comparison.
	c := testCustomer()
	if eval(t, "total_orders", "equals", "a dozen", c) {
		t.Fatal("degraded comparison of 12 vs \"a dozen\" should not match")
	}
}

func TestBooleanCoercion(t *testing.T) {
	c := testCustomer()
	for _, v := range []interface{}{true, "true", "TRUE", "1", "Yes", "on", 1, float64(1)} {
		if !eval(t, "email_subscribed", "equals", v, c) {
			t.Fatalf("value %v should coerce to true", v)
		}
	}
	for _, v := range []interface{}{false, "false", "0", "no", "off", "", float64(0)} {
		if eval(t, "email_subscribed", "equals", v, c) {
			t.Fatalf("value %v should coerce to false", v)
		}
	}
}

func TestInLastDaysBoundary(t *testing.T) {
	c := testCustomer()

	exactly30 := evalNow.AddDate(0, 0, -30)
	c.LastOrderDate = &exactly30
	if !eval(t, "last_order_date", "in_last_days", 30, c) {
		t.Fatal("order exactly 30 days old is inside the window (>= boundary)")
	}

	days31 := evalNow.AddDate(0, 0, -31)
	c.LastOrderDate = &days31
	if eval(t, "last_order_date", "in_last_days", 30, c) {
		t.Fatal("order 31 days old is outside a 30 day window")
	}
}

func TestInLastDaysNullTimestamp(t *testing.T) {
	c := testCustomer()
	c.LastOrderDate = nil
	if eval(t, "last_order_date", "in_last_days", 365, c) {
		t.Fatal("null timestamps never match in_last_days")
	}
}

func TestInLastDaysValueCoercion(t *testing.T) {
	c := testCustomer() // last order 10 days ago
	if !eval(t, "last_order_date", "in_last_days", "30", c) {
		t.Fatal("string day counts coerce to integers")
	}
	if eval(t, "last_order_date", "in_last_days", "soon", c) {
		t.Fatal("unparseable day count fails closed")
	}
}

func TestTimestampOrdering(t *testing.T) {
	c := testCustomer()
	cutoff := evalNow.AddDate(0, 0, -5).Format(time.RFC3339)
	if !eval(t, "last_order_date", "less_than", cutoff, c) {
		t.Fatal("order 10 days ago is before a 5-day-ago cutoff")
	}
	if eval(t, "last_order_date", "greater_than", cutoff, c) {
		t.Fatal("order 10 days ago is not after a 5-day-ago cutoff")
	}
}

func TestUnknownOperatorIsNoOp(t *testing.T) {
	c := testCustomer()
	if !eval(t, "lifetime_value", "approximately", 9999, c) {
		t.Fatal("unknown operators must be skipped, keeping every record")
	}
}

func TestKnownOperatorOnWrongTypeFailsClosed(t *testing.T) {
	c := testCustomer()
	if eval(t, "first_name", "greater_than", "A", c) {
		t.Fatal("ordering on a text field has no defined coercion and fails closed")
	}
	if eval(t, "total_orders", "in_last_days", 30, c) {
		t.Fatal("in_last_days requires a timestamp field")
	}
}

func TestUnknownFieldCoercesAsText(t *testing.T) {
	c := testCustomer()
	if !eval(t, "favorite_color", "equals", "", c) {
		t.Fatal("unknown fields resolve to empty text")
	}
	if eval(t, "favorite_color", "contains", "blue", c) {
		t.Fatal("unknown field has no content to match")
	}
}
