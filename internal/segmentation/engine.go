package segmentation

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/audience-engine/internal/domain"
)

// CustomerSource is the customer repository contract the engine evaluates
// against. All must return records in a stable enumeration order (commonly
// insertion/primary-key order); the engine preserves that order in results.
type CustomerSource interface {
	All(ctx context.Context) ([]domain.Customer, error)
	ExistsAny(ctx context.Context) (bool, error)
}

// Engine evaluates segments against the full customer record set. Each
// condition is an explicit predicate composed by conjunction and applied
// eagerly. There is no deferred query building and no result caching;
// Count and Preview re-evaluate on every call.
type Engine struct {
	customers CustomerSource
	now       func() time.Time
}

// NewEngine creates a segmentation engine over the given customer source.
func NewEngine(customers CustomerSource) *Engine {
	return &Engine{customers: customers, now: time.Now}
}

// SetClock overrides the evaluation clock. Tests use this to pin
// in_last_days boundaries.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Customers returns the underlying customer source for direct access.
func (e *Engine) Customers() CustomerSource { return e.customers }

// Evaluate returns the customers matching every condition of the segment,
// in repository enumeration order. An empty condition list matches all
// customers.
func (e *Engine) Evaluate(ctx context.Context, seg *domain.Segment) ([]domain.Customer, error) {
	all, err := e.customers.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	now := e.now()
	matched := all
	for _, cond := range seg.Conditions {
		next := matched[:0:0]
		for i := range matched {
			if EvaluateCondition(cond, &matched[i], now) {
				next = append(next, matched[i])
			}
		}
		matched = next
	}
	return matched, nil
}

// Count returns the size of the segment's current matching set.
func (e *Engine) Count(ctx context.Context, seg *domain.Segment) (int, error) {
	matched, err := e.Evaluate(ctx, seg)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Preview holds the total match count plus the first N matched records.
type Preview struct {
	TotalCount int               `json:"count"`
	Sample     []domain.Customer `json:"sample"`
}

// Preview evaluates the segment and returns the total count with the first
// n records. Both views come from the same evaluation.
func (e *Engine) Preview(ctx context.Context, seg *domain.Segment, n int) (*Preview, error) {
	if n <= 0 {
		n = 5
	}
	matched, err := e.Evaluate(ctx, seg)
	if err != nil {
		return nil, err
	}
	sample := matched
	if len(sample) > n {
		sample = sample[:n]
	}
	return &Preview{TotalCount: len(matched), Sample: sample}, nil
}
