// Package export writes segment membership snapshots out as CSV files for
// downstream tools (ad platforms, BI, list uploads).
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ignite/audience-engine/internal/domain"
	"github.com/ignite/audience-engine/internal/segmentation"
)

// ObjectStore persists an exported file. internal/export's S3Store is the
// production implementation.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// Exporter evaluates a segment and uploads its members as CSV.
type Exporter struct {
	engine *segmentation.Engine
	store  ObjectStore
	prefix string
	now    func() time.Time
}

// NewExporter creates an exporter. prefix is prepended to every object key.
func NewExporter(engine *segmentation.Engine, store ObjectStore, prefix string) *Exporter {
	return &Exporter{engine: engine, store: store, prefix: prefix, now: time.Now}
}

// SetClock overrides the clock used for object key timestamps.
func (e *Exporter) SetClock(now func() time.Time) { e.now = now }

// Result describes a completed export.
type Result struct {
	Key      string `json:"key"`
	RowCount int    `json:"row_count"`
}

// ExportSegment evaluates the segment and uploads its members as a CSV
// object keyed by segment ID and timestamp.
func (e *Exporter) ExportSegment(ctx context.Context, seg *domain.Segment) (*Result, error) {
	members, err := e.engine.Evaluate(ctx, seg)
	if err != nil {
		return nil, fmt.Errorf("evaluate segment: %w", err)
	}

	body, err := BuildCSV(members)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%ssegments/%s/%s.csv", e.prefix, seg.ID, e.now().UTC().Format("20060102T150405Z"))
	if err := e.store.Put(ctx, key, "text/csv", body); err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}

	log.Printf("[export.Exporter] exported segment %s: %d rows to %s", seg.ID, len(members), key)
	return &Result{Key: key, RowCount: len(members)}, nil
}

// csvHeader is the fixed column order of every export.
var csvHeader = []string{
	"id", "email", "first_name", "last_name", "city", "state", "country",
	"total_orders", "lifetime_value", "avg_order_value",
	"email_subscribed", "acquisition_source", "last_order_date",
}

// BuildCSV renders customers into CSV bytes with a header row. Numeric
// fields use plain decimal formatting; a nil last order date is an empty
// cell.
func BuildCSV(customers []domain.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range customers {
		c := &customers[i]
		lastOrder := ""
		if c.LastOrderDate != nil {
			lastOrder = c.LastOrderDate.UTC().Format(time.RFC3339)
		}
		row := []string{
			c.ID, c.Email, c.FirstName, c.LastName, c.City, c.State, c.Country,
			strconv.Itoa(c.TotalOrders),
			strconv.FormatFloat(c.LifetimeValue, 'f', 2, 64),
			strconv.FormatFloat(c.AvgOrderValue, 'f', 2, 64),
			strconv.FormatBool(c.EmailSubscribed),
			c.AcquisitionSource,
			lastOrder,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
