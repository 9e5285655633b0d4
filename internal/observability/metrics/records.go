package metrics

import (
	"context"
	"time"

	"github.com/target/eventhub/internal/domain/record"
	"github.com/target/eventhub/internal/observability/statsd"
	"github.com/target/eventhub/internal/ports"
)

// Outcomes of a record backend call.
const (
	OutcomeOK        = "ok"
	OutcomePartial   = "partial"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
)

// RecordCallMetric describes one call to a record backend.
type RecordCallMetric struct {
	Backend  string
	Table    string
	Op       string
	Outcome  string
	Duration time.Duration
	Err      error
}

// EmitRecordCall emits records.call and records.duration.
func EmitRecordCall(sink statsd.Sink, in RecordCallMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"backend": in.Backend,
		"table":   in.Table,
		"op":      in.Op,
		"outcome": in.Outcome,
	}
	if in.Err != nil {
		tags["error_class"] = errorClass(in.Err)
	}

	sink.Count("records.call", 1, tags)
	if in.Duration > 0 {
		sink.Timing("records.duration", in.Duration, CloneTags(tags))
	}
}

// OutcomeOf classifies a RecordClient return pair.
func OutcomeOf(res record.Result, err error) string {
	if err != nil || res == nil {
		return OutcomeTransport
	}
	return record.Match(res, record.Cases[string]{
		Ok:      func(record.Ok) string { return OutcomeOK },
		Partial: func(record.PartialFailure) string { return OutcomePartial },
		Err:     func(record.Err) string { return OutcomeRejected },
	})
}

// RecordClient decorates a ports.RecordClient with call metrics.
type RecordClient struct {
	inner   ports.RecordClient
	sink    statsd.Sink
	backend string
	now     func() time.Time
}

var _ ports.RecordClient = (*RecordClient)(nil)

// InstrumentRecordClient wraps inner. A nil sink returns inner unchanged.
func InstrumentRecordClient(inner ports.RecordClient, sink statsd.Sink, backend string) ports.RecordClient {
	if sink == nil {
		return inner
	}
	return &RecordClient{inner: inner, sink: sink, backend: backend, now: time.Now}
}

func (c *RecordClient) observe(table, op string, start time.Time, res record.Result, err error) {
	EmitRecordCall(c.sink, RecordCallMetric{
		Backend:  c.backend,
		Table:    table,
		Op:       op,
		Outcome:  OutcomeOf(res, err),
		Duration: c.now().Sub(start),
		Err:      err,
	})
}

// FetchRecords implements ports.RecordClient.
func (c *RecordClient) FetchRecords(ctx context.Context, table string, q record.Query) (record.Result, error) {
	start := c.now()
	res, err := c.inner.FetchRecords(ctx, table, q)
	c.observe(table, "fetch", start, res, err)
	return res, err
}

// GetRecordByID implements ports.RecordClient.
func (c *RecordClient) GetRecordByID(
	ctx context.Context,
	table string,
	id int64,
	fields []string,
) (record.Result, error) {
	start := c.now()
	res, err := c.inner.GetRecordByID(ctx, table, id, fields)
	c.observe(table, "get", start, res, err)
	return res, err
}

// CreateRecords implements ports.RecordClient.
func (c *RecordClient) CreateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	start := c.now()
	res, err := c.inner.CreateRecords(ctx, table, recs)
	c.observe(table, "create", start, res, err)
	return res, err
}

// UpdateRecords implements ports.RecordClient.
func (c *RecordClient) UpdateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	start := c.now()
	res, err := c.inner.UpdateRecords(ctx, table, recs)
	c.observe(table, "update", start, res, err)
	return res, err
}

// DeleteRecords implements ports.RecordClient.
func (c *RecordClient) DeleteRecords(ctx context.Context, table string, ids []int64) (record.Result, error) {
	start := c.now()
	res, err := c.inner.DeleteRecords(ctx, table, ids)
	c.observe(table, "delete", start, res, err)
	return res, err
}
