package data

import (
	"context"
	"fmt"

	"github.com/target/eventhub/internal/domain/record"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/ports"
)

// RecordRepoOptions configures a RecordRepo.
type RecordRepoOptions struct {
	Client ports.RecordClient
	Table  string
	// Fields are the writable keys; anything else is dropped before writes.
	Fields []string
	// DefaultOrder applies when a query does not specify one.
	DefaultOrder []record.Order
}

// RecordRepo is a typed view over one backend table. T is decoded from
// records through its JSON tags.
type RecordRepo[T any] struct {
	client ports.RecordClient
	table  string
	fields []string
	order  []record.Order
}

// NewRecordRepo creates a RecordRepo for opts.Table.
func NewRecordRepo[T any](opts RecordRepoOptions) *RecordRepo[T] {
	return &RecordRepo[T]{
		client: opts.Client,
		table:  opts.Table,
		fields: opts.Fields,
		order:  opts.DefaultOrder,
	}
}

// Table returns the backend table name.
func (r *RecordRepo[T]) Table() string { return r.table }

// List fetches the records matching q.
func (r *RecordRepo[T]) List(ctx context.Context, q record.Query) ([]*T, error) {
	if len(q.OrderBy) == 0 {
		q.OrderBy = r.order
	}
	res, err := r.client.FetchRecords(ctx, r.table, q)
	if err != nil {
		return nil, r.transportError("list", err)
	}
	recs, err := r.expectOk("list", res)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](recs)
}

// FindBy lists records whose field equals value.
func (r *RecordRepo[T]) FindBy(ctx context.Context, field string, value any, paging record.Paging) ([]*T, error) {
	return r.List(ctx, record.Query{
		Where:  []record.Condition{record.Where(field, record.EqualTo, value)},
		Paging: paging,
	})
}

// Get fetches a single record by ID.
func (r *RecordRepo[T]) Get(ctx context.Context, id int64) (*T, error) {
	res, err := r.client.GetRecordByID(ctx, r.table, id, nil)
	if err != nil {
		return nil, r.transportError("get", err)
	}
	recs, err := r.expectOk("get", res)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 || recs[0] == nil {
		return nil, apperrors.NotFoundf("%s record %d not found", r.table, id)
	}
	return decodeOne[T](recs[0])
}

// Create writes rec restricted to the writable fields and returns the stored value.
func (r *RecordRepo[T]) Create(ctx context.Context, rec record.Record) (*T, error) {
	res, err := r.client.CreateRecords(ctx, r.table, []record.Record{r.writable(rec)})
	if err != nil {
		return nil, r.transportError("create", err)
	}
	return r.single("create", res, 0)
}

// Update patches the record with the writable fields of patch.
func (r *RecordRepo[T]) Update(ctx context.Context, id int64, patch record.Record) (*T, error) {
	rec := r.writable(patch)
	rec[record.IDField] = id
	res, err := r.client.UpdateRecords(ctx, r.table, []record.Record{rec})
	if err != nil {
		return nil, r.transportError("update", err)
	}
	return r.single("update", res, id)
}

// Delete removes a record. It reports false when the record did not exist.
func (r *RecordRepo[T]) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.client.DeleteRecords(ctx, r.table, []int64{id})
	if err != nil {
		return false, r.transportError("delete", err)
	}
	type outcome struct {
		deleted bool
		err     error
	}
	out := record.Match(res, record.Cases[outcome]{
		Ok: func(record.Ok) outcome { return outcome{deleted: true} },
		Partial: func(p record.PartialFailure) outcome {
			if missingID(p.Failed) {
				return outcome{}
			}
			return outcome{err: r.rejected("delete", p.Failed)}
		},
		Err: func(e record.Err) outcome {
			return outcome{err: r.backendError("delete", e)}
		},
	})
	return out.deleted, out.err
}

func (r *RecordRepo[T]) writable(rec record.Record) record.Record {
	out := make(record.Record, len(r.fields))
	for _, f := range r.fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// single decodes the one record a create or update returns.
func (r *RecordRepo[T]) single(op string, res record.Result, id int64) (*T, error) {
	type outcome struct {
		rec record.Record
		err error
	}
	out := record.Match(res, record.Cases[outcome]{
		Ok: func(ok record.Ok) outcome {
			if len(ok.Records) == 0 {
				return outcome{err: apperrors.Internalf("%s %s returned no record", op, r.table)}
			}
			return outcome{rec: ok.Records[0]}
		},
		Partial: func(p record.PartialFailure) outcome {
			if len(p.Succeeded) > 0 {
				return outcome{rec: p.Succeeded[0]}
			}
			if missingID(p.Failed) {
				return outcome{err: apperrors.NotFoundf("%s record %d not found", r.table, id)}
			}
			return outcome{err: r.rejected(op, p.Failed)}
		},
		Err: func(e record.Err) outcome {
			return outcome{err: r.backendError(op, e)}
		},
	})
	if out.err != nil {
		return nil, out.err
	}
	return decodeOne[T](out.rec)
}

// expectOk unwraps a read result; reads never partially fail.
func (r *RecordRepo[T]) expectOk(op string, res record.Result) ([]record.Record, error) {
	type outcome struct {
		recs []record.Record
		err  error
	}
	out := record.Match(res, record.Cases[outcome]{
		Ok: func(ok record.Ok) outcome { return outcome{recs: ok.Records} },
		Partial: func(p record.PartialFailure) outcome {
			return outcome{recs: p.Succeeded, err: r.rejected(op, p.Failed)}
		},
		Err: func(e record.Err) outcome { return outcome{err: r.backendError(op, e)} },
	})
	return out.recs, out.err
}

func (r *RecordRepo[T]) rejected(op string, failed []record.FieldError) error {
	appErr := apperrors.Validationf("%s %s rejected", op, r.table)
	for _, f := range failed {
		appErr.Details = append(appErr.Details, f.String())
	}
	if len(failed) == 1 && failed[0].Field != "" {
		appErr.Field = failed[0].Field
	}
	return appErr
}

func (r *RecordRepo[T]) backendError(op string, e record.Err) error {
	return apperrors.Internalf("%s %s: %s", op, r.table, e.Message)
}

func (r *RecordRepo[T]) transportError(op string, err error) error {
	if apperrors.GetCode(err) != "" {
		return err
	}
	return apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "%s %s", op, r.table)
}

func missingID(failed []record.FieldError) bool {
	for _, f := range failed {
		if f.Field == record.IDField {
			return true
		}
	}
	return false
}

func decodeOne[T any](rec record.Record) (*T, error) {
	v, err := record.Decode[T](rec)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &v, nil
}

func decodeAll[T any](recs []record.Record) ([]*T, error) {
	out := make([]*T, 0, len(recs))
	for _, rec := range recs {
		v, err := decodeOne[T](rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
