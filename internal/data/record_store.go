package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/target/eventhub/internal/data/database"
	"github.com/target/eventhub/internal/data/pgxutil"
	"github.com/target/eventhub/internal/domain/record"
	apperrors "github.com/target/eventhub/internal/errors"
	"github.com/target/eventhub/internal/ports"
)

const (
	recordsTable  = "records"
	recordsData   = "data"
	recordColumns = "id, data"
)

var _ ports.RecordClient = (*RecordStore)(nil)

// RecordStore keeps records as JSONB documents in PostgreSQL, one row per
// record, partitioned by collection (the table name callers use).
type RecordStore struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewRecordStore creates a new RecordStore with real time provider.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewRecordStoreWithTimeProvider creates a new RecordStore with a custom time provider (useful for tests).
func NewRecordStoreWithTimeProvider(db *sql.DB, tp TimeProvider) *RecordStore {
	return &RecordStore{DB: db, timeProvider: tp}
}

type storedRecord struct {
	ID   int64  `db:"id"`
	Data []byte `db:"data"`
}

func (s storedRecord) toRecord(fields []string) (record.Record, error) {
	rec := record.Record{}
	if len(s.Data) > 0 {
		if err := json.Unmarshal(s.Data, &rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", s.ID, err)
		}
	}
	rec[record.IDField] = s.ID
	return rec.Only(fields), nil
}

func toRecords(rows []storedRecord, fields []string) ([]record.Record, error) {
	out := make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchRecords lists the records of a collection matching q.
func (s *RecordStore) FetchRecords(ctx context.Context, table string, q record.Query) (record.Result, error) {
	opts := []database.ListQueryOption{
		database.WithColumns("id", recordsData),
		database.WithCondition(database.WhereCond("collection", database.Equal, table)),
	}
	for _, c := range q.Where {
		conds, err := compileCondition(c)
		if err != nil {
			return record.Err{Message: err.Error()}, nil
		}
		for _, cond := range conds {
			opts = append(opts, database.WithCondition(cond))
		}
	}
	for _, o := range q.OrderBy {
		if o.Field == record.IDField {
			opts = append(opts, database.WithOrderBy("id", string(o.Direction)))
			continue
		}
		opts = append(opts, database.WithJSONOrderBy(recordsData, o.Field, string(o.Direction)))
	}
	opts = append(opts, database.WithOrderBy("id", "ASC"))
	if q.Paging.Limit > 0 {
		opts = append(opts, database.WithLimit(q.Paging.Limit), database.WithOffset(q.Paging.Offset))
	}

	query, args := database.BuildListQuery(database.NewListQueryOptions(recordsTable, opts...))

	var rows []storedRecord
	if err := pgxutil.Conn(ctx, s.DB, func(conn *pgx.Conn) error {
		r, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer r.Close()
		rows, err = pgx.CollectRows(r, pgx.RowToStructByName[storedRecord])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	recs, err := toRecords(rows, q.Fields)
	if err != nil {
		return nil, err
	}
	return record.Ok{Records: recs}, nil
}

// GetRecordByID returns Ok with no records when the ID does not exist.
func (s *RecordStore) GetRecordByID(
	ctx context.Context,
	table string,
	id int64,
	fields []string,
) (record.Result, error) {
	var rows []storedRecord
	if err := pgxutil.Conn(ctx, s.DB, func(conn *pgx.Conn) error {
		r, err := conn.Query(ctx,
			`SELECT `+recordColumns+` FROM records WHERE collection = $1 AND id = $2`, table, id)
		if err != nil {
			return err
		}
		defer r.Close()
		rows, err = pgx.CollectRows(r, pgx.RowToStructByName[storedRecord])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	recs, err := toRecords(rows, fields)
	if err != nil {
		return nil, err
	}
	return record.Ok{Records: recs}, nil
}

// CreateRecords inserts all records in one transaction. Records that cannot
// be encoded are reported as failures; the rest are stored.
func (s *RecordStore) CreateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	now := s.timeProvider.Now().UTC()
	var (
		succeeded []record.Record
		failed    []record.FieldError
	)
	err := pgxutil.Tx(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			body, encErr := encodeBody(rec)
			if encErr != nil {
				failed = append(failed, record.FieldError{Message: encErr.Error()})
				continue
			}
			rows, err := tx.Query(ctx, `
				INSERT INTO records (collection, data, created_at, updated_at)
				VALUES ($1, $2::jsonb, $3, $3)
				RETURNING `+recordColumns,
				table, body, now)
			if err != nil {
				return err
			}
			row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[storedRecord])
			if err != nil {
				return err
			}
			out, err := row.toRecord(nil)
			if err != nil {
				return err
			}
			succeeded = append(succeeded, out)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return record.Collect(succeeded, failed), nil
}

// UpdateRecords merges each record's fields into the stored document.
func (s *RecordStore) UpdateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	now := s.timeProvider.Now().UTC()
	var (
		succeeded []record.Record
		failed    []record.FieldError
	)
	err := pgxutil.Tx(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			id, ok := rec.ID()
			if !ok {
				failed = append(failed, record.FieldError{Field: record.IDField, Message: "record id is required"})
				continue
			}
			body, encErr := encodeBody(rec)
			if encErr != nil {
				failed = append(failed, record.FieldError{Message: encErr.Error()})
				continue
			}
			rows, err := tx.Query(ctx, `
				UPDATE records SET data = data || $3::jsonb, updated_at = $4
				WHERE collection = $1 AND id = $2
				RETURNING `+recordColumns,
				table, id, body, now)
			if err != nil {
				return err
			}
			row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[storedRecord])
			if errors.Is(err, pgx.ErrNoRows) {
				failed = append(failed, record.FieldError{
					Field:   record.IDField,
					Message: fmt.Sprintf("record %d not found", id),
				})
				continue
			}
			if err != nil {
				return err
			}
			out, err := row.toRecord(nil)
			if err != nil {
				return err
			}
			succeeded = append(succeeded, out)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return record.Collect(succeeded, failed), nil
}

// DeleteRecords removes records by ID; missing IDs are reported as failures.
func (s *RecordStore) DeleteRecords(ctx context.Context, table string, ids []int64) (record.Result, error) {
	if len(ids) == 0 {
		return record.Ok{}, nil
	}
	var deleted []int64
	if err := pgxutil.Conn(ctx, s.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`DELETE FROM records WHERE collection = $1 AND id = ANY($2) RETURNING id`, table, ids)
		if err != nil {
			return err
		}
		deleted, err = pgx.CollectRows(rows, pgx.RowTo[int64])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	gone := make(map[int64]bool, len(deleted))
	succeeded := make([]record.Record, 0, len(deleted))
	for _, id := range deleted {
		gone[id] = true
		succeeded = append(succeeded, record.Record{record.IDField: id})
	}
	var failed []record.FieldError
	for _, id := range ids {
		if !gone[id] {
			failed = append(failed, record.FieldError{
				Field:   record.IDField,
				Message: fmt.Sprintf("record %d not found", id),
			})
		}
	}
	return record.Collect(succeeded, failed), nil
}

// Truncate deletes every record in the given collections.
func (s *RecordStore) Truncate(ctx context.Context, tables ...string) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM records WHERE collection = ANY($1)`, tables)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return res.RowsAffected()
}

// encodeBody serializes a record without its ID.
func encodeBody(rec record.Record) (string, error) {
	body := make(record.Record, len(rec))
	for k, v := range rec {
		if k != record.IDField {
			body[k] = v
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	return string(raw), nil
}

// compileCondition turns a backend-neutral condition into SQL predicates on
// the JSONB document. Numbers compare numerically, everything else as text.
func compileCondition(c record.Condition) ([]database.Condition, error) {
	if !c.Operator.Valid() {
		return nil, fmt.Errorf("unsupported operator %q", c.Operator)
	}
	if len(c.Values) == 0 {
		return nil, fmt.Errorf("condition on %q has no values", c.Field)
	}
	if c.Field == record.IDField {
		return compileIDCondition(c)
	}

	key := database.SanitizeJSONKey(c.Field)
	if key == "" {
		return nil, fmt.Errorf("invalid field %q", c.Field)
	}
	numeric := allNumeric(c.Values)
	args := make([]any, len(c.Values))
	for i, v := range c.Values {
		if numeric {
			args[i] = toFloat(v)
		} else {
			args[i] = toText(v)
		}
	}

	switch c.Operator {
	case record.EqualTo:
		if len(args) == 1 {
			return []database.Condition{database.WhereJSONCond(recordsData, key, database.Equal, args[0], numeric)}, nil
		}
		return []database.Condition{database.WhereJSONCond(recordsData, key, database.Any, args, numeric)}, nil
	case record.NotEqualTo:
		out := make([]database.Condition, len(args))
		for i, a := range args {
			out[i] = database.WhereJSONCond(recordsData, key, database.NotEqual, a, numeric)
		}
		return out, nil
	case record.Contains:
		return []database.Condition{containsCondition(key, c.Values)}, nil
	default:
		return []database.Condition{
			database.WhereJSONCond(recordsData, key, comparison(c.Operator), args[0], numeric),
		}, nil
	}
}

func compileIDCondition(c record.Condition) ([]database.Condition, error) {
	ids := make([]int64, 0, len(c.Values))
	for _, v := range c.Values {
		id, ok := record.Record{record.IDField: v}.ID()
		if !ok {
			return nil, fmt.Errorf("invalid record id %v", v)
		}
		ids = append(ids, id)
	}
	switch c.Operator {
	case record.EqualTo:
		return []database.Condition{database.WhereCond("id", database.Any, ids)}, nil
	case record.NotEqualTo:
		return []database.Condition{database.WhereRawCond("NOT (id = ANY($1))", ids)}, nil
	case record.Contains:
		return nil, errors.New("contains is not supported on record ids")
	default:
		return []database.Condition{database.WhereCond("id", comparison(c.Operator), ids[0])}, nil
	}
}

// containsCondition matches a case-insensitive substring of any value.
func containsCondition(key string, values []any) database.Condition {
	expr := database.JSONText(recordsData, key)
	parts := make([]string, len(values))
	params := make([]any, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", expr, i+1)
		params[i] = "%" + escapeLike(toText(v)) + "%"
	}
	return database.WhereRawCond("("+strings.Join(parts, " OR ")+")", params...)
}

func comparison(op record.Operator) database.ConditionType {
	switch op {
	case record.GreaterThan:
		return database.GreaterThan
	case record.GreaterThanOrEqualTo:
		return database.GreaterThanOrEqual
	case record.LessThan:
		return database.LessThan
	case record.LessThanOrEqualTo:
		return database.LessThanOrEqual
	case record.NotEqualTo:
		return database.NotEqual
	default:
		return database.Equal
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func allNumeric(values []any) bool {
	for _, v := range values {
		switch v.(type) {
		case int, int32, int64, float32, float64, json.Number:
		default:
			return false
		}
	}
	return true
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
