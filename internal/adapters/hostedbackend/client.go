// Package hostedbackend implements ports.RecordClient against the hosted record
// service's JSON API.
package hostedbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/target/eventhub/internal/domain/record"
	"github.com/target/eventhub/internal/ports"
)

const (
	headerProjectID = "X-Project-Id"
	headerPublicKey = "X-Public-Key"

	maxErrorBody = 4 << 10
)

var _ ports.RecordClient = (*Client)(nil)

// Config captures how to reach the hosted record service.
type Config struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
	// FieldSuffix is appended to every field name except the ID on the wire.
	FieldSuffix string
	// RetryLimit bounds retries of reads that failed with a transport error or 5xx.
	RetryLimit int
	Client     *http.Client
	Logger     *slog.Logger
}

// Client talks to the hosted record service. It is safe for concurrent use.
type Client struct {
	baseURL    string
	projectID  string
	publicKey  string
	suffix     string
	retryLimit int
	client     *http.Client
	logger     *slog.Logger
}

// NewClient builds a hosted backend client. The default HTTP client keeps
// cookies the service sets, scoped by the public suffix list.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("hosted backend url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("hosted backend url: %w", err)
	}
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("hosted backend project id is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc = &http.Client{Timeout: timeout, Jar: jar}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    base,
		projectID:  strings.TrimSpace(cfg.ProjectID),
		publicKey:  strings.TrimSpace(cfg.PublicKey),
		suffix:     cfg.FieldSuffix,
		retryLimit: max(cfg.RetryLimit, 0),
		client:     hc,
		logger:     logger.With("component", "hosted_backend"),
	}, nil
}

// FetchRecords lists records of table matching q.
func (c *Client) FetchRecords(ctx context.Context, table string, q record.Query) (record.Result, error) {
	body := fetchRequest{
		Fields:  c.fieldSpecs(q.Fields),
		OrderBy: c.orderSpecs(q.OrderBy),
	}
	for _, cond := range q.Where {
		body.Where = append(body.Where, whereSpec{
			FieldName: c.wireName(cond.Field),
			Operator:  string(cond.Operator),
			Values:    cond.Values,
		})
	}
	if q.Paging.Limit > 0 {
		body.PagingInfo = &pagingSpec{Limit: q.Paging.Limit, Offset: q.Paging.Offset}
	}
	return c.call(ctx, callSpec{method: http.MethodPost, path: c.tablePath(table, "fetch"), body: body, idempotent: true})
}

// GetRecordByID returns Ok with no records when the service reports no data.
func (c *Client) GetRecordByID(ctx context.Context, table string, id int64, fields []string) (record.Result, error) {
	body := fetchRequest{Fields: c.fieldSpecs(fields)}
	path := c.tablePath(table, "records", strconv.FormatInt(id, 10))
	return c.call(ctx, callSpec{method: http.MethodPost, path: path, body: body, idempotent: true})
}

// CreateRecords inserts recs.
func (c *Client) CreateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	body := recordsRequest{Records: c.toWire(recs)}
	return c.call(ctx, callSpec{method: http.MethodPost, path: c.tablePath(table, "records"), body: body})
}

// UpdateRecords patches recs; each must carry its ID.
func (c *Client) UpdateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error) {
	body := recordsRequest{Records: c.toWire(recs)}
	return c.call(ctx, callSpec{
		method:          http.MethodPut,
		path:            c.tablePath(table, "records"),
		body:            body,
		recordLevelIsID: true,
	})
}

// DeleteRecords removes the records with ids.
func (c *Client) DeleteRecords(ctx context.Context, table string, ids []int64) (record.Result, error) {
	body := deleteRequest{RecordIDs: ids}
	return c.call(ctx, callSpec{
		method:          http.MethodDelete,
		path:            c.tablePath(table, "records"),
		body:            body,
		recordLevelIsID: true,
	})
}

type callSpec struct {
	method string
	path   string
	body   any
	// idempotent calls are retried on transport errors and 5xx responses.
	idempotent bool
	// recordLevelIsID attributes per-record failures without field errors to
	// the record ID, which is how the service reports unknown IDs.
	recordLevelIsID bool
}

func (c *Client) call(ctx context.Context, cs callSpec) (record.Result, error) {
	payload, err := json.Marshal(cs.body)
	if err != nil {
		return nil, fmt.Errorf("encode hosted backend request: %w", err)
	}

	attempts := 1
	if cs.idempotent {
		attempts += c.retryLimit
	}

	var lastErr error
	for attempt := range attempts {
		env, retryable, err := c.do(ctx, cs, payload)
		if err == nil {
			return c.toResult(env, cs.recordLevelIsID), nil
		}
		lastErr = err
		if !retryable || attempt == attempts-1 {
			break
		}
		c.logger.DebugContext(ctx, "retrying hosted backend call", "path", cs.path, "attempt", attempt+1, "error", err)
		delay := time.Duration(attempt+1) * 200 * time.Millisecond
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// do performs one round trip. A decoded envelope is returned for any status
// that carries one; otherwise the error reports whether a retry may help.
func (c *Client) do(ctx context.Context, cs callSpec, payload []byte) (envelope, bool, error) {
	var env envelope

	req, err := http.NewRequestWithContext(ctx, cs.method, c.baseURL+cs.path, bytes.NewReader(payload))
	if err != nil {
		return env, false, fmt.Errorf("create hosted backend request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerProjectID, c.projectID)
	if c.publicKey != "" {
		req.Header.Set(headerPublicKey, c.publicKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return env, false, ctx.Err()
		}
		return env, true, fmt.Errorf("hosted backend request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, true, fmt.Errorf("read hosted backend response: %w", err)
	}

	decodeErr := decodeNumbers(raw, &env)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decodeErr != nil {
			return env, false, fmt.Errorf("decode hosted backend response: %w", decodeErr)
		}
		return env, false, nil
	}

	// Non-2xx with a service envelope is a rejection, not a transport failure.
	if decodeErr == nil && env.Success != nil && !*env.Success && env.Message != "" {
		return env, false, nil
	}
	snippet := strings.TrimSpace(string(raw[:min(len(raw), maxErrorBody)]))
	return env, resp.StatusCode >= http.StatusInternalServerError,
		fmt.Errorf("hosted backend returned %s: %s", resp.Status, snippet)
}

func (c *Client) toResult(env envelope, recordLevelIsID bool) record.Result {
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "hosted backend reported failure"
		}
		return record.Err{Message: msg}
	}

	if env.Results != nil {
		var (
			succeeded []record.Record
			failed    []record.FieldError
		)
		for _, r := range env.Results {
			if r.Success {
				if r.Data != nil {
					succeeded = append(succeeded, c.fromWire(r.Data))
				}
				continue
			}
			failed = append(failed, c.recordFailures(r, recordLevelIsID)...)
		}
		return record.Collect(succeeded, failed)
	}

	return record.Ok{Records: c.dataRecords(env.Data)}
}

func (c *Client) recordFailures(r resultItem, recordLevelIsID bool) []record.FieldError {
	out := make([]record.FieldError, 0, len(r.Errors)+1)
	for _, e := range r.Errors {
		out = append(out, record.FieldError{Field: c.domainName(e.FieldLabel), Message: e.Message})
	}
	if len(out) > 0 {
		return out
	}
	fe := record.FieldError{Message: r.Message}
	if fe.Message == "" {
		fe.Message = "record rejected"
	}
	if recordLevelIsID {
		fe.Field = record.IDField
	}
	return append(out, fe)
}

// dataRecords accepts the array, single-object and null shapes of "data".
func (c *Client) dataRecords(raw json.RawMessage) []record.Record {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		var many []record.Record
		if err := decodeNumbers(trimmed, &many); err != nil {
			c.logger.Warn("hosted backend returned undecodable data", "error", err)
			return nil
		}
		out := make([]record.Record, 0, len(many))
		for _, r := range many {
			out = append(out, c.fromWire(r))
		}
		return out
	}
	var one record.Record
	if err := decodeNumbers(trimmed, &one); err != nil {
		c.logger.Warn("hosted backend returned undecodable data", "error", err)
		return nil
	}
	return []record.Record{c.fromWire(one)}
}

// decodeNumbers keeps numbers as json.Number so IDs above 2^53 survive intact.
func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func (c *Client) tablePath(table string, parts ...string) string {
	segs := append([]string{"tables", url.PathEscape(table)}, parts...)
	return "/" + strings.Join(segs, "/")
}

func (c *Client) wireName(field string) string {
	if field == record.IDField || c.suffix == "" || strings.HasSuffix(field, c.suffix) {
		return field
	}
	return field + c.suffix
}

func (c *Client) domainName(field string) string {
	if c.suffix == "" {
		return field
	}
	return strings.TrimSuffix(field, c.suffix)
}

func (c *Client) fieldSpecs(fields []string) []fieldSpec {
	if len(fields) == 0 {
		return nil
	}
	out := make([]fieldSpec, 0, len(fields)+1)
	out = append(out, fieldSpec{Field: fieldName{Name: record.IDField}})
	for _, f := range fields {
		if f == record.IDField {
			continue
		}
		out = append(out, fieldSpec{Field: fieldName{Name: c.wireName(f)}})
	}
	return out
}

func (c *Client) orderSpecs(orders []record.Order) []orderSpec {
	out := make([]orderSpec, 0, len(orders))
	for _, o := range orders {
		dir := o.Direction
		if dir == "" {
			dir = record.Asc
		}
		out = append(out, orderSpec{FieldName: c.wireName(o.Field), SortType: string(dir)})
	}
	return out
}

func (c *Client) toWire(recs []record.Record) []record.Record {
	out := make([]record.Record, 0, len(recs))
	for _, r := range recs {
		w := make(record.Record, len(r))
		for k, v := range r {
			w[c.wireName(k)] = v
		}
		out = append(out, w)
	}
	return out
}

func (c *Client) fromWire(r record.Record) record.Record {
	out := make(record.Record, len(r))
	for k, v := range r {
		out[c.domainName(k)] = v
	}
	return out
}
