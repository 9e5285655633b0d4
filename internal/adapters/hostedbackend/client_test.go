package hostedbackend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/eventhub/internal/domain/record"
)

type capturedRequest struct {
	Method  string
	Path    string
	Project string
	Key     string
	Body    map[string]any
}

func newTestServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Project = r.Header.Get(headerProjectID)
		captured.Key = r.Header.Get(headerPublicKey)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestClient(t *testing.T, srv *httptest.Server, suffix string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:     srv.URL + "/",
		ProjectID:   "proj-1",
		PublicKey:   "pk-1",
		FieldSuffix: suffix,
		Timeout:     time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{ProjectID: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")

	_, err = NewClient(Config{BaseURL: "https://records.example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project id is required")

	c, err := NewClient(Config{BaseURL: "https://records.example.com", ProjectID: "p"})
	require.NoError(t, err)
	assert.NotNil(t, c.client.Jar)
}

func TestClient_FetchRecords_EncodesQuery(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK,
		`{"success":true,"data":[{"Id":7,"name_c":"Jazz Night","featured_c":true}]}`)
	c := newTestClient(t, srv, "_c")

	res, err := c.FetchRecords(context.Background(), "event_c", record.Query{
		Fields:  []string{"name", "featured"},
		Where:   []record.Condition{record.Where("featured", record.EqualTo, true)},
		OrderBy: []record.Order{{Field: "date", Direction: record.Asc}},
		Paging:  record.Paging{Limit: 50},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/tables/event_c/fetch", captured.Path)
	assert.Equal(t, "proj-1", captured.Project)
	assert.Equal(t, "pk-1", captured.Key)
	assert.Equal(t, []any{
		map[string]any{"field": map[string]any{"Name": "Id"}},
		map[string]any{"field": map[string]any{"Name": "name_c"}},
		map[string]any{"field": map[string]any{"Name": "featured_c"}},
	}, captured.Body["fields"])
	assert.Equal(t, []any{
		map[string]any{"FieldName": "featured_c", "Operator": "EqualTo", "Values": []any{true}},
	}, captured.Body["where"])
	assert.Equal(t, []any{map[string]any{"fieldName": "date_c", "sorttype": "ASC"}}, captured.Body["orderBy"])
	assert.Equal(t, map[string]any{"limit": float64(50), "offset": float64(0)}, captured.Body["pagingInfo"])

	ok, isOk := res.(record.Ok)
	require.True(t, isOk)
	require.Len(t, ok.Records, 1)
	id, hasID := ok.Records[0].ID()
	require.True(t, hasID)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "Jazz Night", ok.Records[0]["name"])
}

func TestClient_GetRecordByID_SingleObjectAndNull(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"success":true,"data":{"Id":3,"name":"Solo"}}`)
	c := newTestClient(t, srv, "")

	res, err := c.GetRecordByID(context.Background(), "events", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "/tables/events/records/3", captured.Path)
	assert.Len(t, res.(record.Ok).Records, 1)

	empty, _ := newTestServer(t, http.StatusOK, `{"success":true,"data":null}`)
	res, err = newTestClient(t, empty, "").GetRecordByID(context.Background(), "events", 4, nil)
	require.NoError(t, err)
	assert.Empty(t, res.(record.Ok).Records)
}

func TestClient_SuccessFalseIsErr(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"success":false,"message":"Table not found"}`)
	c := newTestClient(t, srv, "")

	res, err := c.FetchRecords(context.Background(), "missing", record.Query{})
	require.NoError(t, err)
	assert.Equal(t, record.Err{Message: "Table not found"}, res)
}

func TestClient_CreateRecords_PartialFailure(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"success":true,"results":[
		{"success":true,"data":{"Id":1,"name_c":"Ok"}},
		{"success":false,"errors":[{"fieldLabel":"date_c","message":"invalid date"}]}
	]}`)
	c := newTestClient(t, srv, "_c")

	res, err := c.CreateRecords(context.Background(), "event_c", []record.Record{
		{"name": "Ok", "date": "2026-11-02"},
		{"name": "Bad", "date": "soon"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/tables/event_c/records", captured.Path)
	records := captured.Body["records"].([]any)
	assert.Equal(t, map[string]any{"name_c": "Ok", "date_c": "2026-11-02"}, records[0])

	partial, isPartial := res.(record.PartialFailure)
	require.True(t, isPartial)
	require.Len(t, partial.Succeeded, 1)
	assert.Equal(t, "Ok", partial.Succeeded[0]["name"])
	assert.Equal(t, []record.FieldError{{Field: "date", Message: "invalid date"}}, partial.Failed)
}

func TestClient_WriteResultsKeepLargeIDs(t *testing.T) {
	const body = `{"success":true,"results":[{"success":true,"data":{"Id":9007199254740993,"name_c":"Big"}}]}`
	srv, _ := newTestServer(t, http.StatusOK, body)
	c := newTestClient(t, srv, "_c")

	for name, write := range map[string]func(context.Context, string, []record.Record) (record.Result, error){
		"create": c.CreateRecords,
		"update": c.UpdateRecords,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := write(context.Background(), "event_c", []record.Record{{record.IDField: int64(9007199254740993), "name": "Big"}})
			require.NoError(t, err)

			ok, isOk := res.(record.Ok)
			require.True(t, isOk)
			require.Len(t, ok.Records, 1)
			id, found := ok.Records[0].ID()
			require.True(t, found)
			assert.Equal(t, int64(9007199254740993), id)
			assert.Equal(t, "Big", ok.Records[0]["name"])
		})
	}
}

func TestClient_UpdateRecords_RecordLevelFailureIsMissingID(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK,
		`{"success":true,"results":[{"success":false,"message":"Record does not exist"}]}`)
	c := newTestClient(t, srv, "_c")

	res, err := c.UpdateRecords(context.Background(), "event_c", []record.Record{{record.IDField: int64(9), "name": "x"}})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, captured.Method)
	records := captured.Body["records"].([]any)
	assert.Equal(t, map[string]any{"Id": float64(9), "name_c": "x"}, records[0])
	assert.Equal(t, record.PartialFailure{
		Failed: []record.FieldError{{Field: record.IDField, Message: "Record does not exist"}},
	}, res)
}

func TestClient_DeleteRecords(t *testing.T) {
	srv, captured := newTestServer(t, http.StatusOK, `{"success":true,"results":[{"success":true}]}`)
	c := newTestClient(t, srv, "")

	res, err := c.DeleteRecords(context.Background(), "events", []int64{4})
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, []any{float64(4)}, captured.Body["RecordIds"])
	assert.Equal(t, record.Ok{}, res)
}

func TestClient_NonJSONErrorIsTransportError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusBadGateway, "upstream unavailable")
	c := newTestClient(t, srv, "")

	_, err := c.CreateRecords(context.Background(), "events", []record.Record{{"name": "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_RejectionWithErrorStatusIsErr(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusForbidden, `{"success":false,"message":"Invalid public key"}`)
	c := newTestClient(t, srv, "")

	res, err := c.FetchRecords(context.Background(), "events", record.Query{})
	require.NoError(t, err)
	assert.Equal(t, record.Err{Message: "Invalid public key"}, res)
}

func TestClient_RetriesReadsOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, ProjectID: "p", RetryLimit: 1})
	require.NoError(t, err)

	res, err := c.FetchRecords(context.Background(), "events", record.Query{})
	require.NoError(t, err)
	assert.Empty(t, res.(record.Ok).Records)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_HonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv, "")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchRecords(ctx, "events", record.Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
