package ports

import (
	"context"

	"github.com/target/eventhub/internal/domain/record"
)

// RecordClient reads and writes loosely typed records in a named table.
//
// The returned error reports transport failures (network, decoding, database
// connectivity). Rejections by the backend itself are returned as record.Err
// or record.PartialFailure with a nil error.
type RecordClient interface {
	FetchRecords(ctx context.Context, table string, q record.Query) (record.Result, error)
	GetRecordByID(ctx context.Context, table string, id int64, fields []string) (record.Result, error)
	CreateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error)
	// UpdateRecords patches records; each must carry record.IDField.
	UpdateRecords(ctx context.Context, table string, recs []record.Record) (record.Result, error)
	DeleteRecords(ctx context.Context, table string, ids []int64) (record.Result, error)
}
