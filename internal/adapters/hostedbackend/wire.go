package hostedbackend

import (
	"encoding/json"

	"github.com/target/eventhub/internal/domain/record"
)

type fieldName struct {
	Name string `json:"Name"`
}

type fieldSpec struct {
	Field fieldName `json:"field"`
}

type whereSpec struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
}

type orderSpec struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

type pagingSpec struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type fetchRequest struct {
	Fields     []fieldSpec `json:"fields,omitempty"`
	Where      []whereSpec `json:"where,omitempty"`
	OrderBy    []orderSpec `json:"orderBy,omitempty"`
	PagingInfo *pagingSpec `json:"pagingInfo,omitempty"`
}

type recordsRequest struct {
	Records []record.Record `json:"records"`
}

type deleteRequest struct {
	RecordIDs []int64 `json:"RecordIds"`
}

type fieldError struct {
	FieldLabel string `json:"fieldLabel"`
	Message    string `json:"message"`
}

type resultItem struct {
	Success bool          `json:"success"`
	Data    record.Record `json:"data"`
	Message string        `json:"message"`
	Errors  []fieldError  `json:"errors"`
}

// envelope is the response body of every hosted backend call.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Results []resultItem    `json:"results"`
}
