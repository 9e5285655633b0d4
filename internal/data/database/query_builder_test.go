package database

import (
	"reflect"
	"testing"
)

func TestBuildListQuery_BasicSelect(t *testing.T) {
	query, args := BuildListQuery(NewListQueryOptions("records"))

	expected := `SELECT * FROM "records"`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestBuildListQuery_Nil(t *testing.T) {
	query, args := BuildListQuery(nil)
	if query != "" || args != nil {
		t.Errorf("Expected empty query for nil options, got %q %v", query, args)
	}
}

func TestBuildListQuery_CountOnly(t *testing.T) {
	opts := NewListQueryOptions("records",
		WithCountOnly(),
		WithCondition(WhereCond("collection", Equal, "events")),
		WithLimit(10),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT COUNT(*) FROM "records" WHERE "collection" = $1`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{"events"}) {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestBuildListQuery_JSONConditionsAndOrder(t *testing.T) {
	opts := NewListQueryOptions("records",
		WithColumns("id", "data"),
		WithCondition(WhereCond("collection", Equal, "events")),
		WithCondition(WhereJSONCond("data", "name", ILike, "%jazz%", false)),
		WithCondition(WhereJSONCond("data", "capacity", GreaterThanOrEqual, 10, true)),
		WithJSONOrderBy("data", "date", "asc"),
		WithOrderBy("id", "DESC"),
		WithLimit(50),
		WithOffset(0),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT "id", "data" FROM "records" WHERE "collection" = $1 AND "data"->>'name' ILIKE $2` +
		` AND ("data"->>'capacity')::numeric >= $3 ORDER BY "data"->>'date' ASC, "id" DESC LIMIT $4 OFFSET $5`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{"events", "%jazz%", 10, 50, 0}) {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestBuildListQuery_Any(t *testing.T) {
	opts := NewListQueryOptions("records",
		WithCondition(WhereJSONCond("data", "category", Any, []string{"music", "art"}, false)),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "records" WHERE "data"->>'category' = ANY (ARRAY[$1, $2])`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{"music", "art"}) {
		t.Errorf("Unexpected args %v", args)
	}

	// empty slices drop the condition
	query, _ = BuildListQuery(NewListQueryOptions("records",
		WithCondition(WhereCond("id", Any, []int64{})),
	))
	if query != `SELECT * FROM "records"` {
		t.Errorf("Expected condition to be dropped, got %q", query)
	}
}

func TestBuildListQuery_WhereCustom_RepeatedPlaceholder(t *testing.T) {
	opts := NewListQueryOptions("records",
		WithCondition(WhereCond("collection", Equal, "events")),
		WithCondition(WhereRawCond("(id = $1 OR (data->>'parent')::bigint = $1) AND id <> $2", int64(4), int64(9))),
	)
	query, args := BuildListQuery(opts)

	expected := `SELECT * FROM "records" WHERE "collection" = $1 AND (id = $2 OR (data->>'parent')::bigint = $2) AND id <> $3`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
	if !reflect.DeepEqual(args, []any{"events", int64(4), int64(9)}) {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestBuildListQuery_SQLInjectionPrevention(t *testing.T) {
	opts := NewListQueryOptions(`records"; DROP TABLE records; --`,
		WithCondition(WhereJSONCond("data", `name' OR '1'='1`, Equal, "x", false)),
	)
	query, _ := BuildListQuery(opts)

	expected := `SELECT * FROM "records""; DROP TABLE records; --" WHERE "data"->>'nameOR11' = $1`
	if query != expected {
		t.Errorf("Expected query %q, got %q", expected, query)
	}
}

func TestWhereCond_CustomPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for Custom type")
		}
	}()
	WhereCond("x", Custom, nil)
}
