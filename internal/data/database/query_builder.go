// Package database builds parameterized PostgreSQL list queries with
// sanitized identifiers, including comparisons on JSONB document keys.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	ILike              ConditionType = "ILIKE"
	Any                ConditionType = "ANY"
	Custom             ConditionType = "CUSTOM"

	defaultLimit  = -1
	defaultOffset = -1
)

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// Condition is one AND-ed predicate of a WHERE clause.
type Condition struct {
	// Expr is the already-sanitized left-hand side.
	Expr     string
	Type     ConditionType
	Value    any
	rawQuery *string
}

// WhereCond compares a plain column.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // panic prevents misuse; custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Expr: sanitizeQualifiedIdentifier(field), Type: condType, Value: value}
}

// WhereJSONCond compares the text value of key inside a JSONB column. When
// numeric is set both sides compare as numbers.
func WhereJSONCond(column, key string, condType ConditionType, value any, numeric bool) Condition {
	if condType == Custom {
		//nolint:forbidigo // see WhereCond
		panic("Use WhereRawCond for Custom type")
	}
	expr := JSONText(column, key)
	if numeric {
		expr = "(" + expr + ")::numeric"
	}
	return Condition{Expr: expr, Type: condType, Value: value}
}

// WhereRawCond adds raw SQL with $n placeholders numbered from 1; they are
// renumbered to fit the final query.
func WhereRawCond(rawQuery string, params ...any) Condition {
	queryStr := rawQuery
	var value any = params
	switch len(params) {
	case 0:
		value = nil
	case 1:
		value = params[0]
	}
	return Condition{Type: Custom, rawQuery: &queryStr, Value: value}
}

// OrderClause sorts by an already-sanitized expression.
type OrderClause struct {
	Expr string
	Dir  string
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    []OrderClause
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy appends ordering by a plain column.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = append(o.OrderBy, OrderClause{Expr: sanitizeQualifiedIdentifier(column), Dir: direction})
	}
}

// WithJSONOrderBy appends ordering by a key inside a JSONB column.
func WithJSONOrderBy(column, key, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = append(o.OrderBy, OrderClause{Expr: JSONText(column, key), Dir: direction})
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

func sanitizeIdentifier(ident string) string {
	return pgx.Identifier{ident}.Sanitize()
}

// sanitizeQualifiedIdentifier quotes each part of "table.column".
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

// JSONText renders column->>'key' with both parts sanitized.
func JSONText(column, key string) string {
	return fmt.Sprintf("%s->>'%s'", sanitizeQualifiedIdentifier(column), SanitizeJSONKey(key))
}

// SanitizeJSONKey keeps alphanumerics, underscores and hyphens.
func SanitizeJSONKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeQualifiedIdentifier(col)
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(cols, ", "))
}

func buildPaginationAndOrderClause(options *ListQueryOptions, paramCount int, args []any) (string, []any) {
	var clause strings.Builder

	if len(options.OrderBy) > 0 {
		parts := make([]string, 0, len(options.OrderBy))
		for _, ob := range options.OrderBy {
			if ob.Expr == "" {
				continue
			}
			part := ob.Expr
			if dir := strings.ToUpper(ob.Dir); dir == "ASC" || dir == "DESC" {
				part += " " + dir
			}
			parts = append(parts, part)
		}
		if len(parts) > 0 {
			clause.WriteString(" ORDER BY ")
			clause.WriteString(strings.Join(parts, ", "))
		}
	}

	if options.Limit != defaultLimit {
		fmt.Fprintf(&clause, " LIMIT $%d", paramCount)
		args = append(args, options.Limit)
		paramCount++
	}
	if options.Offset != defaultOffset {
		fmt.Fprintf(&clause, " OFFSET $%d", paramCount)
		args = append(args, options.Offset)
	}

	return clause.String(), args
}

// BuildListQuery constructs a SQL query string and arguments from options.
//
// Example usage:
//
//	options := NewListQueryOptions("records",
//		WithColumns("id", "data"),
//		WithCondition(WhereCond("collection", Equal, "events")),
//		WithCondition(WhereJSONCond("data", "category", Equal, "music", false)),
//		WithJSONOrderBy("data", "date", "ASC"),
//		WithLimit(50),
//		WithOffset(0),
//	)
//
//	query, args := BuildListQuery(options)
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, whereArgs, next := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	if options.CountOnly {
		return query.String(), whereArgs
	}

	tail, args := buildPaginationAndOrderClause(options, next, whereArgs)
	query.WriteString(tail)
	return query.String(), args
}

func handleAnyCondition(cond Condition, paramCount int) (string, []any, int) {
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil, paramCount
	}
	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", paramCount+i)
		args[i] = rv.Index(i).Interface()
	}
	return fmt.Sprintf("%s = ANY (ARRAY[%s])", cond.Expr, strings.Join(placeholders, ", ")), args, paramCount + rv.Len()
}

func handleCustomCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.rawQuery == nil || *cond.rawQuery == "" {
		return "", nil, paramCount
	}
	if cond.Value == nil {
		return *cond.rawQuery, nil, paramCount
	}

	params, ok := cond.Value.([]any)
	if !ok {
		params = []any{cond.Value}
	}

	var args []any
	current := paramCount
	idxMap := make(map[int]int)
	out := placeholderRe.ReplaceAllStringFunc(*cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, seen := idxMap[n]; !seen {
			idxMap[n] = current
			args = append(args, params[n-1])
			current++
		}
		return fmt.Sprintf("$%d", idxMap[n])
	})
	return out, args, current
}

func processCondition(cond Condition, paramCount int) (string, []any, int) {
	switch cond.Type {
	case Custom:
		return handleCustomCondition(cond, paramCount)
	case Any:
		if cond.Expr == "" {
			return "", nil, paramCount
		}
		return handleAnyCondition(cond, paramCount)
	case Equal, NotEqual, GreaterThan, LessThan, LessThanOrEqual, GreaterThanOrEqual, ILike:
		if cond.Expr == "" {
			return "", nil, paramCount
		}
		return fmt.Sprintf("%s %s $%d", cond.Expr, cond.Type, paramCount), []any{cond.Value}, paramCount + 1
	}
	return "", nil, paramCount
}

func buildWhereClause(inputConditions []Condition, startParamIndex int) (string, []any, int) {
	conditions := make([]string, 0, len(inputConditions))
	var args []any
	paramCount := startParamIndex

	for _, cond := range inputConditions {
		sql, condArgs, next := processCondition(cond, paramCount)
		if sql != "" {
			conditions = append(conditions, sql)
			args = append(args, condArgs...)
			paramCount = next
		}
	}

	if len(conditions) == 0 {
		return "", args, paramCount
	}
	return "WHERE " + strings.Join(conditions, " AND "), args, paramCount
}
