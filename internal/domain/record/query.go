package record

// Operator is a comparison understood by every record backend.
type Operator string

const (
	EqualTo              Operator = "EqualTo"
	NotEqualTo           Operator = "NotEqualTo"
	Contains             Operator = "Contains"
	GreaterThan          Operator = "GreaterThan"
	GreaterThanOrEqualTo Operator = "GreaterThanOrEqualTo"
	LessThan             Operator = "LessThan"
	LessThanOrEqualTo    Operator = "LessThanOrEqualTo"
)

// Valid reports whether o is a known operator.
func (o Operator) Valid() bool {
	switch o {
	case EqualTo, NotEqualTo, Contains, GreaterThan, GreaterThanOrEqualTo, LessThan, LessThanOrEqualTo:
		return true
	}
	return false
}

// Direction orders results.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Condition filters records on one field. A record matches when the field
// satisfies Operator against any of Values.
type Condition struct {
	Field    string
	Operator Operator
	Values   []any
}

// Order sorts by a field.
type Order struct {
	Field     string
	Direction Direction
}

// Paging bounds a result page.
type Paging struct {
	Limit  int
	Offset int
}

// Query selects records from a table.
type Query struct {
	// Fields restricts returned keys; empty returns every field.
	Fields  []string
	Where   []Condition
	OrderBy []Order
	Paging  Paging
}

// Where is shorthand for a single-valued condition.
func Where(field string, op Operator, value any) Condition {
	return Condition{Field: field, Operator: op, Values: []any{value}}
}
