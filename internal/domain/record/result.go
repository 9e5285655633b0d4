package record

import "fmt"

// Result is the outcome of a backend call. It is one of Ok, PartialFailure
// or Err; use Match to handle it.
type Result interface {
	isResult()
}

// Ok holds the records returned by a fully successful call.
type Ok struct {
	Records []Record
}

// FieldError describes why one record was rejected. Field is empty for
// record-level failures.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// PartialFailure holds the records that succeeded and the errors for those
// that did not.
type PartialFailure struct {
	Succeeded []Record
	Failed    []FieldError
}

// Err is a call the backend rejected as a whole.
type Err struct {
	Message string
}

func (Ok) isResult()             {}
func (PartialFailure) isResult() {}
func (Err) isResult()            {}

// Cases handles every Result variant. All three functions are required.
type Cases[T any] struct {
	Ok      func(Ok) T
	Partial func(PartialFailure) T
	Err     func(Err) T
}

// Match dispatches r to the matching case. It panics when a case is missing
// or r is nil, since both are programming errors.
func Match[T any](r Result, c Cases[T]) T {
	if c.Ok == nil || c.Partial == nil || c.Err == nil {
		panic("record: Match requires Ok, Partial and Err cases")
	}
	switch v := r.(type) {
	case Ok:
		return c.Ok(v)
	case PartialFailure:
		return c.Partial(v)
	case Err:
		return c.Err(v)
	default:
		panic(fmt.Sprintf("record: unknown result %T", r))
	}
}

// Collect folds per-record outcomes into a Result: no failures is Ok,
// otherwise PartialFailure.
func Collect(succeeded []Record, failed []FieldError) Result {
	if len(failed) == 0 {
		return Ok{Records: succeeded}
	}
	return PartialFailure{Succeeded: succeeded, Failed: failed}
}
