package domain

import "fmt"

// InvalidFilterError reports a caller mistake in the raw filter
// parameters. Field and Value identify the offending input so the
// dashboard can render an actionable message.
type InvalidFilterError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter: field %q value %q: %s", e.Field, e.Value, e.Reason)
}

// UnknownViewError reports a request for a view the engine does not know.
type UnknownViewError struct {
	View string
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("unknown view %q", e.View)
}

// StoreUnavailableError wraps any failure to reach the backing dataset,
// including fetch timeouts. It is the only error the record store raises.
type StoreUnavailableError struct {
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("alert store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// InsufficientHistoryError reports a forecast request over a history
// shorter than the configured minimum.
type InsufficientHistoryError struct {
	Points  int
	Minimum int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: %d points, minimum %d", e.Points, e.Minimum)
}

// IrregularSeriesError reports a forecast history whose bucket keys are
// not evenly spaced. Bucket names the first offending key.
type IrregularSeriesError struct {
	Bucket string
	Reason string
}

func (e *IrregularSeriesError) Error() string {
	return fmt.Sprintf("irregular series at bucket %q: %s", e.Bucket, e.Reason)
}
