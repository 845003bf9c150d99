package ledger

import "fmt"

// SequenceExhaustedError is returned when more than 99 identifiers are
// requested for the same year. The two-digit sequence is part of the
// identifier format contract; exceeding it needs a format bump, not a
// silent wrap-around.
type SequenceExhaustedError struct {
	Year int
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("complaint sequence exceeded 99 for year %d", e.Year)
}

// IOError wraps an unrecoverable ledger read/write/migration failure.
// "File absent" is not an IOError; the store creates the file on first
// write and the allocator treats absence as an empty ledger.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
