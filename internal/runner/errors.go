package runner

import (
	"errors"
	"fmt"
)

// ErrNoRecords reports a target whose page yielded no launch rows. It is a
// soft failure: nothing is written and the caller decides the exit status.
var ErrNoRecords = errors.New("no records extracted")

// ErrUnknownName reports a target or composite missing from configuration.
var ErrUnknownName = errors.New("unknown target or composite")

// MergeInputError reports a prior dataset that incremental mode needs but
// cannot read.
type MergeInputError struct {
	Dataset string
	Err     error
}

func (e *MergeInputError) Error() string {
	return fmt.Sprintf("merge input %s: %v", e.Dataset, e.Err)
}

func (e *MergeInputError) Unwrap() error {
	return e.Err
}
