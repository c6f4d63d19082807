package task

import "errors"

// ErrJobPanicked wraps a value recovered from a panicking job body.
var ErrJobPanicked = errors.New("job panicked")
