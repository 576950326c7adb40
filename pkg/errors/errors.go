package errors

import "errors"

// ErrOptimisticLock signals that the record was modified by another
// operation between read and write.
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")
