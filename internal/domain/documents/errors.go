package documents

import "errors"

// ErrNotFound indicates the document does not exist for the given owner.
var ErrNotFound = errors.New("document not found")

// ErrNotReady indicates a question was asked before the document reached
// the analyzed status.
var ErrNotReady = errors.New("document not ready")
