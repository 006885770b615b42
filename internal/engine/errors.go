package engine

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument marks an import document that failed validation
var ErrMalformedDocument = errors.New("malformed document")

// ImportError names the export-document section that was rejected
type ImportError struct {
	Section string
	Err     error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.Section, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func malformed(section string, err error) error {
	return &ImportError{Section: section, Err: fmt.Errorf("%w: %v", ErrMalformedDocument, err)}
}

// SaveError is returned when the store rejects a write. The in-memory state
// keeps the mutation; Engine.Save retries the write.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return "save pet state: " + e.Err.Error()
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
