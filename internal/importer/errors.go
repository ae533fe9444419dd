package importer

import (
	"errors"
	"fmt"

	"github.com/roach88/iofimport/internal/iof"
)

// ImportError is returned when a document cannot be imported.
//
// Nothing of the document is stored when Import returns an ImportError; the
// failed run itself is still recorded.
type ImportError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Path locates the problem in the document, e.g. "ClassResult[2]/PersonResult[1]".
	Path string

	// Message is a human-readable description.
	Message string

	// Problems lists every validation error for CodeInvalidDocument.
	Problems []iof.ValidationError

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes import errors.
type ErrorCode string

const (
	// CodeInvalidDocument indicates the document failed to decode or validate.
	CodeInvalidDocument ErrorCode = "INVALID_DOCUMENT"

	// CodeUnsupportedVersion indicates an iofVersion outside 3.x.
	CodeUnsupportedVersion ErrorCode = "UNSUPPORTED_VERSION"

	// CodeStoreFailure indicates the database rejected a write.
	CodeStoreFailure ErrorCode = "STORE_FAILURE"

	// CodeQualityCheck indicates quality warnings were raised in strict mode.
	CodeQualityCheck ErrorCode = "QUALITY_CHECK_FAILED"

	// CodeFetchFailed indicates the document could not be read from its source.
	CodeFetchFailed ErrorCode = "FETCH_FAILED"
)

// Error implements the error interface.
func (e *ImportError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// CodeOf returns the code of an ImportError anywhere in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Code
	}
	return ""
}

func invalidDocument(problems []iof.ValidationError) *ImportError {
	e := &ImportError{
		Code:     CodeInvalidDocument,
		Message:  fmt.Sprintf("%d validation errors", len(problems)),
		Problems: problems,
	}
	if len(problems) == 1 {
		e.Message = "1 validation error"
	}
	if len(problems) > 0 {
		e.Path = problems[0].Path
		e.Err = problems[0]
	}
	return e
}

func storeFailure(path string, err error) *ImportError {
	return &ImportError{Code: CodeStoreFailure, Path: path, Message: "store write failed", Err: err}
}
