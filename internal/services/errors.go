package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindExtraction ErrorKind = "extraction"
	KindStorage    ErrorKind = "storage"
	// KindState marks an operation the candidate's current status does not allow.
	// Requests and submissions are always permitted.
	KindState ErrorKind = "state"
)

// Error subtypes. Extraction subtypes let callers guide a re-upload.
const (
	SubtypeUnsupportedFormat  = "unsupported_format"
	SubtypeCorruptDocument    = "corrupt_document"
	SubtypeEmptyDocument      = "empty_document"
	SubtypeInvalidFileType    = "invalid_file_type"
	SubtypeFileTooLarge       = "file_too_large"
	SubtypeEmptyFile          = "empty_file"
	SubtypeMissingFile        = "missing_file"
	SubtypeStorageWriteFailed = "storage_write_failed"
	SubtypeStorageUnavailable = "storage_unavailable"
	SubtypeCancelled          = "cancelled"
	SubtypeTimedOut           = "timed_out"
)

// Error carries a machine readable kind plus the operation and candidate it concerns.
type Error struct {
	Kind        ErrorKind
	Subtype     string
	Op          string
	CandidateID uuid.UUID
	Message     string
	Err         error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.CandidateID != uuid.Nil {
		return fmt.Sprintf("%s: candidate %s: %s", e.Op, e.CandidateID, msg)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindStorage
}

// Is matches on kind and subtype so sentinels like ErrUnsupportedFormat work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Subtype == "" || t.Subtype == e.Subtype
}

var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrExtraction        = &Error{Kind: KindExtraction}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrUnsupportedFormat = &Error{Kind: KindExtraction, Subtype: SubtypeUnsupportedFormat}
	ErrCorruptDocument   = &Error{Kind: KindExtraction, Subtype: SubtypeCorruptDocument}
	ErrEmptyDocument     = &Error{Kind: KindExtraction, Subtype: SubtypeEmptyDocument}
	ErrInvalidFileType   = &Error{Kind: KindValidation, Subtype: SubtypeInvalidFileType}
	ErrFileTooLarge      = &Error{Kind: KindValidation, Subtype: SubtypeFileTooLarge}
)

func newValidationError(op, subtype, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Subtype: subtype, Op: op, Message: fmt.Sprintf(format, args...)}
}

func newExtractionError(subtype string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindExtraction, Subtype: subtype, Op: "extract", Message: fmt.Sprintf(format, args...), Err: err}
}

func notFound(op string, id uuid.UUID, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, CandidateID: id, Message: "candidate not found", Err: err}
}

// wrapCollaborator attaches the operation and candidate id to a repository or store error
// without changing its kind.
func wrapCollaborator(op string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		if svcErr.CandidateID == uuid.Nil {
			clone := *svcErr
			clone.Op = op
			clone.CandidateID = id
			return &clone
		}
		return svcErr
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return &Error{Kind: KindStorage, Subtype: SubtypeStorageUnavailable, Op: op, CandidateID: id, Err: err}
	}
	if errors.Is(err, ErrStorageWriteFailed) {
		return &Error{Kind: KindStorage, Subtype: SubtypeStorageWriteFailed, Op: op, CandidateID: id, Err: err}
	}
	return fmt.Errorf("%s: candidate %s: %w", op, id, err)
}

// KindOf returns the kind of err, or an empty kind for unclassified errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ""
}
