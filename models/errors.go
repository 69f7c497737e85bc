package models

import (
	"errors"
	"strings"
)

var (
	// ErrMissingFormType is returned when neither formType nor form_type is set
	ErrMissingFormType = errors.New("Missing form type")

	// ErrInvalidPayload is returned when the request body cannot be decoded
	ErrInvalidPayload = errors.New("Invalid payload")

	// ErrInvalidSecret is returned when the revalidation secret does not match
	ErrInvalidSecret = errors.New("Invalid secret")

	// ErrNotFound is returned when a CMS document does not exist
	ErrNotFound = errors.New("not found")
)

// MissingFieldsError lists every required field absent from a submission
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing required fields: " + strings.Join(e.Fields, ", ")
}

// StorageError wraps a failure to persist a submission to the log
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "Unable to write submissions log"
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotificationError wraps a failed notification dispatch after the
// submission was already stored
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return "Submission saved, but email notification failed."
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether err is caused by bad client input
func IsClientError(err error) bool {
	var missing *MissingFieldsError
	return errors.Is(err, ErrMissingFormType) ||
		errors.Is(err, ErrInvalidPayload) ||
		errors.As(err, &missing)
}
