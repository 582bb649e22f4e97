package objectclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced by the object client.
type ErrorKind string

const (
	// KindConfiguration marks missing or invalid storage settings.
	KindConfiguration ErrorKind = "ConfigurationError"
	// KindNotInitialized marks a call made before Configure succeeded.
	KindNotInitialized ErrorKind = "NotInitializedError"
	// KindStorageRequest marks any failure returned by the storage backend.
	KindStorageRequest ErrorKind = "StorageRequestError"
	// KindInvalidInput marks caller input rejected before reaching the backend.
	KindInvalidInput ErrorKind = "InvalidInputError"
)

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrNotInitialized = &Error{Kind: KindNotInitialized, Message: "S3 not initialized. Call Configure first"}
	ErrStorageRequest = &Error{Kind: KindStorageRequest}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
)

// Error is the tagged error returned by every operation in this package.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPStatus returns the recommended HTTP status code for the error kind.
// Only backend and configuration failures map to 500: caller input errors
// are 400 and calls made before Configure are 503 so clients can retry.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotInitialized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func configurationError(cause error) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: "missing AWS configuration values, required: region, accessKeyId, secretAccessKey, bucketName",
		Cause:   cause,
	}
}

func storageError(op string, cause error) *Error {
	return &Error{Kind: KindStorageRequest, Op: op, Message: "storage request failed", Cause: cause}
}

func invalidInput(op, message string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatusOf maps any error to an HTTP status. Unknown errors map to 500.
func HTTPStatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
