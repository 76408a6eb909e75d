package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind names a class of failure. Callers branch on the kind, never on the message.
type Kind string

const (
	KindMissingSignatureInput Kind = "MissingSignatureInput"
	KindMissingCallbackField  Kind = "MissingCallbackField"
	KindTransactionNotFound   Kind = "TransactionNotFound"
	KindAmbiguousTransaction  Kind = "AmbiguousTransaction"
	KindInvalidSignature      Kind = "InvalidSignature"
	KindMalformedNumericField Kind = "MalformedNumericField"
	KindAcquirerNotFound      Kind = "AcquirerNotFound"
	KindDuplicateReference    Kind = "DuplicateReference"
	KindInconsistentCallback  Kind = "InconsistentCallback"
	KindInvalidInput          Kind = "InvalidInput"
	KindInternal              Kind = "Internal"
)

// Error represents an application error
type Error struct {
	Kind     Kind   `json:"kind"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Received string `json:"received,omitempty"`
	Expected string `json:"expected,omitempty"`
	Err      error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrTransactionNotFound) works
// for errors built by the constructors below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New creates a new Error
func New(kind Kind, code int, message string, err error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Sentinels for errors.Is.
var (
	ErrMissingSignatureInput = New(KindMissingSignatureInput, http.StatusBadRequest, "missing signature input", nil)
	ErrMissingCallbackField  = New(KindMissingCallbackField, http.StatusBadRequest, "missing callback field", nil)
	ErrTransactionNotFound   = New(KindTransactionNotFound, http.StatusNotFound, "transaction not found", nil)
	ErrAmbiguousTransaction  = New(KindAmbiguousTransaction, http.StatusConflict, "ambiguous transaction", nil)
	ErrInvalidSignature      = New(KindInvalidSignature, http.StatusUnauthorized, "invalid signature", nil)
	ErrMalformedNumericField = New(KindMalformedNumericField, http.StatusBadRequest, "malformed numeric field", nil)
	ErrAcquirerNotFound      = New(KindAcquirerNotFound, http.StatusNotFound, "acquirer not found", nil)
	ErrDuplicateReference    = New(KindDuplicateReference, http.StatusConflict, "duplicate reference", nil)
	ErrInconsistentCallback  = New(KindInconsistentCallback, http.StatusUnprocessableEntity, "inconsistent callback", nil)
	ErrInvalidInput          = New(KindInvalidInput, http.StatusBadRequest, "invalid input", nil)
)

func MissingSignatureInput(field string) *Error {
	e := New(KindMissingSignatureInput, http.StatusBadRequest,
		fmt.Sprintf("epayco: signature input %q is missing", field), nil)
	e.Field = field
	return e
}

func MissingCallbackField(field string) *Error {
	e := New(KindMissingCallbackField, http.StatusBadRequest,
		fmt.Sprintf("epayco: received data with missing %s", field), nil)
	e.Field = field
	return e
}

func TransactionNotFound(reference string) *Error {
	e := New(KindTransactionNotFound, http.StatusNotFound,
		fmt.Sprintf("epayco: received data for reference %s; no order found", reference), nil)
	e.Received = reference
	return e
}

func AmbiguousTransaction(reference string, matches int) *Error {
	e := New(KindAmbiguousTransaction, http.StatusConflict,
		fmt.Sprintf("epayco: received data for reference %s; %d orders found", reference, matches), nil)
	e.Received = reference
	return e
}

// InvalidSignature keeps both values out of the message; callers log Received
// and Expected, and the message is what reaches the HTTP client.
func InvalidSignature(received, computed string) *Error {
	e := New(KindInvalidSignature, http.StatusUnauthorized, "epayco: invalid signature", nil)
	e.Received = received
	e.Expected = computed
	return e
}

func MalformedNumericField(field, value string, err error) *Error {
	e := New(KindMalformedNumericField, http.StatusBadRequest,
		fmt.Sprintf("epayco: field %s is not numeric: %q", field, value), err)
	e.Field = field
	e.Received = value
	return e
}

func AcquirerNotFound(id string) *Error {
	e := New(KindAcquirerNotFound, http.StatusNotFound,
		fmt.Sprintf("acquirer %s not found", id), nil)
	e.Received = id
	return e
}

func DuplicateReference(reference string) *Error {
	e := New(KindDuplicateReference, http.StatusConflict,
		fmt.Sprintf("reference %s already exists", reference), nil)
	e.Received = reference
	return e
}

func InconsistentCallback(reference string, discrepancies int) *Error {
	e := New(KindInconsistentCallback, http.StatusUnprocessableEntity,
		fmt.Sprintf("epayco: callback for reference %s has %d invalid parameter(s)", reference, discrepancies), nil)
	e.Received = reference
	return e
}

func InvalidInput(message string, err error) *Error {
	return New(KindInvalidInput, http.StatusBadRequest, message, err)
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusCode returns the HTTP status for err; unknown errors map to 500.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
