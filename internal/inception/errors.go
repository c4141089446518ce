package inception

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Domain errors for the inception package.
var (
	// ErrAuthentication is matched by failures caused by a rejected API token
	// (HTTP 401 or 403). Callers never retry these.
	ErrAuthentication = errors.New("inception: authentication failed")

	// ErrCommunication is matched by network failures and non-2xx responses
	// other than 401/403.
	ErrCommunication = errors.New("inception: communication failure")

	// ErrGeneric is matched by failures that fit neither category above,
	// such as an undecodable response body.
	ErrGeneric = errors.New("inception: unexpected failure")

	// ErrAlreadyConnected is returned by Connect on a client whose polling
	// loops are already running.
	ErrAlreadyConnected = errors.New("inception: client already connected")

	// ErrClosed is returned by Connect after Close.
	ErrClosed = errors.New("inception: client closed")

	// ErrUnknownKind is returned for an entity kind outside door, input,
	// output and area.
	ErrUnknownKind = errors.New("inception: unknown entity kind")

	// ErrUnknownEntity is returned when an entity id is not in the mirror.
	ErrUnknownEntity = errors.New("inception: unknown entity")

	// ErrInvalidControl is returned for a control action the entity kind
	// does not support.
	ErrInvalidControl = errors.New("inception: invalid control action")
)

// FailureKind classifies a transport failure.
type FailureKind int

// Failure kinds, in order of increasing severity.
const (
	FailureGeneric FailureKind = iota
	FailureCommunication
	FailureAuthentication
)

// String returns the kind name.
func (k FailureKind) String() string {
	switch k {
	case FailureCommunication:
		return "communication"
	case FailureAuthentication:
		return "authentication"
	default:
		return "generic"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureCommunication:
		return ErrCommunication
	case FailureAuthentication:
		return ErrAuthentication
	default:
		return ErrGeneric
	}
}

// Error is the typed failure returned by Client.Request.
//
// It matches ErrAuthentication, ErrCommunication or ErrGeneric through
// errors.Is according to Kind, and also unwraps to the underlying cause.
type Error struct {
	Kind FailureKind

	// Status is the HTTP status code, or 0 when no response was received.
	Status int

	// Timeout is true when the request deadline elapsed.
	Timeout bool

	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("inception %s failure: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("inception %s failure: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// statusError builds the failure for a non-2xx response.
func statusError(status int, body string) *Error {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &Error{
			Kind:    FailureAuthentication,
			Status:  status,
			Message: "invalid credentials (" + strconv.Itoa(status) + ")",
		}
	}

	msg := fmt.Sprintf("panel returned %d %s", status, http.StatusText(status))
	if body != "" {
		msg += ": " + body
	}
	return &Error{
		Kind:    FailureCommunication,
		Status:  status,
		Message: msg,
	}
}

// IsTimeout reports whether err is a transport failure caused by an
// elapsed request deadline.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Timeout
}

// terminalStatuses are client errors the review poller never retries.
var terminalStatuses = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusNotFound,
}

// isTerminalClientError reports whether a communication failure encodes
// a 400, 401, 403 or 404. Transport errors are judged by their status;
// any other error by the codes appearing in its message.
func isTerminalClientError(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		for _, s := range terminalStatuses {
			if e.Status == s {
				return true
			}
		}
		return false
	}

	msg := err.Error()
	for _, s := range terminalStatuses {
		if strings.Contains(msg, strconv.Itoa(s)) {
			return true
		}
	}
	return false
}
