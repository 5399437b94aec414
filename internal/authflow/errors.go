package authflow

import (
	"errors"

	"github.com/pratik-mahalle/mediremind/pkg/client"
)

// ErrSubmissionInFlight is returned by Submit while an earlier submission
// of the same flow has not settled. No request is made.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// Messages shown to the user
const (
	LoginSuccessMessage    = "Login successful!"
	LoginFailedMessage     = "Login failed. Please check your credentials."
	RegisterSuccessMessage = "Registration successful! Please login."
	RegisterFailedMessage  = "Registration failed. Please try again."

	loginRequiredMessage = "Email and password are required"
	sessionFailedMessage = "Could not save your session. Please try again."
)

// Kind tells apart the ways a submission can fail
type Kind string

const (
	// KindValidation means the form was rejected before any request was made.
	KindValidation Kind = "validation"
	// KindTransport means no response was received or it could not be read.
	KindTransport Kind = "transport"
	// KindServer means the server answered with a failure.
	KindServer Kind = "server"
	// KindStorage means the session token could not be persisted.
	KindStorage Kind = "storage"
)

// Error is the failure returned by Submit. Message is what the user was
// shown.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an error from the API client to an Error, using fallback
// when the server did not send a message.
func classify(err error, fallback string) *Error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &Error{
			Kind:       KindServer,
			Message:    msg,
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}

	return &Error{
		Kind:    KindTransport,
		Message: fallback,
		Err:     err,
	}
}
