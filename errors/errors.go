package errors

import "fmt"

var (
	ErrInvalidToken     = fmt.Errorf("invalid access token")
	ErrInvalidSend      = fmt.Errorf("invalid send request")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
	ErrNoActivePeer     = fmt.Errorf("no conversation peer selected")
	ErrSelfConversation = fmt.Errorf("sender and receiver are the same user")
	ErrWorkerPanic      = fmt.Errorf("worker panic")
)

// TransportError reports that the server could not be reached at all.
// Always recoverable by retry; the underlying failure is kept for logging
// while the user-facing message stays stable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "network error: unable to reach the server"
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError carries the human-readable message extracted from a
// non-success envelope returned by a reachable server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }
