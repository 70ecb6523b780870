package analytics

import "errors"

// ErrNotFound is returned when the API reports the resource does not exist (404).
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest is returned when the server rejects the request (400) or
// when client-side validation fails before a request is made.
var ErrInvalidRequest = errors.New("invalid request")

// ErrTransport is returned for network failures and unexpected status codes.
var ErrTransport = errors.New("transport error")
