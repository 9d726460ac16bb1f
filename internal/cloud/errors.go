// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"errors"

	"github.com/pdiddy/kbsync/internal/httputil"
)

// Kind identifies which operation produced an Error.
type Kind string

const (
	KindConnection    Kind = "connection"
	KindUpload        Kind = "upload"
	KindSearch        Kind = "search"
	KindSync          Kind = "sync"
	KindDelete        Kind = "delete"
	KindVisualization Kind = "visualization"
)

// Sentinels for errors.Is. Their text doubles as the fallback message.
var (
	ErrConnection    = errors.New("connection failed")
	ErrUpload        = errors.New("upload failed")
	ErrSearch        = errors.New("search failed")
	ErrSync          = errors.New("sync failed")
	ErrDelete        = errors.New("delete failed")
	ErrVisualization = errors.New("visualization failed")
)

var sentinels = map[Kind]error{
	KindConnection:    ErrConnection,
	KindUpload:        ErrUpload,
	KindSearch:        ErrSearch,
	KindSync:          ErrSync,
	KindDelete:        ErrDelete,
	KindVisualization: ErrVisualization,
}

// Error is the failure returned by every client operation that propagates
// errors. Message is the best human-readable text available: the server's
// message, else the transport error text, else the kind's fallback.
type Error struct {
	Kind    Kind
	Message string

	// StatusCode is the HTTP status when the server replied, 0 otherwise.
	StatusCode int

	// Err is the underlying transport, status, or decoding error, if any.
	Err error
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, cause error) *Error {
	e := &Error{Kind: kind, Err: cause}

	var se *httputil.StatusError
	if errors.As(cause, &se) {
		e.StatusCode = se.StatusCode
	}
	switch {
	case se != nil && se.Message != "":
		e.Message = se.Message
	case cause != nil && cause.Error() != "":
		e.Message = cause.Error()
	default:
		e.Message = sentinels[kind].Error()
	}
	return e
}
