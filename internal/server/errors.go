package server

import "errors"

// Protocol error taxonomy. Malformed or misdirected messages are logged
// and ignored; only invalid builds are reported back so the peer can
// resubmit. None of these terminate the connection.
var (
	ErrMalformedMessage      = errors.New("malformed message")
	ErrUnknownMatch          = errors.New("unknown match")
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrInvalidQueueType      = errors.New("invalid queue type")
	ErrActionOnInactiveMatch = errors.New("action on inactive match")
)
