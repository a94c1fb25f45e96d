// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"errors"
	"fmt"
)

// Truncated is not a decode error: it signals that the reader does not yet
// hold enough bytes to complete the current phase. The MessageAssembler
// treats it as a suspend-and-rewind instruction, never as a fatal fault.
var Truncated = errors.New("truncated: insufficient bytes")

// Fatal decode errors. Every one of these drives the MessageAssembler into
// the Discard state and is reported once as the cause of an InvalidMessage.
var (
	MalformedVarInt        = errors.New("malformed variable byte integer")
	UnknownMessageType     = errors.New("unknown message type")
	ReservedFlagsViolation = errors.New("reserved flags violation")
	InvalidQoS             = errors.New("invalid qos")
	InvalidPacketId        = errors.New("invalid packet id")
	InvalidTopic           = errors.New("invalid topic")
	IdentifierRejected     = errors.New("identifier rejected")
	MessageTooLarge        = errors.New("message too large")
	ProtocolViolation      = errors.New("protocol violation")
)

// wrapf annotates a taxonomy sentinel with a specific cause while keeping it
// matchable with errors.Is(err, sentinel).
func wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

// DecodeError is the cause carried by an InvalidMessage. It always wraps
// exactly one of the taxonomy sentinels above, and carries a best-effort v5
// Code for callers that want to reply on the wire without re-deriving a
// reason code from the Go error value.
type DecodeError struct {
	Cause error
	Code  Code
}

func (e *DecodeError) Error() string {
	return e.Cause.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// newDecodeError builds a DecodeError, looking up the conventional reason
// code for the given taxonomy sentinel.
func newDecodeError(cause error) *DecodeError {
	return &DecodeError{Cause: cause, Code: codeForError(cause)}
}
