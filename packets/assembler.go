// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "errors"

// DefaultMaxBytesInMessage is the upper bound on a packet's remaining
// length when no override is configured.
const DefaultMaxBytesInMessage = 8092

type assemblerState byte

const (
	stateReadFixed assemblerState = iota
	stateReadVariable
	stateReadPayload
	stateDiscard
)

// MessageAssembler is a resumable, single-owner decoder for one byte
// stream. It is fed bytes as they arrive off the transport and drives
// itself through ReadFixed -> ReadVariable -> ReadPayload -> ReadFixed,
// suspending on Truncated and falling into Discard on any other decode
// error. It carries no synchronization: the caller must not call its
// methods from more than one goroutine at a time.
type MessageAssembler struct {
	r                 *ByteReader
	dialect           Dialect
	maxBytesInMessage int

	state          assemblerState
	fh             FixedHeader
	vh             VariableHeader
	bytesRemaining int
}

// NewMessageAssembler builds an assembler for one connection. A
// maxBytesInMessage of 0 selects DefaultMaxBytesInMessage.
func NewMessageAssembler(dialect Dialect, maxBytesInMessage int) *MessageAssembler {
	if maxBytesInMessage <= 0 {
		maxBytesInMessage = DefaultMaxBytesInMessage
	}
	return &MessageAssembler{
		r:                 NewByteReader(nil),
		dialect:           dialect,
		maxBytesInMessage: maxBytesInMessage,
		state:             stateReadFixed,
	}
}

// Feed appends newly arrived transport bytes to the assembler's buffer.
func (a *MessageAssembler) Feed(b []byte) {
	a.r.Feed(b)
}

// Next drives the state machine as far as the currently buffered bytes
// allow. It returns (value, true) for every Message or InvalidMessage it
// manages to assemble, or (nil, false) once the buffered bytes are
// exhausted and the decoder is suspended awaiting more. Call Next again
// after each call returns a value: there may be more than one complete
// message already buffered.
func (a *MessageAssembler) Next() (any, bool) {
	for {
		switch a.state {
		case stateReadFixed:
			a.r.Checkpoint()
			fh, err := DecodeFixedHeader(a.r)
			if err != nil {
				if errors.Is(err, Truncated) {
					a.r.Rewind()
					return nil, false
				}
				return a.invalidate(err), true
			}
			if fh.Remaining > a.maxBytesInMessage {
				return a.invalidate(wrapf(MessageTooLarge, "remaining length %d exceeds max %d", fh.Remaining, a.maxBytesInMessage)), true
			}
			a.fh = fh
			a.bytesRemaining = fh.Remaining
			a.state = stateReadVariable

		case stateReadVariable:
			a.r.Checkpoint()
			vh, n, err := decodeVariableHeader(a.dialect, a.fh, a.r)
			if err != nil {
				if errors.Is(err, Truncated) {
					a.r.Rewind()
					return nil, false
				}
				return a.invalidate(err), true
			}
			a.vh = vh
			a.bytesRemaining -= n
			a.state = stateReadPayload

		case stateReadPayload:
			a.r.Checkpoint()
			pl, n, err := decodePayload(a.dialect, a.fh, a.vh, a.bytesRemaining, a.r)
			if err != nil {
				if errors.Is(err, Truncated) {
					a.r.Rewind()
					return nil, false
				}
				return a.invalidate(err), true
			}
			if n != a.bytesRemaining {
				return a.invalidate(wrapf(ProtocolViolation, "%s payload consumed %d of %d declared bytes", a.fh.Type, n, a.bytesRemaining)), true
			}

			msg := Message{Fixed: a.fh, Variable: a.vh, Payload: pl}
			a.reset()
			return msg, true

		case stateDiscard:
			a.r.Discard(a.r.Remaining())
			return nil, false
		}
	}
}

// invalidate moves the assembler into Discard and builds the
// InvalidMessage to emit as the cause of the fatal decode error.
func (a *MessageAssembler) invalidate(cause error) InvalidMessage {
	a.state = stateDiscard
	var de *DecodeError
	if !errors.As(cause, &de) {
		de = newDecodeError(cause)
	}
	return InvalidMessage{Cause: de}
}

func (a *MessageAssembler) reset() {
	a.state = stateReadFixed
	a.fh = FixedHeader{}
	a.vh = nil
	a.bytesRemaining = 0
}

// Discarding reports whether the assembler has given up on the stream
// after a fatal decode error; once true it never returns to false.
func (a *MessageAssembler) Discarding() bool {
	return a.state == stateDiscard
}
