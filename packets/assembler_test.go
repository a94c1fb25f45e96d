// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(a *MessageAssembler) []any {
	var out []any
	for {
		v, ok := a.Next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func twoPingreqs() []byte {
	return []byte{0xC0, 0x00, 0xC0, 0x00}
}

func TestAssemblerSuspendRestartDeterminism(t *testing.T) {
	whole := twoPingreqs()

	a := NewMessageAssembler(DialectV3, 0)
	a.Feed(whole)
	full := drain(a)
	require.Len(t, full, 2)

	for split := 0; split <= len(whole); split++ {
		b := NewMessageAssembler(DialectV3, 0)
		b.Feed(whole[:split])
		got := drain(b)
		b.Feed(whole[split:])
		got = append(got, drain(b)...)

		require.Equal(t, full, got, "split at %d produced a different message sequence", split)
	}
}

func TestAssemblerIdempotentResetAfterMessage(t *testing.T) {
	a := NewMessageAssembler(DialectV3, 0)
	a.Feed([]byte{0xC0, 0x00})
	_, ok := a.Next()
	require.True(t, ok)

	require.Equal(t, stateReadFixed, a.state)
	require.Nil(t, a.vh)
	require.Equal(t, FixedHeader{}, a.fh)
	require.Zero(t, a.bytesRemaining)
}

func TestAssemblerDiscardsAfterFatalError(t *testing.T) {
	a := NewMessageAssembler(DialectV3, 0)
	a.Feed([]byte{0xFF, 0x00})
	value, ok := a.Next()
	require.True(t, ok)
	_, isInvalid := value.(InvalidMessage)
	require.True(t, isInvalid)
	require.True(t, a.Discarding())

	_, ok = a.Next()
	require.False(t, ok)
}

func TestAssemblerRejectsOversizedMessage(t *testing.T) {
	a := NewMessageAssembler(DialectV3, 4)
	a.Feed([]byte{0x30, 0x06, 0x00, 0x03, 0x61, 0x2F, 0x62, 0xFF})
	value, ok := a.Next()
	require.True(t, ok)
	inv, isInvalid := value.(InvalidMessage)
	require.True(t, isInvalid)
	require.ErrorIs(t, inv.Cause, MessageTooLarge)
}

func TestPublishWildcardTopicRejected(t *testing.T) {
	for _, topic := range []string{"a/+", "a/#", "+", "#"} {
		var body bytes.Buffer
		writeUtf8String(&body, topic)

		var raw bytes.Buffer
		raw.WriteByte(0x30)
		writeVarByteInt(&raw, body.Len())
		raw.Write(body.Bytes())

		a := NewMessageAssembler(DialectV3, 0)
		a.Feed(raw.Bytes())
		value, ok := a.Next()
		require.True(t, ok)
		inv, isInvalid := value.(InvalidMessage)
		require.True(t, isInvalid, "topic %q should be rejected", topic)
		require.ErrorIs(t, inv.Cause, InvalidTopic)
	}
}
