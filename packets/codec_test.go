// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarByteIntRoundTrip(t *testing.T) {
	cases := []int{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, maxVarByteInt}
	for _, v := range cases {
		var buf bytes.Buffer
		writeVarByteInt(&buf, v)
		require.Equal(t, varByteIntLen(v), buf.Len())

		got, n, err := readVarByteInt(NewByteReader(buf.Bytes()))
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, buf.Len(), n)
	}
}

func TestVarByteIntMalformedFourthByteContinuation(t *testing.T) {
	raw := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	_, _, err := readVarByteInt(NewByteReader(raw))
	require.ErrorIs(t, err, MalformedVarInt)
}

func TestVarByteIntTruncated(t *testing.T) {
	raw := []byte{0x80}
	_, _, err := readVarByteInt(NewByteReader(raw))
	require.ErrorIs(t, err, Truncated)
}

func TestUtf8StringRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	writeUtf8String(&buf, "hello/world")

	s, ok, err := readUtf8String(NewByteReader(buf.Bytes()), 0, 65535)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello/world", s)
}

func TestUtf8StringRejectsEmbeddedNul(t *testing.T) {
	var buf bytes.Buffer
	writeUtf8String(&buf, "a\x00b")

	_, _, err := readUtf8String(NewByteReader(buf.Bytes()), 0, 65535)
	require.ErrorIs(t, err, ProtocolViolation)
}

func TestByteArrayIsZeroCopy(t *testing.T) {
	raw := []byte{0x00, 0x02, 0xAA, 0xBB, 0xCC}
	r := NewByteReader(raw)
	b, err := readByteArrayRaw(r)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, b)

	raw[2] = 0xFF
	require.Equal(t, byte(0xFF), b[0], "readByteArrayRaw must alias the source buffer")
}
