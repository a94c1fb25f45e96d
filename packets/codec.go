// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

const maxVarByteInt = 268435455

// readUint8 consumes one byte.
func readUint8(r *ByteReader) (byte, error) {
	return r.ReadByte()
}

// readUint16BE consumes two big-endian bytes.
func readUint16BE(r *ByteReader) (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// readUint32BE consumes four big-endian bytes. Consumers treat the result
// as unsigned, so no sign check is performed.
func readUint32BE(r *ByteReader) (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// readVarByteInt reads MQTT's 7-bits-plus-continuation variable byte
// integer: 1 to 4 bytes, each contributing 7 low bits, high bit as
// continuation. A 4th byte still carrying the continuation bit is
// malformed. Returns the decoded value and the number of bytes consumed.
func readVarByteInt(r *ByteReader) (value int, n int, err error) {
	var multiplier uint32
	var v uint32
	for n = 1; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, 0, err
		}

		v |= uint32(b&0x7F) << multiplier
		if v > maxVarByteInt {
			return 0, 0, wrapf(MalformedVarInt, "value exceeds %d", maxVarByteInt)
		}

		if b&0x80 == 0 {
			return int(v), n, nil
		}
		if n == 4 {
			return 0, 0, wrapf(MalformedVarInt, "continuation bit set on 4th byte")
		}
		multiplier += 7
	}
}

// readUtf8String reads a 2-byte length-prefixed UTF-8 string. If the
// decoded length falls outside [minLen, maxLen] the bytes are still
// consumed (so the cursor stays correct) but the returned string is the
// zero value and ok is false, letting the caller decide whether that
// absence is legal at this call site.
func readUtf8String(r *ByteReader, minLen, maxLen int) (s string, ok bool, err error) {
	b, err := readByteArrayRaw(r)
	if err != nil {
		return "", false, err
	}
	if len(b) < minLen || len(b) > maxLen {
		return "", false, nil
	}
	if !validUTF8(b) {
		return "", false, wrapf(ProtocolViolation, "invalid utf-8 string")
	}
	return string(b), true, nil
}

// readByteArray reads a 2-byte length-prefixed opaque byte array, returning
// an owned copy.
func readByteArray(r *ByteReader) ([]byte, error) {
	b, err := readByteArrayRaw(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// readByteArrayRaw reads a 2-byte length-prefixed byte array and returns a
// slice aliasing the reader's internal buffer, i.e. zero-copy.
func readByteArrayRaw(r *ByteReader) ([]byte, error) {
	length, err := readUint16BE(r)
	if err != nil {
		return nil, err
	}
	return r.ReadN(int(length))
}

// validUTF8 rejects embedded NUL and requires well-formed UTF-8, per
// [MQTT-1.5.4-1] [MQTT-1.5.4-2].
func validUTF8(b []byte) bool {
	return utf8.Valid(b) && bytes.IndexByte(b, 0x00) == -1
}

// writeUint16BE appends a big-endian uint16.
func writeUint16BE(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

// writeUint32BE appends a big-endian uint32.
func writeUint32BE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// writeUtf8String appends a 2-byte length-prefixed UTF-8 string.
func writeUtf8String(buf *bytes.Buffer, s string) {
	writeUint16BE(buf, uint16(len(s)))
	buf.WriteString(s)
}

// writeByteArray appends a 2-byte length-prefixed byte array.
func writeByteArray(buf *bytes.Buffer, b []byte) {
	writeUint16BE(buf, uint16(len(b)))
	buf.Write(b)
}

// writeVarByteInt appends the minimum encoding of v as a variable byte
// integer.
func writeVarByteInt(buf *bytes.Buffer, v int) {
	for {
		digit := byte(v % 128)
		v /= 128
		if v > 0 {
			digit |= 0x80
		}
		buf.WriteByte(digit)
		if v == 0 {
			return
		}
	}
}

// varByteIntLen returns how many bytes writeVarByteInt would emit for v,
// used to compute the remaining-length field before the buffer exists.
func varByteIntLen(v int) int {
	n := 1
	for v >= 128 {
		v /= 128
		n++
	}
	return n
}
