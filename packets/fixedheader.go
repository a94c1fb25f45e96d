// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// FixedHeader is the 1-byte type+flags plus variable-length remaining-length
// field common to every MQTT control packet.
type FixedHeader struct {
	Type MessageType
	Dup  bool
	Qos  QoS
	// Retain is the RETAIN flag; only meaningful for PUBLISH.
	Retain bool
	// Remaining is the total byte count of variable header + payload.
	// Bounded to 268,435,455 (4-byte VBI max).
	Remaining int
}

// reservedFlagNibble is the flag nibble PUBREL, SUBSCRIBE and UNSUBSCRIBE
// must carry on the wire in both dialects.
const reservedFlagNibble = 0b0010

// DecodeFixedHeader reads the type+flags byte from r, then the
// remaining-length VBI, validating flag-nibble legality per type. Unused
// flag fields (dup, qos, retain) are normalized to their zero value for any
// type other than PUBLISH.
func DecodeFixedHeader(r *ByteReader) (FixedHeader, error) {
	b, err := r.ReadByte()
	if err != nil {
		return FixedHeader{}, err
	}

	typ := MessageType(b >> 4)
	if !typ.Valid() {
		return FixedHeader{}, wrapf(UnknownMessageType, "type code %d", byte(typ))
	}

	flags := b & 0x0F
	fh := FixedHeader{Type: typ}

	switch typ {
	case Publish:
		fh.Dup = flags&0x08 > 0
		fh.Qos = QoS((flags >> 1) & 0x03)
		fh.Retain = flags&0x01 > 0
		if !fh.Qos.Valid() {
			return FixedHeader{}, wrapf(InvalidQoS, "wire qos %d", fh.Qos)
		}
	case Pubrel, Subscribe, Unsubscribe:
		if flags != reservedFlagNibble {
			return FixedHeader{}, wrapf(ReservedFlagsViolation, "%s flags %#x, want %#x", typ, flags, reservedFlagNibble)
		}
	default:
		if flags != 0 {
			return FixedHeader{}, wrapf(ReservedFlagsViolation, "%s flags %#x, want 0", typ, flags)
		}
	}

	length, _, err := readVarByteInt(r)
	if err != nil {
		return FixedHeader{}, err
	}
	fh.Remaining = length

	return fh, nil
}

// Encode writes the fixed header, always emitting the required flag
// pattern for fh.Type regardless of what Dup/Qos/Retain hold for
// non-PUBLISH types.
func (fh FixedHeader) Encode(buf *bytes.Buffer) {
	var flags byte
	switch fh.Type {
	case Publish:
		flags = boolByte(fh.Dup)<<3 | byte(fh.Qos)<<1 | boolByte(fh.Retain)
	case Pubrel, Subscribe, Unsubscribe:
		flags = reservedFlagNibble
	}
	buf.WriteByte(byte(fh.Type)<<4 | flags)
	writeVarByteInt(buf, fh.Remaining)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
