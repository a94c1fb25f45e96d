// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// ConnAckVariableHeader is the CONNACK packet's variable header.
type ConnAckVariableHeader struct {
	SessionPresent bool
	ReturnCode     byte
	Properties     Properties
}

func (ConnAckVariableHeader) variableHeader() {}

func decodeConnAckVariableHeader(dialect Dialect, r *ByteReader) (ConnAckVariableHeader, int, error) {
	var vh ConnAckVariableHeader

	flags, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	if flags&0xFE != 0 {
		return vh, 0, wrapf(ReservedFlagsViolation, "connack flags %#x", flags)
	}
	vh.SessionPresent = flags&0x01 != 0
	consumed := 1

	code, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	vh.ReturnCode = code
	consumed++

	if dialect == DialectV5 {
		props, n, err := DecodeProperties(Connack, r)
		if err != nil {
			return vh, 0, err
		}
		vh.Properties = props
		consumed += n
	}

	return vh, consumed, nil
}

// EncodeConnAck writes a CONNACK packet for the given dialect.
func EncodeConnAck(buf *bytes.Buffer, dialect Dialect, vh ConnAckVariableHeader) {
	var body bytes.Buffer
	body.WriteByte(boolByte(vh.SessionPresent))
	body.WriteByte(vh.ReturnCode)
	if dialect == DialectV5 {
		vh.Properties.Encode(Connack, Mods{AllowResponseInfo: true}, &body)
	}

	fh := FixedHeader{Type: Connack, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
