// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// SubAckPayload carries one reason/return code per subscribed filter, in
// the same order as the originating SUBSCRIBE payload.
type SubAckPayload struct {
	ReasonCodes []byte
}

func (SubAckPayload) payloadData() {}

func decodeSubAckVariableHeader(dialect Dialect, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		return decodeMessageIdVariableHeader(r)
	}
	return decodeMessageIdPlusPropertiesVariableHeader(Suback, r)
}

func decodeSubAckPayload(remaining int, r *ByteReader) (SubAckPayload, int, error) {
	codes, err := r.ReadN(remaining)
	if err != nil {
		return SubAckPayload{}, 0, err
	}
	if len(codes) == 0 {
		return SubAckPayload{}, 0, wrapf(ProtocolViolation, "suback payload has no reason codes")
	}
	return SubAckPayload{ReasonCodes: append([]byte(nil), codes...)}, len(codes), nil
}

// EncodeSubAck writes a SUBACK packet for the given dialect.
func EncodeSubAck(buf *bytes.Buffer, dialect Dialect, pid uint16, props Properties, pl SubAckPayload) {
	var body bytes.Buffer
	if dialect == DialectV3 {
		encodeMessageIdVariableHeader(&body, MessageIdVariableHeader{PacketId: pid})
	} else {
		encodeMessageIdPlusPropertiesVariableHeader(&body, Suback, MessageIdPlusPropertiesVariableHeader{PacketId: pid, Properties: props})
	}
	body.Write(pl.ReasonCodes)

	fh := FixedHeader{Type: Suback, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
