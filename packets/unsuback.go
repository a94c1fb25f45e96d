// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// UnsubAckPayload carries one reason code per unsubscribed filter; V3 has
// no payload at all, since v3.1.1 UNSUBACK carries only a packet id.
type UnsubAckPayload struct {
	ReasonCodes []byte
}

func (UnsubAckPayload) payloadData() {}

func decodeUnsubAckVariableHeader(dialect Dialect, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		return decodeMessageIdVariableHeader(r)
	}
	return decodeMessageIdPlusPropertiesVariableHeader(Unsuback, r)
}

func decodeUnsubAckPayload(dialect Dialect, remaining int, r *ByteReader) (UnsubAckPayload, int, error) {
	if dialect == DialectV3 {
		if remaining != 0 {
			return UnsubAckPayload{}, 0, wrapf(ProtocolViolation, "v3 unsuback carries no payload")
		}
		return UnsubAckPayload{}, 0, nil
	}
	codes, err := r.ReadN(remaining)
	if err != nil {
		return UnsubAckPayload{}, 0, err
	}
	return UnsubAckPayload{ReasonCodes: append([]byte(nil), codes...)}, len(codes), nil
}

// EncodeUnsubAck writes an UNSUBACK packet for the given dialect.
func EncodeUnsubAck(buf *bytes.Buffer, dialect Dialect, pid uint16, props Properties, pl UnsubAckPayload) {
	var body bytes.Buffer
	if dialect == DialectV3 {
		encodeMessageIdVariableHeader(&body, MessageIdVariableHeader{PacketId: pid})
	} else {
		encodeMessageIdPlusPropertiesVariableHeader(&body, Unsuback, MessageIdPlusPropertiesVariableHeader{PacketId: pid, Properties: props})
		body.Write(pl.ReasonCodes)
	}

	fh := FixedHeader{Type: Unsuback, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
