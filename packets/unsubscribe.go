// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// UnsubscribePayload is the UNSUBSCRIBE packet's payload: one or more
// topic filters, identical in shape across both dialects.
type UnsubscribePayload struct {
	TopicFilters []string
}

func (UnsubscribePayload) payloadData() {}

// Unlike SUBSCRIBE/SUBACK/UNSUBACK, UNSUBSCRIBE carries no properties block
// under v5 either: its variable header is the packet identifier alone in
// both dialects.
func decodeUnsubscribeVariableHeader(dialect Dialect, r *ByteReader) (VariableHeader, int, error) {
	return decodeMessageIdVariableHeader(r)
}

func decodeUnsubscribePayload(remaining int, r *ByteReader) (UnsubscribePayload, int, error) {
	var pl UnsubscribePayload
	consumed := 0

	for consumed < remaining {
		filter, ok, err := readUtf8String(r, 1, 65535)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(filter)
		if !ok {
			return pl, 0, wrapf(InvalidTopic, "unsubscribe topic filter length out of range")
		}
		pl.TopicFilters = append(pl.TopicFilters, filter)
	}

	if len(pl.TopicFilters) == 0 {
		return pl, 0, wrapf(ProtocolViolation, "unsubscribe payload has no topic filters")
	}

	return pl, consumed, nil
}

// EncodeUnsubscribe writes an UNSUBSCRIBE packet. The variable header is
// the packet identifier alone under both dialects.
func EncodeUnsubscribe(buf *bytes.Buffer, pid uint16, pl UnsubscribePayload) {
	var body bytes.Buffer
	encodeMessageIdVariableHeader(&body, MessageIdVariableHeader{PacketId: pid})
	for _, f := range pl.TopicFilters {
		writeUtf8String(&body, f)
	}

	fh := FixedHeader{Type: Unsubscribe, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
