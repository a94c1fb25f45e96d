// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

func decodePubCompVariableHeader(dialect Dialect, remaining int, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		return decodeMessageIdVariableHeader(r)
	}
	return decodePubReplyVariableHeader(Pubcomp, remaining, r)
}

// EncodePubComp writes a PUBCOMP packet for the given dialect.
func EncodePubComp(buf *bytes.Buffer, dialect Dialect, vh PubReplyVariableHeader) {
	var body bytes.Buffer
	if dialect == DialectV3 {
		encodeMessageIdVariableHeader(&body, MessageIdVariableHeader{PacketId: vh.PacketId})
	} else {
		encodePubReplyVariableHeader(&body, Pubcomp, vh)
	}

	fh := FixedHeader{Type: Pubcomp, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
