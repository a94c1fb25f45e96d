// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

func decodeDisconnectVariableHeader(dialect Dialect, remaining int, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		if remaining != 0 {
			return nil, 0, wrapf(ProtocolViolation, "v3 disconnect carries no variable header")
		}
		return ReasonCodePlusPropertiesVariableHeader{ReasonCode: CodeDisconnect.Code}, 0, nil
	}
	return decodeReasonCodePlusPropertiesVariableHeader(Disconnect, remaining, r)
}

// EncodeDisconnect writes a DISCONNECT packet for the given dialect. V3
// DISCONNECT carries nothing beyond the fixed header regardless of vh.
func EncodeDisconnect(buf *bytes.Buffer, dialect Dialect, vh ReasonCodePlusPropertiesVariableHeader) {
	var body bytes.Buffer
	if dialect == DialectV5 {
		encodeReasonCodePlusPropertiesVariableHeader(&body, Disconnect, vh)
	}

	fh := FixedHeader{Type: Disconnect, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
