// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// decodeAuthVariableHeader decodes an AUTH packet, which MQTT 5 introduced
// for extended (e.g. challenge/response) authentication exchanges. AUTH
// does not exist in V3 and is rejected outright under that dialect.
func decodeAuthVariableHeader(dialect Dialect, remaining int, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		return nil, 0, wrapf(UnknownMessageType, "auth is not defined in v3")
	}
	return decodeReasonCodePlusPropertiesVariableHeader(Auth, remaining, r)
}

// EncodeAuth writes an AUTH packet. Callers must not invoke this under the
// V3 dialect.
func EncodeAuth(buf *bytes.Buffer, vh ReasonCodePlusPropertiesVariableHeader) {
	var body bytes.Buffer
	encodeReasonCodePlusPropertiesVariableHeader(&body, Auth, vh)

	fh := FixedHeader{Type: Auth, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
