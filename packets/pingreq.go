// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// EncodePingReq writes a PINGREQ packet, identical across both dialects:
// a fixed header with zero remaining length and nothing else.
func EncodePingReq(buf *bytes.Buffer) {
	fh := FixedHeader{Type: Pingreq, Remaining: 0}
	fh.Encode(buf)
}
