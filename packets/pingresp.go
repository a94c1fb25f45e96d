// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// EncodePingResp writes a PINGRESP packet, identical across both dialects:
// a fixed header with zero remaining length and nothing else.
func EncodePingResp(buf *bytes.Buffer) {
	fh := FixedHeader{Type: Pingresp, Remaining: 0}
	fh.Encode(buf)
}
