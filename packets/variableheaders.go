// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// MessageIdVariableHeader is the variable header shape shared by
// PUBACK/PUBREC/PUBREL/PUBCOMP/SUBSCRIBE/SUBACK/UNSUBACK under the V3 dialect, and
// by UNSUBSCRIBE under both dialects (unlike its SUBSCRIBE/SUBACK/UNSUBACK
// siblings, UNSUBSCRIBE never grew a V5 properties block). PINGREQ/PINGRESP
// /DISCONNECT/AUTH's absence of packet id entirely is handled by their own
// decoders, not this type.
type MessageIdVariableHeader struct {
	PacketId uint16
}

func (MessageIdVariableHeader) variableHeader() {}

func decodeMessageIdVariableHeader(r *ByteReader) (MessageIdVariableHeader, int, error) {
	pid, err := readUint16BE(r)
	if err != nil {
		return MessageIdVariableHeader{}, 0, err
	}
	if pid == 0 {
		return MessageIdVariableHeader{}, 0, wrapf(InvalidPacketId, "packet id must be non-zero")
	}
	return MessageIdVariableHeader{PacketId: pid}, 2, nil
}

func encodeMessageIdVariableHeader(buf *bytes.Buffer, vh MessageIdVariableHeader) {
	writeUint16BE(buf, vh.PacketId)
}

// MessageIdPlusPropertiesVariableHeader is SUBSCRIBE/SUBACK/UNSUBACK's V5
// variable header: a packet id followed by a properties block.
type MessageIdPlusPropertiesVariableHeader struct {
	PacketId   uint16
	Properties Properties
}

func (MessageIdPlusPropertiesVariableHeader) variableHeader() {}

func decodeMessageIdPlusPropertiesVariableHeader(pkt MessageType, r *ByteReader) (MessageIdPlusPropertiesVariableHeader, int, error) {
	var vh MessageIdPlusPropertiesVariableHeader

	pid, err := readUint16BE(r)
	if err != nil {
		return vh, 0, err
	}
	if pid == 0 {
		return vh, 0, wrapf(InvalidPacketId, "packet id must be non-zero")
	}
	vh.PacketId = pid
	consumed := 2

	props, n, err := DecodeProperties(pkt, r)
	if err != nil {
		return vh, 0, err
	}
	vh.Properties = props
	consumed += n

	return vh, consumed, nil
}

func encodeMessageIdPlusPropertiesVariableHeader(buf *bytes.Buffer, pkt MessageType, vh MessageIdPlusPropertiesVariableHeader) {
	writeUint16BE(buf, vh.PacketId)
	vh.Properties.Encode(pkt, Mods{}, buf)
}

// PubReplyVariableHeader is the V5 variable header for
// PUBACK/PUBREC/PUBREL/PUBCOMP: a packet id, then a reason code and
// properties block that MAY be entirely absent when the reason code is
// Success and there are no properties, per MQTT 5 section 3.4.2.1.
type PubReplyVariableHeader struct {
	PacketId   uint16
	ReasonCode byte
	Properties Properties
}

func (PubReplyVariableHeader) variableHeader() {}

func decodePubReplyVariableHeader(pkt MessageType, remaining int, r *ByteReader) (PubReplyVariableHeader, int, error) {
	var vh PubReplyVariableHeader

	pid, err := readUint16BE(r)
	if err != nil {
		return vh, 0, err
	}
	if pid == 0 {
		return vh, 0, wrapf(InvalidPacketId, "packet id must be non-zero")
	}
	vh.PacketId = pid
	consumed := 2

	if remaining == 2 {
		vh.ReasonCode = CodeSuccess.Code
		return vh, consumed, nil
	}

	code, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	vh.ReasonCode = code
	consumed++

	if remaining > 3 {
		props, n, err := DecodeProperties(pkt, r)
		if err != nil {
			return vh, 0, err
		}
		vh.Properties = props
		consumed += n
	}

	return vh, consumed, nil
}

func encodePubReplyVariableHeader(buf *bytes.Buffer, pkt MessageType, vh PubReplyVariableHeader) {
	writeUint16BE(buf, vh.PacketId)
	if vh.ReasonCode == CodeSuccess.Code && len(vh.Properties.ReasonString) == 0 && len(vh.Properties.User) == 0 {
		return
	}
	buf.WriteByte(vh.ReasonCode)
	vh.Properties.Encode(pkt, Mods{}, buf)
}

// ReasonCodePlusPropertiesVariableHeader is DISCONNECT and AUTH's V5
// variable header: a reason code and properties block, both of which MAY
// be omitted entirely when the reason code is the type's default success
// value and there are no properties.
type ReasonCodePlusPropertiesVariableHeader struct {
	ReasonCode byte
	Properties Properties
}

func (ReasonCodePlusPropertiesVariableHeader) variableHeader() {}

func decodeReasonCodePlusPropertiesVariableHeader(pkt MessageType, remaining int, r *ByteReader) (ReasonCodePlusPropertiesVariableHeader, int, error) {
	var vh ReasonCodePlusPropertiesVariableHeader
	if remaining == 0 {
		vh.ReasonCode = CodeSuccess.Code
		return vh, 0, nil
	}

	code, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	vh.ReasonCode = code
	consumed := 1

	if remaining > 1 {
		props, n, err := DecodeProperties(pkt, r)
		if err != nil {
			return vh, 0, err
		}
		vh.Properties = props
		consumed += n
	}

	return vh, consumed, nil
}

func encodeReasonCodePlusPropertiesVariableHeader(buf *bytes.Buffer, pkt MessageType, vh ReasonCodePlusPropertiesVariableHeader) {
	var props bytes.Buffer
	vh.Properties.Encode(pkt, Mods{}, &props)
	if vh.ReasonCode == CodeSuccess.Code && props.Len() == 1 {
		return
	}
	buf.WriteByte(vh.ReasonCode)
	buf.Write(props.Bytes())
}
