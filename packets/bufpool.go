// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"bytes"
	"sync"
)

var bufPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// getBuffer returns a reset *bytes.Buffer from the pool, for use as encode
// scratch space by callers that write a Message and then copy or send its
// bytes onward within the same call.
func getBuffer() *bytes.Buffer {
	buf := bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// putBuffer returns buf to the pool. Callers must not retain buf, or any
// slice aliasing its backing array, after calling this.
func putBuffer(buf *bytes.Buffer) {
	bufPool.Put(buf)
}

// EncodeToBytes encodes msg for the given dialect using a pooled scratch
// buffer, returning an owned copy safe to retain past the call.
func EncodeToBytes(dialect Dialect, msg Message) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	if err := encodeMessage(buf, dialect, msg); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// encodeMessage dispatches to the per-type encoder for msg.Fixed.Type.
func encodeMessage(buf *bytes.Buffer, dialect Dialect, msg Message) error {
	switch vh := msg.Variable.(type) {
	case ConnectVariableHeader:
		pl, _ := msg.Payload.(ConnectPayload)
		EncodeConnect(buf, dialect, vh, pl)
	case ConnAckVariableHeader:
		EncodeConnAck(buf, dialect, vh)
	case PublishVariableHeader:
		pl, _ := msg.Payload.(PublishPayload)
		EncodePublish(buf, dialect, msg.Fixed, vh, pl)
	case PubReplyVariableHeader:
		switch msg.Fixed.Type {
		case Puback:
			EncodePubAck(buf, dialect, vh)
		case Pubrec:
			EncodePubRec(buf, dialect, vh)
		case Pubrel:
			EncodePubRel(buf, dialect, vh)
		case Pubcomp:
			EncodePubComp(buf, dialect, vh)
		default:
			return wrapf(ProtocolViolation, "pub-reply variable header on unexpected type %s", msg.Fixed.Type)
		}
	case MessageIdVariableHeader:
		return encodeMessageIdTyped(buf, dialect, msg, vh)
	case MessageIdPlusPropertiesVariableHeader:
		return encodeMessageIdPropsTyped(buf, dialect, msg, vh)
	case ReasonCodePlusPropertiesVariableHeader:
		switch msg.Fixed.Type {
		case Disconnect:
			EncodeDisconnect(buf, dialect, vh)
		case Auth:
			if dialect == DialectV3 {
				return wrapf(UnknownMessageType, "auth is not defined in v3")
			}
			EncodeAuth(buf, vh)
		default:
			return wrapf(ProtocolViolation, "reason-code variable header on unexpected type %s", msg.Fixed.Type)
		}
	case nil:
		switch msg.Fixed.Type {
		case Pingreq:
			EncodePingReq(buf)
		case Pingresp:
			EncodePingResp(buf)
		default:
			return wrapf(ProtocolViolation, "%s requires a variable header", msg.Fixed.Type)
		}
	default:
		return wrapf(ProtocolViolation, "unhandled variable header type for %s", msg.Fixed.Type)
	}
	return nil
}

func encodeMessageIdTyped(buf *bytes.Buffer, dialect Dialect, msg Message, vh MessageIdVariableHeader) error {
	switch msg.Fixed.Type {
	case Puback:
		EncodePubAck(buf, dialect, PubReplyVariableHeader{PacketId: vh.PacketId, ReasonCode: CodeSuccess.Code})
	case Pubrec:
		EncodePubRec(buf, dialect, PubReplyVariableHeader{PacketId: vh.PacketId, ReasonCode: CodeSuccess.Code})
	case Pubrel:
		EncodePubRel(buf, dialect, PubReplyVariableHeader{PacketId: vh.PacketId, ReasonCode: CodeSuccess.Code})
	case Pubcomp:
		EncodePubComp(buf, dialect, PubReplyVariableHeader{PacketId: vh.PacketId, ReasonCode: CodeSuccess.Code})
	case Subscribe:
		pl, _ := msg.Payload.(SubscribePayload)
		EncodeSubscribe(buf, dialect, vh.PacketId, Properties{}, pl)
	case Unsubscribe:
		pl, _ := msg.Payload.(UnsubscribePayload)
		EncodeUnsubscribe(buf, vh.PacketId, pl)
	case Suback:
		pl, _ := msg.Payload.(SubAckPayload)
		EncodeSubAck(buf, dialect, vh.PacketId, Properties{}, pl)
	case Unsuback:
		pl, _ := msg.Payload.(UnsubAckPayload)
		EncodeUnsubAck(buf, dialect, vh.PacketId, Properties{}, pl)
	default:
		return wrapf(ProtocolViolation, "message-id variable header on unexpected type %s", msg.Fixed.Type)
	}
	return nil
}

func encodeMessageIdPropsTyped(buf *bytes.Buffer, dialect Dialect, msg Message, vh MessageIdPlusPropertiesVariableHeader) error {
	switch msg.Fixed.Type {
	case Subscribe:
		pl, _ := msg.Payload.(SubscribePayload)
		EncodeSubscribe(buf, dialect, vh.PacketId, vh.Properties, pl)
	case Suback:
		pl, _ := msg.Payload.(SubAckPayload)
		EncodeSubAck(buf, dialect, vh.PacketId, vh.Properties, pl)
	case Unsuback:
		pl, _ := msg.Payload.(UnsubAckPayload)
		EncodeUnsubAck(buf, dialect, vh.PacketId, vh.Properties, pl)
	default:
		return wrapf(ProtocolViolation, "message-id+properties variable header on unexpected type %s", msg.Fixed.Type)
	}
	return nil
}
