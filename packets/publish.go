// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// PublishVariableHeader is the PUBLISH packet's variable header. PacketId is
// -1 when the fixed header's QoS is AtMostOnce, since [MQTT-2.3.1-5]
// forbids a packet identifier on QoS 0 publishes.
type PublishVariableHeader struct {
	TopicName  string
	PacketId   int
	Properties Properties
}

func (PublishVariableHeader) variableHeader() {}

// PublishPayload carries the PUBLISH application message. Data aliases the
// assembler's internal buffer, so callers that retain it past the next
// decode must copy it.
type PublishPayload struct {
	Data []byte
}

func (PublishPayload) payloadData() {}

func decodePublishVariableHeader(dialect Dialect, fh FixedHeader, r *ByteReader) (PublishVariableHeader, int, error) {
	var vh PublishVariableHeader
	vh.PacketId = -1

	topic, ok, err := readUtf8String(r, 0, 65535)
	if err != nil {
		return vh, 0, err
	}
	consumed := 2 + len(topic)
	if !ok {
		return vh, 0, wrapf(InvalidTopic, "topic name too long")
	}
	if !isValidPublishTopic(topic) {
		return vh, 0, wrapf(InvalidTopic, "topic name %q is empty or contains a wildcard", topic)
	}
	vh.TopicName = topic

	if fh.Qos > AtMostOnce {
		pid, err := readUint16BE(r)
		if err != nil {
			return vh, 0, err
		}
		if pid == 0 {
			return vh, 0, wrapf(InvalidPacketId, "publish packet id must be non-zero")
		}
		vh.PacketId = int(pid)
		consumed += 2
	}

	if dialect == DialectV5 {
		props, n, err := DecodeProperties(Publish, r)
		if err != nil {
			return vh, 0, err
		}
		vh.Properties = props
		consumed += n
	}

	return vh, consumed, nil
}

// isValidPublishTopic rejects an empty PUBLISH topic name and wildcard
// characters in it, since it is a concrete topic, never a filter.
func isValidPublishTopic(topic string) bool {
	if topic == "" {
		return false
	}
	for i := 0; i < len(topic); i++ {
		if topic[i] == '+' || topic[i] == '#' {
			return false
		}
	}
	return true
}

func decodePublishPayload(remaining int, r *ByteReader) (PublishPayload, int, error) {
	data, err := r.ReadN(remaining)
	if err != nil {
		return PublishPayload{}, 0, err
	}
	return PublishPayload{Data: data}, len(data), nil
}

// EncodePublish writes a PUBLISH packet for the given dialect.
func EncodePublish(buf *bytes.Buffer, dialect Dialect, fh FixedHeader, vh PublishVariableHeader, pl PublishPayload) {
	var body bytes.Buffer
	writeUtf8String(&body, vh.TopicName)
	if fh.Qos > AtMostOnce {
		writeUint16BE(&body, uint16(vh.PacketId))
	}
	if dialect == DialectV5 {
		vh.Properties.Encode(Publish, Mods{AllowResponseInfo: true}, &body)
	}

	fh.Type = Publish
	fh.Remaining = body.Len() + len(pl.Data)
	fh.Encode(buf)
	buf.Write(body.Bytes())
	buf.Write(pl.Data)
}
