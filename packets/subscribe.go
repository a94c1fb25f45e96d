// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// RetainedHandlingPolicy controls whether a broker sends existing retained
// messages when a V5 subscription is established.
type RetainedHandlingPolicy byte

const (
	SendAtSubscribe                 RetainedHandlingPolicy = 0
	SendAtSubscribeIfNotYetExists    RetainedHandlingPolicy = 1
	DontSendAtSubscribe             RetainedHandlingPolicy = 2
)

// SubscriptionOption is one SUBSCRIBE payload entry's option byte, defined
// by MQTT 5 section 3.8.3.1. Under V3 only Qos is meaningful; the rest take
// their zero value.
type SubscriptionOption struct {
	Qos               QoS
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    RetainedHandlingPolicy
}

func encodeSubscriptionOption(opt SubscriptionOption) byte {
	return byte(opt.Qos) | boolByte(opt.NoLocal)<<2 | boolByte(opt.RetainAsPublished)<<3 | byte(opt.RetainHandling)<<4
}

func decodeSubscriptionOption(b byte) (SubscriptionOption, error) {
	if b&0xC0 != 0 {
		return SubscriptionOption{}, wrapf(ReservedFlagsViolation, "subscribe option reserved bits set: %#x", b)
	}
	opt := SubscriptionOption{
		Qos:               QoS(b & 0x03),
		NoLocal:           b&0x04 != 0,
		RetainAsPublished: b&0x08 != 0,
		RetainHandling:    RetainedHandlingPolicy((b >> 4) & 0x03),
	}
	if !opt.Qos.Valid() {
		return SubscriptionOption{}, wrapf(InvalidQoS, "subscribe option qos %d", opt.Qos)
	}
	if opt.RetainHandling > DontSendAtSubscribe {
		return SubscriptionOption{}, wrapf(ProtocolViolation, "retain handling %d", opt.RetainHandling)
	}
	return opt, nil
}

// SubscribeSubscription is one topic filter plus its subscription options.
type SubscribeSubscription struct {
	TopicFilter string
	Option      SubscriptionOption
}

// SubscribePayload is the SUBSCRIBE packet's payload: one or more topic
// filters, each with subscription options. [MQTT-3.8.3-3] requires at
// least one.
type SubscribePayload struct {
	Subscriptions []SubscribeSubscription
}

func (SubscribePayload) payloadData() {}

func decodeSubscribeVariableHeader(dialect Dialect, r *ByteReader) (VariableHeader, int, error) {
	if dialect == DialectV3 {
		return decodeMessageIdVariableHeader(r)
	}
	return decodeMessageIdPlusPropertiesVariableHeader(Subscribe, r)
}

func decodeSubscribePayload(dialect Dialect, remaining int, r *ByteReader) (SubscribePayload, int, error) {
	var pl SubscribePayload
	consumed := 0

	for consumed < remaining {
		filter, ok, err := readUtf8String(r, 1, 65535)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(filter)
		if !ok {
			return pl, 0, wrapf(InvalidTopic, "subscribe topic filter length out of range")
		}

		optByte, err := readUint8(r)
		if err != nil {
			return pl, 0, err
		}
		consumed++

		var opt SubscriptionOption
		if dialect == DialectV5 {
			opt, err = decodeSubscriptionOption(optByte)
			if err != nil {
				return pl, 0, err
			}
		} else {
			if optByte&0xFC != 0 {
				return pl, 0, wrapf(InvalidQoS, "subscribe qos byte %#x", optByte)
			}
			opt.Qos = QoS(optByte)
			if !opt.Qos.Valid() {
				return pl, 0, wrapf(InvalidQoS, "subscribe qos %d", opt.Qos)
			}
		}

		pl.Subscriptions = append(pl.Subscriptions, SubscribeSubscription{TopicFilter: filter, Option: opt})
	}

	if len(pl.Subscriptions) == 0 {
		return pl, 0, wrapf(ProtocolViolation, "subscribe payload has no topic filters")
	}

	return pl, consumed, nil
}

// EncodeSubscribe writes a SUBSCRIBE packet for the given dialect.
func EncodeSubscribe(buf *bytes.Buffer, dialect Dialect, pid uint16, props Properties, pl SubscribePayload) {
	var body bytes.Buffer
	if dialect == DialectV3 {
		encodeMessageIdVariableHeader(&body, MessageIdVariableHeader{PacketId: pid})
	} else {
		encodeMessageIdPlusPropertiesVariableHeader(&body, Subscribe, MessageIdPlusPropertiesVariableHeader{PacketId: pid, Properties: props})
	}

	for _, s := range pl.Subscriptions {
		writeUtf8String(&body, s.TopicFilter)
		if dialect == DialectV5 {
			body.WriteByte(encodeSubscriptionOption(s.Option))
		} else {
			body.WriteByte(byte(s.Option.Qos))
		}
	}

	fh := FixedHeader{Type: Subscribe, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
