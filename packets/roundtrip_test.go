// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"testing"

	"github.com/jinzhu/copier"
	"github.com/stretchr/testify/require"
)

func TestPubReplyFamilyRoundTripBothDialects(t *testing.T) {
	builders := []func() *PubReplyBuilder{NewPubAckBuilder, NewPubRecBuilder, NewPubRelBuilder, NewPubCompBuilder}
	for _, newBuilder := range builders {
		for _, dialect := range []Dialect{DialectV3, DialectV5} {
			msg, err := newBuilder().PacketID(99).ReasonCode(0x10).Build()
			require.NoError(t, err)

			decoded := roundTrip(t, dialect, msg)
			require.Equal(t, msg.Fixed.Type, decoded.Fixed.Type)

			switch dialect {
			case DialectV3:
				vh := decoded.Variable.(MessageIdVariableHeader)
				require.EqualValues(t, 99, vh.PacketId)
			case DialectV5:
				vh := decoded.Variable.(PubReplyVariableHeader)
				require.EqualValues(t, 99, vh.PacketId)
				require.EqualValues(t, 0x10, vh.ReasonCode)
			}
		}
	}
}

func TestSubscribeRoundTripV5WithProperties(t *testing.T) {
	msg, err := NewSubscribeBuilder().
		PacketID(5).
		AddSubscription("sensors/#", SubscriptionOption{Qos: ExactlyOnce, NoLocal: true}).
		Build()
	require.NoError(t, err)

	decoded := roundTrip(t, DialectV5, msg)
	vh := decoded.Variable.(MessageIdPlusPropertiesVariableHeader)
	require.EqualValues(t, 5, vh.PacketId)

	pl := decoded.Payload.(SubscribePayload)
	require.Len(t, pl.Subscriptions, 1)
	require.Equal(t, "sensors/#", pl.Subscriptions[0].TopicFilter)
	require.True(t, pl.Subscriptions[0].Option.NoLocal)
}

func TestUnsubscribeRoundTripV3(t *testing.T) {
	msg, err := NewUnsubscribeBuilder().PacketID(3).AddTopicFilter("a/b").AddTopicFilter("c/d").Build()
	require.NoError(t, err)

	decoded := roundTrip(t, DialectV3, msg)
	pl := decoded.Payload.(UnsubscribePayload)
	require.Equal(t, []string{"a/b", "c/d"}, pl.TopicFilters)
}

func TestUnsubscribeRoundTripV5HasNoPropertiesBlock(t *testing.T) {
	msg, err := NewUnsubscribeBuilder().PacketID(3).AddTopicFilter("a/b").AddTopicFilter("c/d").Build()
	require.NoError(t, err)

	encoded, err := EncodeToBytes(DialectV5, msg)
	require.NoError(t, err)
	// Variable header is the packet id alone: no properties length byte
	// follows it, unlike SUBSCRIBE/SUBACK/UNSUBACK under v5.
	require.Equal(t, []byte{0x00, 0x03}, encoded[2:4])

	decoded := roundTrip(t, DialectV5, msg)
	vh, ok := decoded.Variable.(MessageIdVariableHeader)
	require.True(t, ok, "expected MessageIdVariableHeader, got %#v", decoded.Variable)
	require.EqualValues(t, 3, vh.PacketId)

	pl := decoded.Payload.(UnsubscribePayload)
	require.Equal(t, []string{"a/b", "c/d"}, pl.TopicFilters)
}

func TestUnsubAckV3HasNoPayloadBytes(t *testing.T) {
	msg, err := NewUnsubAckBuilder().PacketID(3).Build()
	require.NoError(t, err)

	encoded, err := EncodeToBytes(DialectV3, msg)
	require.NoError(t, err)
	require.Equal(t, []byte{0xB0, 0x02, 0x00, 0x03}, encoded)
}

func TestUnsubAckV5CarriesReasonCodes(t *testing.T) {
	msg, err := NewUnsubAckBuilder().PacketID(3).AddReasonCode(0x11).Build()
	require.NoError(t, err)

	decoded := roundTrip(t, DialectV5, msg)
	pl := decoded.Payload.(UnsubAckPayload)
	require.Equal(t, []byte{0x11}, pl.ReasonCodes)
}

func TestSubAckRejectsEmptyPayload(t *testing.T) {
	_, _, err := decodeSubAckPayload(0, NewByteReader(nil))
	require.ErrorIs(t, err, ProtocolViolation)
}

func TestConnAckRejectsReservedFlags(t *testing.T) {
	raw := []byte{0x02, 0x01}
	_, _, err := decodeConnAckVariableHeader(DialectV3, NewByteReader(raw))
	require.ErrorIs(t, err, ReservedFlagsViolation)
}

func TestPropertiesRejectUnknownID(t *testing.T) {
	r := NewByteReader([]byte{0x02, 0x7F, 0x00})
	_, _, err := DecodeProperties(Publish, r)
	require.ErrorIs(t, err, ProtocolViolation)
}

func TestPropertiesRejectWrongPacketType(t *testing.T) {
	// PropTopicAlias (0x23) is only valid on PUBLISH, not CONNECT.
	r := NewByteReader([]byte{0x03, PropTopicAlias, 0x00, 0x01})
	_, _, err := DecodeProperties(Connect, r)
	require.ErrorIs(t, err, ProtocolViolation)
}

func TestPropertiesCloneDoesNotAliasSource(t *testing.T) {
	src := Properties{
		User:           []UserProperty{{Key: "k", Val: "v"}},
		CorrelationData: []byte{0x01, 0x02},
		TopicAlias:      5,
		TopicAliasFlag:  true,
	}

	var fixture Properties
	require.NoError(t, copier.Copy(&fixture, &src))

	got := fixture.Clone()
	got.User[0].Val = "mutated"
	got.CorrelationData[0] = 0xFF

	require.Equal(t, "v", fixture.User[0].Val, "Clone must deep-copy User entries")
	require.Equal(t, byte(0x01), fixture.CorrelationData[0], "Clone must deep-copy CorrelationData")
	require.EqualValues(t, 0, got.TopicAlias, "Clone must strip the connection-scoped TopicAlias")
}

func TestAuthRoundTripV5(t *testing.T) {
	msg := NewAuthBuilder().ReasonCode(0x18).Build()
	decoded := roundTrip(t, DialectV5, msg)
	vh := decoded.Variable.(ReasonCodePlusPropertiesVariableHeader)
	require.EqualValues(t, 0x18, vh.ReasonCode)
}

func TestAuthRejectedUnderV3(t *testing.T) {
	msg := NewAuthBuilder().ReasonCode(0x18).Build()
	_, err := EncodeToBytes(DialectV3, msg)
	require.Error(t, err)
}

func TestSubscribeV3RejectsReservedOptionBits(t *testing.T) {
	raw := []byte{0x00, 0x01, 'x', 0xC0}
	_, _, err := decodeSubscribePayload(DialectV3, len(raw), NewByteReader(raw))
	require.ErrorIs(t, err, InvalidQoS)
}
