// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, dialect Dialect, msg Message) Message {
	t.Helper()
	encoded, err := EncodeToBytes(dialect, msg)
	require.NoError(t, err)

	a := NewMessageAssembler(dialect, 0)
	a.Feed(encoded)
	value, ok := a.Next()
	require.True(t, ok)
	decoded, isMsg := value.(Message)
	require.True(t, isMsg, "expected Message, got %#v", value)
	return decoded
}

func TestConnectBuilderAutoGeneratesClientID(t *testing.T) {
	msg, err := NewConnectBuilder(MQTT311).CleanSession(true).KeepAlive(30).Build()
	require.NoError(t, err)

	pl := msg.Payload.(ConnectPayload)
	require.NotEmpty(t, pl.ClientID)

	decoded := roundTrip(t, DialectV3, msg)
	require.Equal(t, pl.ClientID, decoded.Payload.(ConnectPayload).ClientID)
}

func TestConnectBuilderRejectsInvalidV31ClientID(t *testing.T) {
	_, err := NewConnectBuilder(MQTT310).ClientID("this-client-id-is-far-too-long-for-v31").Build()
	require.ErrorIs(t, err, IdentifierRejected)
}

func TestPublishBuilderRejectsWildcardTopic(t *testing.T) {
	_, err := NewPublishBuilder().Topic("a/#").Payload([]byte("x")).Build()
	require.ErrorIs(t, err, InvalidTopic)
}

func TestPublishBuilderRequiresPacketIDAboveQoS0(t *testing.T) {
	_, err := NewPublishBuilder().Topic("a/b").Qos(AtLeastOnce).Build()
	require.ErrorIs(t, err, InvalidPacketId)
}

func TestPublishBuilderRoundTripV5(t *testing.T) {
	msg, err := NewPublishBuilder().
		Topic("a/b").
		Qos(AtLeastOnce).
		PacketID(7).
		Payload([]byte("payload")).
		Build()
	require.NoError(t, err)

	decoded := roundTrip(t, DialectV5, msg)
	vh := decoded.Variable.(PublishVariableHeader)
	require.Equal(t, "a/b", vh.TopicName)
	require.Equal(t, 7, vh.PacketId)
	require.Equal(t, []byte("payload"), decoded.Payload.(PublishPayload).Data)
}

func TestSubscribeBuilderRequiresPacketIDAndFilters(t *testing.T) {
	_, err := NewSubscribeBuilder().PacketID(1).Build()
	require.ErrorIs(t, err, ProtocolViolation)

	_, err = NewSubscribeBuilder().AddSubscription("a", SubscriptionOption{Qos: AtMostOnce}).Build()
	require.ErrorIs(t, err, InvalidPacketId)
}

func TestPubReplyBuilderRoundTrip(t *testing.T) {
	msg, err := NewPubAckBuilder().PacketID(42).Build()
	require.NoError(t, err)

	decoded := roundTrip(t, DialectV3, msg)
	require.Equal(t, Puback, decoded.Fixed.Type)
}

func TestReasonCodeBuilderDisconnect(t *testing.T) {
	msg := NewDisconnectBuilder().ReasonCode(0x81).Build()
	decoded := roundTrip(t, DialectV5, msg)
	vh := decoded.Variable.(ReasonCodePlusPropertiesVariableHeader)
	require.EqualValues(t, 0x81, vh.ReasonCode)
}
