// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func decodeOne(t *testing.T, dialect Dialect, raw []byte) any {
	t.Helper()
	a := NewMessageAssembler(dialect, 0)
	a.Feed(raw)
	value, ok := a.Next()
	require.True(t, ok, "expected one decoded value")
	return value
}

func TestScenarioConnectV3(t *testing.T) {
	raw := []byte{0x10, 0x10, 0x00, 0x04, 0x4D, 0x51, 0x54, 0x54, 0x04, 0x02, 0x00, 0x3C, 0x00, 0x04, 0x74, 0x65, 0x73, 0x74}
	value := decodeOne(t, DialectV3, raw)
	msg, ok := value.(Message)
	require.True(t, ok)
	require.Equal(t, Connect, msg.Fixed.Type)

	vh, ok := msg.Variable.(ConnectVariableHeader)
	require.True(t, ok)
	require.Equal(t, "MQTT", vh.ProtocolName)
	require.EqualValues(t, 4, vh.ProtocolLevel)
	require.True(t, vh.CleanSession)
	require.False(t, vh.WillFlag)
	require.False(t, vh.HasUserName)
	require.False(t, vh.HasPassword)
	require.EqualValues(t, 60, vh.KeepAliveSecs)

	pl, ok := msg.Payload.(ConnectPayload)
	require.True(t, ok)
	require.Equal(t, "test", pl.ClientID)

	encoded, err := EncodeToBytes(DialectV3, msg)
	require.NoError(t, err)
	require.Equal(t, raw, encoded)
}

func TestScenarioPublishV3QoS0(t *testing.T) {
	raw := []byte{0x30, 0x06, 0x00, 0x03, 0x61, 0x2F, 0x62, 0xFF}
	value := decodeOne(t, DialectV3, raw)
	msg := value.(Message)
	require.Equal(t, Publish, msg.Fixed.Type)
	require.False(t, msg.Fixed.Retain)
	require.False(t, msg.Fixed.Dup)
	require.Equal(t, AtMostOnce, msg.Fixed.Qos)

	vh := msg.Variable.(PublishVariableHeader)
	require.Equal(t, "a/b", vh.TopicName)
	require.Equal(t, -1, vh.PacketId)

	pl := msg.Payload.(PublishPayload)
	require.Equal(t, []byte{0xFF}, pl.Data)

	encoded, err := EncodeToBytes(DialectV3, msg)
	require.NoError(t, err)
	require.Equal(t, raw, encoded)
}

func TestScenarioSubscribeV3(t *testing.T) {
	raw := []byte{0x82, 0x0C, 0x00, 0x0A, 0x00, 0x01, 0x78, 0x01, 0x00, 0x03, 0x79, 0x2F, 0x23, 0x02}
	value := decodeOne(t, DialectV3, raw)
	msg := value.(Message)
	require.Equal(t, Subscribe, msg.Fixed.Type)

	vh := msg.Variable.(MessageIdVariableHeader)
	require.EqualValues(t, 10, vh.PacketId)

	pl := msg.Payload.(SubscribePayload)
	require.Len(t, pl.Subscriptions, 2)
	require.Equal(t, "x", pl.Subscriptions[0].TopicFilter)
	require.Equal(t, AtLeastOnce, pl.Subscriptions[0].Option.Qos)
	require.Equal(t, "y/#", pl.Subscriptions[1].TopicFilter)
	require.Equal(t, ExactlyOnce, pl.Subscriptions[1].Option.Qos)

	encoded, err := EncodeToBytes(DialectV3, msg)
	require.NoError(t, err)
	require.Equal(t, raw, encoded)
}

func TestScenarioDisconnectV5(t *testing.T) {
	raw := []byte{0xE0, 0x02, 0x00, 0x00}
	value := decodeOne(t, DialectV5, raw)
	msg := value.(Message)
	require.Equal(t, Disconnect, msg.Fixed.Type)

	vh := msg.Variable.(ReasonCodePlusPropertiesVariableHeader)
	require.EqualValues(t, 0, vh.ReasonCode)

	// A success reason code with no properties is encoded in its minimal
	// wire form (variable header omitted entirely), shorter than the
	// scenario's non-minimal input; re-decoding it must yield the same
	// message apart from the fixed header's remaining length.
	encoded, err := EncodeToBytes(DialectV5, msg)
	require.NoError(t, err)
	require.Equal(t, []byte{0xE0, 0x00}, encoded)

	redecoded := decodeOne(t, DialectV5, encoded).(Message)
	want := msg
	want.Fixed.Remaining = 0
	require.Equal(t, want, redecoded)
}

func TestScenarioPublishV5WithTopicAlias(t *testing.T) {
	raw := []byte{0x32, 0x0A, 0x00, 0x01, 0x74, 0x00, 0x01, 0x03, 0x23, 0x00, 0x05, 0xAA}
	value := decodeOne(t, DialectV5, raw)
	msg := value.(Message)
	require.Equal(t, Publish, msg.Fixed.Type)
	require.Equal(t, AtLeastOnce, msg.Fixed.Qos)

	vh := msg.Variable.(PublishVariableHeader)
	require.Equal(t, "t", vh.TopicName)
	require.Equal(t, 1, vh.PacketId)
	require.True(t, vh.Properties.TopicAliasFlag)
	require.EqualValues(t, 5, vh.Properties.TopicAlias)

	pl := msg.Payload.(PublishPayload)
	require.Equal(t, []byte{0xAA}, pl.Data)

	encoded, err := EncodeToBytes(DialectV5, msg)
	require.NoError(t, err)
	require.Equal(t, raw, encoded)
}

func TestScenarioConnectReservedBitRejected(t *testing.T) {
	raw := []byte{0x10, 0x0E, 0x00, 0x04, 0x4D, 0x51, 0x54, 0x54, 0x04, 0x03, 0x00, 0x3C, 0x00, 0x02, 0x69, 0x64}
	value := decodeOne(t, DialectV3, raw)
	inv, ok := value.(InvalidMessage)
	require.True(t, ok)
	require.True(t, errors.Is(inv.Cause, ReservedFlagsViolation))
}
