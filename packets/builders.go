// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "github.com/rs/xid"

// ConnectBuilder fluently assembles a CONNECT packet. HasUserName and
// HasPassword are derived from the presence of UserName/Password unless
// overridden by an explicit call to those setters.
type ConnectBuilder struct {
	version      ProtocolVersion
	clientID     string
	clientIDSet  bool
	cleanSession bool
	hasUserName  *bool
	hasPassword  *bool
	userName     string
	password     []byte
	keepAlive    uint16
	willFlag     bool
	willRetain   bool
	willQos      QoS
	willTopic    string
	willMessage  []byte
	properties   Properties
}

// NewConnectBuilder starts a CONNECT builder for the given protocol
// version.
func NewConnectBuilder(version ProtocolVersion) *ConnectBuilder {
	return &ConnectBuilder{version: version}
}

func (b *ConnectBuilder) ClientID(id string) *ConnectBuilder {
	b.clientID = id
	b.clientIDSet = true
	return b
}

func (b *ConnectBuilder) CleanSession(v bool) *ConnectBuilder {
	b.cleanSession = v
	return b
}

func (b *ConnectBuilder) KeepAlive(secs uint16) *ConnectBuilder {
	b.keepAlive = secs
	return b
}

func (b *ConnectBuilder) Will(topic string, message []byte, qos QoS, retain bool) *ConnectBuilder {
	b.willFlag = true
	b.willTopic = topic
	b.willMessage = message
	b.willQos = qos
	b.willRetain = retain
	return b
}

func (b *ConnectBuilder) UserName(name string) *ConnectBuilder {
	b.userName = name
	return b
}

func (b *ConnectBuilder) Password(pw []byte) *ConnectBuilder {
	b.password = pw
	return b
}

// HasUserName overrides the auto-derived hasUserName flag, used to build a
// test fixture that advertises a flag without a matching field.
func (b *ConnectBuilder) HasUserName(v bool) *ConnectBuilder {
	b.hasUserName = &v
	return b
}

func (b *ConnectBuilder) HasPassword(v bool) *ConnectBuilder {
	b.hasPassword = &v
	return b
}

func (b *ConnectBuilder) Properties(p Properties) *ConnectBuilder {
	b.properties = p.Clone()
	return b
}

// Build validates the accumulated fields and returns an immutable Message.
// A client id left unset is auto-generated with xid, which is only legal
// under v3.1.1/v5's zero-or-more-character rule — v3.1 builders must call
// ClientID explicitly.
func (b *ConnectBuilder) Build() (Message, error) {
	clientID := b.clientID
	if !b.clientIDSet && b.version != MQTT310 {
		clientID = xid.New().String()
	}
	if err := validateClientID(b.version, clientID); err != nil {
		return Message{}, err
	}

	hasUserName := b.userName != ""
	if b.hasUserName != nil {
		hasUserName = *b.hasUserName
	}
	hasPassword := len(b.password) > 0
	if b.hasPassword != nil {
		hasPassword = *b.hasPassword
	}

	vh := ConnectVariableHeader{
		ProtocolName:  b.version.Name,
		ProtocolLevel: b.version.Level,
		HasUserName:   hasUserName,
		HasPassword:   hasPassword,
		WillRetain:    b.willRetain,
		WillQos:       b.willQos,
		WillFlag:      b.willFlag,
		CleanSession:  b.cleanSession,
		KeepAliveSecs: b.keepAlive,
		Properties:    b.properties,
	}
	pl := ConnectPayload{
		ClientID:    clientID,
		WillTopic:   b.willTopic,
		WillMessage: b.willMessage,
		UserName:    b.userName,
		Password:    b.password,
	}

	return Message{Fixed: FixedHeader{Type: Connect}, Variable: vh, Payload: pl}, nil
}

// ConnAckBuilder fluently assembles a CONNACK packet.
type ConnAckBuilder struct {
	sessionPresent bool
	returnCode     byte
	properties     Properties
}

func NewConnAckBuilder() *ConnAckBuilder { return &ConnAckBuilder{} }

func (b *ConnAckBuilder) SessionPresent(v bool) *ConnAckBuilder {
	b.sessionPresent = v
	return b
}

func (b *ConnAckBuilder) ReturnCode(code byte) *ConnAckBuilder {
	b.returnCode = code
	return b
}

func (b *ConnAckBuilder) Properties(p Properties) *ConnAckBuilder {
	b.properties = p.Clone()
	return b
}

func (b *ConnAckBuilder) Build() Message {
	vh := ConnAckVariableHeader{SessionPresent: b.sessionPresent, ReturnCode: b.returnCode, Properties: b.properties}
	return Message{Fixed: FixedHeader{Type: Connack}, Variable: vh}
}

// PublishBuilder fluently assembles a PUBLISH packet.
type PublishBuilder struct {
	topic      string
	retain     bool
	dup        bool
	qos        QoS
	packetID   uint16
	payload    []byte
	properties Properties
}

func NewPublishBuilder() *PublishBuilder { return &PublishBuilder{} }

func (b *PublishBuilder) Topic(topic string) *PublishBuilder {
	b.topic = topic
	return b
}

func (b *PublishBuilder) Retain(v bool) *PublishBuilder {
	b.retain = v
	return b
}

func (b *PublishBuilder) Dup(v bool) *PublishBuilder {
	b.dup = v
	return b
}

func (b *PublishBuilder) Qos(q QoS) *PublishBuilder {
	b.qos = q
	return b
}

func (b *PublishBuilder) PacketID(id uint16) *PublishBuilder {
	b.packetID = id
	return b
}

func (b *PublishBuilder) Payload(p []byte) *PublishBuilder {
	b.payload = p
	return b
}

func (b *PublishBuilder) Properties(p Properties) *PublishBuilder {
	b.properties = p.Clone()
	return b
}

func (b *PublishBuilder) Build() (Message, error) {
	if !isValidPublishTopic(b.topic) {
		return Message{}, wrapf(InvalidTopic, "publish topic %q is empty or contains a wildcard", b.topic)
	}
	pid := -1
	if b.qos > AtMostOnce {
		if b.packetID == 0 {
			return Message{}, wrapf(InvalidPacketId, "publish packet id must be non-zero when qos > 0")
		}
		pid = int(b.packetID)
	}

	fh := FixedHeader{Type: Publish, Dup: b.dup, Qos: b.qos, Retain: b.retain}
	vh := PublishVariableHeader{TopicName: b.topic, PacketId: pid, Properties: b.properties}
	pl := PublishPayload{Data: b.payload}
	return Message{Fixed: fh, Variable: vh, Payload: pl}, nil
}

// SubscribeBuilder fluently assembles a SUBSCRIBE packet.
type SubscribeBuilder struct {
	packetID      uint16
	subscriptions []SubscribeSubscription
	properties    Properties
}

func NewSubscribeBuilder() *SubscribeBuilder { return &SubscribeBuilder{} }

func (b *SubscribeBuilder) PacketID(id uint16) *SubscribeBuilder {
	b.packetID = id
	return b
}

func (b *SubscribeBuilder) AddSubscription(filter string, opt SubscriptionOption) *SubscribeBuilder {
	b.subscriptions = append(b.subscriptions, SubscribeSubscription{TopicFilter: filter, Option: opt})
	return b
}

func (b *SubscribeBuilder) Properties(p Properties) *SubscribeBuilder {
	b.properties = p.Clone()
	return b
}

func (b *SubscribeBuilder) Build() (Message, error) {
	if b.packetID == 0 {
		return Message{}, wrapf(InvalidPacketId, "subscribe packet id must be non-zero")
	}
	if len(b.subscriptions) == 0 {
		return Message{}, wrapf(ProtocolViolation, "subscribe requires at least one topic filter")
	}
	fh := FixedHeader{Type: Subscribe, Qos: AtLeastOnce}
	vh := MessageIdPlusPropertiesVariableHeader{PacketId: b.packetID, Properties: b.properties}
	pl := SubscribePayload{Subscriptions: b.subscriptions}
	return Message{Fixed: fh, Variable: vh, Payload: pl}, nil
}

// UnsubscribeBuilder fluently assembles an UNSUBSCRIBE packet.
type UnsubscribeBuilder struct {
	packetID     uint16
	topicFilters []string
}

func NewUnsubscribeBuilder() *UnsubscribeBuilder { return &UnsubscribeBuilder{} }

func (b *UnsubscribeBuilder) PacketID(id uint16) *UnsubscribeBuilder {
	b.packetID = id
	return b
}

func (b *UnsubscribeBuilder) AddTopicFilter(filter string) *UnsubscribeBuilder {
	b.topicFilters = append(b.topicFilters, filter)
	return b
}

func (b *UnsubscribeBuilder) Build() (Message, error) {
	if b.packetID == 0 {
		return Message{}, wrapf(InvalidPacketId, "unsubscribe packet id must be non-zero")
	}
	if len(b.topicFilters) == 0 {
		return Message{}, wrapf(ProtocolViolation, "unsubscribe requires at least one topic filter")
	}
	fh := FixedHeader{Type: Unsubscribe, Qos: AtLeastOnce}
	vh := MessageIdVariableHeader{PacketId: b.packetID}
	pl := UnsubscribePayload{TopicFilters: b.topicFilters}
	return Message{Fixed: fh, Variable: vh, Payload: pl}, nil
}

// PubAckBuilder, PubRecBuilder, PubRelBuilder and PubCompBuilder all share
// the pub-reply shape, so one builder type serves all four; msgType
// selects which fixed-header type and reserved-flag nibble Build emits.
type PubReplyBuilder struct {
	msgType    MessageType
	packetID   uint16
	reasonCode byte
	properties Properties
}

func newPubReplyBuilder(t MessageType) *PubReplyBuilder {
	return &PubReplyBuilder{msgType: t, reasonCode: CodeSuccess.Code}
}

func NewPubAckBuilder() *PubReplyBuilder  { return newPubReplyBuilder(Puback) }
func NewPubRecBuilder() *PubReplyBuilder  { return newPubReplyBuilder(Pubrec) }
func NewPubRelBuilder() *PubReplyBuilder  { return newPubReplyBuilder(Pubrel) }
func NewPubCompBuilder() *PubReplyBuilder { return newPubReplyBuilder(Pubcomp) }

func (b *PubReplyBuilder) PacketID(id uint16) *PubReplyBuilder {
	b.packetID = id
	return b
}

func (b *PubReplyBuilder) ReasonCode(code byte) *PubReplyBuilder {
	b.reasonCode = code
	return b
}

func (b *PubReplyBuilder) Properties(p Properties) *PubReplyBuilder {
	b.properties = p.Clone()
	return b
}

func (b *PubReplyBuilder) Build() (Message, error) {
	if b.packetID == 0 {
		return Message{}, wrapf(InvalidPacketId, "%s packet id must be non-zero", b.msgType)
	}
	vh := PubReplyVariableHeader{PacketId: b.packetID, ReasonCode: b.reasonCode, Properties: b.properties}
	return Message{Fixed: FixedHeader{Type: b.msgType}, Variable: vh}, nil
}

// SubAckBuilder fluently assembles a SUBACK packet.
type SubAckBuilder struct {
	packetID    uint16
	reasonCodes []byte
	properties  Properties
}

func NewSubAckBuilder() *SubAckBuilder { return &SubAckBuilder{} }

func (b *SubAckBuilder) PacketID(id uint16) *SubAckBuilder {
	b.packetID = id
	return b
}

func (b *SubAckBuilder) AddReasonCode(code byte) *SubAckBuilder {
	b.reasonCodes = append(b.reasonCodes, code)
	return b
}

func (b *SubAckBuilder) Properties(p Properties) *SubAckBuilder {
	b.properties = p.Clone()
	return b
}

func (b *SubAckBuilder) Build() (Message, error) {
	if b.packetID == 0 {
		return Message{}, wrapf(InvalidPacketId, "suback packet id must be non-zero")
	}
	if len(b.reasonCodes) == 0 {
		return Message{}, wrapf(ProtocolViolation, "suback requires at least one reason code")
	}
	vh := MessageIdPlusPropertiesVariableHeader{PacketId: b.packetID, Properties: b.properties}
	pl := SubAckPayload{ReasonCodes: b.reasonCodes}
	return Message{Fixed: FixedHeader{Type: Suback}, Variable: vh, Payload: pl}, nil
}

// UnsubAckBuilder fluently assembles an UNSUBACK packet.
type UnsubAckBuilder struct {
	packetID    uint16
	reasonCodes []byte
	properties  Properties
}

func NewUnsubAckBuilder() *UnsubAckBuilder { return &UnsubAckBuilder{} }

func (b *UnsubAckBuilder) PacketID(id uint16) *UnsubAckBuilder {
	b.packetID = id
	return b
}

func (b *UnsubAckBuilder) AddReasonCode(code byte) *UnsubAckBuilder {
	b.reasonCodes = append(b.reasonCodes, code)
	return b
}

func (b *UnsubAckBuilder) Properties(p Properties) *UnsubAckBuilder {
	b.properties = p.Clone()
	return b
}

func (b *UnsubAckBuilder) Build() (Message, error) {
	if b.packetID == 0 {
		return Message{}, wrapf(InvalidPacketId, "unsuback packet id must be non-zero")
	}
	vh := MessageIdPlusPropertiesVariableHeader{PacketId: b.packetID, Properties: b.properties}
	pl := UnsubAckPayload{ReasonCodes: b.reasonCodes}
	return Message{Fixed: FixedHeader{Type: Unsuback}, Variable: vh, Payload: pl}, nil
}

// ReasonCodeBuilder assembles a DISCONNECT or AUTH packet, the two types
// that share the reason-code-plus-properties variable header.
type ReasonCodeBuilder struct {
	msgType    MessageType
	reasonCode byte
	properties Properties
}

func NewDisconnectBuilder() *ReasonCodeBuilder {
	return &ReasonCodeBuilder{msgType: Disconnect, reasonCode: CodeDisconnect.Code}
}

func NewAuthBuilder() *ReasonCodeBuilder {
	return &ReasonCodeBuilder{msgType: Auth, reasonCode: CodeSuccess.Code}
}

func (b *ReasonCodeBuilder) ReasonCode(code byte) *ReasonCodeBuilder {
	b.reasonCode = code
	return b
}

func (b *ReasonCodeBuilder) Properties(p Properties) *ReasonCodeBuilder {
	b.properties = p.Clone()
	return b
}

func (b *ReasonCodeBuilder) Build() Message {
	vh := ReasonCodePlusPropertiesVariableHeader{ReasonCode: b.reasonCode, Properties: b.properties}
	return Message{Fixed: FixedHeader{Type: b.msgType}, Variable: vh}
}
