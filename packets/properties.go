// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-mqtt, mochi-co
// SPDX-FileContributor: mochi-co

package packets

import (
	"bytes"
	"strings"
)

// Property identifiers, MQTT 5 section 2.2.2.2.
const (
	PropPayloadFormat          byte = 1
	PropMessageExpiryInterval  byte = 2
	PropContentType            byte = 3
	PropResponseTopic          byte = 8
	PropCorrelationData        byte = 9
	PropSubscriptionIdentifier byte = 11
	PropSessionExpiryInterval  byte = 17
	PropAssignedClientID       byte = 18
	PropServerKeepAlive        byte = 19
	PropAuthenticationMethod   byte = 21
	PropAuthenticationData     byte = 22
	PropRequestProblemInfo     byte = 23
	PropWillDelayInterval      byte = 24
	PropRequestResponseInfo    byte = 25
	PropResponseInfo           byte = 26
	PropServerReference        byte = 28
	PropReasonString           byte = 31
	PropReceiveMaximum         byte = 33
	PropTopicAliasMaximum      byte = 34
	PropTopicAlias             byte = 35
	PropMaximumQos             byte = 36
	PropRetainAvailable        byte = 37
	PropUser                   byte = 38
	PropMaximumPacketSize      byte = 39
	PropWildcardSubAvailable   byte = 40
	PropSubIDAvailable         byte = 41
	PropSharedSubAvailable     byte = 42
)

// PropertyNames gives a human-readable name per property id. Nothing in
// the decode or encode path reads it.
var PropertyNames = map[byte]string{
	PropPayloadFormat:          "PayloadFormatIndicator",
	PropMessageExpiryInterval:  "MessageExpiryInterval",
	PropContentType:            "ContentType",
	PropResponseTopic:          "ResponseTopic",
	PropCorrelationData:        "CorrelationData",
	PropSubscriptionIdentifier: "SubscriptionIdentifier",
	PropSessionExpiryInterval:  "SessionExpiryInterval",
	PropAssignedClientID:       "AssignedClientIdentifier",
	PropServerKeepAlive:        "ServerKeepAlive",
	PropAuthenticationMethod:   "AuthenticationMethod",
	PropAuthenticationData:     "AuthenticationData",
	PropRequestProblemInfo:     "RequestProblemInformation",
	PropWillDelayInterval:      "WillDelayInterval",
	PropRequestResponseInfo:    "RequestResponseInformation",
	PropResponseInfo:           "ResponseInformation",
	PropServerReference:        "ServerReference",
	PropReasonString:           "ReasonString",
	PropReceiveMaximum:         "ReceiveMaximum",
	PropTopicAliasMaximum:      "TopicAliasMaximum",
	PropTopicAlias:             "TopicAlias",
	PropMaximumQos:             "MaximumQoS",
	PropRetainAvailable:        "RetainAvailable",
	PropUser:                   "UserProperty",
	PropMaximumPacketSize:      "MaximumPacketSize",
	PropWildcardSubAvailable:   "WildcardSubscriptionAvailable",
	PropSubIDAvailable:         "SubscriptionIdentifierAvailable",
	PropSharedSubAvailable:     "SharedSubscriptionAvailable",
}

// PropertyName returns a readable name for a property id, or "Unknown" if
// the id is not one of the defined MQTT 5 properties.
func PropertyName(id byte) string {
	if n, ok := PropertyNames[id]; ok {
		return n
	}
	return "Unknown"
}

// willProperties is a pseudo packet-type key used only to gate which
// properties are valid inside a CONNECT payload's will-properties block,
// which is encoded/decoded independently of the CONNECT variable header's
// own properties.
const willProperties MessageType = 0xFF

// validPacketProperties indicates which packet types (by wire code, plus
// the willProperties pseudo-type) may carry which property id.
var validPacketProperties = map[byte]map[MessageType]struct{}{
	PropPayloadFormat:          {Publish: {}, willProperties: {}},
	PropMessageExpiryInterval:  {Publish: {}, willProperties: {}},
	PropContentType:            {Publish: {}, willProperties: {}},
	PropResponseTopic:          {Publish: {}, willProperties: {}},
	PropCorrelationData:        {Publish: {}, willProperties: {}},
	PropSubscriptionIdentifier: {Publish: {}, Subscribe: {}},
	PropSessionExpiryInterval:  {Connect: {}, Connack: {}, Disconnect: {}},
	PropAssignedClientID:       {Connack: {}},
	PropServerKeepAlive:        {Connack: {}},
	PropAuthenticationMethod:   {Connect: {}, Connack: {}, Auth: {}},
	PropAuthenticationData:     {Connect: {}, Connack: {}, Auth: {}},
	PropRequestProblemInfo:     {Connect: {}},
	PropWillDelayInterval:      {willProperties: {}},
	PropRequestResponseInfo:    {Connect: {}},
	PropResponseInfo:           {Connack: {}},
	PropServerReference:        {Connack: {}, Disconnect: {}},
	PropReasonString:           {Connack: {}, Puback: {}, Pubrec: {}, Pubrel: {}, Pubcomp: {}, Suback: {}, Unsuback: {}, Disconnect: {}, Auth: {}},
	PropReceiveMaximum:         {Connect: {}, Connack: {}},
	PropTopicAliasMaximum:      {Connect: {}, Connack: {}},
	PropTopicAlias:             {Publish: {}},
	PropMaximumQos:             {Connack: {}},
	PropRetainAvailable:        {Connack: {}},
	PropUser: {
		Connect: {}, Connack: {}, Publish: {}, Puback: {}, Pubrec: {}, Pubrel: {}, Pubcomp: {},
		Subscribe: {}, Suback: {}, Unsubscribe: {}, Unsuback: {}, Disconnect: {}, Auth: {}, willProperties: {},
	},
	PropMaximumPacketSize:    {Connect: {}, Connack: {}},
	PropWildcardSubAvailable: {Connack: {}},
	PropSubIDAvailable:       {Connack: {}},
	PropSharedSubAvailable:   {Connack: {}},
}

// UserProperty is an arbitrary key-value pair; MQTT 5 allows repeats.
type UserProperty struct {
	Key string
	Val string
}

// Mods carries encode-time policy decisions that are not themselves wire
// data: whether response/correlation info may be echoed back, whether
// problem info (reason string, user properties) is suppressed, and a
// remaining packet-size budget used to drop low-priority properties.
type Mods struct {
	AllowResponseInfo  bool
	DisallowProblemInfo bool
	MaxSize            uint32
}

// Properties is the MQTT 5 tag/value bag appended to most variable
// headers. Some fields carry a companion Flag field because their wire
// presence is meaningful even when the value itself is the zero value.
type Properties struct {
	CorrelationData           []byte
	SubscriptionIdentifier    []int
	AuthenticationData        []byte
	User                      []UserProperty
	ContentType               string
	ResponseTopic             string
	AssignedClientID          string
	AuthenticationMethod      string
	ResponseInfo              string
	ServerReference           string
	ReasonString              string
	MessageExpiryInterval     uint32
	SessionExpiryInterval     uint32
	WillDelayInterval         uint32
	MaximumPacketSize         uint32
	ServerKeepAlive           uint16
	ReceiveMaximum            uint16
	TopicAliasMaximum         uint16
	TopicAlias                uint16
	PayloadFormat             byte
	PayloadFormatFlag         bool
	SessionExpiryIntervalFlag bool
	ServerKeepAliveFlag       bool
	RequestProblemInfo        byte
	RequestProblemInfoFlag    bool
	RequestResponseInfo       byte
	TopicAliasFlag            bool
	MaximumQos                byte
	MaximumQosFlag            bool
	RetainAvailable           byte
	RetainAvailableFlag       bool
	WildcardSubAvailable      byte
	WildcardSubAvailableFlag  bool
	SubIDAvailable            byte
	SubIDAvailableFlag        bool
	SharedSubAvailable        byte
	SharedSubAvailableFlag    bool
}

// Clone returns an independent deep copy, used by builders so a
// caller-supplied Properties bag is never aliased across multiple built
// messages. TopicAlias is never propagated: it is connection-scoped and
// must be re-assigned by whoever builds the next message.
func (p *Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	cp := *p
	cp.TopicAlias = 0
	cp.TopicAliasFlag = false
	if len(p.CorrelationData) > 0 {
		cp.CorrelationData = append([]byte(nil), p.CorrelationData...)
	}
	if len(p.SubscriptionIdentifier) > 0 {
		cp.SubscriptionIdentifier = append([]int(nil), p.SubscriptionIdentifier...)
	}
	if len(p.AuthenticationData) > 0 {
		cp.AuthenticationData = append([]byte(nil), p.AuthenticationData...)
	}
	if len(p.User) > 0 {
		cp.User = append([]UserProperty(nil), p.User...)
	}
	return cp
}

// canEncode reports whether property k is valid for packet type pkt.
func (p *Properties) canEncode(pkt MessageType, k byte) bool {
	_, ok := validPacketProperties[k][pkt]
	return ok
}

// Encode writes the properties block: a VBI of the serialized length
// followed by every populated entry, gated by pkt's valid-property set and
// by mods.
func (p *Properties) Encode(pkt MessageType, mods Mods, out *bytes.Buffer) {
	var buf bytes.Buffer
	if p == nil {
		writeVarByteInt(out, 0)
		return
	}

	if p.canEncode(pkt, PropPayloadFormat) && p.PayloadFormatFlag {
		buf.WriteByte(PropPayloadFormat)
		buf.WriteByte(p.PayloadFormat)
	}
	if p.canEncode(pkt, PropMessageExpiryInterval) && p.MessageExpiryInterval > 0 {
		buf.WriteByte(PropMessageExpiryInterval)
		writeUint32BE(&buf, p.MessageExpiryInterval)
	}
	if p.canEncode(pkt, PropContentType) && p.ContentType != "" {
		buf.WriteByte(PropContentType)
		writeUtf8String(&buf, p.ContentType)
	}
	if mods.AllowResponseInfo && p.canEncode(pkt, PropResponseTopic) &&
		p.ResponseTopic != "" && !strings.ContainsAny(p.ResponseTopic, "+#") {
		buf.WriteByte(PropResponseTopic)
		writeUtf8String(&buf, p.ResponseTopic)
	}
	if mods.AllowResponseInfo && p.canEncode(pkt, PropCorrelationData) && len(p.CorrelationData) > 0 {
		buf.WriteByte(PropCorrelationData)
		writeByteArray(&buf, p.CorrelationData)
	}
	if p.canEncode(pkt, PropSubscriptionIdentifier) {
		for _, v := range p.SubscriptionIdentifier {
			if v > 0 {
				buf.WriteByte(PropSubscriptionIdentifier)
				writeVarByteInt(&buf, v)
			}
		}
	}
	if p.canEncode(pkt, PropSessionExpiryInterval) && p.SessionExpiryIntervalFlag {
		buf.WriteByte(PropSessionExpiryInterval)
		writeUint32BE(&buf, p.SessionExpiryInterval)
	}
	if p.canEncode(pkt, PropAssignedClientID) && p.AssignedClientID != "" {
		buf.WriteByte(PropAssignedClientID)
		writeUtf8String(&buf, p.AssignedClientID)
	}
	if p.canEncode(pkt, PropServerKeepAlive) && p.ServerKeepAliveFlag {
		buf.WriteByte(PropServerKeepAlive)
		writeUint16BE(&buf, p.ServerKeepAlive)
	}
	if p.canEncode(pkt, PropAuthenticationMethod) && p.AuthenticationMethod != "" {
		buf.WriteByte(PropAuthenticationMethod)
		writeUtf8String(&buf, p.AuthenticationMethod)
	}
	if p.canEncode(pkt, PropAuthenticationData) && len(p.AuthenticationData) > 0 {
		buf.WriteByte(PropAuthenticationData)
		writeByteArray(&buf, p.AuthenticationData)
	}
	if p.canEncode(pkt, PropRequestProblemInfo) && p.RequestProblemInfoFlag {
		buf.WriteByte(PropRequestProblemInfo)
		buf.WriteByte(p.RequestProblemInfo)
	}
	if p.canEncode(pkt, PropWillDelayInterval) && p.WillDelayInterval > 0 {
		buf.WriteByte(PropWillDelayInterval)
		writeUint32BE(&buf, p.WillDelayInterval)
	}
	if p.canEncode(pkt, PropRequestResponseInfo) && p.RequestResponseInfo > 0 {
		buf.WriteByte(PropRequestResponseInfo)
		buf.WriteByte(p.RequestResponseInfo)
	}
	if mods.AllowResponseInfo && p.canEncode(pkt, PropResponseInfo) && p.ResponseInfo != "" {
		buf.WriteByte(PropResponseInfo)
		writeUtf8String(&buf, p.ResponseInfo)
	}
	if p.canEncode(pkt, PropServerReference) && p.ServerReference != "" {
		buf.WriteByte(PropServerReference)
		writeUtf8String(&buf, p.ServerReference)
	}
	if !mods.DisallowProblemInfo && p.canEncode(pkt, PropReasonString) && p.ReasonString != "" {
		var rs bytes.Buffer
		writeUtf8String(&rs, p.ReasonString)
		if mods.MaxSize == 0 || uint32(buf.Len()+rs.Len()+1) < mods.MaxSize {
			buf.WriteByte(PropReasonString)
			buf.Write(rs.Bytes())
		}
	}
	if p.canEncode(pkt, PropReceiveMaximum) && p.ReceiveMaximum > 0 {
		buf.WriteByte(PropReceiveMaximum)
		writeUint16BE(&buf, p.ReceiveMaximum)
	}
	if p.canEncode(pkt, PropTopicAliasMaximum) && p.TopicAliasMaximum > 0 {
		buf.WriteByte(PropTopicAliasMaximum)
		writeUint16BE(&buf, p.TopicAliasMaximum)
	}
	if p.canEncode(pkt, PropTopicAlias) && p.TopicAliasFlag && p.TopicAlias > 0 {
		buf.WriteByte(PropTopicAlias)
		writeUint16BE(&buf, p.TopicAlias)
	}
	if p.canEncode(pkt, PropMaximumQos) && p.MaximumQosFlag && p.MaximumQos < 2 {
		buf.WriteByte(PropMaximumQos)
		buf.WriteByte(p.MaximumQos)
	}
	if p.canEncode(pkt, PropRetainAvailable) && p.RetainAvailableFlag {
		buf.WriteByte(PropRetainAvailable)
		buf.WriteByte(p.RetainAvailable)
	}
	if !mods.DisallowProblemInfo && p.canEncode(pkt, PropUser) {
		var ub bytes.Buffer
		for _, v := range p.User {
			ub.WriteByte(PropUser)
			writeUtf8String(&ub, v.Key)
			writeUtf8String(&ub, v.Val)
		}
		if mods.MaxSize == 0 || uint32(buf.Len()+ub.Len()+1) < mods.MaxSize {
			buf.Write(ub.Bytes())
		}
	}
	if p.canEncode(pkt, PropMaximumPacketSize) && p.MaximumPacketSize > 0 {
		buf.WriteByte(PropMaximumPacketSize)
		writeUint32BE(&buf, p.MaximumPacketSize)
	}
	if p.canEncode(pkt, PropWildcardSubAvailable) && p.WildcardSubAvailableFlag {
		buf.WriteByte(PropWildcardSubAvailable)
		buf.WriteByte(p.WildcardSubAvailable)
	}
	if p.canEncode(pkt, PropSubIDAvailable) && p.SubIDAvailableFlag {
		buf.WriteByte(PropSubIDAvailable)
		buf.WriteByte(p.SubIDAvailable)
	}
	if p.canEncode(pkt, PropSharedSubAvailable) && p.SharedSubAvailableFlag {
		buf.WriteByte(PropSharedSubAvailable)
		buf.WriteByte(p.SharedSubAvailable)
	}

	writeVarByteInt(out, buf.Len())
	out.Write(buf.Bytes())
}

// DecodeProperties reads a properties block per §4.4: a VBI block length,
// then VBI-tagged entries dispatched by the shape table, until the cursor
// reaches the recorded block end. An id unknown to validPacketProperties,
// or one not valid for pkt, is a ProtocolViolation — MQTT 5 requires
// receivers to reject properties they don't recognize rather than skip
// them silently.
func DecodeProperties(pkt MessageType, r *ByteReader) (Properties, int, error) {
	var p Properties

	blockLen, lenBytes, err := readVarByteInt(r)
	if err != nil {
		return p, 0, err
	}
	consumed := lenBytes
	if blockLen == 0 {
		return p, consumed, nil
	}

	end := consumed + blockLen
	for consumed < end {
		id, idBytes, err := readVarByteInt(r)
		if err != nil {
			return p, 0, err
		}
		consumed += idBytes
		k := byte(id)

		if _, ok := validPacketProperties[k][pkt]; !ok {
			return p, 0, wrapf(ProtocolViolation, "property %#x not valid for %s", k, pkt)
		}

		n, err := decodeOneProperty(&p, k, r)
		if err != nil {
			return p, 0, err
		}
		consumed += n
	}

	if consumed != end {
		return p, 0, wrapf(ProtocolViolation, "properties block overrun: consumed %d, declared %d", consumed, end)
	}

	return p, consumed, nil
}

func decodeOneProperty(p *Properties, k byte, r *ByteReader) (int, error) {
	switch k {
	case PropPayloadFormat:
		v, err := readUint8(r)
		p.PayloadFormat, p.PayloadFormatFlag = v, true
		return 1, err
	case PropMessageExpiryInterval:
		v, err := readUint32BE(r)
		p.MessageExpiryInterval = v
		return 4, err
	case PropContentType:
		v, _, err := readUtf8String(r, 0, 65535)
		p.ContentType = v
		return 2 + len(v), err
	case PropResponseTopic:
		v, _, err := readUtf8String(r, 0, 65535)
		p.ResponseTopic = v
		return 2 + len(v), err
	case PropCorrelationData:
		v, err := readByteArray(r)
		p.CorrelationData = v
		return 2 + len(v), err
	case PropSubscriptionIdentifier:
		v, n, err := readVarByteInt(r)
		if err == nil {
			p.SubscriptionIdentifier = append(p.SubscriptionIdentifier, v)
		}
		return n, err
	case PropSessionExpiryInterval:
		v, err := readUint32BE(r)
		p.SessionExpiryInterval, p.SessionExpiryIntervalFlag = v, true
		return 4, err
	case PropAssignedClientID:
		v, _, err := readUtf8String(r, 0, 65535)
		p.AssignedClientID = v
		return 2 + len(v), err
	case PropServerKeepAlive:
		v, err := readUint16BE(r)
		p.ServerKeepAlive, p.ServerKeepAliveFlag = v, true
		return 2, err
	case PropAuthenticationMethod:
		v, _, err := readUtf8String(r, 0, 65535)
		p.AuthenticationMethod = v
		return 2 + len(v), err
	case PropAuthenticationData:
		v, err := readByteArray(r)
		p.AuthenticationData = v
		return 2 + len(v), err
	case PropRequestProblemInfo:
		v, err := readUint8(r)
		p.RequestProblemInfo, p.RequestProblemInfoFlag = v, true
		return 1, err
	case PropWillDelayInterval:
		v, err := readUint32BE(r)
		p.WillDelayInterval = v
		return 4, err
	case PropRequestResponseInfo:
		v, err := readUint8(r)
		p.RequestResponseInfo = v
		return 1, err
	case PropResponseInfo:
		v, _, err := readUtf8String(r, 0, 65535)
		p.ResponseInfo = v
		return 2 + len(v), err
	case PropServerReference:
		v, _, err := readUtf8String(r, 0, 65535)
		p.ServerReference = v
		return 2 + len(v), err
	case PropReasonString:
		v, _, err := readUtf8String(r, 0, 65535)
		p.ReasonString = v
		return 2 + len(v), err
	case PropReceiveMaximum:
		v, err := readUint16BE(r)
		p.ReceiveMaximum = v
		return 2, err
	case PropTopicAliasMaximum:
		v, err := readUint16BE(r)
		p.TopicAliasMaximum = v
		return 2, err
	case PropTopicAlias:
		v, err := readUint16BE(r)
		p.TopicAlias, p.TopicAliasFlag = v, true
		return 2, err
	case PropMaximumQos:
		v, err := readUint8(r)
		p.MaximumQos, p.MaximumQosFlag = v, true
		return 1, err
	case PropRetainAvailable:
		v, err := readUint8(r)
		p.RetainAvailable, p.RetainAvailableFlag = v, true
		return 1, err
	case PropUser:
		k, _, err := readUtf8String(r, 0, 65535)
		if err != nil {
			return 0, err
		}
		v, _, err := readUtf8String(r, 0, 65535)
		if err != nil {
			return 0, err
		}
		p.User = append(p.User, UserProperty{Key: k, Val: v})
		return 4 + len(k) + len(v), nil
	case PropMaximumPacketSize:
		v, err := readUint32BE(r)
		p.MaximumPacketSize = v
		return 4, err
	case PropWildcardSubAvailable:
		v, err := readUint8(r)
		p.WildcardSubAvailable, p.WildcardSubAvailableFlag = v, true
		return 1, err
	case PropSubIDAvailable:
		v, err := readUint8(r)
		p.SubIDAvailable, p.SubIDAvailableFlag = v, true
		return 1, err
	case PropSharedSubAvailable:
		v, err := readUint8(r)
		p.SharedSubAvailable, p.SharedSubAvailableFlag = v, true
		return 1, err
	default:
		return 0, wrapf(ProtocolViolation, "unhandled property %#x", k)
	}
}
