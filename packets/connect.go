// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-co

package packets

import "bytes"

// ConnectVariableHeader is the CONNECT packet's variable header, common to
// both dialects; Properties is empty in V3.
type ConnectVariableHeader struct {
	ProtocolName  string
	ProtocolLevel byte
	HasUserName   bool
	HasPassword   bool
	WillRetain    bool
	WillQos       QoS
	WillFlag      bool
	CleanSession  bool
	KeepAliveSecs uint16
	Properties    Properties
}

func (ConnectVariableHeader) variableHeader() {}

// ConnectPayload is the CONNECT packet's payload.
type ConnectPayload struct {
	ClientID    string
	WillTopic   string
	WillMessage []byte
	UserName    string
	Password    []byte
}

func (ConnectPayload) payloadData() {}

const connectReservedBit = 0x01

func decodeConnectVariableHeader(dialect Dialect, r *ByteReader) (ConnectVariableHeader, int, error) {
	var vh ConnectVariableHeader

	name, _, err := readUtf8String(r, 0, 65535)
	if err != nil {
		return vh, 0, err
	}
	consumed := 2 + len(name)

	level, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	consumed++

	version, err := ResolveProtocolVersion(name, level)
	if err != nil {
		return vh, 0, err
	}

	flags, err := readUint8(r)
	if err != nil {
		return vh, 0, err
	}
	consumed++

	vh.ProtocolName = name
	vh.ProtocolLevel = level
	vh.HasUserName = flags&0x80 != 0
	vh.HasPassword = flags&0x40 != 0
	vh.WillRetain = flags&0x20 != 0
	vh.WillQos = QoS((flags & 0x18) >> 3)
	vh.WillFlag = flags&0x04 != 0
	vh.CleanSession = flags&0x02 != 0

	if version == MQTT311 && flags&connectReservedBit != 0 {
		return vh, 0, wrapf(ReservedFlagsViolation, "connect reserved bit set")
	}
	if !vh.WillQos.Valid() {
		return vh, 0, wrapf(InvalidQoS, "will qos %d", vh.WillQos)
	}

	keepAlive, err := readUint16BE(r)
	if err != nil {
		return vh, 0, err
	}
	consumed += 2
	vh.KeepAliveSecs = keepAlive

	if dialect == DialectV5 {
		props, n, err := DecodeProperties(Connect, r)
		if err != nil {
			return vh, 0, err
		}
		vh.Properties = props
		consumed += n
	}

	return vh, consumed, nil
}

func decodeConnectPayload(dialect Dialect, vh ConnectVariableHeader, remaining int, r *ByteReader) (ConnectPayload, int, error) {
	var pl ConnectPayload
	consumed := 0

	clientID, ok, err := readUtf8String(r, 0, 65535)
	if err != nil {
		return pl, 0, err
	}
	consumed += 2 + len(clientID)
	if !ok {
		return pl, 0, wrapf(IdentifierRejected, "client id too long")
	}
	if err := validateClientID(vh.protocolVersion(dialect), clientID); err != nil {
		return pl, 0, err
	}
	pl.ClientID = clientID

	if vh.WillFlag {
		topic, ok, err := readUtf8String(r, 0, 32767)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(topic)
		if !ok {
			return pl, 0, wrapf(ProtocolViolation, "will topic too long")
		}
		pl.WillTopic = topic

		msg, err := readByteArray(r)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(msg)
		pl.WillMessage = append([]byte(nil), msg...)
	}

	if vh.HasUserName {
		userName, ok, err := readUtf8String(r, 0, 65535)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(userName)
		if !ok {
			return pl, 0, wrapf(ProtocolViolation, "user name too long")
		}
		pl.UserName = userName
	}

	if vh.HasPassword {
		pw, err := readByteArray(r)
		if err != nil {
			return pl, 0, err
		}
		consumed += 2 + len(pw)
		pl.Password = pw
	}

	return pl, consumed, nil
}

func (vh ConnectVariableHeader) protocolVersion(dialect Dialect) ProtocolVersion {
	if v, err := ResolveProtocolVersion(vh.ProtocolName, vh.ProtocolLevel); err == nil {
		return v
	}
	if dialect == DialectV5 {
		return MQTT5
	}
	return MQTT311
}

// validateClientID enforces §4.5's identifier rules: v3.1 requires
// 1..23 characters from [0-9a-zA-Z]; v3.1.1 and v5 allow any valid UTF-8
// including zero length.
func validateClientID(version ProtocolVersion, clientID string) error {
	if version == MQTT310 {
		if len(clientID) < 1 || len(clientID) > 23 {
			return wrapf(IdentifierRejected, "v3.1 client id length %d", len(clientID))
		}
		for _, c := range clientID {
			if !isAlnum(c) {
				return wrapf(IdentifierRejected, "v3.1 client id character %q", c)
			}
		}
	}
	return nil
}

func isAlnum(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// EncodeConnect writes a CONNECT packet for the given dialect.
func EncodeConnect(buf *bytes.Buffer, dialect Dialect, vh ConnectVariableHeader, pl ConnectPayload) {
	var body bytes.Buffer
	writeUtf8String(&body, vh.ProtocolName)
	body.WriteByte(vh.ProtocolLevel)

	hasUserName := vh.HasUserName || pl.UserName != ""
	hasPassword := vh.HasPassword || len(pl.Password) > 0
	var flags byte
	flags |= boolByte(hasUserName) << 7
	flags |= boolByte(hasPassword) << 6
	flags |= boolByte(vh.WillRetain) << 5
	flags |= byte(vh.WillQos) << 3
	flags |= boolByte(vh.WillFlag) << 2
	flags |= boolByte(vh.CleanSession) << 1
	body.WriteByte(flags)

	writeUint16BE(&body, vh.KeepAliveSecs)

	if dialect == DialectV5 {
		vh.Properties.Encode(Connect, Mods{AllowResponseInfo: true}, &body)
	}

	writeUtf8String(&body, pl.ClientID)
	if vh.WillFlag {
		writeUtf8String(&body, pl.WillTopic)
		writeByteArray(&body, pl.WillMessage)
	}
	if hasUserName {
		writeUtf8String(&body, pl.UserName)
	}
	if hasPassword {
		writeByteArray(&body, pl.Password)
	}

	fh := FixedHeader{Type: Connect, Remaining: body.Len()}
	fh.Encode(buf)
	buf.Write(body.Bytes())
}
