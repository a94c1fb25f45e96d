// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: 2022 mochi-mqtt, mochi-co
// SPDX-FileContributor: mochi-co

package packets

import "errors"

// Code contains a reason code and reason string for a response.
type Code struct {
	Reason string
	Code   byte
}

// String returns the readable reason for a code.
func (c Code) String() string {
	return c.Reason
}

// Error returns the readable reason for a code.
func (c Code) Error() string {
	return c.Reason
}

// QosCodes maps a granted QoS byte to its v5 SUBACK reason code.
var QosCodes = map[byte]Code{
	0: CodeGrantedQos0,
	1: CodeGrantedQos1,
	2: CodeGrantedQos2,
}

var (
	CodeSuccess                             = Code{Code: 0x00, Reason: "success"}
	CodeDisconnect                          = Code{Code: 0x00, Reason: "disconnected"}
	CodeGrantedQos0                         = Code{Code: 0x00, Reason: "granted qos 0"}
	CodeGrantedQos1                         = Code{Code: 0x01, Reason: "granted qos 1"}
	CodeGrantedQos2                         = Code{Code: 0x02, Reason: "granted qos 2"}
	CodeDisconnectWillMessage               = Code{Code: 0x04, Reason: "disconnect with will message"}
	CodeNoMatchingSubscribers               = Code{Code: 0x10, Reason: "no matching subscribers"}
	CodeNoSubscriptionExisted               = Code{Code: 0x11, Reason: "no subscription existed"}
	CodeContinueAuthentication              = Code{Code: 0x18, Reason: "continue authentication"}
	CodeReAuthenticate                      = Code{Code: 0x19, Reason: "re-authenticate"}
	ErrUnspecifiedError                     = Code{Code: 0x80, Reason: "unspecified error"}
	ErrMalformedPacket                      = Code{Code: 0x81, Reason: "malformed packet"}
	ErrProtocolError                        = Code{Code: 0x82, Reason: "protocol error"}
	ErrProtocolViolationUnsupportedProperty = Code{Code: 0x82, Reason: "protocol violation: unsupported property"}
	ErrProtocolViolationSurplusWildcard     = Code{Code: 0x82, Reason: "protocol violation: topic contains wildcards"}
	ErrImplementationSpecificError          = Code{Code: 0x83, Reason: "implementation specific error"}
	ErrUnsupportedProtocolVersion           = Code{Code: 0x84, Reason: "unsupported protocol version"}
	ErrClientIdentifierNotValid             = Code{Code: 0x85, Reason: "client identifier not valid"}
	ErrBadUsernameOrPassword                = Code{Code: 0x86, Reason: "bad username or password"}
	ErrNotAuthorized                        = Code{Code: 0x87, Reason: "not authorized"}
	ErrServerUnavailable                    = Code{Code: 0x88, Reason: "server unavailable"}
	ErrServerBusy                           = Code{Code: 0x89, Reason: "server busy"}
	ErrBanned                               = Code{Code: 0x8A, Reason: "banned"}
	ErrServerShuttingDown                   = Code{Code: 0x8B, Reason: "server shutting down"}
	ErrBadAuthenticationMethod              = Code{Code: 0x8C, Reason: "bad authentication method"}
	ErrKeepAliveTimeout                     = Code{Code: 0x8D, Reason: "keep alive timeout"}
	ErrSessionTakenOver                     = Code{Code: 0x8E, Reason: "session takeover"}
	ErrTopicFilterInvalid                   = Code{Code: 0x8F, Reason: "topic filter invalid"}
	ErrTopicNameInvalid                     = Code{Code: 0x90, Reason: "topic name invalid"}
	ErrPacketIdentifierInUse                = Code{Code: 0x91, Reason: "packet identifier in use"}
	ErrPacketIdentifierNotFound             = Code{Code: 0x92, Reason: "packet identifier not found"}
	ErrReceiveMaximum                       = Code{Code: 0x93, Reason: "receive maximum exceeded"}
	ErrTopicAliasInvalid                    = Code{Code: 0x94, Reason: "topic alias invalid"}
	ErrPacketTooLarge                       = Code{Code: 0x95, Reason: "packet too large"}
	ErrMessageRateTooHigh                   = Code{Code: 0x96, Reason: "message rate too high"}
	ErrQuotaExceeded                        = Code{Code: 0x97, Reason: "quota exceeded"}
	ErrAdministrativeAction                 = Code{Code: 0x98, Reason: "administrative action"}
	ErrPayloadFormatInvalid                 = Code{Code: 0x99, Reason: "payload format invalid"}
	ErrRetainNotSupported                   = Code{Code: 0x9A, Reason: "retain not supported"}
	ErrQosNotSupported                      = Code{Code: 0x9B, Reason: "qos not supported"}
	ErrUseAnotherServer                     = Code{Code: 0x9C, Reason: "use another server"}
	ErrServerMoved                          = Code{Code: 0x9D, Reason: "server moved"}
	ErrSharedSubscriptionsNotSupported      = Code{Code: 0x9E, Reason: "shared subscriptions not supported"}
	ErrConnectionRateExceeded               = Code{Code: 0x9F, Reason: "connection rate exceeded"}
	ErrMaxConnectTime                       = Code{Code: 0xA0, Reason: "maximum connect time"}
	ErrSubscriptionIdentifiersNotSupported  = Code{Code: 0xA1, Reason: "subscription identifiers not supported"}
	ErrWildcardSubscriptionsNotSupported    = Code{Code: 0xA2, Reason: "wildcard subscriptions not supported"}

	// MQTTv3 CONNACK return codes, distinct from the v5 reason-code space above.
	Err3UnsupportedProtocolVersion = Code{Code: 0x01, Reason: "unacceptable protocol version"}
	Err3ClientIdentifierNotValid   = Code{Code: 0x02, Reason: "identifier rejected"}
	Err3ServerUnavailable          = Code{Code: 0x03, Reason: "server unavailable"}
	Err3BadUsernameOrPassword      = Code{Code: 0x04, Reason: "bad user name or password"}
	Err3NotAuthorized              = Code{Code: 0x05, Reason: "not authorized"}
)

// V5CodesToV3 maps MQTTv5 CONNACK reason codes down to the nearest MQTTv3
// return code, for a dual-dialect encoder that must reply to a v3 client
// using a fault it derived generically.
// See http://docs.oasis-open.org/mqtt/mqtt/v3.1.1/os/mqtt-v3.1.1-os.html#_Toc385349257
var V5CodesToV3 = map[Code]Code{
	ErrUnsupportedProtocolVersion: Err3UnsupportedProtocolVersion,
	ErrClientIdentifierNotValid:   Err3ClientIdentifierNotValid,
	ErrServerUnavailable:          Err3ServerUnavailable,
	ErrBadUsernameOrPassword:      Err3BadUsernameOrPassword,
	ErrNotAuthorized:              Err3NotAuthorized,
}

// codeForError looks up the conventional v5 reason code for a taxonomy
// sentinel from errors.go, so a DecodeError always carries a wire-ready
// Code alongside the Go error value.
func codeForError(err error) Code {
	switch {
	case errors.Is(err, MalformedVarInt), errors.Is(err, UnknownMessageType), errors.Is(err, ReservedFlagsViolation):
		return ErrMalformedPacket
	case errors.Is(err, InvalidQoS):
		return ErrQosNotSupported
	case errors.Is(err, InvalidPacketId):
		return ErrPacketIdentifierNotFound
	case errors.Is(err, InvalidTopic):
		return ErrTopicNameInvalid
	case errors.Is(err, IdentifierRejected):
		return ErrClientIdentifierNotValid
	case errors.Is(err, MessageTooLarge):
		return ErrPacketTooLarge
	case errors.Is(err, ProtocolViolation):
		return ErrProtocolError
	default:
		return ErrUnspecifiedError
	}
}
