package entity

import "strings"

// Status is the lifecycle state of an OTP record. Transitions are one-way:
// ACTIVE to USED or ACTIVE to EXPIRED.
type Status int16

const (
	StatusUnknown Status = 0
	StatusActive  Status = 1
	StatusUsed    Status = 2
	StatusExpired Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusUsed:
		return "used"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusUsed || s == StatusExpired
}

// Channel is the closed set of delivery mechanisms.
type Channel int16

const (
	ChannelUnknown  Channel = 0
	ChannelEmail    Channel = 1
	ChannelSMS      Channel = 2
	ChannelTelegram Channel = 3
	ChannelFile     Channel = 4
)

// ChannelFromString maps a wire value onto a Channel. Unrecognized values
// yield ChannelUnknown, which callers must reject.
func ChannelFromString(raw string) Channel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "email":
		return ChannelEmail
	case "sms":
		return ChannelSMS
	case "telegram":
		return ChannelTelegram
	case "file":
		return ChannelFile
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	case ChannelTelegram:
		return "telegram"
	case ChannelFile:
		return "file"
	default:
		return "unknown"
	}
}

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	return c >= ChannelEmail && c <= ChannelFile
}

// EchoesCode reports whether the issuance result may carry the raw code.
func (c Channel) EchoesCode() bool {
	return c == ChannelFile
}
