package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// ProtocolVersion is the wire protocol version spoken by this package.
const ProtocolVersion = 1

// Hello opens a session. Sent by the client right after connecting.
type Hello struct {
	Version uint32 // 1
	Client  string // 2
}

// HelloAck answers Hello. A non-zero Code rejects the session.
type HelloAck struct {
	Version uint32 // 1
	Gateway string // 2
	Code    int32  // 3
}

// FlowRequest carries one ECI program call.
type FlowRequest struct {
	ID             uint64 // 1
	CallType       int32  // 2
	Server         string // 3
	UserID         string // 4
	Password       string // 5
	Program        string // 6
	CommArea       []byte // 7
	CommAreaLength int32  // 8
	Timeout        int32  // 9
	ExtendMode     int32  // 10
	LUWToken       int32  // 11
}

// FlowReply answers a FlowRequest with the same ID.
type FlowReply struct {
	ID             uint64 // 1
	OperationCode  int32  // 2
	CICSReturnCode int32  // 3
	AbendCode      string // 4
	CommArea       []byte // 5
	CommAreaLength int32  // 6
}

// Marshal encodes the message.
func (m *Hello) Marshal() []byte {
	var b []byte
	b = appendUint(b, 1, uint64(m.Version))
	b = appendString(b, 2, m.Client)
	return b
}

// Unmarshal decodes the message.
func (m *Hello) Unmarshal(b []byte) error {
	*m = Hello{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			var v uint64
			n := consumeUint(typ, b, &v)
			m.Version = uint32(v)
			return n
		case 2:
			return consumeString(typ, b, &m.Client)
		}
		return 0
	})
}

// Marshal encodes the message.
func (m *HelloAck) Marshal() []byte {
	var b []byte
	b = appendUint(b, 1, uint64(m.Version))
	b = appendString(b, 2, m.Gateway)
	b = appendInt(b, 3, m.Code)
	return b
}

// Unmarshal decodes the message.
func (m *HelloAck) Unmarshal(b []byte) error {
	*m = HelloAck{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			var v uint64
			n := consumeUint(typ, b, &v)
			m.Version = uint32(v)
			return n
		case 2:
			return consumeString(typ, b, &m.Gateway)
		case 3:
			return consumeInt(typ, b, &m.Code)
		}
		return 0
	})
}

// Marshal encodes the message.
func (m *FlowRequest) Marshal() []byte {
	b := make([]byte, 0, len(m.CommArea)+64)
	b = appendUint(b, 1, m.ID)
	b = appendInt(b, 2, m.CallType)
	b = appendString(b, 3, m.Server)
	b = appendString(b, 4, m.UserID)
	b = appendString(b, 5, m.Password)
	b = appendString(b, 6, m.Program)
	b = appendBytes(b, 7, m.CommArea)
	b = appendInt(b, 8, m.CommAreaLength)
	b = appendInt(b, 9, m.Timeout)
	b = appendInt(b, 10, m.ExtendMode)
	b = appendInt(b, 11, m.LUWToken)
	return b
}

// Unmarshal decodes the message.
func (m *FlowRequest) Unmarshal(b []byte) error {
	*m = FlowRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.ID)
		case 2:
			return consumeInt(typ, b, &m.CallType)
		case 3:
			return consumeString(typ, b, &m.Server)
		case 4:
			return consumeString(typ, b, &m.UserID)
		case 5:
			return consumeString(typ, b, &m.Password)
		case 6:
			return consumeString(typ, b, &m.Program)
		case 7:
			return consumeBytes(typ, b, &m.CommArea)
		case 8:
			return consumeInt(typ, b, &m.CommAreaLength)
		case 9:
			return consumeInt(typ, b, &m.Timeout)
		case 10:
			return consumeInt(typ, b, &m.ExtendMode)
		case 11:
			return consumeInt(typ, b, &m.LUWToken)
		}
		return 0
	})
}

// Marshal encodes the message.
func (m *FlowReply) Marshal() []byte {
	b := make([]byte, 0, len(m.CommArea)+32)
	b = appendUint(b, 1, m.ID)
	b = appendInt(b, 2, m.OperationCode)
	b = appendInt(b, 3, m.CICSReturnCode)
	b = appendString(b, 4, m.AbendCode)
	b = appendBytes(b, 5, m.CommArea)
	b = appendInt(b, 6, m.CommAreaLength)
	return b
}

// Unmarshal decodes the message.
func (m *FlowReply) Unmarshal(b []byte) error {
	*m = FlowReply{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch num {
		case 1:
			return consumeUint(typ, b, &m.ID)
		case 2:
			return consumeInt(typ, b, &m.OperationCode)
		case 3:
			return consumeInt(typ, b, &m.CICSReturnCode)
		case 4:
			return consumeString(typ, b, &m.AbendCode)
		case 5:
			return consumeBytes(typ, b, &m.CommArea)
		case 6:
			return consumeInt(typ, b, &m.CommAreaLength)
		}
		return 0
	})
}

// Zero values are omitted, as in proto3.

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// decodeFields walks the fields of b. fn returns the number of bytes it
// consumed for a known field, 0 to skip the field, or a negative protowire
// error code.
func decodeFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		m := fn(num, typ, b)
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func consumeUint(typ protowire.Type, b []byte, dst *uint64) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n
	}
	*dst = v
	return n
}

func consumeInt(typ protowire.Type, b []byte, dst *int32) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n
	}
	*dst = int32(protowire.DecodeZigZag(v))
	return n
}

func consumeString(typ protowire.Type, b []byte, dst *string) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return n
	}
	*dst = v
	return n
}

func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	*dst = v
	return n
}
