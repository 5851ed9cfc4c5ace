package journal

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Entry records one flow served by the daemon. Passwords and COMMAREA
// contents are never journaled.
type Entry struct {
	ID             string
	Time           time.Time
	Remote         string
	Server         string
	UserID         string
	Program        string
	OperationCode  int32
	ReturnCode     int32
	AbendCode      string
	RequestLength  int32
	ResponseLength int32
	Duration       time.Duration
}

// Failed reports whether the flow ended with a non-zero code.
func (e *Entry) Failed() bool {
	return e.OperationCode != 0 || e.ReturnCode != 0
}

// Field numbers of the stored encoding.
const (
	fieldID             = 1
	fieldTime           = 2
	fieldRemote         = 3
	fieldServer         = 4
	fieldUserID         = 5
	fieldProgram        = 6
	fieldOperationCode  = 7
	fieldReturnCode     = 8
	fieldAbendCode      = 9
	fieldRequestLength  = 10
	fieldResponseLength = 11
	fieldDuration       = 12
)

func (e *Entry) marshal() []byte {
	b := make([]byte, 0, 96)
	b = appendString(b, fieldID, e.ID)
	b = appendVarint(b, fieldTime, e.Time.UnixNano())
	b = appendString(b, fieldRemote, e.Remote)
	b = appendString(b, fieldServer, e.Server)
	b = appendString(b, fieldUserID, e.UserID)
	b = appendString(b, fieldProgram, e.Program)
	b = appendVarint(b, fieldOperationCode, int64(e.OperationCode))
	b = appendVarint(b, fieldReturnCode, int64(e.ReturnCode))
	b = appendString(b, fieldAbendCode, e.AbendCode)
	b = appendVarint(b, fieldRequestLength, int64(e.RequestLength))
	b = appendVarint(b, fieldResponseLength, int64(e.ResponseLength))
	b = appendVarint(b, fieldDuration, int64(e.Duration))
	return b
}

func unmarshalEntry(b []byte) (*Entry, error) {
	e := &Entry{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			e.setVarint(num, protowire.DecodeZigZag(v))
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
			e.setString(num, v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return e, nil
}

func (e *Entry) setVarint(num protowire.Number, v int64) {
	switch num {
	case fieldTime:
		e.Time = time.Unix(0, v)
	case fieldOperationCode:
		e.OperationCode = int32(v)
	case fieldReturnCode:
		e.ReturnCode = int32(v)
	case fieldRequestLength:
		e.RequestLength = int32(v)
	case fieldResponseLength:
		e.ResponseLength = int32(v)
	case fieldDuration:
		e.Duration = time.Duration(v)
	}
}

func (e *Entry) setString(num protowire.Number, v string) {
	switch num {
	case fieldID:
		e.ID = v
	case fieldRemote:
		e.Remote = v
	case fieldServer:
		e.Server = v
	case fieldUserID:
		e.UserID = v
	case fieldProgram:
		e.Program = v
	case fieldAbendCode:
		e.AbendCode = v
	}
}

func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}
