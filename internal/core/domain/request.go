package domain

// COMMAREA sizing limits.
const (
	MinCommAreaLength     = 50
	MaxCommAreaLength     = 32500
	DefaultCommAreaLength = MinCommAreaLength
)

// RequestSpec is the caller's description of a program call.
type RequestSpec struct {
	// ProgramName is the CICS program to link to. Required.
	ProgramName string
	// CommArea is the input COMMAREA. Nil means no buffer was supplied.
	CommArea []byte
	// CommAreaSize is the declared COMMAREA capacity. Nil means unspecified.
	CommAreaSize *int
	// Timeout is the ECI timeout in seconds. Truncated to 16 bits on encode.
	Timeout int
}

// Request is an encoded ECI program call, ready to be flowed.
type Request struct {
	ServerName     string
	Credentials    Credentials
	ProgramName    string
	CommArea       []byte
	CommAreaLength int
	Timeout        int16
	CallType       CallType
	ExtendMode     ExtendMode
	LUWToken       int32
}

// FlowResult is what the transport returns for a flowed request.
type FlowResult struct {
	// OperationCode is the gateway-level result of the flow; non-zero means
	// the request could not be run.
	OperationCode int
	// CICSReturnCode is the ECI return code reported for the program call.
	CICSReturnCode int
	// AbendCode is set when the program abended.
	AbendCode string
	// CommArea is the returned COMMAREA buffer.
	CommArea []byte
	// CommAreaLength is the number of meaningful bytes in CommArea.
	CommAreaLength int
}

// Response is the successful result of a program call. A nil Payload is a
// defined empty success.
type Response struct {
	Payload []byte
}

// ClampCommAreaSize applies the upper COMMAREA bound. Only the maximum is
// enforced; declared sizes below the default are kept as-is.
func ClampCommAreaSize(size int) int {
	if size > MaxCommAreaLength {
		return MaxCommAreaLength
	}
	return size
}

// IntPtr is a convenience for setting RequestSpec.CommAreaSize.
func IntPtr(v int) *int {
	return &v
}

// Encode builds the ECI request for a call on serverName with the given
// credentials. It performs no I/O.
func Encode(serverName string, creds Credentials, spec RequestSpec) (*Request, error) {
	if spec.ProgramName == "" {
		return nil, NewEncodingError("programName is required")
	}

	length := DefaultCommAreaLength
	if spec.CommAreaSize != nil {
		length = ClampCommAreaSize(*spec.CommAreaSize)
	}

	commArea := spec.CommArea
	if commArea == nil {
		if length < 0 {
			return nil, NewEncodingError("commAreaSize must not be negative")
		}
		commArea = make([]byte, length)
	} else {
		length = len(commArea)
	}

	return &Request{
		ServerName:     serverName,
		Credentials:    creds,
		ProgramName:    spec.ProgramName,
		CommArea:       commArea,
		CommAreaLength: length,
		Timeout:        int16(spec.Timeout),
		CallType:       ECISync,
		ExtendMode:     ECINoExtend,
		LUWToken:       ECILUWNew,
	}, nil
}
