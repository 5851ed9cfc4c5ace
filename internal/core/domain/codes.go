package domain

import "strconv"

// CallType selects how a program call is flowed.
type CallType int32

// ExtendMode selects the logical unit of work behaviour of a call.
type ExtendMode int32

const (
	// ECISync is a synchronous program link (ECI_SYNC).
	ECISync CallType = 0

	// ECINoExtend ends the LUW with the call (ECI_NO_EXTEND).
	ECINoExtend ExtendMode = 0
	// ECIExtended keeps the LUW open after the call (ECI_EXTENDED).
	ECIExtended ExtendMode = 1

	// ECILUWNew starts a new logical unit of work (ECI_LUW_NEW).
	ECILUWNew int32 = 0
)

// ECI return codes. Negative values follow the ECI convention.
const (
	ECINoError              = 0
	ECIErrInvalidDataLength = -1
	ECIErrInvalidExtendMode = -2
	ECIErrNoCICS            = -3
	ECIErrCICSDied          = -4
	ECIErrRequestTimeout    = -5
	ECIErrResponseTimeout   = -6
	ECIErrTransactionAbend  = -7
	ECIErrLUWToken          = -8
	ECIErrSystemError       = -9
	ECIErrInvalidCallType   = -14
	ECIErrResourceShortage  = -16
	ECIErrInvalidDataArea   = -19
	ECIErrInvalidVersion    = -21
	ECIErrUnknownServer     = -22
	ECIErrSecurityError     = -27
	ECIErrMaxSessions       = -29
	ECIErrRolledBack        = -30
)

var returnCodeNames = map[int]string{
	ECINoError:              "ECI_NO_ERROR",
	ECIErrInvalidDataLength: "ECI_ERR_INVALID_DATA_LENGTH",
	ECIErrInvalidExtendMode: "ECI_ERR_INVALID_EXTEND_MODE",
	ECIErrNoCICS:            "ECI_ERR_NO_CICS",
	ECIErrCICSDied:          "ECI_ERR_CICS_DIED",
	ECIErrRequestTimeout:    "ECI_ERR_REQUEST_TIMEOUT",
	ECIErrResponseTimeout:   "ECI_ERR_RESPONSE_TIMEOUT",
	ECIErrTransactionAbend:  "ECI_ERR_TRANSACTION_ABEND",
	ECIErrLUWToken:          "ECI_ERR_LUW_TOKEN",
	ECIErrSystemError:       "ECI_ERR_SYSTEM_ERROR",
	ECIErrInvalidCallType:   "ECI_ERR_INVALID_CALL_TYPE",
	ECIErrResourceShortage:  "ECI_ERR_RESOURCE_SHORTAGE",
	ECIErrInvalidDataArea:   "ECI_ERR_INVALID_DATA_AREA",
	ECIErrInvalidVersion:    "ECI_ERR_INVALID_VERSION",
	ECIErrUnknownServer:     "ECI_ERR_UNKNOWN_SERVER",
	ECIErrSecurityError:     "ECI_ERR_SECURITY_ERROR",
	ECIErrMaxSessions:       "ECI_ERR_MAX_SESSIONS",
	ECIErrRolledBack:        "ECI_ERR_ROLLEDBACK",
}

// ReturnCodeName returns the symbolic name of an ECI return code.
func ReturnCodeName(rc int) string {
	if name, ok := returnCodeNames[rc]; ok {
		return name
	}
	return "ECI_RC_" + strconv.Itoa(rc)
}
