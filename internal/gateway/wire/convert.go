package wire

import "github.com/yndnr/ecigate-go/internal/core/domain"

// NewFlowRequest builds the wire form of an encoded request.
func NewFlowRequest(id uint64, req *domain.Request) *FlowRequest {
	return &FlowRequest{
		ID:             id,
		CallType:       int32(req.CallType),
		Server:         req.ServerName,
		UserID:         req.Credentials.UserID,
		Password:       req.Credentials.Password,
		Program:        req.ProgramName,
		CommArea:       req.CommArea,
		CommAreaLength: int32(req.CommAreaLength),
		Timeout:        int32(req.Timeout),
		ExtendMode:     int32(req.ExtendMode),
		LUWToken:       req.LUWToken,
	}
}

// Request converts the wire form back into a domain request.
func (m *FlowRequest) Request() *domain.Request {
	return &domain.Request{
		ServerName:     m.Server,
		Credentials:    domain.Credentials{UserID: m.UserID, Password: m.Password},
		ProgramName:    m.Program,
		CommArea:       m.CommArea,
		CommAreaLength: int(m.CommAreaLength),
		Timeout:        int16(m.Timeout),
		CallType:       domain.CallType(m.CallType),
		ExtendMode:     domain.ExtendMode(m.ExtendMode),
		LUWToken:       m.LUWToken,
	}
}

// Result converts a reply into the transport result seen by the executor.
func (m *FlowReply) Result() *domain.FlowResult {
	return &domain.FlowResult{
		OperationCode:  int(m.OperationCode),
		CICSReturnCode: int(m.CICSReturnCode),
		AbendCode:      m.AbendCode,
		CommArea:       m.CommArea,
		CommAreaLength: int(m.CommAreaLength),
	}
}
