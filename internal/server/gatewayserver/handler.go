package gatewayserver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/ecigate-go/internal/core/domain"
	"github.com/yndnr/ecigate-go/internal/gateway/wire"
	"github.com/yndnr/ecigate-go/internal/storage/journal"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
)

// unknownProgram labels metrics for names that are not registered.
const unknownProgram = "unknown"

// handleFlow runs one flow request and builds its reply. Request and
// session problems are reported in OperationCode; failures of the program
// call itself in CICSReturnCode.
func (s *Server) handleFlow(ctx context.Context, remote string, req *wire.FlowRequest) *wire.FlowReply {
	start := time.Now()
	reply, label := s.process(ctx, req)
	elapsed := time.Since(start)

	code := reply.OperationCode
	if code == domain.ECINoError {
		code = reply.CICSReturnCode
	}
	result := domain.ReturnCodeName(int(code))

	if s.metrics != nil {
		s.metrics.ServerFlows.WithLabelValues(label, result).Inc()
	}

	log := s.logger.With(
		"remote", remote,
		"id", req.ID,
		"server", req.Server,
		"user_id", logger.RedactUser(req.UserID),
		"program", req.Program,
		"result", result,
		"elapsed", elapsed,
	)
	if code != domain.ECINoError {
		log.Info("flow failed", "abend_code", reply.AbendCode)
	} else {
		log.Debug("flow served", "length", reply.CommAreaLength)
	}

	if s.journal != nil {
		entry := &journal.Entry{
			Time:           start,
			Remote:         remote,
			Server:         req.Server,
			UserID:         req.UserID,
			Program:        req.Program,
			OperationCode:  reply.OperationCode,
			ReturnCode:     reply.CICSReturnCode,
			AbendCode:      reply.AbendCode,
			RequestLength:  req.CommAreaLength,
			ResponseLength: reply.CommAreaLength,
			Duration:       elapsed,
		}
		if err := s.journal.Append(context.WithoutCancel(ctx), entry); err != nil {
			log.Warn("journal append failed", "error", err)
		}
	}

	return reply
}

func (s *Server) process(ctx context.Context, req *wire.FlowRequest) (*wire.FlowReply, string) {
	reply := &wire.FlowReply{ID: req.ID}

	if opcode := s.validate(req); opcode != domain.ECINoError {
		reply.OperationCode = opcode
		return reply, unknownProgram
	}

	if !s.authenticate(req.UserID, req.Password) {
		reply.CICSReturnCode = domain.ECIErrSecurityError
		return reply, unknownProgram
	}

	if !s.limiter.Allow(req.UserID) {
		reply.OperationCode = domain.ECIErrResourceShortage
		return reply, unknownProgram
	}

	program, ok := s.programs.Lookup(req.Program)
	if !ok {
		reply.CICSReturnCode = domain.ECIErrTransactionAbend
		reply.AbendCode = AbendProgramNotFound
		return reply, unknownProgram
	}
	label := req.Program

	timeout := s.cfg.DefaultTimeout
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	call := &Call{
		Server:   req.Server,
		UserID:   req.UserID,
		CommArea: append([]byte(nil), req.CommArea[:req.CommAreaLength]...),
	}

	out, err := runProgram(ctx, program, call)
	if err != nil {
		var abend *Abend
		switch {
		case errors.As(err, &abend):
			reply.CICSReturnCode = domain.ECIErrTransactionAbend
			reply.AbendCode = abend.Code
		case errors.Is(err, context.DeadlineExceeded):
			reply.CICSReturnCode = domain.ECIErrResponseTimeout
		case errors.Is(err, context.Canceled):
			reply.CICSReturnCode = domain.ECIErrCICSDied
		default:
			s.logger.Debug("program failed", "program", req.Program, "error", err)
			reply.CICSReturnCode = domain.ECIErrSystemError
		}
		return reply, label
	}

	if len(out) > domain.MaxCommAreaLength {
		reply.CICSReturnCode = domain.ECIErrInvalidDataLength
		return reply, label
	}

	reply.CommArea = out
	reply.CommAreaLength = int32(len(out))
	return reply, label
}

// validate checks the request envelope and returns an operation code.
func (s *Server) validate(req *wire.FlowRequest) int32 {
	if domain.CallType(req.CallType) != domain.ECISync {
		return domain.ECIErrInvalidCallType
	}
	if domain.ExtendMode(req.ExtendMode) != domain.ECINoExtend {
		return domain.ECIErrInvalidExtendMode
	}
	if req.LUWToken != domain.ECILUWNew {
		return domain.ECIErrLUWToken
	}
	if req.CommAreaLength < 0 || req.CommAreaLength > domain.MaxCommAreaLength ||
		int(req.CommAreaLength) > len(req.CommArea) {
		return domain.ECIErrInvalidDataLength
	}
	if _, ok := s.servers[req.Server]; !ok {
		return domain.ECIErrUnknownServer
	}
	return domain.ECINoError
}

func (s *Server) authenticate(user, password string) bool {
	s.usersMu.RLock()
	want, ok := s.users[user]
	s.usersMu.RUnlock()

	if !ok || user == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1
}

// runProgram runs p on its own goroutine so that the deadline in ctx holds
// even for programs that ignore it. A panic is reported as an ASRA abend.
func runProgram(ctx context.Context, p Program, call *Call) ([]byte, error) {
	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: &Abend{Code: AbendProgramCheck}}
			}
		}()
		out, err := p(ctx, call)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return r.out, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("program abandoned: %w", ctx.Err())
	}
}
