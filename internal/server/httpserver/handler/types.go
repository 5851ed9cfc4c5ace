package handler

import (
	"time"

	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
)

// Response is the envelope of every JSON body.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      CodeOK,
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// StatusResponse is the body of GET /admin/v1/status.
type StatusResponse struct {
	Version string               `json:"version"`
	Commit  string               `json:"commit"`
	Uptime  string               `json:"uptime"`
	Journal bool                 `json:"journal"`
	Gateway gatewayserver.Status `json:"gateway"`
}

// JournalEntryResponse is one served flow.
type JournalEntryResponse struct {
	ID             string  `json:"id"`
	Time           string  `json:"time"`
	Remote         string  `json:"remote"`
	Server         string  `json:"server"`
	UserID         string  `json:"user_id"`
	Program        string  `json:"program"`
	OperationCode  int32   `json:"operation_code"`
	ReturnCode     int32   `json:"return_code"`
	AbendCode      string  `json:"abend_code,omitempty"`
	RequestLength  int32   `json:"request_length"`
	ResponseLength int32   `json:"response_length"`
	DurationMs     float64 `json:"duration_ms"`
	Failed         bool    `json:"failed"`
}

// ListJournalResponse is the body of GET /admin/v1/journal.
type ListJournalResponse struct {
	Entries []JournalEntryResponse `json:"entries"`
	Count   int                    `json:"count"`
}
