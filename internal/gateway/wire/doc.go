// Package wire implements the ECIGate gateway wire protocol.
//
// Every message travels in a checksummed frame:
//
//	[len:4][crc32:4][type:1][payload...]
//
// Payloads use the protobuf wire format, encoded field by field with
// protowire. A session starts with Hello/HelloAck; each program call is a
// FlowRequest answered by the FlowReply carrying the same ID. Replies may
// arrive in any order.
package wire
