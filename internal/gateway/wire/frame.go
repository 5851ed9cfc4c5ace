package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// FrameType identifies the message carried by a frame.
type FrameType uint8

// Frame types.
const (
	FrameHello       FrameType = 1
	FrameHelloAck    FrameType = 2
	FrameFlowRequest FrameType = 3
	FrameFlowReply   FrameType = 4
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameHello:
		return "hello"
	case FrameHelloAck:
		return "hello_ack"
	case FrameFlowRequest:
		return "flow_request"
	case FrameFlowReply:
		return "flow_reply"
	default:
		return fmt.Sprintf("frame(%d)", uint8(t))
	}
}

// MaxFrameSize limits the length field of a frame (CRC + type + payload).
const MaxFrameSize = 64 * 1024

// headerSize is the length prefix; the frame body follows.
const headerSize = 4

var (
	// ErrCorruptedFrame is returned when a frame is structurally invalid.
	ErrCorruptedFrame = errors.New("wire: corrupted frame")
	// ErrChecksumMismatch is returned when the frame CRC does not match.
	ErrChecksumMismatch = errors.New("wire: checksum mismatch")
	// ErrFrameTooLarge is returned when a frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("wire: frame too large")
	// ErrUnexpectedFrame is returned when a frame of the wrong type arrives.
	ErrUnexpectedFrame = errors.New("wire: unexpected frame type")
)

// EncodeFrame builds a frame:
//
//	[len:4][crc32:4][type:1][payload...]
//
// len covers crc, type and payload. crc covers type and payload.
func EncodeFrame(typ FrameType, payload []byte) ([]byte, error) {
	length := 4 + 1 + len(payload)
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrFrameTooLarge, length, MaxFrameSize)
	}

	out := make([]byte, headerSize+length)
	binary.BigEndian.PutUint32(out[0:4], uint32(length))
	out[8] = byte(typ)
	copy(out[9:], payload)
	binary.BigEndian.PutUint32(out[4:8], crc32.ChecksumIEEE(out[8:]))
	return out, nil
}

// WriteFrame encodes and writes a single frame.
func WriteFrame(w io.Writer, typ FrameType, payload []byte) error {
	frame, err := EncodeFrame(typ, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads a single frame and verifies its checksum.
func ReadFrame(r io.Reader) (FrameType, []byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length < 5 {
		return 0, nil, ErrCorruptedFrame
	}
	if length > MaxFrameSize {
		return 0, nil, fmt.Errorf("%w: %d bytes exceeds limit %d", ErrFrameTooLarge, length, MaxFrameSize)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil, io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}

	wantCRC := binary.BigEndian.Uint32(body[:4])
	if crc32.ChecksumIEEE(body[4:]) != wantCRC {
		return 0, nil, ErrChecksumMismatch
	}

	return FrameType(body[4]), body[5:], nil
}
