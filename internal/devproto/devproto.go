// Package devproto defines the wire protocol between the tdlchar daemon and
// its clients: fixed five-byte frames (a one-byte opcode or status followed
// by a big-endian uint32 payload length) over a stream transport.
//
// A connection is one session attempt. The first request must be OpOpen or
// OpStat; OpOpen binds the connection to the device session for its whole
// lifetime, OpStat answers a counters snapshot without touching the session
// gate and ends the connection.
package devproto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	tdlchar "github.com/toddleonhardt/go-tdlchar"
)

// Op identifies a client request.
type Op byte

const (
	OpOpen  Op = 0x01 // acquire the session; empty payload
	OpWrite Op = 0x02 // store a message; payload is the raw message bytes
	OpRead  Op = 0x03 // drain the message; payload is a uint32 buffer capacity
	OpClose Op = 0x04 // release the session; empty payload
	OpStat  Op = 0x05 // counters snapshot, no session; empty payload
)

// Status is the first byte of every response.
type Status byte

const (
	StatusOK            Status = 0x00
	StatusBusy          Status = 0x01
	StatusTooLarge      Status = 0x02
	StatusCopyFault     Status = 0x03
	StatusSessionClosed Status = 0x04
	StatusDeviceClosed  Status = 0x05
	StatusProtocol      Status = 0x06 // malformed or out-of-order request
)

const headerLen = 5

// MaxPayload bounds frame payloads on decode. Device capacities are far
// smaller; the bound only guards against garbage lengths from a broken peer.
const MaxPayload = 1 << 20

var (
	ErrShortHeader     = errors.New("devproto: short frame header")
	ErrPayloadTooLarge = errors.New("devproto: payload exceeds frame limit")
	ErrUnknownOp       = errors.New("devproto: unknown opcode")
	ErrProtocol        = errors.New("devproto: protocol violation")
)

// Request is one decoded client frame.
type Request struct {
	Op      Op
	Payload []byte
}

// Response is one decoded server frame.
type Response struct {
	Status  Status
	Payload []byte
}

func writeFrame(w io.Writer, kind byte, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLarge
	}
	var hdr [headerLen]byte
	hdr[0] = kind
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func readFrame(r io.Reader) (byte, []byte, error) {
	var hdr [headerLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, nil, ErrShortHeader
		}
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(hdr[1:])
	if n > MaxPayload {
		return 0, nil, ErrPayloadTooLarge
	}
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return hdr[0], payload, nil
}

// WriteRequest encodes one client frame.
func WriteRequest(w io.Writer, op Op, payload []byte) error {
	return writeFrame(w, byte(op), payload)
}

// ReadRequest decodes one client frame and validates its opcode.
func ReadRequest(r io.Reader) (Request, error) {
	kind, payload, err := readFrame(r)
	if err != nil {
		return Request{}, err
	}
	op := Op(kind)
	switch op {
	case OpOpen, OpWrite, OpRead, OpClose, OpStat:
	default:
		return Request{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, kind)
	}
	return Request{Op: op, Payload: payload}, nil
}

// WriteResponse encodes one server frame.
func WriteResponse(w io.Writer, status Status, payload []byte) error {
	return writeFrame(w, byte(status), payload)
}

// ReadResponse decodes one server frame.
func ReadResponse(r io.Reader) (Response, error) {
	kind, payload, err := readFrame(r)
	if err != nil {
		return Response{}, err
	}
	return Response{Status: Status(kind), Payload: payload}, nil
}

// EncodeCount encodes a byte count for WRITE responses and READ requests.
func EncodeCount(n int) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	return buf[:]
}

// DecodeCount decodes a payload produced by EncodeCount.
func DecodeCount(payload []byte) (int, error) {
	if len(payload) != 4 {
		return 0, fmt.Errorf("%w: count payload is %d bytes", ErrProtocol, len(payload))
	}
	return int(binary.BigEndian.Uint32(payload)), nil
}

// StatusFor maps a device error onto a wire status.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, tdlchar.ErrDeviceBusy):
		return StatusBusy
	case errors.Is(err, tdlchar.ErrMessageTooLarge):
		return StatusTooLarge
	case errors.Is(err, tdlchar.ErrShortRead), errors.Is(err, tdlchar.ErrCopyFault):
		return StatusCopyFault
	case errors.Is(err, tdlchar.ErrSessionClosed):
		return StatusSessionClosed
	case errors.Is(err, tdlchar.ErrDeviceClosed):
		return StatusDeviceClosed
	default:
		return StatusProtocol
	}
}

// ErrorFor maps a wire status back onto the device error taxonomy. StatusOK
// maps to nil.
func ErrorFor(status Status) error {
	switch status {
	case StatusOK:
		return nil
	case StatusBusy:
		return tdlchar.ErrDeviceBusy
	case StatusTooLarge:
		return tdlchar.ErrMessageTooLarge
	case StatusCopyFault:
		return tdlchar.ErrCopyFault
	case StatusSessionClosed:
		return tdlchar.ErrSessionClosed
	case StatusDeviceClosed:
		return tdlchar.ErrDeviceClosed
	default:
		return ErrProtocol
	}
}

const statsLen = 48

// EncodeStats packs a counters snapshot for STAT responses.
func EncodeStats(s tdlchar.Stats) []byte {
	buf := make([]byte, statsLen)
	binary.BigEndian.PutUint64(buf[0:], s.Opens)
	binary.BigEndian.PutUint64(buf[8:], s.BusyRejections)
	binary.BigEndian.PutUint64(buf[16:], s.MessagesWritten)
	binary.BigEndian.PutUint64(buf[24:], s.MessagesRead)
	binary.BigEndian.PutUint64(buf[32:], s.BytesWritten)
	binary.BigEndian.PutUint64(buf[40:], s.BytesRead)
	return buf
}

// DecodeStats unpacks a STAT response payload.
func DecodeStats(payload []byte) (tdlchar.Stats, error) {
	if len(payload) != statsLen {
		return tdlchar.Stats{}, fmt.Errorf("%w: stats payload is %d bytes", ErrProtocol, len(payload))
	}
	return tdlchar.Stats{
		Opens:           binary.BigEndian.Uint64(payload[0:]),
		BusyRejections:  binary.BigEndian.Uint64(payload[8:]),
		MessagesWritten: binary.BigEndian.Uint64(payload[16:]),
		MessagesRead:    binary.BigEndian.Uint64(payload[24:]),
		BytesWritten:    binary.BigEndian.Uint64(payload[32:]),
		BytesRead:       binary.BigEndian.Uint64(payload[40:]),
	}, nil
}
