// Package client dials a tdlchar daemon and speaks the devproto protocol,
// giving the CLI and TUI one typed surface for OPEN, WRITE, READ, CLOSE and
// STAT.
package client

import (
	"fmt"
	"net"
	"time"

	tdlchar "github.com/toddleonhardt/go-tdlchar"
	"github.com/toddleonhardt/go-tdlchar/internal/devproto"
)

// DialTimeout bounds the unix socket connect.
const DialTimeout = 5 * time.Second

// Session is an open device session held over a daemon connection.
type Session struct {
	conn    net.Conn
	timeout time.Duration
}

// Open dials the daemon at socketPath and acquires the device session. A
// busy device surfaces as tdlchar.ErrDeviceBusy; the caller decides whether
// to retry.
func Open(socketPath string, timeout time.Duration) (*Session, error) {
	conn, err := net.DialTimeout("unix", socketPath, DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to reach daemon at %s: %w", socketPath, err)
	}

	s := &Session{conn: conn, timeout: timeout}
	resp, err := s.call(devproto.OpOpen, nil)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := devproto.ErrorFor(resp.Status); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Write sends a payload to the device and returns the byte count accepted.
func (s *Session) Write(p []byte) (int, error) {
	resp, err := s.call(devproto.OpWrite, p)
	if err != nil {
		return 0, err
	}
	if err := devproto.ErrorFor(resp.Status); err != nil {
		return 0, err
	}
	return devproto.DecodeCount(resp.Payload)
}

// Read drains the stored message, asking the device for at most capacity
// bytes. An already-drained store yields an empty slice.
func (s *Session) Read(capacity int) ([]byte, error) {
	resp, err := s.call(devproto.OpRead, devproto.EncodeCount(capacity))
	if err != nil {
		return nil, err
	}
	if err := devproto.ErrorFor(resp.Status); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// Close releases the device session and drops the connection. Closing twice
// is safe; the second close only closes the dead connection again.
func (s *Session) Close() error {
	defer s.conn.Close()
	resp, err := s.call(devproto.OpClose, nil)
	if err != nil {
		return err
	}
	return devproto.ErrorFor(resp.Status)
}

func (s *Session) call(op devproto.Op, payload []byte) (devproto.Response, error) {
	if s.timeout > 0 {
		s.conn.SetDeadline(time.Now().Add(s.timeout))
		defer s.conn.SetDeadline(time.Time{})
	}
	if err := devproto.WriteRequest(s.conn, op, payload); err != nil {
		return devproto.Response{}, err
	}
	return devproto.ReadResponse(s.conn)
}

// Stat fetches the device counters on a dedicated connection, without
// touching the session gate.
func Stat(socketPath string) (tdlchar.Stats, error) {
	conn, err := net.DialTimeout("unix", socketPath, DialTimeout)
	if err != nil {
		return tdlchar.Stats{}, fmt.Errorf("failed to reach daemon at %s: %w", socketPath, err)
	}
	defer conn.Close()

	if err := devproto.WriteRequest(conn, devproto.OpStat, nil); err != nil {
		return tdlchar.Stats{}, err
	}
	resp, err := devproto.ReadResponse(conn)
	if err != nil {
		return tdlchar.Stats{}, err
	}
	if err := devproto.ErrorFor(resp.Status); err != nil {
		return tdlchar.Stats{}, err
	}
	return devproto.DecodeStats(resp.Payload)
}
