package tdlchar

import (
	"sync"
	"sync/atomic"
)

// Device is a process-wide character device: a fixed-capacity message store
// behind an exclusive-access gate. At most one Session is open at any time;
// additional Open attempts fail immediately with ErrDeviceBusy rather than
// queueing.
//
// A Device is created with NewDevice and torn down with Close. The message
// buffer is allocated once and reused across sessions.
type Device struct {
	locked atomic.Bool // session gate: true while a session is open
	closed atomic.Bool // true after device teardown

	// mu guards buffer and msgLen. The gate already serializes sessions;
	// the mutex additionally serializes concurrent Write/Read calls made
	// by the admitted session itself.
	mu     sync.Mutex
	buffer []byte
	msgLen int

	config Config
	stats  counters
}

// Session represents exclusive access to a Device between a successful Open
// and the matching Close. All reads and writes go through a Session.
type Session struct {
	dev    *Device
	closed atomic.Bool
}

// NewDevice creates a character device with the given options.
func NewDevice(opts ...Option) (*Device, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	d := &Device{
		buffer: make([]byte, config.Capacity),
		config: config,
	}

	if logger := d.config.Logger; logger != nil {
		logger.Info("device initialized", "capacity", config.Capacity)
	}
	return d, nil
}

// Capacity returns the size of the message buffer in bytes. The largest
// accepted message is one byte smaller.
func (d *Device) Capacity() int {
	return len(d.buffer)
}

// Stats returns a snapshot of the device diagnostics counters.
func (d *Device) Stats() Stats {
	return d.stats.snapshot()
}

// Open attempts to acquire exclusive access to the device. The attempt is
// non-blocking: if another session is active, Open returns ErrDeviceBusy
// immediately and changes no state. Retrying is the caller's responsibility.
func (d *Device) Open() (*Session, error) {
	if d.closed.Load() {
		return nil, ErrDeviceClosed
	}

	if !d.locked.CompareAndSwap(false, true) {
		d.stats.busyRejections.Add(1)
		if logger := d.config.Logger; logger != nil {
			logger.Warn("open rejected, device busy")
		}
		return nil, ErrDeviceBusy
	}

	// The gate may have been won during teardown; give it back.
	if d.closed.Load() {
		d.locked.Store(false)
		return nil, ErrDeviceClosed
	}

	opens := d.stats.opens.Add(1)
	if logger := d.config.Logger; logger != nil {
		logger.Info("device opened", "opens", opens)
	}
	return &Session{dev: d}, nil
}

// Close tears the device down. Any subsequent Open fails with
// ErrDeviceClosed. Closing an already-closed device is an error.
//
// Close does not forcibly revoke an active session; tearing down while a
// session is open is a caller bug, matching the driver model where a module
// is only unloaded once its device is no longer held.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return ErrDeviceClosed
	}
	if logger := d.config.Logger; logger != nil {
		logger.Info("device torn down", "opens", d.stats.opens.Load())
	}
	return nil
}

// Write stores the transformed payload as the device message, replacing any
// previously stored message whether or not it has been read. Each byte is
// passed through the uppercase transform before storage.
//
// Payloads of Capacity or more bytes are rejected with ErrMessageTooLarge
// and leave the store unmodified. On success Write returns len(p).
func (s *Session) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	d := s.dev

	if len(p) >= len(d.buffer) {
		if logger := d.config.Logger; logger != nil {
			logger.Error("write rejected", "size", len(p), "capacity", len(d.buffer))
		}
		return 0, ErrMessageTooLarge
	}

	d.mu.Lock()
	upcaseCopy(d.buffer, p)
	d.msgLen = len(p)
	d.mu.Unlock()

	d.stats.messagesWritten.Add(1)
	d.stats.bytesWritten.Add(uint64(len(p)))
	if logger := d.config.Logger; logger != nil {
		logger.Debug("message stored", "bytes", len(p))
	}
	return len(p), nil
}

// Read copies the stored message into buf and drains the store: a successful
// Read resets the message length, so a second Read before the next Write
// returns 0. Reading an empty store returns 0 with no error.
//
// If buf cannot hold the entire message, Read fails with ErrShortRead and
// the message stays available for a retry with a larger buffer. No partial
// copy is ever observable.
func (s *Session) Read(buf []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	d := s.dev

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.msgLen == 0 {
		return 0, nil
	}
	if len(buf) < d.msgLen {
		if logger := d.config.Logger; logger != nil {
			logger.Error("read fault", "need", d.msgLen, "have", len(buf))
		}
		return 0, ErrShortRead
	}

	n := copy(buf, d.buffer[:d.msgLen])
	d.msgLen = 0

	d.stats.messagesRead.Add(1)
	d.stats.bytesRead.Add(uint64(n))
	if logger := d.config.Logger; logger != nil {
		logger.Debug("message drained", "bytes", n)
	}
	return n, nil
}

// Close ends the session and releases the gate, exactly once. Operations on
// a closed session, including a second Close, fail with ErrSessionClosed.
//
// Releasing the gate does not clear the store: an unread message survives
// until the next session overwrites it.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrSessionClosed
	}
	d := s.dev
	d.locked.Store(false)
	if logger := d.config.Logger; logger != nil {
		logger.Info("device closed")
	}
	return nil
}
