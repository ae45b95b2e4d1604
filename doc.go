// Package tdlchar implements the classic tdlchar character device in pure Go:
// a single fixed-capacity message channel guarded by a non-blocking exclusive
// gate, with an uppercase transform applied to every stored payload.
//
// # Basic Usage
//
// Create a device, open a session, exchange one message:
//
//	dev, err := tdlchar.NewDevice()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	sess, err := dev.Open()
//	if err != nil {
//	    log.Fatal(err) // tdlchar.ErrDeviceBusy if another session is active
//	}
//	defer sess.Close()
//
//	sess.Write([]byte("Hello Todd"))
//	buf := make([]byte, dev.Capacity())
//	n, _ := sess.Read(buf) // buf[:n] == "HELLO TODD"
//
// # Session Semantics
//
// Open never blocks: while one session is active, every other Open attempt
// returns ErrDeviceBusy immediately, and the caller decides whether to retry.
// A session holds the gate for its whole lifetime, so its writes and reads
// observe the message store unshared until Close releases the gate.
//
// Reads are destructive. A successful Read drains the store and a second
// Read returns 0 until something is written again. Writes are last-write-wins
// and never concatenate. The store survives session turnover: a message left
// unread remains available to the next session until overwritten.
//
// # Configuration Options
//
// Use functional options to size the buffer or attach diagnostics:
//
//	dev, err := tdlchar.NewDevice(
//	    tdlchar.WithCapacity(512),
//	    tdlchar.WithLogger(log.Default()),
//	)
//
// The logger is strictly best-effort: it receives open/close/read/write
// events and never influences operation results.
//
// # Error Handling
//
// The package provides specific error values:
//
//	var (
//	    ErrDeviceBusy      // open attempted while a session is active
//	    ErrMessageTooLarge // write payload does not fit the buffer
//	    ErrShortRead       // caller buffer cannot hold the stored message
//	    ErrSessionClosed   // operation on a closed session
//	    ErrDeviceClosed    // open after device teardown
//	    // ... and more
//	)
//
// Use errors.Is() for error type checking:
//
//	if errors.Is(err, tdlchar.ErrDeviceBusy) {
//	    // back off and retry
//	}
//
// # Serving the Device
//
// The cmd/ tree in this repository exposes a device over a unix domain
// socket, with one connection mapped to one session, plus CLI and TUI
// clients. The library itself has no transport dependencies.
//
// # Known Limitation
//
// A Session that is abandoned without Close holds the gate forever; there is
// no revocation or timeout. The bundled daemon avoids this by tying session
// lifetime to connection lifetime.
package tdlchar
