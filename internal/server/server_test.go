package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	tdlchar "github.com/toddleonhardt/go-tdlchar"
	"github.com/toddleonhardt/go-tdlchar/internal/client"
	"github.com/toddleonhardt/go-tdlchar/internal/devproto"
)

func startTestServer(t *testing.T) (string, *tdlchar.Device) {
	t.Helper()

	dev, err := tdlchar.NewDevice()
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	socket := filepath.Join(t.TempDir(), "tdlchar.sock")
	srv := New(dev, socket, nil)
	if err := srv.Listen(); err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
		dev.Close()
	})

	return socket, dev
}

func TestRoundTripOverSocket(t *testing.T) {
	socket, _ := startTestServer(t)

	sess, err := client.Open(socket, time.Second)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := sess.Write([]byte("Hello Todd"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 10 {
		t.Errorf("Expected 10 bytes accepted, got %d", n)
	}

	msg, err := sess.Read(256)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(msg) != "HELLO TODD" {
		t.Errorf("Expected HELLO TODD, got %q", msg)
	}

	// Destructive read: the store is now empty.
	msg, err = sess.Read(256)
	if err != nil {
		t.Fatalf("second Read failed: %v", err)
	}
	if len(msg) != 0 {
		t.Errorf("Expected empty read after drain, got %q", msg)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestSecondClientGetsBusy(t *testing.T) {
	socket, _ := startTestServer(t)

	first, err := client.Open(socket, time.Second)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	if _, err := client.Open(socket, time.Second); !errors.Is(err, tdlchar.ErrDeviceBusy) {
		t.Errorf("Expected ErrDeviceBusy for second client, got %v", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := client.Open(socket, time.Second)
	if err != nil {
		t.Fatalf("Open after release failed: %v", err)
	}
	second.Close()
}

func TestDroppedConnectionReleasesSession(t *testing.T) {
	socket, _ := startTestServer(t)

	// Speak the protocol by hand so we can vanish without a CLOSE.
	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	if err := devproto.WriteRequest(conn, devproto.OpOpen, nil); err != nil {
		t.Fatalf("WriteRequest failed: %v", err)
	}
	resp, err := devproto.ReadResponse(conn)
	if err != nil || resp.Status != devproto.StatusOK {
		t.Fatalf("open handshake failed: %v %v", resp.Status, err)
	}
	conn.Close()

	// The server releases the gate when it notices the EOF.
	deadline := time.Now().Add(5 * time.Second)
	for {
		sess, err := client.Open(socket, time.Second)
		if err == nil {
			sess.Close()
			return
		}
		if !errors.Is(err, tdlchar.ErrDeviceBusy) {
			t.Fatalf("unexpected open error: %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("session was never released after client vanished")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStatBypassesSessionGate(t *testing.T) {
	socket, _ := startTestServer(t)

	sess, err := client.Open(socket, time.Second)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()
	sess.Write([]byte("abc"))

	stats, err := client.Stat(socket)
	if err != nil {
		t.Fatalf("Stat while session active failed: %v", err)
	}
	if stats.Opens != 1 {
		t.Errorf("Opens = %d, want 1", stats.Opens)
	}
	if stats.MessagesWritten != 1 {
		t.Errorf("MessagesWritten = %d, want 1", stats.MessagesWritten)
	}
}

func TestOversizedWriteRejected(t *testing.T) {
	socket, dev := startTestServer(t)

	sess, err := client.Open(socket, time.Second)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	huge := bytes.Repeat([]byte("z"), dev.Capacity())
	if _, err := sess.Write(huge); !errors.Is(err, tdlchar.ErrMessageTooLarge) {
		t.Errorf("Expected ErrMessageTooLarge, got %v", err)
	}

	// The rejected write must not have stored anything.
	msg, err := sess.Read(dev.Capacity())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(msg) != 0 {
		t.Errorf("Expected empty store after rejected write, got %d bytes", len(msg))
	}
}

func TestOutOfOrderFirstRequest(t *testing.T) {
	socket, _ := startTestServer(t)

	conn, err := net.Dial("unix", socket)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if err := devproto.WriteRequest(conn, devproto.OpWrite, []byte("no open")); err != nil {
		t.Fatalf("WriteRequest failed: %v", err)
	}
	resp, err := devproto.ReadResponse(conn)
	if err != nil {
		t.Fatalf("ReadResponse failed: %v", err)
	}
	if resp.Status != devproto.StatusProtocol {
		t.Errorf("Expected StatusProtocol, got %v", resp.Status)
	}
}
