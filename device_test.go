package tdlchar

import (
	"bytes"
	"sync"
	"testing"
)

func TestOpenIsExclusive(t *testing.T) {
	dev, err := NewDevice()
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	if _, err := dev.Open(); err != ErrDeviceBusy {
		t.Errorf("Expected ErrDeviceBusy, got %v", err)
	}

	// The busy rejection must not disturb the active session.
	if _, err := sess.Write([]byte("still mine")); err != nil {
		t.Errorf("Write after rejected Open failed: %v", err)
	}

	if err := sess.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Gate released, a fresh open succeeds.
	sess2, err := dev.Open()
	if err != nil {
		t.Fatalf("Open after Close failed: %v", err)
	}
	sess2.Close()
}

func TestConcurrentOpenAdmitsExactlyOne(t *testing.T) {
	dev, err := NewDevice()
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	defer dev.Close()

	const attempts = 32

	var wg sync.WaitGroup
	sessions := make(chan *Session, attempts)
	busy := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := dev.Open()
			if err != nil {
				busy <- err
				return
			}
			sessions <- sess
		}()
	}
	wg.Wait()
	close(sessions)
	close(busy)

	if len(sessions) != 1 {
		t.Fatalf("Expected exactly 1 admitted session, got %d", len(sessions))
	}
	for err := range busy {
		if err != ErrDeviceBusy {
			t.Errorf("Expected ErrDeviceBusy for losing opener, got %v", err)
		}
	}

	stats := dev.Stats()
	if stats.Opens != 1 {
		t.Errorf("Expected 1 recorded open, got %d", stats.Opens)
	}
	if stats.BusyRejections != attempts-1 {
		t.Errorf("Expected %d busy rejections, got %d", attempts-1, stats.BusyRejections)
	}

	(<-sessions).Close()
}

func TestReadIsDestructive(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	if _, err := sess.Write([]byte("abc")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	buf := make([]byte, dev.Capacity())
	n, err := sess.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "ABC" {
		t.Errorf("Expected ABC, got %q", buf[:n])
	}

	// Store is drained; a second read comes back empty.
	n, err = sess.Read(buf)
	if err != nil {
		t.Fatalf("second Read failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty read after drain, got %d bytes", n)
	}
}

func TestWriteOverwritesUnreadMessage(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	sess.Write([]byte("ab"))
	sess.Write([]byte("xyz"))

	buf := make([]byte, dev.Capacity())
	n, err := sess.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "XYZ" {
		t.Errorf("Expected XYZ (last write wins), got %q", buf[:n])
	}
}

func TestWriteCapacityBoundary(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	// A payload of exactly Capacity bytes must be rejected untouched.
	full := bytes.Repeat([]byte("x"), dev.Capacity())
	if _, err := sess.Write(full); err != ErrMessageTooLarge {
		t.Errorf("Expected ErrMessageTooLarge for %d bytes, got %v", len(full), err)
	}

	// Capacity-1 bytes is the largest message and round-trips exactly.
	max := bytes.Repeat([]byte("y"), dev.Capacity()-1)
	n, err := sess.Write(max)
	if err != nil {
		t.Fatalf("Write of %d bytes failed: %v", len(max), err)
	}
	if n != len(max) {
		t.Errorf("Expected %d bytes accepted, got %d", len(max), n)
	}

	buf := make([]byte, dev.Capacity())
	n, err = sess.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(buf[:n], bytes.ToUpper(max)) {
		t.Errorf("Round-trip mismatch at capacity boundary")
	}
}

func TestShortReadLeavesMessageIntact(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer sess.Close()

	sess.Write([]byte("hello"))

	small := make([]byte, 2)
	if _, err := sess.Read(small); err != ErrShortRead {
		t.Fatalf("Expected ErrShortRead, got %v", err)
	}

	// The failed read must not have consumed the message.
	buf := make([]byte, dev.Capacity())
	n, err := sess.Read(buf)
	if err != nil {
		t.Fatalf("retry Read failed: %v", err)
	}
	if string(buf[:n]) != "HELLO" {
		t.Errorf("Expected HELLO preserved after fault, got %q", buf[:n])
	}
}

func TestUnreadMessageSurvivesSessionTurnover(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	sess.Write([]byte("leftover"))
	sess.Close()

	// Gate release does not clear the store: the next session may drain
	// the previous session's unread message.
	sess2, err := dev.Open()
	if err != nil {
		t.Fatalf("Open after turnover failed: %v", err)
	}
	defer sess2.Close()

	buf := make([]byte, dev.Capacity())
	n, err := sess2.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "LEFTOVER" {
		t.Errorf("Expected LEFTOVER across sessions, got %q", buf[:n])
	}
}

func TestClosedSessionRejectsEverything(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := sess.Write([]byte("late")); err != ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed on Write, got %v", err)
	}
	if _, err := sess.Read(make([]byte, 8)); err != ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed on Read, got %v", err)
	}
	if err := sess.Close(); err != ErrSessionClosed {
		t.Errorf("Expected ErrSessionClosed on double Close, got %v", err)
	}
}

func TestDeviceTeardown(t *testing.T) {
	dev, _ := NewDevice()

	if err := dev.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := dev.Close(); err != ErrDeviceClosed {
		t.Errorf("Expected ErrDeviceClosed on double Close, got %v", err)
	}
	if _, err := dev.Open(); err != ErrDeviceClosed {
		t.Errorf("Expected ErrDeviceClosed on Open after teardown, got %v", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, err := dev.Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	n, err := sess.Write([]byte("Hello Todd"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 10 {
		t.Errorf("Expected 10 bytes written, got %d", n)
	}

	buf := make([]byte, 256)
	n, err = sess.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "HELLO TODD" || n != 10 {
		t.Errorf("Expected (HELLO TODD, 10), got (%q, %d)", buf[:n], n)
	}

	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Another caller gets in after the session ends.
	next, err := dev.Open()
	if err != nil {
		t.Fatalf("Open by next caller failed: %v", err)
	}
	next.Close()
}

func TestStatsCounters(t *testing.T) {
	dev, _ := NewDevice()
	defer dev.Close()

	sess, _ := dev.Open()
	sess.Write([]byte("abc"))
	sess.Write([]byte("defg"))
	buf := make([]byte, dev.Capacity())
	sess.Read(buf)
	sess.Close()

	stats := dev.Stats()
	if stats.Opens != 1 {
		t.Errorf("Opens = %d, want 1", stats.Opens)
	}
	if stats.MessagesWritten != 2 {
		t.Errorf("MessagesWritten = %d, want 2", stats.MessagesWritten)
	}
	if stats.BytesWritten != 7 {
		t.Errorf("BytesWritten = %d, want 7", stats.BytesWritten)
	}
	if stats.MessagesRead != 1 {
		t.Errorf("MessagesRead = %d, want 1", stats.MessagesRead)
	}
	if stats.BytesRead != 4 {
		t.Errorf("BytesRead = %d, want 4", stats.BytesRead)
	}
}
