package tdlchar

import "sync/atomic"

// Stats is a point-in-time snapshot of the device counters. The counters are
// diagnostics only and never influence protocol behavior.
type Stats struct {
	Opens           uint64 // successful session opens
	BusyRejections  uint64 // opens refused while a session was active
	MessagesWritten uint64
	MessagesRead    uint64 // reads that returned a non-empty message
	BytesWritten    uint64
	BytesRead       uint64
}

// counters holds the live atomic counters behind Stats.
type counters struct {
	opens           atomic.Uint64
	busyRejections  atomic.Uint64
	messagesWritten atomic.Uint64
	messagesRead    atomic.Uint64
	bytesWritten    atomic.Uint64
	bytesRead       atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Opens:           c.opens.Load(),
		BusyRejections:  c.busyRejections.Load(),
		MessagesWritten: c.messagesWritten.Load(),
		MessagesRead:    c.messagesRead.Load(),
		BytesWritten:    c.bytesWritten.Load(),
		BytesRead:       c.bytesRead.Load(),
	}
}
