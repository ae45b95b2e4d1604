// Package server exposes a tdlchar device on a unix domain socket. One
// accepted connection maps to one device session: the OPEN happens as the
// first request frame, and dropping the connection closes the session, so a
// crashed client can never hold the gate forever.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	tdlchar "github.com/toddleonhardt/go-tdlchar"
	"github.com/toddleonhardt/go-tdlchar/internal/devproto"
)

// Server owns the device singleton and the listening socket.
type Server struct {
	dev    *tdlchar.Device
	logger *log.Logger
	path   string

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// New creates a server for dev listening at socketPath. The logger may be
// nil to disable diagnostics.
func New(dev *tdlchar.Device, socketPath string, logger *log.Logger) *Server {
	return &Server{
		dev:    dev,
		logger: logger,
		path:   socketPath,
	}
}

// SocketPath returns the unix socket path the server binds.
func (s *Server) SocketPath() string {
	return s.path
}

// Listen binds the unix socket, replacing a stale socket file left behind by
// a previous run.
func (s *Server) Listen() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove stale socket %s: %w", s.path, err)
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("listening", "socket", s.path, "capacity", s.dev.Capacity())
	}
	return nil
}

// Serve accepts connections until ctx is cancelled or the listener is
// closed. Listen must have been called first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("server: Serve called before Listen")
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handleConn(conn)
		}()
	}
}

// Close stops accepting and unblocks Serve. In-flight connections finish on
// their own.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	logger := s.logger
	if logger != nil {
		if pid, uid, ok := peerCreds(conn); ok {
			logger = logger.With("pid", pid, "uid", uid)
		}
	}

	req, err := devproto.ReadRequest(conn)
	if err != nil {
		if logger != nil && !errors.Is(err, io.EOF) {
			logger.Warn("bad first request", "err", err)
		}
		devproto.WriteResponse(conn, devproto.StatusProtocol, nil)
		return
	}

	switch req.Op {
	case devproto.OpStat:
		// Diagnostics bypass the session gate entirely.
		devproto.WriteResponse(conn, devproto.StatusOK, devproto.EncodeStats(s.dev.Stats()))
		return
	case devproto.OpOpen:
	default:
		devproto.WriteResponse(conn, devproto.StatusProtocol, nil)
		return
	}

	sess, err := s.dev.Open()
	if err != nil {
		devproto.WriteResponse(conn, devproto.StatusFor(err), nil)
		return
	}
	// Session lifetime is bounded by connection lifetime: whatever path
	// exits this function releases the gate.
	defer sess.Close()

	if err := devproto.WriteResponse(conn, devproto.StatusOK, nil); err != nil {
		return
	}
	if logger != nil {
		logger.Info("session opened")
	}

	s.serveSession(conn, sess, logger)
}

func (s *Server) serveSession(conn net.Conn, sess *tdlchar.Session, logger *log.Logger) {
	for {
		req, err := devproto.ReadRequest(conn)
		if err != nil {
			if logger != nil {
				if errors.Is(err, io.EOF) {
					logger.Info("client disconnected, session released")
				} else {
					logger.Warn("session request failed", "err", err)
				}
			}
			return
		}

		switch req.Op {
		case devproto.OpWrite:
			n, err := sess.Write(req.Payload)
			if err != nil {
				devproto.WriteResponse(conn, devproto.StatusFor(err), nil)
				continue
			}
			if err := devproto.WriteResponse(conn, devproto.StatusOK, devproto.EncodeCount(n)); err != nil {
				return
			}

		case devproto.OpRead:
			capacity, err := devproto.DecodeCount(req.Payload)
			if err != nil {
				devproto.WriteResponse(conn, devproto.StatusProtocol, nil)
				return
			}
			if capacity > s.dev.Capacity() {
				capacity = s.dev.Capacity()
			}
			buf := make([]byte, capacity)
			n, err := sess.Read(buf)
			if err != nil {
				devproto.WriteResponse(conn, devproto.StatusFor(err), nil)
				continue
			}
			if err := devproto.WriteResponse(conn, devproto.StatusOK, buf[:n]); err != nil {
				return
			}

		case devproto.OpClose:
			sess.Close()
			devproto.WriteResponse(conn, devproto.StatusOK, nil)
			if logger != nil {
				logger.Info("session closed")
			}
			return

		default:
			// OPEN or STAT mid-session is out of order.
			devproto.WriteResponse(conn, devproto.StatusProtocol, nil)
			return
		}
	}
}

// peerCreds returns the pid and uid of the connecting process via
// SO_PEERCRED, for log context only.
func peerCreds(conn net.Conn) (pid, uid int32, ok bool) {
	uc, isUnix := conn.(*net.UnixConn)
	if !isUnix {
		return 0, 0, false
	}
	raw, err := uc.SyscallConn()
	if err != nil {
		return 0, 0, false
	}

	var cred *unix.Ucred
	var credErr error
	ctlErr := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if ctlErr != nil || credErr != nil || cred == nil {
		return 0, 0, false
	}
	return cred.Pid, int32(cred.Uid), true
}
