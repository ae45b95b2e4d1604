package tdlchar

import "errors"

// Predefined error types for robust error handling
var (
	ErrDeviceBusy      = errors.New("device in use by another session")
	ErrDeviceClosed    = errors.New("device has been torn down")
	ErrSessionClosed   = errors.New("session is not open")
	ErrMessageTooLarge = errors.New("message exceeds device buffer capacity")
	ErrCopyFault       = errors.New("failed to copy message to caller buffer")
	ErrShortRead       = errors.New("caller buffer too small for stored message")
	ErrInvalidConfig   = errors.New("invalid device configuration")
)
