package constants

import "errors"

// Errors that can occur during presence session handling
var (
	ErrSessionAlreadyClosed = errors.New("session is already closed")
	ErrSessionNotConnected  = errors.New("session is not connected")
	ErrIllegalUID           = errors.New("illegal uid")
	ErrConnectionClosed     = errors.New("client connection closed")
	ErrDialTimeout          = errors.New("timeout dialing presence endpoint")
	ErrWriteTimeout         = errors.New("timeout writing to presence connection")
	ErrCommandPending       = errors.New("a command of this type is already pending")
	ErrInvalidMessage       = errors.New("invalid presence message")
	ErrUnknownMessageType   = errors.New("unknown presence message type")
	ErrEmptyDestination     = errors.New("teleport destination must not be empty")
)
