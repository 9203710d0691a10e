package event

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgDuplicateTriggerName = "a trigger with that name is already registered"
	ErrMsgTriggerNotFound      = "trigger not found"
	ErrMsgClientClosed         = "event client is closed"
	ErrMsgNotConnected         = "not connected to the event stream"
)

// Trigger registry and client errors.
var (
	ErrDuplicateTriggerName = errors.New(ErrMsgDuplicateTriggerName)
	ErrTriggerNotFound      = errors.New(ErrMsgTriggerNotFound)
	ErrClientClosed         = errors.New(ErrMsgClientClosed)
	ErrNotConnected         = errors.New(ErrMsgNotConnected)
)
