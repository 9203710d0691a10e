package bridge

import "time"

// lookupTimeout bounds the REST lookups made while formatting a message so
// a slow Census round trip cannot stall the dispatch loop.
const lookupTimeout = 5 * time.Second

// UnknownName labels characters and weapons the API could not resolve.
const UnknownName = "Unknown"

// Embed accent colors.
const (
	colorKill   = 0x2ECC71 // Green
	colorDeath  = 0xE74C3C // Red
	colorRankUp = 0xFFD700 // Gold
)

const embedFooter = "Auraxis Killfeed"

// Error message constants
const (
	ErrMsgInvalidConfig = "invalid killfeed config"
	ErrMsgSessionCreate = "failed to create Discord session"
	ErrMsgSessionOpen   = "failed to open Discord session"
	ErrMsgEmptyRoster   = "no tracked characters resolved"
)

// Log message constants
const (
	LogMsgBridgeReady       = "Killfeed connected to Discord"
	LogMsgCharacterTracked  = "Tracking character"
	LogMsgOutfitTracked     = "Tracking outfit"
	LogMsgTriggerRegistered = "Killfeed trigger registered"
	LogMsgMessageFailed     = "Failed to send killfeed message"
	LogMsgLookupFailed      = "Census lookup failed"
)
