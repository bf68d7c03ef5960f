package messaging

import "errors"

// ErrInvalidMessageStructure is returned from [NewRegistry] when an
// admitted descriptor carries a nil Receive entrypoint. Registry
// construction fails entirely; callers must not use a Registry that
// failed to build.
var ErrInvalidMessageStructure = errors.New("invalid message structure")

// Errors surfaced while parsing an inbound blob. Every occurrence is
// logged as a warning and the offending batch (or its remainder) is
// discarded; the core remains operational.
var (
	// ErrShortBuffer is returned when fewer bytes remain than a
	// reservation requires.
	ErrShortBuffer = errors.New("short buffer")

	// ErrUnknownTag is returned when an inbound MessageHeader carries a
	// tag not present in the registry.
	ErrUnknownTag = errors.New("unknown message tag")

	// ErrPayloadTooLarge is returned when a scratch serialization would
	// exceed its writer's capacity ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
)
