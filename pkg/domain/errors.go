package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFlowNotFound is returned when the session points at a flow that is not loaded.
var ErrFlowNotFound = errors.New("flow not found")

// ErrNodeNotFound is returned when the session points at a node missing from its flow.
var ErrNodeNotFound = errors.New("node not found")

// ErrUnresolvableDestination is the sentinel wrapped by UnresolvableDestinationError.
var ErrUnresolvableDestination = errors.New("unresolvable destination")

// UnresolvableDestinationError is returned when a transition destination matches
// no node and no flow. The session position is left unchanged.
type UnresolvableDestinationError struct {
	Destination string
}

func (e *UnresolvableDestinationError) Error() string {
	return fmt.Sprintf("Could not find any node or flow under the name of '%s'", e.Destination)
}

func (e *UnresolvableDestinationError) Unwrap() error {
	return ErrUnresolvableDestination
}
