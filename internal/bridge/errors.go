package bridge

import "errors"

// Sentinel errors for bridge operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, bridge.ErrSourceRequired) {
//	    // Handle missing event source
//	}
var (
	// ErrSourceRequired indicates no event source was provided to the loop.
	ErrSourceRequired = errors.New("bridge: event source required")

	// ErrRegistryRequired indicates no registry was provided to the loop.
	ErrRegistryRequired = errors.New("bridge: registry required")

	// ErrClientRequired indicates a target or monitor was built without
	// a state client.
	ErrClientRequired = errors.New("bridge: state client required")

	// ErrEntityRequired indicates a target or monitor was built without
	// an entity ID.
	ErrEntityRequired = errors.New("bridge: entity ID required")
)
