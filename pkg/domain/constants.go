package domain

// Default entry flows for a fresh session.
const (
	// DefaultFlow is where a new session starts.
	DefaultFlow = "main"

	// DefaultNDUFlow is where a new session starts when the engine runs in NDU mode.
	DefaultNDUFlow = "misunderstood"

	// FlowFileSuffix is accepted (and stripped) on flow names coming from authored redirects.
	FlowFileSuffix = ".flow.json"
)

// Destination markers understood by the navigator.
const (
	// ReturnMarker sends the session back to its previous position ("##").
	ReturnMarker = "##"

	// CallerMarker resolves a node inside the previous flow ("#node").
	CallerMarker = "#"
)
