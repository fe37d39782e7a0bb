package domain

// NLU context TTL sentinels.
const (
	// ContextTTLNever marks a context that never expires.
	ContextTTLNever = 0

	// DefaultContextTTL is used when no usable TTL is given. It keeps the context
	// active for all practical purposes while still allowing it to wear off.
	DefaultContextTTL = 1000
)

// NLUContext is a named context biasing the classifier for the next TTL turns.
type NLUContext struct {
	Context string `json:"context"`
	TTL     int    `json:"ttl"`
}

// ContextNames returns the names of the active contexts in order.
func ContextNames(contexts []NLUContext) []string {
	names := make([]string, 0, len(contexts))
	for _, c := range contexts {
		names = append(names, c.Context)
	}
	return names
}
