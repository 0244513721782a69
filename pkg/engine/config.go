package engine

// Config holds configuration for the decision engine.
type Config struct {
	// ParallelLookup starts the credential and project reads concurrently.
	// Outcomes are still built in gate order, so responses are identical
	// to the sequential path; only latency changes.
	ParallelLookup bool
}
