package learning

import "go.uber.org/zap"

// HyperParameters configure how a single hashtron is learned from a tally
type HyperParameters struct {
	// Buckets is the size of the learned table of every hashtron (default: 4096)
	Buckets uint32

	// Attempts is how many salts to try, keeping the one that agrees with most votes (default: 1)
	Attempts int

	// Logger receives per-hashtron debug lines, nil disables them
	Logger *zap.Logger
}

func (h *HyperParameters) buckets() uint32 {
	if h.Buckets == 0 {
		return 4096
	}
	return h.Buckets
}

func (h *HyperParameters) attempts() int {
	if h.Attempts <= 0 {
		return 1
	}
	return h.Attempts
}

func (h *HyperParameters) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
