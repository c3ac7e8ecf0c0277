package layer

import "errors"

// ErrShape is returned for a layer with a non positive dimension
var ErrShape = errors.New("layer: non positive dimension")

// Combiner combines hashtron output booleans, stores them internally, and combines them to form output features.
type Combiner interface {

	// Put inserts a boolean at position n. Distinct positions may be put concurrently.
	Put(n int, v bool)

	// Feature returns the n-th feature from the combiner.
	Feature(n int) (o uint32)
}
