// Package layer defines how hashtron outputs are gathered between a network and its output
package layer

// Layer hands out empty combiners, one per forward pass
type Layer interface {
	Lay() Combiner
}
