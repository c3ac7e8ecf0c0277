// Package ensemble implements a voting ensemble of hashtron banks, one bank per class
package ensemble

import "errors"
import "math/rand"

import "github.com/neurlang/pneumonia/hash"
import "github.com/neurlang/pneumonia/hashtron"
import "github.com/neurlang/pneumonia/inference"
import "github.com/neurlang/pneumonia/layer"
import "github.com/neurlang/pneumonia/layer/vote"

// ErrFrozen is returned when fitting a frozen network
var ErrFrozen = errors.New("ensemble: network is frozen")

// Network holds classes banks of bank hashtrons. Hashtron n votes for class n / bank and reads
// the input feature at a position drawn from the layout salt.
type Network struct {
	classes  int
	bank     int
	features int
	layout   uint32
	names    []string

	trons     []hashtron.Hashtron
	positions []uint32
	combiner  layer.Layer
	cursor    int
	frozen    bool
}

// MaxClasses is the most classes a network can have, labels are uint16
const MaxClasses = 1 << 16

// MaxHashtrons bounds classes*bank
const MaxHashtrons = 1 << 24

// checkShape rejects shapes New can't build
func checkShape(classes, bank, features int) error {
	if classes <= 0 || bank <= 0 || features <= 0 || uint64(features) > 1<<32-1 {
		return layer.ErrShape
	}
	if classes > MaxClasses || bank > MaxHashtrons/classes {
		return layer.ErrShape
	}
	return nil
}

// New creates an untrained network of classes banks of bank hashtrons reading one of features
// input positions each. The rng draws the layout and the initial salts.
func New(classes, bank, features int, rng *rand.Rand) (*Network, error) {
	if err := checkShape(classes, bank, features); err != nil {
		return nil, err
	}
	combiner, err := vote.New(classes, bank)
	if err != nil {
		return nil, err
	}
	n := &Network{
		classes:  classes,
		bank:     bank,
		features: features,
		layout:   rng.Uint32(),
		trons:    make([]hashtron.Hashtron, classes*bank),
		combiner: combiner,
	}
	for i := range n.trons {
		n.trons[i] = *hashtron.MustNew([][2]uint32{{rng.Uint32() >> 1, 2}}, nil)
	}
	n.place()
	return n, nil
}

// place hashes every hashtron index with the layout salt into its input position
func (n *Network) place() {
	index := make([]uint32, len(n.trons))
	for i := range index {
		index[i] = uint32(i)
	}
	n.positions = make([]uint32, len(n.trons))
	hash.Slice(n.positions, index, n.layout, uint32(n.features))
}

// Len returns the number of hashtrons in the network
func (n *Network) Len() int {
	return len(n.trons)
}

// Classes returns the number of classes
func (n *Network) Classes() int {
	return n.classes
}

// Bank returns the number of hashtrons voting for each class
func (n *Network) Bank() int {
	return n.bank
}

// SetClassNames records class names stored alongside the weights in a checkpoint
func (n *Network) SetClassNames(names []string) {
	n.names = append([]string(nil), names...)
}

// ClassNames returns the recorded class names, nil if unset
func (n *Network) ClassNames() []string {
	return append([]string(nil), n.names...)
}

// GetHashtron gets n-th hashtron pointer in the network
func (n *Network) GetHashtron(i int) *hashtron.Hashtron {
	if i < 0 || i >= len(n.trons) {
		return nil
	}
	return &n.trons[i]
}

// Position returns the input position read by hashtron i
func (n *Network) Position(i int) int {
	return int(n.positions[i])
}

// Forward puts every hashtron's answer for in into a vote combiner
func (n *Network) Forward(in inference.Input) layer.Combiner {
	c := n.combiner.Lay()
	for i := range n.trons {
		c.Put(i, n.trons[i].Forward(in.Feature(int(n.positions[i])), false))
	}
	return c
}

// Logits returns the votes of each class as logits
func (n *Network) Logits(in inference.Input) []float64 {
	c := n.Forward(in)
	out := make([]float64, n.classes)
	for k := range out {
		out[k] = float64(c.Feature(k))
	}
	return out
}

// Freeze stops the network from accepting further training
func (n *Network) Freeze() {
	n.frozen = true
}

// Frozen reports whether Freeze was called
func (n *Network) Frozen() bool {
	return n.frozen
}
