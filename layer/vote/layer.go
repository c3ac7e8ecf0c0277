// Package vote implements a combiner counting hashtron votes per class
package vote

import "github.com/neurlang/pneumonia/layer"

// VoteLayer describes classes banks of bank hashtrons each
type VoteLayer struct {
	classes, bank int
}

// Vote stores one bit per hashtron, hashtron n belongs to class n / bank
type Vote struct {
	vec           []bool
	classes, bank int
}

// New creates a new vote layer with classes and bank size
func New(classes, bank int) (*VoteLayer, error) {
	if classes <= 0 || bank <= 0 {
		return nil, layer.ErrShape
	}
	return &VoteLayer{classes: classes, bank: bank}, nil
}

// Lay turns vote layer into a combiner
func (i *VoteLayer) Lay() layer.Combiner {
	return &Vote{
		vec:     make([]bool, i.classes*i.bank),
		classes: i.classes,
		bank:    i.bank,
	}
}
