package xray

import "errors"
import "fmt"
import "math/rand"

// ErrMalformedBatch is returned for a batch whose inputs and labels don't line up
var ErrMalformedBatch = errors.New("xray: malformed batch")

// Batch is a pair of inputs and their labels
type Batch struct {
	Inputs []*Sample
	Labels []uint16
}

// Len returns the number of samples in the batch
func (b Batch) Len() int {
	return len(b.Inputs)
}

// Validate reports a malformed batch
func (b Batch) Validate(classes int) error {
	if len(b.Inputs) != len(b.Labels) {
		return fmt.Errorf("%w: %d inputs, %d labels", ErrMalformedBatch, len(b.Inputs), len(b.Labels))
	}
	for i, in := range b.Inputs {
		if in == nil {
			return fmt.Errorf("%w: nil input %d", ErrMalformedBatch, i)
		}
		if int(b.Labels[i]) >= classes {
			return fmt.Errorf("%w: label %d out of %d classes", ErrMalformedBatch, b.Labels[i], classes)
		}
	}
	return nil
}

// Loader yields batches of a prepared split
type Loader struct {
	samples []Sample
	batch   int
	rng     *rand.Rand
}

func newLoader(samples []Sample, batch int, rng *rand.Rand) *Loader {
	if batch <= 0 {
		batch = 1
	}
	return &Loader{samples: samples, batch: batch, rng: rng}
}

// Len returns the number of samples of the split
func (l *Loader) Len() int {
	return len(l.samples)
}

// Batches returns one pass over the split. A shuffling loader draws a new permutation on every
// call; other loaders always return the samples in file order. The last batch may be short.
func (l *Loader) Batches() []Batch {
	order := make([]int, len(l.samples))
	for i := range order {
		order[i] = i
	}
	if l.rng != nil {
		l.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}
	var out []Batch
	for base := 0; base < len(order); base += l.batch {
		end := base + l.batch
		if end > len(order) {
			end = len(order)
		}
		var b Batch
		for _, i := range order[base:end] {
			b.Inputs = append(b.Inputs, &l.samples[i])
			b.Labels = append(b.Labels, l.samples[i].Label)
		}
		out = append(out, b)
	}
	return out
}
