package ensemble

import "context"
import "errors"
import "math"
import "math/rand"

import "github.com/neurlang/pneumonia/datasets"
import "github.com/neurlang/pneumonia/inference"
import "github.com/neurlang/pneumonia/learning"
import "github.com/neurlang/pneumonia/parallel"

// Sample is one training input with its expected class
type Sample interface {
	inference.Input
	Output() uint16
}

// Selection returns the hashtrons the next Fit retrains: ceil(rate*bank) consecutive hashtrons
// of every bank, rotating through the bank from call to call.
func (n *Network) Selection(rate float64) (o []int) {
	count := int(math.Ceil(rate * float64(n.bank)))
	if count < 1 {
		count = 1
	}
	if count > n.bank {
		count = n.bank
	}
	for class := 0; class < n.classes; class++ {
		for j := 0; j < count; j++ {
			o = append(o, class*n.bank+(n.cursor+j)%n.bank)
		}
	}
	return
}

// Fit retrains the Selection(rate) hashtrons one-vs-rest on samples. Positive votes are weighted
// by the number of negatives and vice versa, so every class is balanced. The returned undo
// restores the previous hashtrons. Classes with no positive or no negative sample are left alone.
func (n *Network) Fit(ctx context.Context, samples []Sample, rate float64, h *learning.HyperParameters,
	threads int, rng *rand.Rand) (undo func(), err error) {
	if n.frozen {
		return nil, ErrFrozen
	}
	counts := make([]int64, n.classes)
	for _, s := range samples {
		if int(s.Output()) < n.classes {
			counts[s.Output()]++
		}
	}
	total := int64(len(samples))

	var worst []int
	for _, i := range n.Selection(rate) {
		class := i / n.bank
		if counts[class] > 0 && counts[class] < total {
			worst = append(worst, i)
		}
	}
	n.cursor = (n.cursor + len(n.Selection(rate))/n.classes) % n.bank
	if len(worst) == 0 {
		return func() {}, nil
	}

	tallies := make([]datasets.Tally, len(worst))
	for k := range tallies {
		tallies[k].Init()
	}
	err = parallel.ForEachErr(ctx, len(samples), threads, func(_ context.Context, j int) error {
		s := samples[j]
		for k, i := range worst {
			class := i / n.bank
			weight := -counts[class]
			if int(s.Output()) == class {
				weight = total - counts[class]
			}
			tallies[k].AddVote(s.Feature(n.Position(i)), weight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var restore []func()
	undo = func() {
		for _, fn := range restore {
			fn()
		}
	}
	for k, i := range worst {
		tron, err := h.Training(&tallies[k], rng)
		tallies[k].Free()
		if errors.Is(err, learning.ErrEmptyTally) {
			continue
		}
		if err != nil {
			undo()
			return nil, err
		}
		ptr := &n.trons[i]
		backup := *ptr
		*ptr = *tron
		restore = append(restore, func() { *ptr = backup })
	}
	return undo, nil
}
