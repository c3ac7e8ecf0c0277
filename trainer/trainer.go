package trainer

import "context"
import "fmt"
import "math/rand"
import "sync/atomic"

import "go.uber.org/zap"

import "github.com/neurlang/pneumonia/datasets/xray"
import "github.com/neurlang/pneumonia/inference"
import "github.com/neurlang/pneumonia/learning"
import "github.com/neurlang/pneumonia/net/ensemble"
import "github.com/neurlang/pneumonia/parallel"

// DataModule provides the loaders a trainer pulls batches from
type DataModule interface {
	TrainLoader() (*xray.Loader, error)
	ValLoader() (*xray.Loader, error)
	TestLoader() (*xray.Loader, error)
}

// Options configure a Trainer
type Options struct {
	MaxEpochs    int
	LearningRate float64 // fraction of every bank retrained per epoch
	Threads      int
	Seed         int64
	Hyper        learning.HyperParameters
	Logger       *zap.Logger
}

// Epoch reports one training epoch
type Epoch struct {
	Epoch       int
	Samples     int
	ValAccuracy float64
	Kept        bool
}

// Trainer runs the fixed-epoch training procedure
type Trainer struct {
	opts Options
	rng  *rand.Rand
	log  *zap.Logger
}

// New creates a trainer. The trainer owns an rng seeded by opts.Seed.
func New(opts Options) *Trainer {
	t := &Trainer{opts: opts, rng: rand.New(rand.NewSource(opts.Seed)), log: opts.Logger}
	if t.log == nil {
		t.log = zap.NewNop()
	}
	if t.opts.Hyper.Logger == nil {
		t.opts.Hyper.Logger = t.log.Named("learning")
	}
	return t
}

// Fit trains net for MaxEpochs epochs. Every epoch pulls the whole training loader, retrains
// a LearningRate share of every bank and measures validation accuracy. An epoch lowering the
// best validation accuracy so far is undone.
func (t *Trainer) Fit(ctx context.Context, net *ensemble.Network, dm DataModule) ([]Epoch, error) {
	train, err := dm.TrainLoader()
	if err != nil {
		return nil, err
	}
	val, err := dm.ValLoader()
	if err != nil {
		return nil, err
	}
	var history []Epoch
	best := -1.0
	for epoch := 1; epoch <= t.opts.MaxEpochs; epoch++ {
		var samples []ensemble.Sample
		for _, b := range train.Batches() {
			if err := ctx.Err(); err != nil {
				return history, err
			}
			if err := b.Validate(net.Classes()); err != nil {
				return history, err
			}
			for _, in := range b.Inputs {
				samples = append(samples, in)
			}
		}
		undo, err := net.Fit(ctx, samples, t.opts.LearningRate, &t.opts.Hyper, t.opts.Threads, t.rng)
		if err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		acc, err := Accuracy(ctx, net, val, t.opts.Threads)
		if err != nil {
			return history, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		e := Epoch{Epoch: epoch, Samples: len(samples), ValAccuracy: acc, Kept: true}
		if acc < best {
			undo()
			e.Kept = false
		} else {
			best = acc
		}
		t.log.Info("epoch done",
			zap.Int("epoch", e.Epoch),
			zap.Int("samples", e.Samples),
			zap.Float64("val_accuracy", e.ValAccuracy),
			zap.Bool("kept", e.Kept))
		history = append(history, e)
	}
	return history, nil
}

// Test measures accuracy on the test loader
func (t *Trainer) Test(ctx context.Context, net *ensemble.Network, dm DataModule) (float64, error) {
	test, err := dm.TestLoader()
	if err != nil {
		return 0, err
	}
	acc, err := Accuracy(ctx, net, test, t.opts.Threads)
	if err != nil {
		return 0, err
	}
	t.log.Info("test done", zap.Int("samples", test.Len()), zap.Float64("accuracy", acc))
	return acc, nil
}

// Accuracy returns the share of correctly predicted samples of loader. An empty loader
// scores 0.
func Accuracy(ctx context.Context, m inference.Model, loader *xray.Loader, threads int) (float64, error) {
	var correct, total atomic.Int64
	for _, b := range loader.Batches() {
		if err := b.Validate(m.Classes()); err != nil {
			return 0, err
		}
		err := parallel.ForEachErr(ctx, b.Len(), threads, func(_ context.Context, i int) error {
			p, err := inference.Predict(m, b.Inputs[i])
			if err != nil {
				return err
			}
			if p == b.Labels[i] {
				correct.Add(1)
			}
			total.Add(1)
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	if total.Load() == 0 {
		return 0, nil
	}
	return float64(correct.Load()) / float64(total.Load()), nil
}
