// Package runner glues the data module, the model, the trainer and the evaluator into one
// checkpoint gated run.
package runner

import "context"
import "errors"
import "fmt"
import "math/rand"
import "os"
import "slices"
import "time"

import "github.com/dustin/go-humanize"
import "github.com/google/uuid"
import "go.uber.org/zap"

import "github.com/neurlang/pneumonia/config"
import "github.com/neurlang/pneumonia/datasets/xray"
import "github.com/neurlang/pneumonia/evaluate"
import "github.com/neurlang/pneumonia/learning"
import "github.com/neurlang/pneumonia/net/ensemble"
import "github.com/neurlang/pneumonia/store"
import "github.com/neurlang/pneumonia/trainer"

// ErrClassMismatch is returned when the model and the data disagree on the classes
var ErrClassMismatch = errors.New("runner: class mismatch")

// Recorder persists finished runs
type Recorder interface {
	RecordRun(ctx context.Context, r store.Run) error
}

// Result is the outcome of one run
type Result struct {
	ID           string
	Decision     Decision
	Epochs       []trainer.Epoch
	TestAccuracy float64
	Table        *evaluate.Table
	Metrics      evaluate.Metrics
}

// Controller runs the experiment described by Config
type Controller struct {
	Config config.Config
	Logger *zap.Logger

	// Exists reports whether a checkpoint is present, nil checks for a regular file
	Exists func(path string) bool

	// History records every finished run when set
	History Recorder

	train func(ctx context.Context, dm *xray.DataModule) (*ensemble.Network, []trainer.Epoch, float64, error)
	load  func(ctx context.Context, dm *xray.DataModule) (*ensemble.Network, error)
}

// FileExists reports whether path is a regular file
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func (c *Controller) log() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Run consults the checkpoint gate once and executes its decision
func (c *Controller) Run(ctx context.Context) (*Result, error) {
	exists := c.Exists
	if exists == nil {
		exists = FileExists
	}
	return c.Execute(ctx, Decide(exists(c.Config.Checkpoint)))
}

// Execute trains or loads as d says, then evaluates the model on the test split
func (c *Controller) Execute(ctx context.Context, d Decision) (*Result, error) {
	res := &Result{ID: uuid.NewString(), Decision: d}
	log := c.log().With(zap.String("run", res.ID))
	log.Info("run started", zap.Stringer("decision", d), zap.String("checkpoint", c.Config.Checkpoint))

	dm, err := xray.New(xray.Options{
		Root:      c.Config.DataDir,
		BatchSize: c.Config.BatchSize,
		Workers:   c.Config.Workers,
		Augment:   c.Config.Augment,
		ValRatio:  c.Config.ValRatio,
		Seed:      c.Config.Seed,
		LabelMode: xray.LabelMode(c.Config.LabelMode),
		Logger:    log.Named("data"),
	})
	if err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}

	var net *ensemble.Network
	switch d {
	case Train:
		train := c.train
		if train == nil {
			train = c.trainNetwork
		}
		net, res.Epochs, res.TestAccuracy, err = train(ctx, dm)
		if err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
	case Load:
		load := c.load
		if load == nil {
			load = c.loadNetwork
		}
		net, err = load(ctx, dm)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	default:
		return nil, fmt.Errorf("runner: unknown decision %d", d)
	}

	ev := evaluate.Evaluator{Threads: c.Config.Threads, Logger: log.Named("evaluate")}
	res.Table, err = ev.BuildConfusion(ctx, net, dm)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	res.Metrics = res.Table.Metrics()
	log.Info("run done",
		zap.Int("correct", res.Table.Correct()),
		zap.Int("total", res.Table.Total()),
		zap.Float64("macro_f1", res.Metrics.MacroF1),
		zap.String("predictions", fmt.Sprintf("%x", res.Table.Fingerprint())))

	if c.History != nil {
		err = c.History.RecordRun(ctx, store.Run{
			ID:         res.ID,
			Decision:   d.String(),
			Checkpoint: c.Config.Checkpoint,
			Classes:    res.Table.Classes(),
			Matrix:     res.Table.Rows(),
			Accuracy:   res.Metrics.Accuracy,
			MacroF1:    res.Metrics.MacroF1,
			CreatedAt:  time.Now(),
		})
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
	}
	return res, nil
}

func (c *Controller) trainNetwork(ctx context.Context, dm *xray.DataModule) (*ensemble.Network, []trainer.Epoch, float64, error) {
	cfg := c.Config
	if len(dm.Classes()) != cfg.Classes {
		return nil, nil, 0, fmt.Errorf("%w: configured %d classes, data has %v", ErrClassMismatch, cfg.Classes, dm.Classes())
	}
	if err := dm.Setup(ctx, xray.StageFit); err != nil {
		return nil, nil, 0, err
	}
	if err := dm.Setup(ctx, xray.StageTest); err != nil {
		return nil, nil, 0, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	net, err := ensemble.New(cfg.Classes, cfg.Bank, xray.Positions, rng)
	if err != nil {
		return nil, nil, 0, err
	}
	net.SetClassNames(dm.Classes())

	tr := trainer.New(trainer.Options{
		MaxEpochs:    cfg.MaxEpochs,
		LearningRate: cfg.LearningRate,
		Threads:      cfg.Threads,
		Seed:         cfg.Seed,
		Hyper:        learning.HyperParameters{Buckets: cfg.Buckets, Attempts: cfg.Attempts},
		Logger:       c.log().Named("trainer"),
	})
	epochs, err := tr.Fit(ctx, net, dm)
	if err != nil {
		return nil, epochs, 0, err
	}
	acc, err := tr.Test(ctx, net, dm)
	if err != nil {
		return nil, epochs, 0, err
	}
	if err := net.WriteCheckpointFile(cfg.Checkpoint); err != nil {
		return nil, epochs, acc, fmt.Errorf("save: %w", err)
	}
	c.log().Info("checkpoint saved", zap.String("path", cfg.Checkpoint), zap.String("learned", humanize.IBytes(learned(net))))
	return net, epochs, acc, nil
}

func (c *Controller) loadNetwork(ctx context.Context, dm *xray.DataModule) (*ensemble.Network, error) {
	net, err := ensemble.ReadCheckpointFile(c.Config.Checkpoint)
	if err != nil {
		return nil, err
	}
	if names := net.ClassNames(); names != nil && !slices.Equal(names, dm.Classes()) {
		return nil, fmt.Errorf("%w: checkpoint has %v, data has %v", ErrClassMismatch, names, dm.Classes())
	}
	if net.Classes() != len(dm.Classes()) {
		return nil, fmt.Errorf("%w: checkpoint has %d classes, data has %d", ErrClassMismatch, net.Classes(), len(dm.Classes()))
	}
	if err := dm.Setup(ctx, xray.StageTest); err != nil {
		return nil, err
	}
	c.log().Info("checkpoint loaded", zap.String("path", c.Config.Checkpoint), zap.Int("hashtrons", net.Len()))
	return net, nil
}

// learned sums the quaternary filter sizes of every hashtron of net
func learned(net *ensemble.Network) (n uint64) {
	for i := 0; i < net.Len(); i++ {
		n += uint64(net.GetHashtron(i).LenTable())
	}
	return
}
