// Package xray implements the chest X-ray data module: class folders of images on disk
// turned into train, validation and test loaders.
package xray

import "context"
import "errors"
import "fmt"
import "math/rand"
import "sort"

import "go.uber.org/zap"

import "github.com/neurlang/pneumonia/parallel"

// ErrNotPrepared is returned by a loader of a split which Setup didn't prepare
var ErrNotPrepared = errors.New("xray: split not prepared")

// Stages accepted by Setup
const (
	StageFit  = "fit"
	StageTest = "test"
	StageAll  = ""
)

// Options configure a DataModule
type Options struct {
	Root      string
	BatchSize int
	Workers   int
	Augment   bool
	ValRatio  float64
	Seed      int64
	LabelMode LabelMode
	Logger    *zap.Logger
}

// DataModule produces train, validation and test loaders from a directory tree
type DataModule struct {
	opts    Options
	classes []string
	index   map[string]int
	entries map[string][]entry

	train, val, test []Sample
	prepared         map[string]bool
	log              *zap.Logger
}

// New lists the dataset below opts.Root and fixes the class mapping. Images are decoded by Setup.
func New(opts Options) (*DataModule, error) {
	if opts.LabelMode == "" {
		opts.LabelMode = LabelFolder
	}
	if opts.ValRatio < 0 || opts.ValRatio >= 1 {
		return nil, fmt.Errorf("xray: validation ratio %v out of [0,1)", opts.ValRatio)
	}
	dm := &DataModule{
		opts:     opts,
		entries:  map[string][]entry{},
		prepared: map[string]bool{},
		log:      opts.Logger,
	}
	if dm.log == nil {
		dm.log = zap.NewNop()
	}
	seen := map[string]struct{}{}
	for _, split := range Splits {
		entries, err := scanSplit(opts.Root, split, opts.LabelMode)
		if err != nil {
			return nil, err
		}
		dm.entries[split] = entries
		for _, e := range entries {
			seen[e.class] = struct{}{}
		}
	}
	dm.classes = sortedNames(seen)
	dm.index = make(map[string]int, len(dm.classes))
	for i, c := range dm.classes {
		dm.index[c] = i
	}
	return dm, nil
}

// Classes returns class names in index order (case-sensitive sort order)
func (dm *DataModule) Classes() []string {
	return append([]string(nil), dm.classes...)
}

// ClassToIdx returns the class name to index mapping
func (dm *DataModule) ClassToIdx() map[string]int {
	out := make(map[string]int, len(dm.index))
	for k, v := range dm.index {
		out[k] = v
	}
	return out
}

// Setup decodes the splits needed by stage: StageFit prepares train and val, StageTest only test,
// StageAll everything.
func (dm *DataModule) Setup(ctx context.Context, stage string) error {
	switch stage {
	case StageFit, StageTest, StageAll:
	default:
		return fmt.Errorf("xray: unknown stage %q", stage)
	}
	if stage == StageFit || stage == StageAll {
		merged := append(append([]entry(nil), dm.entries["train"]...), dm.entries["val"]...)
		samples, err := dm.decode(ctx, merged)
		if err != nil {
			return err
		}
		dm.train, dm.val = splitValidation(samples, dm.opts.ValRatio, dm.opts.Seed)
		if dm.opts.Augment {
			dm.train = Rebalance(dm.train, len(dm.classes))
		}
		dm.prepared["train"], dm.prepared["val"] = true, true
		dm.log.Info("fit splits prepared", zap.Int("train", len(dm.train)), zap.Int("val", len(dm.val)))
	}
	if stage == StageTest || stage == StageAll {
		samples, err := dm.decode(ctx, dm.entries["test"])
		if err != nil {
			return err
		}
		dm.test = samples
		dm.prepared["test"] = true
		dm.log.Info("test split prepared", zap.Int("test", len(dm.test)))
	}
	return nil
}

// Prepared reports whether Setup prepared split
func (dm *DataModule) Prepared(split string) bool {
	return dm.prepared[split]
}

// TrainLoader returns the shuffling training loader
func (dm *DataModule) TrainLoader() (*Loader, error) {
	if !dm.prepared["train"] {
		return nil, fmt.Errorf("train: %w", ErrNotPrepared)
	}
	return newLoader(dm.train, dm.opts.BatchSize, rand.New(rand.NewSource(dm.opts.Seed))), nil
}

// ValLoader returns the validation loader
func (dm *DataModule) ValLoader() (*Loader, error) {
	if !dm.prepared["val"] {
		return nil, fmt.Errorf("val: %w", ErrNotPrepared)
	}
	return newLoader(dm.val, dm.opts.BatchSize, nil), nil
}

// TestLoader returns the test loader, which never shuffles
func (dm *DataModule) TestLoader() (*Loader, error) {
	if !dm.prepared["test"] {
		return nil, fmt.Errorf("test: %w", ErrNotPrepared)
	}
	return newLoader(dm.test, dm.opts.BatchSize, nil), nil
}

// decode loads entries concurrently with opts.Workers workers, keeping entry order
func (dm *DataModule) decode(ctx context.Context, entries []entry) ([]Sample, error) {
	out := make([]Sample, len(entries))
	err := parallel.ForEachErr(ctx, len(entries), dm.opts.Workers, func(_ context.Context, i int) error {
		px, err := DecodeFile(entries[i].path)
		if err != nil {
			return err
		}
		out[i] = Sample{Pixels: px, Label: uint16(dm.index[entries[i].class])}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// splitValidation shuffles samples with seed and moves the first ratio of them to validation
func splitValidation(samples []Sample, ratio float64, seed int64) (train, val []Sample) {
	order := rand.New(rand.NewSource(seed)).Perm(len(samples))
	nval := int(float64(len(samples)) * ratio)
	pick := order[:nval]
	sort.Ints(pick)
	isVal := make([]bool, len(samples))
	for _, i := range pick {
		isVal[i] = true
		val = append(val, samples[i])
	}
	for i := range samples {
		if !isVal[i] {
			train = append(train, samples[i])
		}
	}
	return
}

// Rebalance tops every class up to the size of the largest class with flipped and shifted
// copies of its own samples. Classes without samples stay empty.
func Rebalance(samples []Sample, classes int) []Sample {
	byClass := make([][]int, classes)
	for i := range samples {
		c := int(samples[i].Label)
		if c < classes {
			byClass[c] = append(byClass[c], i)
		}
	}
	var largest int
	for _, idx := range byClass {
		if len(idx) > largest {
			largest = len(idx)
		}
	}
	out := append([]Sample(nil), samples...)
	for _, idx := range byClass {
		if len(idx) == 0 {
			continue
		}
		for n := 0; len(idx)+n < largest; n++ {
			src := &samples[idx[n%len(idx)]]
			out = append(out, augment(src, n/len(idx)))
		}
	}
	return out
}

// augment returns the round-th variant of s
func augment(s *Sample, round int) Sample {
	switch round % 4 {
	case 0:
		return s.Flip()
	case 1:
		return s.Shift(1)
	case 2:
		return s.Shift(-1)
	default:
		f := s.Flip()
		return f.Shift(1)
	}
}
