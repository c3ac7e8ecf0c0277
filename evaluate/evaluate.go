package evaluate

import "context"
import "fmt"

import "go.uber.org/zap"

import "github.com/neurlang/pneumonia/datasets/xray"
import "github.com/neurlang/pneumonia/inference"
import "github.com/neurlang/pneumonia/parallel"

// Model is a classifier which can be frozen before inference
type Model interface {
	inference.Model
	Freeze()
}

// TestSource provides the test loader and the class names in index order
type TestSource interface {
	TestLoader() (*xray.Loader, error)
	Classes() []string
}

// Evaluator builds confusion tables over the test split
type Evaluator struct {
	Threads int
	Logger  *zap.Logger
}

// BuildConfusion freezes m, predicts every test sample in a single ordered pass and tabulates
// the predictions against the labels. A malformed batch aborts the evaluation.
func (e Evaluator) BuildConfusion(ctx context.Context, m Model, dm TestSource) (*Table, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m.Freeze()
	classes := dm.Classes()
	if m.Classes() != len(classes) {
		return nil, fmt.Errorf("%w: model has %d classes, data %d", ErrClass, m.Classes(), len(classes))
	}
	loader, err := dm.TestLoader()
	if err != nil {
		return nil, err
	}
	var labels, predictions []uint16
	hasher := parallel.NewUint16Hasher(loader.Len())
	for n, b := range loader.Batches() {
		if err := b.Validate(len(classes)); err != nil {
			return nil, fmt.Errorf("batch %d: %w", n, err)
		}
		out := make([]uint16, b.Len())
		base := len(predictions)
		err := parallel.ForEachErr(ctx, b.Len(), e.Threads, func(_ context.Context, i int) error {
			p, err := inference.Predict(m, b.Inputs[i])
			if err != nil {
				return err
			}
			out[i] = p
			hasher.MustPutUint16(base+i, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", n, err)
		}
		labels = append(labels, b.Labels...)
		predictions = append(predictions, out...)
	}
	t, err := Confusion(labels, predictions, classes)
	if err != nil {
		return nil, err
	}
	t.sum = hasher.Sum()
	log.Info("confusion built",
		zap.Int("samples", t.Total()),
		zap.Int("correct", t.Correct()),
		zap.String("fingerprint", fmt.Sprintf("%x", t.sum[:8])))
	return t, nil
}
