package trainer

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/pneumonia/datasets/xray"
	"github.com/neurlang/pneumonia/datasets/xray/xraytest"
	"github.com/neurlang/pneumonia/learning"
	"github.com/neurlang/pneumonia/net/ensemble"
)

func module(t *testing.T, stage string) *xray.DataModule {
	root := t.TempDir()
	xraytest.Write(t, root, map[string]xraytest.Counts{
		"train": {6, 6, 6},
		"val":   {2, 2, 2},
		"test":  {3, 3, 3},
	})
	dm, err := xray.New(xray.Options{
		Root: root, BatchSize: 5, Workers: 2, ValRatio: 0.25, Seed: 42, LabelMode: xray.LabelSubtype,
	})
	require.NoError(t, err)
	require.NoError(t, dm.Setup(context.Background(), stage))
	return dm
}

func TestFitAndTest(t *testing.T) {
	dm := module(t, xray.StageAll)
	net, err := ensemble.New(3, 16, xray.Positions, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	tr := New(Options{MaxEpochs: 3, LearningRate: 1, Threads: 4, Seed: 42, Hyper: learning.HyperParameters{Buckets: 1 << 12}})
	history, err := tr.Fit(context.Background(), net, dm)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].Kept, "the first epoch always beats an untrained network")
	assert.Equal(t, 18, history[0].Samples, "24 images minus a quarter for validation")

	acc, err := tr.Test(context.Background(), net, dm)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.8)
}

func TestFitNeedsFitStage(t *testing.T) {
	dm := module(t, xray.StageTest)
	net, err := ensemble.New(3, 4, xray.Positions, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = New(Options{MaxEpochs: 1, LearningRate: 1}).Fit(context.Background(), net, dm)
	assert.ErrorIs(t, err, xray.ErrNotPrepared)
}

func TestFitClassMismatch(t *testing.T) {
	dm := module(t, xray.StageAll)
	net, err := ensemble.New(2, 4, xray.Positions, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = New(Options{MaxEpochs: 1, LearningRate: 1}).Fit(context.Background(), net, dm)
	assert.ErrorIs(t, err, xray.ErrMalformedBatch)
}

func TestFitCancelled(t *testing.T) {
	dm := module(t, xray.StageAll)
	net, err := ensemble.New(3, 4, xray.Positions, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(Options{MaxEpochs: 2, LearningRate: 1}).Fit(ctx, net, dm)
	assert.ErrorIs(t, err, context.Canceled)
}
