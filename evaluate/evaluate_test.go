package evaluate

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/pneumonia/datasets/xray"
	"github.com/neurlang/pneumonia/datasets/xray/xraytest"
	"github.com/neurlang/pneumonia/inference"
	"github.com/neurlang/pneumonia/learning"
	"github.com/neurlang/pneumonia/net/ensemble"
	"github.com/neurlang/pneumonia/trainer"
)

func TestConfusionScenario(t *testing.T) {
	const A, B = 0, 1
	tbl, err := Confusion([]uint16{A, A, B, B, B}, []uint16{A, B, B, B, A}, []string{"A", "B"})
	require.NoError(t, err)
	if diff := cmp.Diff([][]int{{1, 1}, {1, 2}}, tbl.Rows()); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, tbl.Total())
	assert.Equal(t, 3, tbl.Correct())
}

func TestConfusionSums(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	classes := []string{"virus", "NORMAL", "bacteria"}
	labels := make([]uint16, 500)
	predictions := make([]uint16, 500)
	trueCount := map[string]int{}
	predCount := map[string]int{}
	for i := range labels {
		labels[i] = uint16(rng.Intn(3))
		predictions[i] = uint16(rng.Intn(3))
		trueCount[classes[labels[i]]]++
		predCount[classes[predictions[i]]]++
	}
	tbl, err := Confusion(labels, predictions, classes)
	require.NoError(t, err)

	assert.Equal(t, []string{"NORMAL", "bacteria", "virus"}, tbl.Classes(), "axes sorted by name")
	assert.Equal(t, len(labels), tbl.Total())
	for i, name := range tbl.Classes() {
		assert.Equal(t, trueCount[name], tbl.RowSum(i), "row %s", name)
		assert.Equal(t, predCount[name], tbl.ColSum(i), "column %s", name)
	}
}

func TestConfusionImmutable(t *testing.T) {
	tbl, err := Confusion([]uint16{0}, []uint16{0}, []string{"A", "B"})
	require.NoError(t, err)
	rows := tbl.Rows()
	rows[0][0] = 99
	assert.Equal(t, 1, tbl.At(0, 0))
}

func TestConfusionErrors(t *testing.T) {
	_, err := Confusion([]uint16{0, 1}, []uint16{0}, []string{"A", "B"})
	assert.ErrorIs(t, err, ErrLength)
	_, err = Confusion([]uint16{0, 2}, []uint16{0, 1}, []string{"A", "B"})
	assert.ErrorIs(t, err, ErrClass)
}

func TestMetrics(t *testing.T) {
	tbl, err := Confusion([]uint16{0, 0, 1, 1, 1}, []uint16{0, 1, 1, 1, 0}, []string{"A", "B"})
	require.NoError(t, err)
	m := tbl.Metrics()
	assert.InDelta(t, 0.6, m.Accuracy, 1e-12)
	require.Len(t, m.PerClass, 2)
	assert.InDelta(t, 0.5, m.PerClass[0].Precision, 1e-12)
	assert.InDelta(t, 0.5, m.PerClass[0].Recall, 1e-12)
	assert.InDelta(t, 2.0/3, m.PerClass[1].Precision, 1e-12)
	assert.InDelta(t, 2.0/3, m.PerClass[1].Recall, 1e-12)
	assert.InDelta(t, (0.5+2.0/3)/2, m.MacroF1, 1e-12)
	assert.Equal(t, 3, m.PerClass[1].Support)

	empty, err := Confusion(nil, nil, []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Metrics().Accuracy)
}

func TestMostConfused(t *testing.T) {
	tbl, err := Confusion([]uint16{0, 1, 1, 2}, []uint16{0, 2, 2, 0}, []string{"A", "B", "C"})
	require.NoError(t, err)
	i, j, ok := tbl.MostConfused()
	require.True(t, ok)
	assert.Equal(t, [2]int{1, 2}, [2]int{i, j})

	perfect, err := Confusion([]uint16{0, 1}, []uint16{0, 1}, []string{"A", "B"})
	require.NoError(t, err)
	_, _, ok = perfect.MostConfused()
	assert.False(t, ok)
}

func setup(t *testing.T) (*xray.DataModule, *ensemble.Network) {
	root := t.TempDir()
	xraytest.Write(t, root, map[string]xraytest.Counts{
		"train": {5, 5, 5},
		"val":   {1, 1, 1},
		"test":  {4, 3, 2},
	})
	dm, err := xray.New(xray.Options{Root: root, BatchSize: 4, Workers: 3, ValRatio: 0.2, Seed: 1, LabelMode: xray.LabelSubtype})
	require.NoError(t, err)
	require.NoError(t, dm.Setup(context.Background(), xray.StageAll))
	net, err := ensemble.New(3, 16, xray.Positions, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	tr := trainer.New(trainer.Options{MaxEpochs: 1, LearningRate: 1, Threads: 2, Seed: 1, Hyper: learning.HyperParameters{Buckets: 1 << 12}})
	_, err = tr.Fit(context.Background(), net, dm)
	require.NoError(t, err)
	return dm, net
}

func TestBuildConfusion(t *testing.T) {
	dm, net := setup(t)
	e := Evaluator{Threads: 3}
	tbl, err := e.BuildConfusion(context.Background(), net, dm)
	require.NoError(t, err)
	assert.True(t, net.Frozen())
	assert.Equal(t, 9, tbl.Total())
	assert.Equal(t, []int{4, 3, 2}, []int{tbl.RowSum(0), tbl.RowSum(1), tbl.RowSum(2)})
	assert.Equal(t, []string{"NORMAL", "bacteria", "virus"}, tbl.Classes())

	again, err := e.BuildConfusion(context.Background(), net, dm)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), again.Rows(), "evaluation is idempotent")
	assert.Equal(t, tbl.Fingerprint(), again.Fingerprint())
}

type broken struct{ classes int }

func (b broken) Logits(inference.Input) []float64 { return []float64{1} }
func (b broken) Classes() int                     { return b.classes }
func (b broken) Freeze()                          {}

func TestBuildConfusionFatal(t *testing.T) {
	dm, _ := setup(t)
	_, err := Evaluator{}.BuildConfusion(context.Background(), broken{classes: 3}, dm)
	assert.ErrorIs(t, err, inference.ErrLogits)

	_, err = Evaluator{}.BuildConfusion(context.Background(), broken{classes: 2}, dm)
	assert.ErrorIs(t, err, ErrClass)
}
