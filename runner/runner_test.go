package runner

import (
	"bytes"
	"compress/lzw"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/pneumonia/config"
	"github.com/neurlang/pneumonia/datasets/xray"
	"github.com/neurlang/pneumonia/datasets/xray/xraytest"
	"github.com/neurlang/pneumonia/net/ensemble"
	"github.com/neurlang/pneumonia/store"
	"github.com/neurlang/pneumonia/trainer"
)

func testConfig(t *testing.T) config.Config {
	root := t.TempDir()
	xraytest.Write(t, filepath.Join(root, "data"), map[string]xraytest.Counts{
		"train": {6, 6, 6},
		"val":   {2, 2, 2},
		"test":  {3, 3, 3},
	})
	cfg := config.Default()
	cfg.DataDir = filepath.Join(root, "data")
	cfg.Checkpoint = filepath.Join(root, "model.json.lzw")
	cfg.History = filepath.Join(root, "runs.db")
	cfg.BatchSize = 5
	cfg.ValRatio = 0.25
	cfg.MaxEpochs = 2
	cfg.LearningRate = 1
	cfg.Bank = 16
	cfg.Buckets = 1 << 12
	cfg.Threads = 4
	return cfg
}

func TestDecide(t *testing.T) {
	assert.Equal(t, Train, Decide(false))
	assert.Equal(t, Load, Decide(true))
	assert.Equal(t, "train", Train.String())
	assert.Equal(t, "load", Load.String())
	assert.Equal(t, "unknown", Decision(7).String())
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
	assert.False(t, FileExists(dir), "a directory is not a checkpoint")
	path := filepath.Join(dir, "model")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.True(t, FileExists(path))
}

type recorder struct {
	runs []store.Run
}

func (r *recorder) RecordRun(_ context.Context, run store.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

func TestTrainThenLoad(t *testing.T) {
	cfg := testConfig(t)
	rec := &recorder{}
	c := &Controller{Config: cfg, History: rec}

	first, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Train, first.Decision)
	assert.Len(t, first.Epochs, 2)
	assert.FileExists(t, cfg.Checkpoint)
	saved, err := ensemble.ReadCheckpointFile(cfg.Checkpoint)
	require.NoError(t, err)
	assert.Positive(t, learned(saved))
	assert.Zero(t, learned(untrained(t, 3)))
	assert.Equal(t, 9, first.Table.Total())
	assert.Equal(t, []string{"NORMAL", "bacteria", "virus"}, first.Table.Classes())

	second, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Load, second.Decision)
	assert.Nil(t, second.Epochs)
	assert.Equal(t, first.Table.Rows(), second.Table.Rows(), "the restored model predicts like the saved one")
	assert.NotEqual(t, first.ID, second.ID)

	require.Len(t, rec.runs, 2)
	assert.Equal(t, "train", rec.runs[0].Decision)
	assert.Equal(t, "load", rec.runs[1].Decision)
	assert.Equal(t, second.Table.Rows(), rec.runs[1].Matrix)
}

func TestLoadNeverTrains(t *testing.T) {
	cfg := testConfig(t)
	trained := false
	loaded := false
	c := &Controller{
		Config: cfg,
		Exists: func(path string) bool {
			assert.Equal(t, cfg.Checkpoint, path)
			return true
		},
	}
	c.train = func(context.Context, *xray.DataModule) (*ensemble.Network, []trainer.Epoch, float64, error) {
		trained = true
		return nil, nil, 0, nil
	}
	c.load = func(ctx context.Context, dm *xray.DataModule) (*ensemble.Network, error) {
		loaded = true
		require.NoError(t, dm.Setup(ctx, xray.StageTest))
		assert.False(t, dm.Prepared("train"))
		return untrained(t, len(dm.Classes())), nil
	}
	res, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Load, res.Decision)
	assert.True(t, loaded)
	assert.False(t, trained)
}

func TestLoadMissingCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	c := &Controller{Config: cfg, Exists: func(string) bool { return true }}
	_, err := c.Run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCorruptCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Checkpoint, []byte("not a checkpoint"), 0o644))
	_, err := (&Controller{Config: cfg}).Run(context.Background())
	assert.ErrorIs(t, err, ensemble.ErrBadCheckpoint)
}

func TestLoadOversizedCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.LSB, 8)
	_, err := w.Write([]byte(`{"classes":3,"bank":6148914691236517206,"features":10}`))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, os.WriteFile(cfg.Checkpoint, buf.Bytes(), 0o644))

	_, err = (&Controller{Config: cfg}).Run(context.Background())
	assert.ErrorIs(t, err, ensemble.ErrBadCheckpoint)
}

func TestTrainClassMismatch(t *testing.T) {
	cfg := testConfig(t)
	cfg.Classes = 2
	_, err := (&Controller{Config: cfg}).Execute(context.Background(), Train)
	assert.ErrorIs(t, err, ErrClassMismatch)
	assert.NoFileExists(t, cfg.Checkpoint)
}

func TestLoadClassMismatch(t *testing.T) {
	cfg := testConfig(t)
	net := untrained(t, 3)
	net.SetClassNames([]string{"NORMAL", "PNEUMONIA", "other"})
	require.NoError(t, net.WriteCheckpointFile(cfg.Checkpoint))

	_, err := (&Controller{Config: cfg}).Run(context.Background())
	assert.ErrorIs(t, err, ErrClassMismatch)
}

func TestWithStore(t *testing.T) {
	cfg := testConfig(t)
	s, err := store.Open(cfg.History)
	require.NoError(t, err)
	defer s.Close()

	res, err := (&Controller{Config: cfg, History: s}).Run(context.Background())
	require.NoError(t, err)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.ID, runs[0].ID)
	assert.Equal(t, res.Table.Classes(), runs[0].Classes)
}

func TestCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Controller{Config: cfg}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, cfg.Checkpoint)
}

func untrained(t *testing.T, classes int) *ensemble.Network {
	t.Helper()
	net, err := ensemble.New(classes, 4, xray.Positions, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	return net
}
