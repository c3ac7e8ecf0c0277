package datasets

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/pneumonia/hash"
)

func votes(tally *Tally) map[uint32]int64 {
	out := map[uint32]int64{}
	tally.Range(func(feature uint32, vote int64) { out[feature] = vote })
	return out
}

func TestTallyVotes(t *testing.T) {
	var tally Tally
	tally.Init()
	tally.AddVote(1, 3)
	tally.AddVote(1, -1)
	tally.AddVote(2, -5)
	tally.AddVote(3, 2)
	tally.AddVote(3, -2)
	tally.AddVote(4, 0)

	assert.Equal(t, map[uint32]int64{1: 2, 2: -5}, votes(&tally), "cancelled and zero votes are dropped")
	assert.Equal(t, 2, tally.Len())
}

func TestTallyConcurrent(t *testing.T) {
	var tally Tally
	tally.Init()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tally.AddVote(uint32(i%4), 1)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, map[uint32]int64{0: 16, 1: 16, 2: 16, 3: 16}, votes(&tally))
}

func TestTallyFold(t *testing.T) {
	var tally Tally
	tally.Init()
	tally.AddVote(10, 4)
	tally.AddVote(20, -1)

	d := tally.Fold(5, 1) // every feature lands in bucket 0
	require.Len(t, d, 1)
	assert.True(t, d[0], "majority of the single bucket is positive")

	d = tally.Fold(5, 1<<20)
	b10, b20 := hash.Hash(10, 5, 1<<20), hash.Hash(20, 5, 1<<20)
	require.NotEqual(t, b10, b20)
	assert.Equal(t, Dataset{b10: true, b20: false}, d)

	split := d.Split()
	assert.Contains(t, split[1], b10)
	assert.Contains(t, split[0], b20)
}
