package datasets

import "sync"

import "github.com/neurlang/pneumonia/hash"

// Tally is used to count votes on features and return the majority votes.
// It is safe for concurrent use.
type Tally struct {
	// true is voted as a positive weight, false as a negative weight
	// if the tally is positive we map the feature to true, false if negative
	votes map[uint32]int64

	mut sync.Mutex
}

// Init initializes the tally structure
func (t *Tally) Init() {
	t.mut.Lock()
	t.votes = make(map[uint32]int64)
	t.mut.Unlock()
}

// Free frees the memory occupied by tally structure
func (t *Tally) Free() {
	t.mut.Lock()
	t.votes = nil
	t.mut.Unlock()
}

// Len reports the number of distinct features with a non-zero tally
func (t *Tally) Len() (o int) {
	t.mut.Lock()
	o = len(t.votes)
	t.mut.Unlock()
	return
}

// AddVote adds weight to feature. Positive weight votes for true.
func (t *Tally) AddVote(feature uint32, weight int64) {
	if weight == 0 {
		return
	}
	t.mut.Lock()
	t.votes[feature] += weight
	if t.votes[feature] == 0 {
		delete(t.votes, feature)
	}
	t.mut.Unlock()
}

// Fold hashes every feature into buckets using salt and sums the votes per bucket,
// returning the majority of each bucket which received votes. Buckets summing to zero
// are left out.
func (t *Tally) Fold(salt, buckets uint32) Dataset {
	t.mut.Lock()
	var sums = make(map[uint32]int64, len(t.votes))
	for feature, vote := range t.votes {
		sums[hash.Hash(feature, salt, buckets)] += vote
	}
	t.mut.Unlock()

	var d Dataset
	d.Init()
	for bucket, sum := range sums {
		if sum != 0 {
			d[bucket] = sum > 0
		}
	}
	return d
}

// Range calls fn for every feature with its tally. The tally is locked during the call,
// so fn must not modify it.
func (t *Tally) Range(fn func(feature uint32, vote int64)) {
	t.mut.Lock()
	defer t.mut.Unlock()
	for feature, vote := range t.votes {
		fn(feature, vote)
	}
}
