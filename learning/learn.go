// Package learning implements the learning stage of the hashtron classifier
package learning

import "errors"
import "math/rand"

import "go.uber.org/zap"

import "github.com/neurlang/pneumonia/datasets"
import "github.com/neurlang/pneumonia/hash"
import "github.com/neurlang/pneumonia/hashtron"

// ErrEmptyTally is returned when there is nothing to learn from
var ErrEmptyTally = errors.New("learning: empty tally")

// Training trains a single hashtron on the votes of tally. Every attempt draws a salt from rng,
// folds the votes into buckets and scores how many votes the resulting table agrees with.
// It outputs the best trained hashtron, or an error.
func (h *HyperParameters) Training(tally *datasets.Tally, rng *rand.Rand) (*hashtron.Hashtron, error) {
	if tally.Len() == 0 {
		return nil, ErrEmptyTally
	}
	var best *hashtron.Hashtron
	var bestScore int64 = -1
	var bestSize [2]int
	for attempt := 0; attempt < h.attempts(); attempt++ {
		salt := rng.Uint32() >> 1
		d := tally.Fold(salt, h.buckets())
		tron, err := h.Solve(salt, d)
		if err != nil {
			return nil, err
		}
		score := agreement(tally, d, salt, h.buckets())
		if score > bestScore {
			split := d.Split()
			best, bestScore, bestSize = tron, score, [2]int{len(split[0]), len(split[1])}
		}
	}
	h.logger().Debug("hashtron learned",
		zap.Int("features", tally.Len()),
		zap.Int("false_buckets", bestSize[0]),
		zap.Int("true_buckets", bestSize[1]),
		zap.Int64("agreement", bestScore))
	return best, nil
}

// Solve directly bakes dataset d into a hashtron using salt. Most callers should use Training instead.
func (h *HyperParameters) Solve(salt uint32, d datasets.Dataset) (*hashtron.Hashtron, error) {
	return hashtron.Learn([][2]uint32{{salt, h.buckets()}}, d)
}

// agreement sums the absolute weight of the votes whose sign matches the learned bucket
func agreement(tally *datasets.Tally, d datasets.Dataset, salt, buckets uint32) (score int64) {
	tally.Range(func(feature uint32, vote int64) {
		if d[hash.Hash(feature, salt, buckets)] == (vote > 0) {
			if vote < 0 {
				vote = -vote
			}
			score += vote
		}
	})
	return
}
