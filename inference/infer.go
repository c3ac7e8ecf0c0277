// Package inference turns model logits into class predictions
package inference

import "errors"
import "fmt"
import "math"

// ErrLogits is returned for a logits vector of the wrong length
var ErrLogits = errors.New("inference: wrong number of logits")

// Input is one sample fed to a model
type Input interface {
	Feature(n int) uint32
}

// Model computes one logit per class
type Model interface {
	Logits(in Input) []float64
	Classes() int
}

// LogSoftmax returns log(softmax(logits)), computed stably by subtracting the maximum
func LogSoftmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for _, v := range logits {
		sum += math.Exp(v - max)
	}
	lse := max + math.Log(sum)
	for i, v := range logits {
		out[i] = v - lse
	}
	return out
}

// Argmax returns the index of the first maximum, so the lowest index wins a tie. It returns -1
// for an empty slice.
func Argmax(v []float64) int {
	best := -1
	for i := range v {
		if best < 0 || v[i] > v[best] {
			best = i
		}
	}
	return best
}

// Predict returns the arg-max of the log-softmax of the model logits for in
func Predict(m Model, in Input) (uint16, error) {
	logits := m.Logits(in)
	if len(logits) != m.Classes() || len(logits) == 0 {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrLogits, len(logits), m.Classes())
	}
	return uint16(Argmax(LogSoftmax(logits))), nil
}
