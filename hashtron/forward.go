package hashtron

import "github.com/neurlang/pneumonia/hash"

// Bucket hashes the feature through the program into a table bucket.
func (h Hashtron) Bucket(feature uint32) uint32 {
	return hash.Chain(feature, h.program)
}

// Forward classifies the feature, optionally negating the learned answer.
func (h Hashtron) Forward(feature uint32, negate bool) bool {
	if h.Len() == 0 {
		return negate
	}
	return h.At(h.Bucket(feature)) != negate
}
