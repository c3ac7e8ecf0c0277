// Package datasets implements the vote tallies and datasets used to train hashtrons
package datasets

// Dataset maps a hashtron bucket to the bit the hashtron should answer for it
type Dataset map[uint32]bool

// Init initializes the dataset
func (d *Dataset) Init() {
	*d = make(map[uint32]bool)
}

// SplittedDataset holds the false buckets at index 0 and the true buckets at index 1
type SplittedDataset [2]map[uint32]struct{}

// Split splits dataset into a false set and a true set
func (d Dataset) Split() (o SplittedDataset) {
	o[0] = make(map[uint32]struct{})
	o[1] = make(map[uint32]struct{})
	for k, v := range d {
		if v {
			o[1][k] = struct{}{}
		} else {
			o[0][k] = struct{}{}
		}
	}
	return
}
