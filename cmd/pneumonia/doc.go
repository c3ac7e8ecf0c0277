// Package main provides the pneumonia command: it trains an integer-only hashtron ensemble on
// a chest X-ray image tree (or restores it from a checkpoint) and reports a confusion matrix
// of the test split.
//
//	pneumonia run --config pneumonia.yaml
//	pneumonia counts
//	pneumonia history
package main
