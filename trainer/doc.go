// Package trainer provides high-level training orchestration for hashtron ensembles.
// It runs a fixed number of epochs over a data module, keeping an epoch only when it
// doesn't make validation accuracy worse.
package trainer
