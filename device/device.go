// Package device reports the compute device a run is pinned to
package device

import "errors"
import "fmt"

import "github.com/dustin/go-humanize"
import "github.com/klauspost/cpuid/v2"

import "github.com/neurlang/pneumonia/hash"

// ErrNoDevice is returned for a device index that doesn't exist
var ErrNoDevice = errors.New("device: no such device")

// Info describes one compute device
type Info struct {
	Index  int
	Kind   string
	Name   string
	Cores  int
	Lanes  int
	Memory uint64
}

// String formats Info for logs and the CLI
func (i Info) String() string {
	s := fmt.Sprintf("%s:%d %s (%d cores, %d hash lanes)", i.Kind, i.Index, i.Name, i.Cores, i.Lanes)
	if i.Memory > 0 {
		s += ", " + humanize.IBytes(i.Memory)
	}
	return s
}

// CPU describes the host processor
func CPU() Info {
	cores := cpuid.CPU.LogicalCores
	if cores == 0 {
		cores = cpuid.CPU.PhysicalCores
	}
	name := cpuid.CPU.BrandName
	if name == "" {
		name = cpuid.CPU.VendorString
	}
	return Info{Kind: "cpu", Name: name, Cores: cores, Lanes: hash.Lanes()}
}

// Probe validates the configured device index. With the cuda build tag the index selects a
// CUDA device; otherwise only the host cpu, index 0, exists.
func Probe(index int) (Info, error) {
	if index < 0 {
		return Info{}, fmt.Errorf("%w: %d", ErrNoDevice, index)
	}
	if info, ok, err := probeAccelerator(index); ok || err != nil {
		return info, err
	}
	if index != 0 {
		return Info{}, fmt.Errorf("%w: %d (cpu only build)", ErrNoDevice, index)
	}
	return CPU(), nil
}
