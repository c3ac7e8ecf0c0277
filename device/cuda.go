//go:build cuda

package device

import "fmt"

import "gorgonia.org/cu"

func probeAccelerator(index int) (Info, bool, error) {
	count, err := cu.NumDevices()
	if err != nil {
		return Info{}, false, err
	}
	if index >= count {
		return Info{}, false, fmt.Errorf("%w: %d of %d cuda devices", ErrNoDevice, index, count)
	}
	dev := cu.Device(index)
	name, err := dev.Name()
	if err != nil {
		return Info{}, false, err
	}
	memory, err := dev.TotalMem()
	if err != nil {
		return Info{}, false, err
	}
	cpu := CPU()
	return Info{Index: index, Kind: "cuda", Name: name, Cores: cpu.Cores, Lanes: cpu.Lanes, Memory: uint64(memory)}, true, nil
}
