//go:build !cuda

package device

func probeAccelerator(index int) (Info, bool, error) {
	return Info{}, false, nil
}
