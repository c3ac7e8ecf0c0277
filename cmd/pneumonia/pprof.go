package main

import "os"
import "runtime/pprof"

// startProfile collects a cpu profile into name until the returned function is called.
// Naming it default.pgo lets go build use it for profile guided optimization.
func startProfile(name string) (func(), error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}
