package main

import "os"
import "runtime/pprof"

// startProfile collects a CPU profile into default.pgo until the returned
// function is called
func startProfile() (stop func(), err error) {
	f, err := os.Create("default.pgo")
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
