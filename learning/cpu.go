package learning

import "runtime"

import "github.com/klauspost/cpuid/v2"

// DefaultThreads returns the number of physical cores, or the logical CPU count
// when the topology is unknown
func DefaultThreads() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// CPUName describes the processor for the run log
func CPUName() string {
	name := cpuid.CPU.BrandName
	if name == "" {
		name = runtime.GOARCH
	}
	if cpuid.CPU.Supports(cpuid.AVX2, cpuid.FMA3) {
		name += " (avx2)"
	}
	return name
}
