// Package prof provides profiling hooks for usbfifo executables and benchmarks.
//
// The package wraps [runtime/pprof] and is conditionally compiled using the
// "profile" build tag:
//
//	go build -tags profile ./examples/dma-loopback
//
// Without the tag every function is a no-op, so call sites can stay in place
// in production builds.
//
// # CPU Profiling
//
//	if err := prof.StartCPU("cpu.prof"); err != nil {
//	    return err
//	}
//	defer prof.StopCPU()
//
// # Snapshot Profiles
//
//	prof.Write(prof.ProfileHeap, "heap.prof")
//
// [ProfileMutex] is the interesting one for FIFOs configured with side locks;
// enable sampling first with [SetMutexProfileFraction].
package prof
