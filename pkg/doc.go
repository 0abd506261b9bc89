// Package pkg provides shared utilities for the usbfifo packages.
//
// This package contains common functionality used by the FIFO engine and
// its hardware-facing collaborators, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error values for configuration and transfer failures
//   - Component identifiers for log filtering
//
// # Logging
//
// The logging subsystem wraps [log/slog] and tags every record with the
// emitting component:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogDebug(pkg.ComponentFIFO, "configured", "depth", 64, "itemSize", 4)
//
// Records below the current level are discarded before their attributes are
// assembled, so logging calls may remain in interrupt-adjacent code paths.
//
// # Errors
//
// Failures are reported as sentinel values:
//
//	if errors.Is(err, pkg.ErrDepthTooLarge) {
//	    // Choose a smaller depth
//	}
package pkg
