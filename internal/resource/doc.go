// Package resource bounds the work the tile walker runs at once.
//
// A Controller governs three resources:
//
//   - Workers: how many tile payloads are decoded concurrently
//   - Memory: how many payload bytes may be held by in-flight decodes
//   - IO: a token bucket on bytes read from the tile source
//
// # Workers
//
//	rc := resource.NewController(resource.Config{MaxWorkers: 8})
//
//	if err := rc.AcquireWorker(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseWorker()
//
// # Memory
//
// AcquireMemory blocks until the bytes fit under the limit. A single request
// larger than the limit is clamped to the limit so one oversized tile can
// still make progress on its own.
//
// # IO
//
// AcquireIO waits for the token bucket in burst-sized steps, so a payload
// larger than one second of budget is throttled instead of rejected.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
