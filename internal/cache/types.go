package cache

import "context"

// BlobCache is a byte-oriented cache keyed by blob name.
// Returned slices must be treated as read-only.
type BlobCache interface {
	// Get returns a cached blob. ok=false if missing.
	Get(ctx context.Context, name string) (b []byte, ok bool)
	// Set caches a blob. Implementations may retain b; callers must treat it as immutable.
	Set(ctx context.Context, name string, b []byte)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}

// AdmissionPolicy decides whether a value should be cached.
type AdmissionPolicy interface {
	Admit(name string, sizeBytes int) bool
}

// AdmitAll caches every value.
type AdmitAll struct{}

// Admit implements AdmissionPolicy.
func (AdmitAll) Admit(string, int) bool { return true }
