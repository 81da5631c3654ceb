// Package fs abstracts the local filesystem so artifact writes can be
// redirected or made to fail in tests.
//
// [LocalFS] is the os-backed [FileSystem]. [FaultyFS] wraps another
// FileSystem and fails writes, syncs or closes of matching files.
//
// [WriteAtomic] writes through a temporary sibling and renames it into
// place, so a reader never observes a half-written artifact.
//
// The package has no context.Context parameters. Local filesystem calls are
// not interruptible; the blob stores above it check the context between
// calls.
package fs
