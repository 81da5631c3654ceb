// Package conv converts between Go's int and the fixed-width integers used
// by binary container headers and row id sets.
//
// Conversions fail with ErrOverflow instead of wrapping. For conversions
// that are provably safe, such as loop indices, use direct type casts.
package conv
