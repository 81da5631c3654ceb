package config

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ByteSize is a byte count. In settings files and the environment it may be
// written as a plain number or with a unit, as in "64MiB" or "2 MB".
type ByteSize int64

// UnmarshalText parses a humanized byte count.
func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(string(text))
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", text, err)
	}
	if n > math.MaxInt64 {
		return fmt.Errorf("byte size %q is too large", text)
	}
	*b = ByteSize(n)
	return nil
}

// String formats b with binary units, or "0" when unset.
func (b ByteSize) String() string {
	if b <= 0 {
		return "0"
	}
	return humanize.IBytes(uint64(b))
}
