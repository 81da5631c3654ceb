package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		err  bool
	}{
		{"", None, false},
		{"none", None, false},
		{"LZ4", LZ4, false},
		{"zstd", ZSTD, false},
		{"zst", ZSTD, false},
		{"gzip", None, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("dataRowId,value\r\n12,3.5\r\n"), 200)
	for _, typ := range []Type{None, LZ4, ZSTD} {
		t.Run(typ.String(), func(t *testing.T) {
			enc, err := Compress(typ, data)
			require.NoError(t, err)
			if typ != None {
				assert.Less(t, len(enc), len(data))
			}
			dec, err := Decompress(typ, enc)
			require.NoError(t, err)
			assert.Equal(t, data, dec)
			assert.Equal(t, typ, Detect("0.csv"+typ.Suffix()))
		})
	}
}
