package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tile.b3dm")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestPayload_Sections(t *testing.T) {
	content := []byte("b3dm\x01\x00\x00\x00payload")
	p, err := Open(writeTemp(t, content))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, len(content), p.Len())
	assert.Equal(t, content, p.Bytes())

	tests := []struct {
		name    string
		off, n  int
		want    string
		wantErr error
	}{
		{"magic", 0, 4, "b3dm", nil},
		{"tail", 8, 7, "payload", nil},
		{"empty at end", len(content), 0, "", nil},
		{"past end", 8, 8, "", ErrOutOfRange},
		{"negative offset", -1, 4, "", ErrOutOfRange},
		{"negative length", 0, -1, "", ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Section(tt.off, tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestPayload_ReadAt(t *testing.T) {
	p, err := Open(writeTemp(t, []byte("b3dm\x01\x00\x00\x00payload")))
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := p.ReadAt(buf, 8)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "payload", string(buf[:n]))

	_, err = p.ReadAt(buf, 100)
	assert.Equal(t, io.EOF, err)
	_, err = p.ReadAt(buf, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Nil(t, p.Bytes())
	_, err = p.ReadAt(buf, 0)
	assert.Equal(t, ErrClosed, err)
	_, err = p.Section(0, 1)
	assert.Equal(t, ErrClosed, err)
}

func TestPayload_EmptyFile(t *testing.T) {
	p, err := Open(writeTemp(t, nil))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 0, p.Len())
	assert.Nil(t, p.Bytes())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.b3dm"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Open(t.TempDir())
	assert.Error(t, err)
}
