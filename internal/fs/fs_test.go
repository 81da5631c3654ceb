package fs

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "out", "0.csv")

	require.NoError(t, WriteAtomic(Default, name, []byte("dataRowId,value\r\n"), 0o644))
	got, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "dataRowId,value\r\n", string(got))

	require.NoError(t, WriteAtomic(Default, name, []byte("x"), 0o644))
	got, err = os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	assert.Equal(t, []string{"0.csv"}, dirNames(t, filepath.Dir(name)))
}

func TestWriteAtomic_Concurrent(t *testing.T) {
	name := filepath.Join(t.TempDir(), "resultsData.csv")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, WriteAtomic(Default, name, []byte("id,latitude\r\n"), 0o644))
		}()
	}
	wg.Wait()

	got, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "id,latitude\r\n", string(got))
	assert.Equal(t, []string{"resultsData.csv"}, dirNames(t, filepath.Dir(name)))
}

func TestWriteAtomic_Faults(t *testing.T) {
	boom := errors.New("disk full")

	tests := []struct {
		name  string
		fault Fault
		want  error
	}{
		{"write", Fault{FailAfterBytes: 2, Err: boom}, boom},
		{"sync", Fault{FailAfterBytes: -1, FailOnSync: true}, ErrInjected},
		{"close", Fault{FailAfterBytes: -1, FailOnClose: true, Err: boom}, boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			ffs := NewFaultyFS(nil)
			ffs.AddRule("indexRoot", tt.fault)

			err := WriteAtomic(ffs, filepath.Join(dir, "indexRoot.json"), []byte(`{"idProperty":"id"}`), 0o644)
			require.ErrorIs(t, err, tt.want)
			assert.Empty(t, dirNames(t, dir))
		})
	}
}

func TestFaultyFS_Passthrough(t *testing.T) {
	dir := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("other", Fault{FailAfterBytes: 0})

	name := filepath.Join(dir, "resultsData.csv")
	require.NoError(t, WriteAtomic(ffs, name, []byte("hello"), 0o644))
	assert.Equal(t, int64(5), ffs.Written())

	info, err := os.Stat(name)
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	require.NoError(t, ffs.Remove(name))
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
}
