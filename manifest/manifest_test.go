package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tilesindex/blobstore"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/index"
	"github.com/hupe1980/tilesindex/model"
)

func sampleRoot() *IndexRoot {
	return &IndexRoot{
		ResultsDataURL: "resultsData.csv",
		IDProperty:     "id",
		Indexes: []Entry{
			{Property: "height", Definition: &index.NumericDefinition{Type: index.TypeNumeric, URL: "0.csv", Range: index.Range{Min: 10, Max: 20}}},
			{Property: "use", Definition: &index.EnumDefinition{
				Type:   index.TypeEnum,
				Keys:   []string{"office"},
				Values: map[string]index.EnumValue{"office": {Count: 2, URL: "1-0.csv"}},
			}},
			{Property: "name", Definition: &index.TextDefinition{Type: index.TypeText, URL: "2.json"}},
		},
	}
}

func TestIndexRoot_MarshalJSON(t *testing.T) {
	data, err := sampleRoot().MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"resultsDataUrl":"resultsData.csv","idProperty":"id","indexes":{`+
			`"height":{"type":"numeric","url":"0.csv","range":{"min":10,"max":20}},`+
			`"use":{"type":"enum","values":{"office":{"count":2,"url":"1-0.csv"}}},`+
			`"name":{"type":"text","url":"2.json"}}}`,
		string(data))
}

func TestStore_SaveLoad(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx := context.Background()
			blobs := blobstore.NewMemoryStore()
			store := NewStore(blobs, WithCodec(c), WithPrefix("out"))

			require.NoError(t, store.Save(ctx, sampleRoot()))
			assert.NotNil(t, blobs.Get("out/indexRoot.json"))

			loaded, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRoot(), loaded)

			def, ok := loaded.Index("use")
			require.True(t, ok)
			assert.Equal(t, index.TypeEnum, def.IndexType())
			_, ok = loaded.Index("missing")
			assert.False(t, ok)
		})
	}
}

func TestIndexRoot_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *IndexRoot)
	}{
		{"no results data", func(r *IndexRoot) { r.ResultsDataURL = "" }},
		{"no id property", func(r *IndexRoot) { r.IDProperty = "" }},
		{"nil definition", func(r *IndexRoot) { r.Indexes[0].Definition = nil }},
		{"duplicate", func(r *IndexRoot) { r.Indexes[1].Property = "height" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRoot()
			tt.mutate(r)
			assert.ErrorIs(t, r.Validate(), model.ErrMalformedInput)

			err := NewStore(blobstore.NewMemoryStore()).Save(context.Background(), r)
			assert.ErrorIs(t, err, model.ErrMalformedInput)
		})
	}

	r := &IndexRoot{ResultsDataURL: "resultsData.csv", IDProperty: "id"}
	assert.NoError(t, r.Validate())
}

func TestStore_LoadErrors(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	store := NewStore(blobs)

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, blobs.Put(ctx, FileName, []byte(`{"resultsDataUrl":"r.csv","idProperty":"id","indexes":{"x":{"type":"geo"}}}`)))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, model.ErrMalformedInput)

	require.NoError(t, blobs.Put(ctx, FileName, []byte(`{"resultsDataUrl":"","idProperty":"id","indexes":{}}`)))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}
