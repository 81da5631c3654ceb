package codec

import (
	"testing"
)

type benchTile struct {
	BoundingVolume map[string][]float64 `json:"boundingVolume"`
	Transform      []float64            `json:"transform,omitempty"`
	Content        *struct {
		URI string `json:"uri"`
	} `json:"content,omitempty"`
	Children []benchTile `json:"children,omitempty"`
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	_ = v
}

func benchTileset() benchTile {
	root := benchTile{
		BoundingVolume: map[string][]float64{"region": {-1.3197, 0.6988, -1.3196, 0.6989, 0, 20}},
		Transform:      []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1215012, -4736313, 4081605, 1},
	}
	for i := 0; i < 64; i++ {
		root.Children = append(root.Children, benchTile{
			BoundingVolume: map[string][]float64{"box": {0, 0, 10, 100, 0, 0, 0, 100, 0, 0, 0, 10}},
			Content: &struct {
				URI string `json:"uri"`
			}{URI: "tiles/0.b3dm"},
		})
	}
	return root
}

func BenchmarkCodec_Marshal_Tileset(b *testing.B) {
	ts := benchTileset()
	b.Run("stdlib", func(b *testing.B) { benchmarkCodecMarshal(b, JSON{}, ts) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecMarshal(b, GoJSON{}, ts) })
}

func BenchmarkCodec_Unmarshal_BatchTable(b *testing.B) {
	names := make([]any, 1024)
	heights := make([]any, 1024)
	for i := range names {
		names[i] = "building"
		heights[i] = float64(i) * 0.5
	}
	data := MustMarshal(JSON{}, map[string]any{"name": names, "height": heights})

	b.Run("stdlib", func(b *testing.B) { benchmarkCodecUnmarshal[map[string]any](b, JSON{}, data) })
	b.Run("go-json", func(b *testing.B) { benchmarkCodecUnmarshal[map[string]any](b, GoJSON{}, data) })
}
