package tileset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/tilesindex/b3dm"
	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/geom"
	"github.com/hupe1980/tilesindex/gltf"
	"github.com/hupe1980/tilesindex/internal/resource"
	"github.com/hupe1980/tilesindex/model"
	"github.com/hupe1980/tilesindex/position"
)

// Reader loads tileset documents, tile payloads and external glTF buffers by
// slash-separated name.
type Reader interface {
	ReadFile(ctx context.Context, name string) ([]byte, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, name string) ([]byte, error)

// ReadFile implements Reader.
func (f ReaderFunc) ReadFile(ctx context.Context, name string) ([]byte, error) { return f(ctx, name) }

// Observer receives progress events from a walk.
type Observer interface {
	RecordTileset(uri string)
	RecordTile(uri string, features int, duration time.Duration, err error)
	RecordTileSkipped(uri string, reason string)
}

type noopObserver struct{}

func (noopObserver) RecordTileset(string)                         {}
func (noopObserver) RecordTile(string, int, time.Duration, error) {}
func (noopObserver) RecordTileSkipped(string, string)             {}

// Visitor receives every decoded feature in traversal order.
type Visitor func(f model.TileFeature) error

// Walker visits a tileset and every external tileset it references.
//
// Tilesets are processed from a FIFO queue seeded with the root. Inside one
// tileset, content is collected depth-first in document order, decoded
// concurrently and then emitted in collection order. External tilesets found
// along the way join the queue, so they are emitted only after their parent
// has been fully emitted.
type Walker struct {
	reader     Reader
	codec      codec.Codec
	logger     *slog.Logger
	controller *resource.Controller
	observer   Observer
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithCodec sets the codec used for every JSON document. Default: codec.Default.
func WithCodec(c codec.Codec) WalkerOption {
	return func(w *Walker) {
		if c != nil {
			w.codec = c
		}
	}
}

// WithLogger sets the logger for skipped content and progress.
func WithLogger(l *slog.Logger) WalkerOption {
	return func(w *Walker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithController bounds decode concurrency, in-flight bytes and read rate.
func WithController(c *resource.Controller) WalkerOption {
	return func(w *Walker) { w.controller = c }
}

// WithObserver receives per-tile and per-tileset events.
func WithObserver(o Observer) WalkerOption {
	return func(w *Walker) {
		if o != nil {
			w.observer = o
		}
	}
}

// NewWalker creates a Walker reading from r.
func NewWalker(r Reader, opts ...WalkerOption) *Walker {
	w := &Walker{
		reader:   r,
		codec:    codec.Default,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.controller == nil {
		w.controller = resource.NewController(resource.Config{})
	}
	return w
}

// pending is a tileset waiting in the outer queue.
type pending struct {
	name      string
	data      []byte // already fetched, if not nil
	transform geom.Mat4
	root      bool
}

// job is one tile with content inside the current tileset.
type job struct {
	tile      *Tile
	transform geom.Mat4
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeFeatures
	outcomeExternal
)

type jobResult struct {
	kind     outcome
	uri      string
	data     []byte
	features []model.TileFeature
}

// Walk visits the tileset stored under rootName and calls visit for every
// feature. Failing to load the root tileset, a binary decode error and any
// error returned by visit abort the walk.
func (w *Walker) Walk(ctx context.Context, rootName string, visit Visitor) error {
	queue := []pending{{name: path.Clean(rootName), transform: geom.Identity(), root: true}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := queue[0]
		queue = queue[1:]

		ts, err := w.load(ctx, p)
		if err != nil {
			if p.root {
				return err
			}
			w.logger.WarnContext(ctx, "skipping external tileset", "uri", p.name, "error", err)
			w.observer.RecordTileSkipped(p.name, "tileset unreadable")
			continue
		}
		w.observer.RecordTileset(p.name)

		composer := Composer{UpAxis: ts.UpAxis()}
		jobs := collect(ts.Root, p.transform, composer)
		w.logger.DebugContext(ctx, "walking tileset",
			"uri", p.name,
			"contents", len(jobs),
			"workers", w.controller.MaxWorkers(),
			"memory_in_use", w.controller.MemoryUsage(),
			"memory_limit", w.controller.MemoryLimit(),
		)

		results := make([]jobResult, len(jobs))
		g, gctx := errgroup.WithContext(ctx)
		for i, j := range jobs {
			g.Go(func() error {
				if err := w.controller.AcquireWorker(gctx); err != nil {
					return err
				}
				defer w.controller.ReleaseWorker()

				r, err := w.run(gctx, p.name, composer, j)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, r := range results {
			switch r.kind {
			case outcomeExternal:
				queue = append(queue, pending{name: r.uri, data: r.data, transform: jobs[i].transform})
			case outcomeFeatures:
				for _, f := range r.features {
					if err := visit(f); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (w *Walker) load(ctx context.Context, p pending) (*Tileset, error) {
	data := p.data
	if data == nil {
		var err error
		data, err = w.read(ctx, p.name)
		if err != nil {
			return nil, NewTileError(p.name, err)
		}
	}
	ts, err := Parse(data, w.codec)
	if err != nil {
		return nil, NewTileError(p.name, err)
	}
	return ts, nil
}

func (w *Walker) read(ctx context.Context, name string) ([]byte, error) {
	data, err := w.reader.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := w.controller.AcquireIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// collect returns every tile with content in depth-first pre-order together
// with its effective transform.
func collect(root *Tile, base geom.Mat4, composer Composer) []job {
	var jobs []job
	stack := []job{{tile: root, transform: composer.Tile(base, root)}}
	for len(stack) > 0 {
		j := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if j.tile.Content.Ref() != "" {
			jobs = append(jobs, j)
		}
		for i := len(j.tile.Children) - 1; i >= 0; i-- {
			child := j.tile.Children[i]
			stack = append(stack, job{tile: child, transform: composer.Tile(j.transform, child)})
		}
	}
	return jobs
}

func (w *Walker) run(ctx context.Context, tilesetName string, composer Composer, j job) (jobResult, error) {
	if err := ctx.Err(); err != nil {
		return jobResult{}, err
	}

	ref := j.tile.Content.Ref()
	uri, ok := resolve(tilesetName, ref)
	if !ok {
		w.skip(ctx, ref, "absolute or unresolvable content uri")
		return jobResult{}, nil
	}

	if strings.EqualFold(path.Ext(uri), ".json") {
		return jobResult{kind: outcomeExternal, uri: uri}, nil
	}

	data, err := w.read(ctx, uri)
	if err != nil {
		if ctx.Err() != nil {
			return jobResult{}, ctx.Err()
		}
		w.skip(ctx, uri, "unreadable: "+err.Error())
		return jobResult{}, nil
	}
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return jobResult{kind: outcomeExternal, uri: uri, data: data}, nil
	}
	if !b3dm.IsB3DM(data) {
		w.skip(ctx, uri, "unsupported tile format "+formatName(data))
		return jobResult{}, nil
	}

	reserved, err := w.controller.AcquireMemory(ctx, int64(len(data)))
	if err != nil {
		return jobResult{}, err
	}
	defer w.controller.ReleaseMemory(reserved)

	start := time.Now()
	features, err := w.decode(ctx, uri, data, composer, j)
	if errors.Is(err, model.ErrMissingData) {
		w.skip(ctx, uri, err.Error())
		return jobResult{}, nil
	}
	w.observer.RecordTile(uri, len(features), time.Since(start), err)
	if err != nil {
		return jobResult{}, NewTileError(uri, err)
	}
	return jobResult{kind: outcomeFeatures, uri: uri, features: features}, nil
}

func (w *Walker) decode(ctx context.Context, uri string, data []byte, composer Composer, j job) ([]model.TileFeature, error) {
	c, err := b3dm.Decode(data)
	if err != nil {
		return nil, err
	}
	ft, err := c.FeatureTable(w.codec)
	if err != nil {
		return nil, err
	}
	n, err := ft.BatchLength()
	if err != nil {
		return nil, err
	}
	bt, err := c.BatchTable(w.codec)
	if err != nil {
		return nil, err
	}
	cols, err := bt.Columns(n)
	if err != nil {
		return nil, err
	}

	var positions map[int]model.Position
	if payload := c.ModelPayload(); len(payload) > 0 {
		dec := &gltf.Decoder{Codec: w.codec, Loader: w.bufferLoader(ctx, uri)}
		graph, err := dec.Decode(payload)
		if err != nil {
			return nil, err
		}
		rtc, err := RTC(ft, graph)
		if err != nil {
			return nil, err
		}
		positions, err = position.Compute(graph, composer.Model(j.transform, rtc))
		if err != nil {
			return nil, err
		}
	}
	fallback, hasFallback := j.tile.BoundingVolume.Position(j.transform)

	features := make([]model.TileFeature, n)
	for b := range features {
		f := model.TileFeature{URI: uri, BatchID: b, Properties: cols.Feature(b)}
		if p, ok := positions[b]; ok {
			f.Position, f.HasPosition = p, true
		} else if hasFallback {
			f.Position, f.HasPosition = fallback, true
		}
		features[b] = f
	}
	return features, nil
}

func (w *Walker) bufferLoader(ctx context.Context, tileURI string) gltf.BufferLoader {
	return func(ref string) ([]byte, error) {
		uri, ok := resolve(tileURI, ref)
		if !ok {
			return nil, fmt.Errorf("%w: cannot resolve buffer %q", model.ErrMissingData, ref)
		}
		return w.read(ctx, uri)
	}
}

func (w *Walker) skip(ctx context.Context, uri, reason string) {
	w.logger.WarnContext(ctx, "skipping tile content", "uri", uri, "reason", reason)
	w.observer.RecordTileSkipped(uri, reason)
}

// resolve joins a content reference onto the directory of the document that
// references it. Absolute URLs cannot be read from a store and yield false.
func resolve(base, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := u.Path
	if p == "" {
		return "", false
	}
	if strings.HasPrefix(p, "/") {
		return path.Clean(strings.TrimPrefix(p, "/")), true
	}
	return path.Join(path.Dir(base), p), true
}

func formatName(data []byte) string {
	if len(data) < 4 {
		return "(truncated)"
	}
	switch magic := string(data[:4]); magic {
	case "pnts", "i3dm", "cmpt", "glTF", "vctr", "geom":
		return magic
	}
	return "(unknown)"
}
