package gltf

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/hupe1980/tilesindex/codec"
	"github.com/hupe1980/tilesindex/internal/conv"
	"github.com/hupe1980/tilesindex/model"
)

// Magic identifies a binary glTF container.
const Magic = "glTF"

const (
	glbHeaderLength = 12
	chunkHeaderLen  = 8

	// ChunkJSON marks the JSON chunk of a GLB container.
	ChunkJSON uint32 = 0x4E4F534A
	// ChunkBIN marks the binary buffer chunk of a GLB container.
	ChunkBIN uint32 = 0x004E4942
)

// BufferLoader resolves an external buffer URI relative to the model.
type BufferLoader func(uri string) ([]byte, error)

// Decoder decodes binary or plain JSON glTF models.
type Decoder struct {
	Codec  codec.Codec
	Loader BufferLoader
}

// Decode decodes a model with the default codec.
func Decode(data []byte, loader BufferLoader) (*Graph, error) {
	return (&Decoder{Codec: codec.Default, Loader: loader}).Decode(data)
}

// Decode detects the container kind by its magic and decodes it.
func (d *Decoder) Decode(data []byte) (*Graph, error) {
	cd := codec.Or(d.Codec)

	var (
		jsonChunk []byte
		binChunk  []byte
		err       error
	)
	if IsGLB(data) {
		jsonChunk, binChunk, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonChunk = data
	}

	doc := &Document{}
	if err := codec.Decode(cd, jsonChunk, doc); err != nil {
		return nil, fmt.Errorf("%w: glTF JSON: %w", model.ErrBinaryFormat, err)
	}

	buffers := make([][]byte, len(doc.Buffers))
	for i, b := range doc.Buffers {
		switch {
		case b.URI == "":
			if binChunk == nil {
				return nil, fmt.Errorf("%w: buffer %d has no uri and there is no BIN chunk", model.ErrBinaryFormat, i)
			}
			buffers[i] = binChunk
		case strings.HasPrefix(b.URI, "data:"):
			buffers[i], err = decodeDataURI(b.URI)
			if err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
		default:
			if d.Loader == nil {
				return nil, fmt.Errorf("%w: buffer %d references %q but no loader is configured", model.ErrMissingData, i, b.URI)
			}
			buffers[i], err = d.Loader(b.URI)
			if err != nil {
				return nil, fmt.Errorf("buffer %d (%s): %w", i, b.URI, err)
			}
		}
	}

	return newGraph(doc, buffers), nil
}

// IsGLB reports whether data starts with the binary glTF magic.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == Magic
}

func splitGLB(data []byte) (jsonChunk, binChunk []byte, err error) {
	if len(data) < glbHeaderLength {
		return nil, nil, fmt.Errorf("%w: GLB is %d bytes, header needs %d", model.ErrBinaryFormat, len(data), glbHeaderLength)
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 2 {
		return nil, nil, fmt.Errorf("%w: unsupported GLB version %d", model.ErrBinaryFormat, version)
	}
	length := uint64(binary.LittleEndian.Uint32(data[8:12]))
	if length > uint64(len(data)) || length < glbHeaderLength {
		return nil, nil, fmt.Errorf("%w: GLB length %d does not match payload of %d bytes", model.ErrBinaryFormat, length, len(data))
	}

	off := uint64(glbHeaderLength)
	for off+chunkHeaderLen <= length {
		chunkLen := uint64(binary.LittleEndian.Uint32(data[off:]))
		chunkType := binary.LittleEndian.Uint32(data[off+4:])
		start := off + chunkHeaderLen
		end := start + chunkLen
		if end > length {
			return nil, nil, fmt.Errorf("%w: GLB chunk [%d,%d) exceeds length %d", model.ErrBinaryFormat, start, end, length)
		}

		switch chunkType {
		case ChunkJSON:
			if jsonChunk == nil {
				jsonChunk = data[start:end:end]
			}
		case ChunkBIN:
			if binChunk == nil {
				binChunk = data[start:end:end]
			}
		}
		off = end
	}

	if jsonChunk == nil {
		return nil, nil, fmt.Errorf("%w: GLB has no JSON chunk", model.ErrBinaryFormat)
	}
	return jsonChunk, binChunk, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data uri", model.ErrMalformedInput)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data uri: %w", model.ErrMalformedInput, err)
	}
	return b, nil
}

// EncodeGLB writes doc and bin as a version 2 GLB container. The JSON chunk
// is padded with spaces and the binary chunk with zeros to four bytes.
func EncodeGLB(cd codec.Codec, doc *Document, bin []byte) ([]byte, error) {
	js, err := codec.Or(cd).Marshal(doc)
	if err != nil {
		return nil, err
	}
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}
	padded := append([]byte(nil), bin...)
	for len(padded)%4 != 0 {
		padded = append(padded, 0)
	}

	total := glbHeaderLength + chunkHeaderLen + len(js)
	if bin != nil {
		total += chunkHeaderLen + len(padded)
	}

	totalLen, err := conv.IntToUint32(total)
	if err != nil {
		return nil, fmt.Errorf("%w: glb too large: %w", model.ErrBinaryFormat, err)
	}

	out := make([]byte, 0, total)
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, totalLen)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, ChunkJSON)
	out = append(out, js...)
	if bin != nil {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(padded)))
		out = binary.LittleEndian.AppendUint32(out, ChunkBIN)
		out = append(out, padded...)
	}
	return out, nil
}
