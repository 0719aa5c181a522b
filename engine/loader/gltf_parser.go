package loader

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported model format: want .gltf or .glb")
	ErrInvalidGLTFVersion  = errors.New("invalid glTF version: must be 2.x")
	ErrInvalidGLBMagic     = errors.New("invalid GLB magic number")
	ErrInvalidGLBVersion   = errors.New("invalid GLB version: must be 2")
	ErrGLBTooSmall         = errors.New("GLB data too small")
	ErrMissingJSONChunk    = errors.New("GLB missing JSON chunk")
	ErrInvalidBufferURI    = errors.New("invalid buffer URI")
	ErrBufferSizeMismatch  = errors.New("buffer size mismatch")
	ErrAccessorOutOfRange  = errors.New("accessor out of range")
	ErrUnsupportedAccessor = errors.New("unsupported accessor")
)

type gltfParserImpl struct {
	ctx      context.Context
	base     string
	fetch    fetchFunc
	document *gltfDocument
	binChunk []byte
}

// gltfParser decodes glTF JSON or GLB data and reads typed accessor data out of its buffers.
type gltfParser interface {
	// Parse decodes data, detecting GLB by its magic number. External buffer URIs are resolved
	// against the parser's base location.
	//
	// Parameters:
	//   - data: the raw file contents
	//
	// Returns:
	//   - error: error if decoding or buffer resolution fails
	Parse(data []byte) error

	// Document returns the parsed document, or nil before a successful Parse.
	Document() *gltfDocument

	// ReadFloats reads an accessor as float32 components, applying normalization for integer
	// component types.
	//
	// Parameters:
	//   - accessorIndex: the accessor to read
	//
	// Returns:
	//   - []float32: count*components values
	//   - int: components per element
	//   - error: error if the accessor is invalid
	ReadFloats(accessorIndex int) ([]float32, int, error)

	// ReadIndices reads a SCALAR accessor of unsigned integers.
	//
	// Parameters:
	//   - accessorIndex: the accessor to read
	//
	// Returns:
	//   - []uint32: the indices
	//   - error: error if the accessor is invalid
	ReadIndices(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a parser that resolves relative buffer URIs against base using fetch.
func newGLTFParser(ctx context.Context, base string, fetch fetchFunc) gltfParser {
	return &gltfParserImpl{ctx: ctx, base: base, fetch: fetch}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(data []byte) error {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		return p.parseGLB(data)
	}
	return p.parseJSON(data)
}

func (p *gltfParserImpl) parseJSON(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return ErrInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}
	p.document = &doc
	return nil
}

// parseGLB splits the container into its JSON and BIN chunks. Unknown chunk types are skipped.
func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < gltfGLBHeaderSize {
		return ErrGLBTooSmall
	}
	if binary.LittleEndian.Uint32(data[0:4]) != gltfGLBMagic {
		return ErrInvalidGLBMagic
	}
	if binary.LittleEndian.Uint32(data[4:8]) != gltfGLBVersion {
		return ErrInvalidGLBVersion
	}
	total := int(binary.LittleEndian.Uint32(data[8:12]))
	if total > len(data) {
		return fmt.Errorf("GLB declares %d bytes, have %d: %w", total, len(data), ErrBufferSizeMismatch)
	}

	var jsonChunk []byte
	off := gltfGLBHeaderSize
	for off+8 <= total {
		length := int(binary.LittleEndian.Uint32(data[off : off+4]))
		kind := binary.LittleEndian.Uint32(data[off+4 : off+8])
		off += 8
		if length < 0 || off+length > total {
			return fmt.Errorf("GLB chunk overruns file: %w", ErrBufferSizeMismatch)
		}
		chunk := data[off : off+length]
		switch kind {
		case gltfGLBChunkJSON:
			jsonChunk = chunk
		case gltfGLBChunkBIN:
			p.binChunk = chunk
		}
		off += length
	}

	if jsonChunk == nil {
		return ErrMissingJSONChunk
	}
	return p.parseJSON(jsonChunk)
}

func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && p.binChunk != nil:
			buf.Data = p.binChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB BIN chunk: %w", i, ErrInvalidBufferURI)
		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		default:
			if p.fetch == nil {
				return fmt.Errorf("buffer %d: external URI %q without a resolver: %w", i, buf.URI, ErrInvalidBufferURI)
			}
			data, err := p.fetch(p.ctx, resolveReference(p.base, buf.URI))
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		}
		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, ErrBufferSizeMismatch)
		}
	}
	return nil
}

// decodeDataURI decodes data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, ErrInvalidBufferURI
	}
	header := uri[len("data:"):comma]
	if !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("data URI is not base64 (%q): %w", header, ErrInvalidBufferURI)
	}
	data, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

// elementLayout validates an accessor and returns its buffer slice start, stride, component
// count and component size.
func (p *gltfParserImpl) elementLayout(accessorIndex int) (*gltfAccessor, []byte, int, int, int, error) {
	if p.document == nil || accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, nil, 0, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, ErrAccessorOutOfRange)
	}
	acc := &p.document.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return nil, nil, 0, 0, 0, fmt.Errorf("accessor %d is sparse: %w", accessorIndex, ErrUnsupportedAccessor)
	}
	comps := gltfAccessorTypeComponentCount(acc.Type)
	size := gltfComponentTypeSize(acc.ComponentType)
	if comps == 0 || size == 0 {
		return nil, nil, 0, 0, 0, fmt.Errorf("accessor %d type %s/%d: %w", accessorIndex, acc.Type, acc.ComponentType, ErrUnsupportedAccessor)
	}
	if acc.BufferView == nil {
		// no buffer view means all zeros
		return acc, nil, 0, comps, size, nil
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, nil, 0, 0, 0, fmt.Errorf("accessor %d buffer view: %w", accessorIndex, ErrAccessorOutOfRange)
	}
	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, nil, 0, 0, 0, fmt.Errorf("buffer view %d buffer: %w", *acc.BufferView, ErrAccessorOutOfRange)
	}
	data := p.document.Buffers[bv.Buffer].Data

	stride := comps * size
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 {
		end := start + (acc.Count-1)*stride + comps*size
		if start < 0 || end > len(data) || end > bv.ByteOffset+bv.ByteLength {
			return nil, nil, 0, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, ErrBufferSizeMismatch)
		}
	}
	return acc, data[start:], stride, comps, size, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex int) ([]float32, int, error) {
	acc, data, stride, comps, size, err := p.elementLayout(accessorIndex)
	if err != nil {
		return nil, 0, err
	}
	out := make([]float32, acc.Count*comps)
	if data == nil {
		return out, comps, nil
	}
	for i := 0; i < acc.Count; i++ {
		for c := 0; c < comps; c++ {
			b := data[i*stride+c*size:]
			out[i*comps+c] = readComponent(b, acc.ComponentType, acc.Normalized)
		}
	}
	return out, comps, nil
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, data, stride, comps, _, err := p.elementLayout(accessorIndex)
	if err != nil {
		return nil, err
	}
	if comps != 1 {
		return nil, fmt.Errorf("index accessor %d is %s: %w", accessorIndex, acc.Type, ErrUnsupportedAccessor)
	}
	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}
	for i := range out {
		b := data[i*stride:]
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(b[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(b))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("index component type %d: %w", acc.ComponentType, ErrUnsupportedAccessor)
		}
	}
	return out, nil
}

// readComponent decodes one component. Normalized integers map to [0, 1] or [-1, 1].
func readComponent(b []byte, componentType int, normalized bool) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeByte:
		v := float32(int8(b[0]))
		if normalized {
			return max(v/127, -1)
		}
		return v
	case gltfComponentTypeUnsignedByte:
		v := float32(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltfComponentTypeShort:
		v := float32(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return max(v/32767, -1)
		}
		return v
	case gltfComponentTypeUnsignedShort:
		v := float32(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
