package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-playground/common"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrCubeFaceCount is returned when a cube texture is not given exactly six faces.
var ErrCubeFaceCount = errors.New("cube texture needs exactly 6 faces")

// maxCubeFaceSize caps face resolution before upload.
const maxCubeFaceSize = 2048

// cubeTextureLoader is the implementation of the CubeTextureLoader interface.
type cubeTextureLoader struct {
	fetch fetchFunc
	base  string
}

// CubeTextureLoader decodes six images into cubemap staging data. Faces are given in
// +X, -X, +Y, -Y, +Z, -Z order and resized to a common square size, the smallest face edge
// clamped to 2048.
type CubeTextureLoader interface {
	// Load decodes the six faces. Relative locations are resolved against the loader's base
	// path. PNG, JPEG, BMP and WebP are supported.
	//
	// Parameters:
	//   - ctx: context for remote fetches
	//   - faces: six file paths or http(s) URLs
	//
	// Returns:
	//   - *common.CubeTextureStagingData: RGBA pixels for each face
	//   - error: error if any face fails to load
	Load(ctx context.Context, faces []string) (*common.CubeTextureStagingData, error)
}

var _ CubeTextureLoader = &cubeTextureLoader{}

// NewCubeTextureLoader creates a CubeTextureLoader resolving relative face paths against base.
//
// Parameters:
//   - base: a directory, a file inside it, or an http(s) URL; empty for the working directory
//   - options: LoaderBuilderOption values; only WithFetcher and WithHTTPClient apply
//
// Returns:
//   - CubeTextureLoader: the loader
func NewCubeTextureLoader(base string, options ...LoaderBuilderOption) CubeTextureLoader {
	cfg := &loader{}
	for _, option := range options {
		option(cfg)
	}
	fetch := cfg.fetch
	if fetch == nil {
		fetch = newFetcher(cfg.client)
	}
	if base != "" && !isRemote(base) && base[len(base)-1] != '/' {
		base += "/"
	}
	return &cubeTextureLoader{fetch: fetch, base: base}
}

func (c *cubeTextureLoader) Load(ctx context.Context, faces []string) (*common.CubeTextureStagingData, error) {
	if len(faces) != 6 {
		return nil, fmt.Errorf("got %d: %w", len(faces), ErrCubeFaceCount)
	}

	images := make([]image.Image, 6)
	size := maxCubeFaceSize
	for i, face := range faces {
		img, err := c.decode(ctx, resolveReference(c.base, face))
		if err != nil {
			return nil, fmt.Errorf("cube face %d: %w", i, err)
		}
		b := img.Bounds()
		size = min(size, b.Dx(), b.Dy())
		images[i] = img
	}
	if size <= 0 {
		return nil, fmt.Errorf("cube texture has an empty face")
	}

	out := &common.CubeTextureStagingData{Size: uint32(size)}
	for i, img := range images {
		out.Faces[i] = toStaging(squareFace(img, size))
	}
	return out, nil
}

func (c *cubeTextureLoader) decode(ctx context.Context, location string) (image.Image, error) {
	if !isRemote(location) {
		img, err := imgio.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", location, err)
		}
		return img, nil
	}
	data, err := c.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", location, err)
	}
	return img, nil
}

// squareFace resizes img to size x size unless it already is.
func squareFace(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() != size || b.Dy() != size {
		return transform.Resize(img, size, size, transform.Linear)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func toStaging(rgba *image.RGBA) common.TextureStagingData {
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := rgba.Pix
	if rgba.Stride != w*4 {
		pix = make([]byte, 0, w*h*4)
		for y := 0; y < h; y++ {
			row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
			pix = append(pix, row...)
		}
	}
	return common.TextureStagingData{Pixels: pix, Width: uint32(w), Height: uint32(h)}
}
