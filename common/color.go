package common

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidColor is returned when a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is a linear RGB colour with components in [0, 1].
type Color struct {
	R, G, B float32
}

// ColorFromHex builds a Color from a packed 0xRRGGBB value.
//
// Parameters:
//   - hex: the packed colour
//
// Returns:
//   - Color: the unpacked colour
func ColorFromHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
	}
}

// ParseColor parses "#rrggbb", "rrggbb", "0xrrggbb" or the short "#rgb" form.
//
// Parameters:
//   - s: the colour string
//
// Returns:
//   - Color: the parsed colour
//   - error: ErrInvalidColor (wrapped) if s is malformed
func ParseColor(s string) (Color, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimPrefix(raw, "#")
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X")
	if len(raw) == 3 {
		raw = string([]byte{raw[0], raw[0], raw[1], raw[1], raw[2], raw[2]})
	}
	if len(raw) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return ColorFromHex(uint32(v)), nil
}

// Hex packs the colour into 0xRRGGBB, rounding each channel.
func (c Color) Hex() uint32 {
	r := uint32(Clamp(c.R, 0, 1)*255 + 0.5)
	g := uint32(Clamp(c.G, 0, 1)*255 + 0.5)
	b := uint32(Clamp(c.B, 0, 1)*255 + 0.5)
	return r<<16 | g<<8 | b
}

// String formats the colour as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// Vec3 returns the colour as an mgl32.Vec3 for uniform packing.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Vec4 returns the colour with the given alpha.
func (c Color) Vec4(a float32) mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, a}
}
