// Package colorutil provides shared color utilities for the drawing editor.
package colorutil

import (
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// RGB is an opaque 8-bit color triple. It is persisted as [r, g, b].
type RGB struct {
	R, G, B uint8
}

// Common colors used throughout the application.
var (
	Black     = FromColor(colornames.Black)
	White     = FromColor(colornames.White)
	Blue      = FromColor(colornames.Blue)
	LightBlue = FromColor(colornames.Lightblue)
	Gold      = FromColor(colornames.Gold)
)

// FromColor converts any color to an RGB triple, dropping alpha.
func FromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// Named looks up an SVG 1.1 color name such as "tomato" or "lightblue".
func Named(name string) (RGB, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return RGB{}, false
	}
	return FromColor(c), true
}

// NRGBA returns the color with the given alpha.
func (c RGB) NRGBA(alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// MarshalJSON encodes the color as a three element array.
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(c.R), int(c.G), int(c.B)})
}

// UnmarshalJSON decodes a three element array with components in 0..255.
func (c *RGB) UnmarshalJSON(data []byte) error {
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("color: want 3 components, got %d", len(parts))
	}
	var out [3]uint8
	for i, v := range parts {
		if v < 0 || v > 255 || v != float64(int(v)) {
			return fmt.Errorf("color: component %v out of range 0-255", v)
		}
		out[i] = uint8(v)
	}
	*c = RGB{R: out[0], G: out[1], B: out[2]}
	return nil
}

// MarshalText encodes the color as #rrggbb. TOML files use this form.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalTOML accepts either a color name, a #rrggbb string or an [r, g, b] array.
func (c *RGB) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case string:
		if named, ok := Named(val); ok {
			*c = named
			return nil
		}
		var r, g, b uint8
		if _, err := fmt.Sscanf(val, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return fmt.Errorf("color %q: not a name or #rrggbb", val)
		}
		*c = RGB{R: r, G: g, B: b}
		return nil
	case []any:
		if len(val) != 3 {
			return fmt.Errorf("color: want 3 components, got %d", len(val))
		}
		var out [3]uint8
		for i, item := range val {
			n, ok := item.(int64)
			if !ok || n < 0 || n > 255 {
				return fmt.Errorf("color: component %v out of range 0-255", item)
			}
			out[i] = uint8(n)
		}
		*c = RGB{R: out[0], G: out[1], B: out[2]}
		return nil
	default:
		return fmt.Errorf("color: unsupported value %T", v)
	}
}
