// Package codec converts between scene entries and the persisted JSON
// drawing format.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"vecdraw/internal/shape"
	"vecdraw/pkg/colorutil"
)

// Record is one persisted shape. x and y are always the base geometry;
// the placement translation is pos_x and pos_y.
type Record struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`

	// Rectangle, Ellipse
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`

	// Square
	Size *float64 `json:"size,omitempty"`

	// Line
	X2 *float64 `json:"x2,omitempty"`
	Y2 *float64 `json:"y2,omitempty"`

	// Polygon
	Vertices [][2]float64    `json:"vertices,omitempty"`
	Lines    [][2][2]float64 `json:"lines,omitempty"`

	PosX     *float64 `json:"pos_x,omitempty"`
	PosY     *float64 `json:"pos_y,omitempty"`
	Rotation float64  `json:"rotation"`
	Scale    *float64 `json:"scale,omitempty"`
	ScaleX   *float64 `json:"scale_x,omitempty"`

	FillColor   *colorutil.RGB `json:"fill_color,omitempty"`
	BorderColor *colorutil.RGB `json:"border_color,omitempty"`
	StrokeWidth *float64       `json:"stroke_width,omitempty"`
	Alpha       *uint8         `json:"alpha,omitempty"`

	GroupID GroupRef `json:"group_id"`
}

// legacy reports whether the record was written by the older format, in
// which x and y were both the geometry origin and the item position.
func (r *Record) legacy() bool {
	return r.PosX == nil && r.PosY == nil && r.Scale == nil && r.ScaleX != nil
}

// GroupRef is a group id as found in a file: a string, a number or null.
// It always encodes as a string or null.
type GroupRef shape.GroupID

func (g GroupRef) MarshalJSON() ([]byte, error) {
	if g == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(g))
}

func (g *GroupRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = GroupRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("group_id must be a string, number or null: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*g = GroupRef(strconv.FormatInt(i, 10))
		return nil
	}
	*g = GroupRef(n.String())
	return nil
}

func ptr[T any](v T) *T { return &v }
