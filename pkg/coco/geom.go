package coco

import (
	"encoding/json"
	"fmt"
	"math"
)

// BoundingBox is an axis-aligned box in the canonical top-left + extent form.
// It serializes as the 4-element array [x_min, y_min, width, height].
type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BoxFromCorners builds a canonical box from top-left and bottom-right corners.
func BoxFromCorners(x1, y1, x2, y2 float64) BoundingBox {
	return BoundingBox{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// BoxFromCenter builds a canonical box from a center point and an extent.
func BoxFromCenter(xc, yc, w, h float64) BoundingBox {
	return BoundingBox{
		X:      xc - w/2,
		Y:      yc - h/2,
		Width:  w,
		Height: h,
	}
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

func (b BoundingBox) X2() float64 {
	return b.X + b.Width
}

func (b BoundingBox) Y2() float64 {
	return b.Y + b.Height
}

// IsFinite is false if any component is NaN or infinite
func (b BoundingBox) IsFinite() bool {
	for _, v := range [4]float64{b.X, b.Y, b.Width, b.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (b BoundingBox) Intersection(o BoundingBox) BoundingBox {
	x1 := max(b.X, o.X)
	y1 := max(b.Y, o.Y)
	x2 := min(b.X2(), o.X2())
	y2 := min(b.Y2(), o.Y2())
	return BoundingBox{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

// Intersection over Union. Two empty boxes have an IoU of zero.
func (b BoundingBox) IOU(o BoundingBox) float64 {
	inter := b.Intersection(o).Area()
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.Width, b.Height})
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v) != 4 {
		return fmt.Errorf("bbox must have 4 elements, but has %v", len(v))
	}
	b.X, b.Y, b.Width, b.Height = v[0], v[1], v[2], v[3]
	return nil
}
