package canvas

// Transform maps logical design-surface units to viewport pixels:
// pixel = logical*Scale + Offset.
type Transform struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// Identity is used until the viewport has a nonzero size.
var Identity = Transform{Scale: 1}

// Fit computes the uniform scale and centering offset that fit the design
// surface into a w×h viewport.
func Fit(w, h float64) Transform {
	if w <= 0 || h <= 0 {
		return Identity
	}
	scale := min(w/DesignWidth, h/DesignHeight)
	return Transform{
		Scale:   scale,
		OffsetX: (w - DesignWidth*scale) / 2,
		OffsetY: (h - DesignHeight*scale) / 2,
	}
}

// ToLogical converts a pointer position relative to the viewport's top-left
// corner into design-surface units.
func (t Transform) ToLogical(px, py float64) (x, y float64) {
	return (px - t.OffsetX) / t.Scale, (py - t.OffsetY) / t.Scale
}

// ToViewport is the inverse of ToLogical.
func (t Transform) ToViewport(x, y float64) (px, py float64) {
	return x*t.Scale + t.OffsetX, y*t.Scale + t.OffsetY
}

// Viewport tracks the last measured viewport size and its transform.
type Viewport struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Transform Transform `json:"transform"`
}

func NewViewport() Viewport {
	return Viewport{Transform: Identity}
}

// Resize records a new measurement and recomputes the transform.
func (v *Viewport) Resize(w, h float64) Transform {
	v.Width, v.Height = w, h
	v.Transform = Fit(w, h)
	return v.Transform
}
