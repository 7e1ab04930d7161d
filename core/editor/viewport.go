package editor

// Viewport holds the zoom/pan state of the editing session. It only affects
// on-screen rendering: stored document coordinates and coordinate
// normalization are independent of it, and it is never persisted with the
// document.
type Viewport struct {
	Zoom float64
	Pan  Point
}

const (
	ZoomMin  = 0.25
	ZoomMax  = 5.0
	zoomStep = 1.25

	// minVisiblePx is the base margin of the document that must remain
	// visible inside the container after panning.
	minVisiblePx = 48.0
)

func NewViewport() Viewport {
	return Viewport{Zoom: 1}
}

// ZoomIn multiplies the zoom by the fixed step, clamped to [ZoomMin, ZoomMax].
func (v Viewport) ZoomIn() Viewport {
	v.Zoom = clamp(v.Zoom*zoomStep, ZoomMin, ZoomMax)
	return v
}

// ZoomOut divides the zoom by the fixed step, clamped to [ZoomMin, ZoomMax].
func (v Viewport) ZoomOut() Viewport {
	v.Zoom = clamp(v.Zoom/zoomStep, ZoomMin, ZoomMax)
	return v
}

// Reset restores the identity view.
func (v Viewport) Reset() Viewport {
	return NewViewport()
}

// PanBy shifts the view, bounded so the document (content, at the current
// zoom) always keeps a minimum visible margin inside the container. The
// margin scales with zoom so a deeply zoomed-in document cannot be pushed
// entirely off screen either.
func (v Viewport) PanBy(dx, dy float64, container, content Rect) Viewport {
	margin := minVisiblePx * v.Zoom
	v.Pan.X = clampPan(v.Pan.X+dx, container.W, content.W*v.Zoom, margin)
	v.Pan.Y = clampPan(v.Pan.Y+dy, container.H, content.H*v.Zoom, margin)
	return v
}

// clampPan bounds a pan offset so that at least `margin` pixels of the
// content remain inside the container on that axis.
func clampPan(pan, containerSize, contentSize, margin float64) float64 {
	if margin > contentSize {
		margin = contentSize
	}
	if margin > containerSize {
		margin = containerSize
	}
	lo := margin - contentSize
	hi := containerSize - margin
	return clamp(pan, lo, hi)
}
