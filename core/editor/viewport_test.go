package editor

import "testing"

func TestViewportZoomBounds(t *testing.T) {
	v := NewViewport()
	if v.Zoom != 1 {
		t.Fatalf("initial zoom = %v, want 1", v.Zoom)
	}

	for i := 0; i < 50; i++ {
		v = v.ZoomIn()
	}
	if v.Zoom != ZoomMax {
		t.Errorf("zoom after repeated ZoomIn = %v, want clamped at %v", v.Zoom, ZoomMax)
	}

	for i := 0; i < 50; i++ {
		v = v.ZoomOut()
	}
	if v.Zoom != ZoomMin {
		t.Errorf("zoom after repeated ZoomOut = %v, want clamped at %v", v.Zoom, ZoomMin)
	}

	v = v.Reset()
	if v.Zoom != 1 || v.Pan != (Point{}) {
		t.Errorf("Reset() = %+v, want identity view", v)
	}
}

func TestViewportPanKeepsContentVisible(t *testing.T) {
	container := Rect{W: 1200, H: 900}
	content := Rect{W: 500, H: 800}

	v := NewViewport()
	for i := 0; i < 100; i++ {
		v = v.PanBy(10000, 10000, container, content)
	}
	// at least the margin of the content must remain inside the container
	if v.Pan.X > container.W-minVisiblePx || v.Pan.Y > container.H-minVisiblePx {
		t.Errorf("pan = %+v, content pushed off screen", v.Pan)
	}

	for i := 0; i < 100; i++ {
		v = v.PanBy(-10000, -10000, container, content)
	}
	if v.Pan.X < minVisiblePx-content.W || v.Pan.Y < minVisiblePx-content.H {
		t.Errorf("pan = %+v, content pushed off screen", v.Pan)
	}
}

func TestViewportPanMarginScalesWithZoom(t *testing.T) {
	container := Rect{W: 1200, H: 900}
	content := Rect{W: 500, H: 800}

	v := NewViewport()
	for i := 0; i < 8; i++ {
		v = v.ZoomIn()
	}
	v = v.PanBy(1e9, 1e9, container, content)
	margin := minVisiblePx * v.Zoom
	if v.Pan.X > container.W-margin+eps {
		t.Errorf("pan.X = %v exceeds zoom-scaled bound %v", v.Pan.X, container.W-margin)
	}
}
