package editor

// DocSize is the intrinsic size of the underlying document: the true PDF
// page size in points, or the SVG canvas size. It is zero until the
// rendering surface reports it (e.g. before first paint of a PDF page).
type DocSize struct {
	Width, Height float64
}

// Known reports whether the intrinsic dimensions have been supplied.
func (s DocSize) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// Normalize converts a pointer event's client coordinates into
// percentage-of-document coordinates, independent of zoom, pan and display
// scaling. The result is clamped into [padding, 100-padding] on both axes.
//
// When the intrinsic document size is known, the overlay-relative pixel
// offset is first mapped into actual document pixels through the display
// scale (overlay width / actual document width) and then to a percentage of
// the actual document size. When it is not yet known, the offset is divided
// by the overlay size directly; the second return value is false on that
// path so callers can surface the degraded precision to developers. Neither
// path is ever a user-facing failure.
//
// Normalize is pure and stateless.
func Normalize(client Point, overlay Rect, doc DocSize, padding float64) (Point, bool) {
	off := client.Sub(Pt(overlay.X, overlay.Y))

	var pct Point
	precise := doc.Known() && overlay.W > 0 && overlay.H > 0
	if precise {
		scaleX := overlay.W / doc.Width
		scaleY := overlay.H / doc.Height
		docPx := Pt(off.X/scaleX, off.Y/scaleY)
		pct = Pt(docPx.X/doc.Width*100, docPx.Y/doc.Height*100)
	} else if overlay.W > 0 && overlay.H > 0 {
		pct = Pt(off.X/overlay.W*100, off.Y/overlay.H*100)
	}

	return Pt(
		clamp(pct.X, padding, 100-padding),
		clamp(pct.Y, padding, 100-padding),
	), precise
}

// Denormalize is the inverse of Normalize: it maps a document-percentage
// position back to client coordinates. No clamping is applied.
func Denormalize(pct Point, overlay Rect, doc DocSize) Point {
	var off Point
	if doc.Known() && overlay.W > 0 && overlay.H > 0 {
		scaleX := overlay.W / doc.Width
		scaleY := overlay.H / doc.Height
		docPx := Pt(pct.X/100*doc.Width, pct.Y/100*doc.Height)
		off = Pt(docPx.X*scaleX, docPx.Y*scaleY)
	} else {
		off = Pt(pct.X/100*overlay.W, pct.Y/100*overlay.H)
	}
	return off.Add(Pt(overlay.X, overlay.Y))
}
