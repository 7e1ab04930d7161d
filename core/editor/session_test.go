package editor

import (
	"testing"
	"time"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/template"
)

// manualScheduler drives the snapshot debounce by hand so tests are free of
// real timers.
type manualScheduler struct {
	pending func()
	arms    int
}

func (s *manualScheduler) Arm(_ time.Duration, fn func()) {
	s.pending = fn
	s.arms++
}

func (s *manualScheduler) Cancel() { s.pending = nil }

// Fire runs the pending callback, as the timer expiring would.
func (s *manualScheduler) Fire() {
	if s.pending != nil {
		fn := s.pending
		s.pending = nil
		fn()
	}
}

func sessionDoc() template.Document {
	doc := template.NewDocument()
	add := func(id string, t template.ElementType, x, y float64) {
		doc.Elements[t] = append(doc.Elements[t], template.Element{
			ID:        id,
			Type:      t,
			Position:  template.Position{X: x, Y: y},
			Style:     template.DefaultStyle(t),
			Visible:   true,
			Deletable: true,
		})
	}
	add("logo-1", template.ElementLogo, 10, 10)
	add("box-1", template.ElementBox, 40, 40)
	add("box-2", template.ElementBox, 60, 40)
	add("circle-1", template.ElementCircle, 50, 70)
	return doc
}

func newTestSession(doc template.Document) (*Session, *manualScheduler) {
	sched := &manualScheduler{}
	s := NewSession(doc, Config{}, sched)
	s.SetOverlay(Rect{W: 500, H: 800})
	s.SetDocSize(DocSize{Width: 1000, Height: 1600})
	return s, sched
}

// clientFor maps a document-percentage target to the client coordinates a
// pointer event would carry for the test session geometry.
func clientFor(s *Session, pct Point) Point {
	return Denormalize(pct, Rect{W: 500, H: 800}, DocSize{Width: 1000, Height: 1600})
}

func TestSessionDragMovesElement(t *testing.T) {
	s, _ := newTestSession(sessionDoc())

	if !s.StartDrag("box-1") {
		t.Fatal("StartDrag() refused an unlocked element")
	}
	if key, ok := s.Dragging(); !ok || key != "box-1" {
		t.Fatalf("Dragging() = %q, %t", key, ok)
	}

	s.DragTo(clientFor(s, Pt(55, 25)))
	s.EndDrag()

	el, _ := s.Document().Get("box-1")
	if !almostEqual(Pt(el.Position.X, el.Position.Y), Pt(55, 25)) {
		t.Errorf("position after drag = %+v, want (55, 25)", el.Position)
	}
	if _, ok := s.Dragging(); ok {
		t.Error("Dragging() = true after EndDrag()")
	}
}

func TestSessionDragClampsAtEdge(t *testing.T) {
	s, _ := newTestSession(sessionDoc())

	s.StartDrag("box-1")
	s.DragTo(Pt(-5000, 5000)) // way off the page
	s.EndDrag()

	el, _ := s.Document().Get("box-1")
	if el.Position.X != DefaultDragPadding || el.Position.Y != 100-DefaultDragPadding {
		t.Errorf("position = %+v, want clamped to the drag padding", el.Position)
	}
}

func TestSessionDragRefusals(t *testing.T) {
	base := sessionDoc()

	t.Run("locked element", func(t *testing.T) {
		s, _ := newTestSession(base.UpdateField("box-1", "locked", true))
		if s.StartDrag("box-1") {
			t.Error("StartDrag() accepted a locked element")
		}
	})

	t.Run("fully locked group", func(t *testing.T) {
		doc, gid := base.CreateGroup("g", "", []string{"box-1", "box-2"})
		doc = doc.SetGroupLocked(gid, true)
		s, _ := newTestSession(doc)
		if s.StartDrag("box-1") {
			t.Error("StartDrag() accepted a member of a fully locked group")
		}
	})

	t.Run("partially locked group member", func(t *testing.T) {
		doc, _ := base.CreateGroup("g", "", []string{"box-1", "box-2"})
		doc = doc.UpdateField("box-2", "locked", true)
		s, _ := newTestSession(doc)
		if !s.StartDrag("box-1") {
			t.Error("StartDrag() refused an unlocked member of a partially locked group")
		}
	})

	t.Run("another element focused", func(t *testing.T) {
		s, _ := newTestSession(base)
		s.Focus("circle-1")
		if s.StartDrag("box-1") {
			t.Error("StartDrag() accepted a non-focused element while a panel is open")
		}
		if !s.StartDrag("circle-1") {
			t.Error("StartDrag() refused the focused element itself")
		}
		s.EndDrag()
		s.Blur()
		if !s.StartDrag("box-1") {
			t.Error("StartDrag() refused after Blur()")
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		s, _ := newTestSession(base)
		if s.StartDrag("ghost") {
			t.Error("StartDrag() accepted an unknown key")
		}
	})

	t.Run("drag already active", func(t *testing.T) {
		s, _ := newTestSession(base)
		s.StartDrag("box-1")
		if s.StartDrag("box-2") {
			t.Error("StartDrag() accepted a second concurrent drag")
		}
	})
}

func TestSessionGroupDragIsRigid(t *testing.T) {
	doc, _ := sessionDoc().CreateGroup("g", "", []string{"box-1", "box-2", "circle-1"})
	s, _ := newTestSession(doc)

	dist := func(doc template.Document, a, b string) float64 {
		ea, _ := doc.Get(a)
		eb, _ := doc.Get(b)
		return Pt(ea.Position.X, ea.Position.Y).Distance(Pt(eb.Position.X, eb.Position.Y))
	}
	before := s.Document()
	d12, d13, d23 := dist(before, "box-1", "box-2"), dist(before, "box-1", "circle-1"), dist(before, "box-2", "circle-1")

	s.StartDrag("box-1")
	// several interior moves; every member must translate by the same delta
	for _, target := range []Point{Pt(42, 45), Pt(45, 50), Pt(50, 48)} {
		s.DragTo(clientFor(s, target))
		after := s.Document()
		if got := dist(after, "box-1", "box-2"); !floatNear(got, d12) {
			t.Errorf("dist(box-1, box-2) = %v, want %v", got, d12)
		}
		if got := dist(after, "box-1", "circle-1"); !floatNear(got, d13) {
			t.Errorf("dist(box-1, circle-1) = %v, want %v", got, d13)
		}
		if got := dist(after, "box-2", "circle-1"); !floatNear(got, d23) {
			t.Errorf("dist(box-2, circle-1) = %v, want %v", got, d23)
		}
	}
	s.EndDrag()

	// the ungrouped element never moves
	logo, _ := s.Document().Get("logo-1")
	if logo.Position != (template.Position{X: 10, Y: 10}) {
		t.Errorf("ungrouped element moved: %+v", logo.Position)
	}
}

func floatNear(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestSessionDebounceCoalescesSnapshots(t *testing.T) {
	s, sched := newTestSession(sessionDoc())

	// a burst of moves inside the settle window records exactly one snapshot
	s.StartDrag("box-1")
	for i := 0; i < 20; i++ {
		s.DragTo(clientFor(s, Pt(float64(41+i), 40)))
	}
	s.EndDrag()
	if s.CanUndo() {
		t.Fatal("CanUndo() = true before the settle window elapsed")
	}
	if sched.arms == 0 {
		t.Fatal("the burst never armed the settle timer")
	}

	sched.Fire()
	if !s.CanUndo() {
		t.Fatal("CanUndo() = false after the settle window elapsed")
	}
	if !s.Undo() {
		t.Fatal("Undo() refused")
	}
	el, _ := s.Document().Get("box-1")
	if el.Position != (template.Position{X: 40, Y: 40}) {
		t.Errorf("undo restored %+v, want the pre-burst position (40, 40)", el.Position)
	}
	if s.CanUndo() {
		t.Error("more than one snapshot recorded for the burst")
	}
}

func TestSessionUndoRedo(t *testing.T) {
	s, sched := newTestSession(sessionDoc())

	s.UpdatePosition("box-1", 80, 20)
	sched.Fire()
	s.UpdateStyleField("box-1", "color", "#112233")
	sched.Fire()

	if !s.Undo() {
		t.Fatal("first Undo() refused")
	}
	el, _ := s.Document().Get("box-1")
	if el.Style.Color == "#112233" {
		t.Error("style change survived undo")
	}
	if el.Position != (template.Position{X: 80, Y: 20}) {
		t.Error("undo went back more than one step")
	}

	if !s.Redo() {
		t.Fatal("Redo() refused")
	}
	el, _ = s.Document().Get("box-1")
	if el.Style.Color != "#112233" {
		t.Error("redo did not restore the style change")
	}

	// a fresh edit discards the redo future
	s.Undo()
	s.UpdateField("box-1", "visible", false)
	sched.Fire()
	if s.CanRedo() {
		t.Error("CanRedo() = true after editing past an undo")
	}
}

func TestSessionUndoDropsPendingSnapshot(t *testing.T) {
	s, sched := newTestSession(sessionDoc())

	s.UpdatePosition("box-1", 80, 20)
	sched.Fire()
	// a second change is still inside the settle window when undo arrives
	s.UpdatePosition("box-1", 90, 30)
	if !s.Undo() {
		t.Fatal("Undo() refused")
	}
	sched.Fire() // a stale timer firing now must not record anything

	// the unsettled edit never made it into history; undo steps over it
	el, _ := s.Document().Get("box-1")
	if el.Position != (template.Position{X: 40, Y: 40}) {
		t.Errorf("position = %+v, want the state before the settled change", el.Position)
	}
	if s.CanUndo() {
		t.Error("stale snapshot recorded after undo")
	}
}

func TestSessionFlush(t *testing.T) {
	s, sched := newTestSession(sessionDoc())

	s.UpdatePosition("box-1", 70, 70)
	if s.CanUndo() {
		t.Fatal("snapshot recorded before Flush()")
	}
	s.Flush()
	if !s.CanUndo() {
		t.Error("Flush() did not record the pending change")
	}
	sched.Fire() // the debounce was cancelled; firing is inert
	s.Undo()
	if s.CanUndo() {
		t.Error("Flush() recorded more than one snapshot")
	}
}

func TestSessionLoadDocumentResetsHistory(t *testing.T) {
	s, sched := newTestSession(sessionDoc())
	s.UpdatePosition("box-1", 70, 70)
	sched.Fire()
	if !s.CanUndo() {
		t.Fatal("setup: no snapshot recorded")
	}

	s.LoadDocument(template.Document{}.Clone())
	if s.CanUndo() || s.CanRedo() {
		t.Error("history crossed a document switch")
	}
}

func TestSessionDuplicateElement(t *testing.T) {
	s, sched := newTestSession(sessionDoc())

	id := s.DuplicateElement("box-1")
	if id == "" {
		t.Fatal("DuplicateElement() returned empty ID")
	}
	dup, ok := s.Document().Get(id)
	if !ok {
		t.Fatal("duplicate not found")
	}
	if !almostEqual(Pt(dup.Position.X, dup.Position.Y), Pt(45, 45)) {
		t.Errorf("duplicate position = %+v, want source offset by 5%%", dup.Position)
	}
	if !dup.Deletable {
		t.Error("duplicate not deletable")
	}

	sched.Fire()
	s.Undo()
	if _, ok := s.Document().Get(id); ok {
		t.Error("duplicate survived undo")
	}
}

func TestSessionFallbackNormalizationCounter(t *testing.T) {
	s, sched := newTestSession(sessionDoc())
	s.SetDocSize(DocSize{}) // intrinsic size not reported yet
	_ = sched

	s.StartDrag("box-1")
	s.DragTo(Pt(250, 400))
	s.DragTo(Pt(260, 400))
	s.EndDrag()

	if got := s.FallbackNormalizations(); got != 2 {
		t.Errorf("FallbackNormalizations() = %d, want 2", got)
	}

	// the drag itself still works off the overlay ratio
	el, _ := s.Document().Get("box-1")
	if el.Position.X <= 40 {
		t.Errorf("position = %+v, fallback path did not move the element", el.Position)
	}
}

func TestSessionUpdatePositionClampsToPlacementBounds(t *testing.T) {
	s, _ := newTestSession(sessionDoc())
	s.UpdatePosition("box-1", -50, 400)
	el, _ := s.Document().Get("box-1")
	want := template.Position{X: DefaultPlacePadding, Y: 100 - DefaultPlacePadding}
	if el.Position != want {
		t.Errorf("position = %+v, want %+v", el.Position, want)
	}
}

func TestConfigFromApp(t *testing.T) {
	got := ConfigFromApp(core.EditorConfig{
		HistoryDepth:     25,
		SnapshotDebounce: 250 * time.Millisecond,
		DragPadding:      0.5,
		PlacePadding:     3,
	})
	want := Config{HistoryDepth: 25, SnapshotDebounce: 250 * time.Millisecond, DragPadding: 0.5, PlacePadding: 3}
	if got != want {
		t.Errorf("ConfigFromApp() = %+v, want %+v", got, want)
	}

	// unset fields keep the engine defaults
	got = ConfigFromApp(core.EditorConfig{})
	want = Config{
		HistoryDepth:     DefaultHistoryDepth,
		SnapshotDebounce: DefaultSnapshotDebounce,
		DragPadding:      DefaultDragPadding,
		PlacePadding:     DefaultPlacePadding,
	}
	if got != want {
		t.Errorf("ConfigFromApp() = %+v, want %+v", got, want)
	}
}
