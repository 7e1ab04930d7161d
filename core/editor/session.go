package editor

import (
	"sync"
	"time"

	"github.com/chapa-studio/chapa/core"
	"github.com/chapa-studio/chapa/core/template"
)

// Config carries the engine tunables. The literal values are empirically
// chosen UX constants, not load-bearing invariants; zero fields fall back to
// the defaults below.
type Config struct {
	HistoryDepth     int
	SnapshotDebounce time.Duration
	DragPadding      float64 // percent kept from the page edge while dragging
	PlacePadding     float64 // percent kept from the page edge on placement
}

const (
	DefaultSnapshotDebounce = time.Second
	DefaultDragPadding      = 1.0
	DefaultPlacePadding     = 2.0
)

func (c Config) withDefaults() Config {
	if c.HistoryDepth <= 0 {
		c.HistoryDepth = DefaultHistoryDepth
	}
	if c.SnapshotDebounce <= 0 {
		c.SnapshotDebounce = DefaultSnapshotDebounce
	}
	if c.DragPadding <= 0 {
		c.DragPadding = DefaultDragPadding
	}
	if c.PlacePadding <= 0 {
		c.PlacePadding = DefaultPlacePadding
	}
	return c
}

// ConfigFromApp maps the application-level editor tunables onto an engine
// Config. Unset fields keep the engine defaults.
func ConfigFromApp(conf core.EditorConfig) Config {
	return Config{
		HistoryDepth:     conf.HistoryDepth,
		SnapshotDebounce: conf.SnapshotDebounce,
		DragPadding:      conf.DragPadding,
		PlacePadding:     conf.PlacePadding,
	}.withDefaults()
}

// Session is one editing session over a template document. It owns the
// document state, the undo history, the drag state machine and the viewport,
// and serializes all access: mutations arrive on UI event callbacks, and the
// only asynchronous path in the engine is the debounced snapshot timer.
//
// The session holds no ambient configuration or service dependencies; the
// overlay geometry and intrinsic document size are plain data pushed in by
// the rendering surface as they become known.
type Session struct {
	mu   sync.Mutex
	conf Config

	doc     template.Document
	overlay Rect
	docSize DocSize
	view    Viewport

	history *History
	sched   Scheduler

	drag       *dragState
	focusedKey string

	fallbackNorms int64
}

// NewSession starts an editing session on the given document. Passing a nil
// scheduler selects the real timer-backed one; tests pass a manual scheduler.
func NewSession(doc template.Document, conf Config, sched Scheduler) *Session {
	conf = conf.withDefaults()
	if sched == nil {
		sched = NewTimerScheduler()
	}
	return &Session{
		conf:    conf,
		doc:     doc.Clone(),
		view:    NewViewport(),
		history: NewHistory(doc, conf.HistoryDepth),
		sched:   sched,
	}
}

// Document returns a snapshot of the current document.
func (s *Session) Document() template.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// LoadDocument replaces the whole document (e.g. on template switch) and
// drops the undo history, which must not cross unrelated documents.
func (s *Session) LoadDocument(doc template.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Cancel()
	s.doc = doc.Clone()
	s.drag = nil
	s.focusedKey = ""
	s.history.Clear(s.doc)
}

// SetOverlay records the bounding rectangle of the rendering surface.
func (s *Session) SetOverlay(r Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = r
}

// SetDocSize records the intrinsic document dimensions once the underlying
// document has loaded. Until then normalization uses the fallback path.
func (s *Session) SetDocSize(ds DocSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docSize = ds
}

// Focus marks an element as having an open settings panel: while set, only
// that element may be dragged.
func (s *Session) Focus(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusedKey = key
}

// Blur clears the focused element.
func (s *Session) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusedKey = ""
}

// Document mutations. Each applies a copy-on-write operation on the store
// and arms the debounced snapshot: intermediate states inside the settle
// window never produce undo entries, only the settled end state does.

func (s *Session) AddElement(t template.ElementType) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, id := s.doc.AddElement(t)
	s.applyLocked(doc)
	return id
}

func (s *Session) DeleteElement(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.DeleteElement(key))
}

func (s *Session) DuplicateElement(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, id := s.doc.DuplicateElement(key)
	s.applyLocked(doc)
	return id
}

// UpdatePosition moves an element programmatically (not via drag), clamped
// to the placement bounds.
func (s *Session) UpdatePosition(key string, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := s.conf.PlacePadding
	s.applyLocked(s.doc.UpdatePosition(key, clamp(x, pad, 100-pad), clamp(y, pad, 100-pad)))
}

func (s *Session) UpdateStyleField(key, field string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.UpdateStyleField(key, field, value))
}

func (s *Session) UpdateField(key, field string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.UpdateField(key, field, value))
}

func (s *Session) CreateGroup(name, color string, elementIDs []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, id := s.doc.CreateGroup(name, color, elementIDs)
	s.applyLocked(doc)
	return id
}

func (s *Session) DeleteGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.DeleteGroup(groupID))
}

func (s *Session) SetGroupLocked(groupID string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.SetGroupLocked(groupID, locked))
}

func (s *Session) SetGroupVisible(groupID string, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(s.doc.SetGroupVisible(groupID, visible))
}

// Drag state machine: Idle -> (pointer down on an unlocked, draggable
// element) -> Dragging -> (pointer up) -> Idle. There is no cancel gesture;
// releasing anywhere ends the drag at the last clamped position.

// StartDrag attempts the Idle -> Dragging transition. It reports whether the
// drag was accepted; refusal (locked element, fully locked group, another
// element focused) is silent.
func (s *Session) StartDrag(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag != nil {
		return false
	}
	if !canStartDrag(s.doc, key, s.focusedKey) {
		return false
	}
	s.drag = newDragState(s.doc, key)
	return true
}

// DragTo handles one pointer-move event in client coordinates. Moves are
// applied in arrival order: each update is computed against the pre-drag
// member positions plus the current delta, and every member clamps
// independently, so a group translates rigidly until an edge interferes.
func (s *Session) DragTo(client Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return false
	}

	pad := s.conf.DragPadding
	target, precise := Normalize(client, s.overlay, s.docSize, pad)
	if !precise {
		s.fallbackNorms++
	}

	dx := target.X - s.drag.anchor.X
	dy := target.Y - s.drag.anchor.Y

	doc := s.doc
	for id, pre := range s.drag.members {
		doc = doc.UpdatePosition(id,
			clamp(pre.X+dx, pad, 100-pad),
			clamp(pre.Y+dy, pad, 100-pad),
		)
	}
	s.applyLocked(doc)
	return true
}

// EndDrag handles pointer-up: it unconditionally returns to Idle. The
// settled position is picked up by the debounced snapshot.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag = nil
}

// Dragging reports whether a drag is active and, if so, for which element.
func (s *Session) Dragging() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return "", false
	}
	return s.drag.key, true
}

// Undo/redo. Restores are applied synchronously and never recorded as new
// snapshots; any pending debounce is dropped first so an in-flight settle
// from before the restore cannot fire afterwards with a stale document.

func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Cancel()
	doc, ok := s.history.Undo(s.doc)
	if ok {
		s.doc = doc
	}
	return ok
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Cancel()
	doc, ok := s.history.Redo(s.doc)
	if ok {
		s.doc = doc
	}
	return ok
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Flush records any pending change immediately, bypassing the settle
// window. Called before saving so the persisted state is also the undo
// baseline.
func (s *Session) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.Cancel()
	s.history.RecordIfChanged(s.doc)
}

// Viewport access. The view transform is orthogonal to the document and to
// normalization input.

func (s *Session) Viewport() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Session) ZoomIn() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.ZoomIn()
	return s.view
}

func (s *Session) ZoomOut() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.ZoomOut()
	return s.view
}

func (s *Session) ResetView() Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.Reset()
	return s.view
}

// Pan shifts the view inside the given container, bounded so the document
// stays at least partially visible.
func (s *Session) Pan(dx, dy float64, container Rect) Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = s.view.PanBy(dx, dy, container, s.overlay)
	return s.view
}

// FallbackNormalizations counts pointer events normalized through the
// imprecise fallback path (intrinsic document size not yet known). Exposed
// as a developer-visible signal; it is never a user-facing error.
func (s *Session) FallbackNormalizations() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbackNorms
}

// applyLocked installs a new document state and arms the snapshot debounce.
// Callers hold s.mu.
func (s *Session) applyLocked(doc template.Document) {
	s.doc = doc
	s.sched.Arm(s.conf.SnapshotDebounce, s.recordSnapshot)
}

func (s *Session) recordSnapshot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.RecordIfChanged(s.doc)
}
