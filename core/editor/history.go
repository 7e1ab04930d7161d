package editor

import "github.com/chapa-studio/chapa/core/template"

// History is a depth-limited undo/redo stack over full-document snapshots.
// Snapshots are deep clones: mutating the live document never mutates a
// retained snapshot. History itself is not safe for concurrent use; the
// owning Session serializes access.
type History struct {
	depth     int
	undo      []template.Document
	redo      []template.Document
	last      template.Document // last recorded state
	restoring bool
}

// DefaultHistoryDepth bounds the undo stack when no depth is configured.
const DefaultHistoryDepth = 10

// NewHistory creates a history whose baseline is the given document.
// depth <= 0 selects DefaultHistoryDepth.
func NewHistory(initial template.Document, depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{depth: depth, last: initial.Clone()}
}

// RecordIfChanged compares the document to the last recorded snapshot by
// deep structural equality. If unchanged it is a no-op. Otherwise the
// previous snapshot is pushed onto the undo stack (evicting the oldest entry
// past capacity), the baseline moves to the new state, and the redo stack is
// cleared. Returns whether a snapshot was recorded.
func (h *History) RecordIfChanged(doc template.Document) bool {
	if h.restoring {
		return false
	}
	if doc.Equal(h.last) {
		return false
	}
	if len(h.undo) == h.depth {
		h.undo = h.undo[1:] // FIFO drop of the oldest entry
	}
	h.undo = append(h.undo, h.last)
	h.last = doc.Clone()
	h.redo = nil
	return true
}

// Undo pops the most recent undo entry, pushes the current document onto the
// redo stack and returns the restored document. With an empty stack it is a
// no-op and returns ok=false.
func (h *History) Undo(current template.Document) (template.Document, bool) {
	if len(h.undo) == 0 {
		return template.Document{}, false
	}
	h.restoring = true
	defer func() { h.restoring = false }()

	restored := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current.Clone())
	// move the baseline so the restoration itself is never re-recorded
	h.last = restored.Clone()
	return restored, true
}

// Redo is symmetric to Undo.
func (h *History) Redo(current template.Document) (template.Document, bool) {
	if len(h.redo) == 0 {
		return template.Document{}, false
	}
	h.restoring = true
	defer func() { h.restoring = false }()

	restored := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current.Clone())
	h.last = restored.Clone()
	return restored, true
}

// Clear empties both stacks and resets the baseline. Invoked when a wholly
// new document is loaded, since undo history must not cross unrelated
// documents.
func (h *History) Clear(initial template.Document) {
	h.undo = nil
	h.redo = nil
	h.last = initial.Clone()
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
