package editor

import "github.com/chapa-studio/chapa/core/template"

// dragState tracks one press-move-release interaction. members holds the
// pre-drag position of every element the drag moves — the dragged element
// alone, or its whole group — keyed by element ID. Each pointer move
// recomputes member targets from these pre-drag positions plus the current
// delta, which keeps group translation rigid even while individual members
// clamp at the page edge.
type dragState struct {
	key     string
	anchor  template.Position
	members map[string]template.Position
}

// canStartDrag applies the refusal rules for entering the Dragging state:
// locked elements, members of fully locked groups, and any element other
// than the focused one while a settings panel is open. Refusal is silent.
func canStartDrag(doc template.Document, key, focusedKey string) bool {
	el, ok := doc.Get(key)
	if !ok {
		return false
	}
	if el.Locked {
		return false
	}
	if el.GroupID != "" && doc.GroupFullyLocked(el.GroupID) {
		return false
	}
	if focusedKey != "" && focusedKey != key {
		return false
	}
	return true
}

// newDragState snapshots the pre-drag positions of everything the drag will
// move.
func newDragState(doc template.Document, key string) *dragState {
	el, _ := doc.Get(key)
	ds := &dragState{
		key:     key,
		anchor:  el.Position,
		members: map[string]template.Position{key: el.Position},
	}
	if el.GroupID != "" {
		if g, ok := doc.GroupByID(el.GroupID); ok {
			for _, id := range g.ElementIDs {
				if member, ok := doc.Get(id); ok {
					ds.members[id] = member.Position
				}
			}
		}
	}
	return ds
}
