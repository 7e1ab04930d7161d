package template

import (
	"reflect"

	"github.com/google/uuid"
)

// Document is the in-memory model of a designed template: all positioned
// elements keyed by type, plus their groups. It is the single source of
// truth for the editor; every mutating operation returns a fresh Document
// and never writes through the receiver, so a retained Document (an undo
// snapshot) can never change underneath its holder.
//
// Operations referencing an unknown element/group key are silent no-ops:
// the calling UI may legitimately race ahead of the store during rapid
// interaction (e.g. duplicate-then-immediately-delete).
type Document struct {
	Elements map[ElementType][]Element `json:"elements"`
	Groups   []Group                   `json:"groups,omitempty"`
}

// ElementRef locates an element inside a Document.
type ElementRef struct {
	Type  ElementType
	Index int
}

const (
	// duplicateOffset is the position shift (percent, both axes) applied to
	// duplicated elements so the copy is visibly distinct from its source.
	duplicateOffset = 5.0

	// placementBound keeps programmatic placement away from the page edge.
	placementBound = 2.0
)

func NewDocument() Document {
	return Document{Elements: make(map[ElementType][]Element)}
}

// Clone returns a deep copy. Element and Style are plain value types, so
// copying the slices copies everything reachable from them; Group member
// lists are copied explicitly.
func (d Document) Clone() Document {
	out := Document{Elements: make(map[ElementType][]Element, len(d.Elements))}
	for t, elems := range d.Elements {
		if len(elems) == 0 {
			continue
		}
		cp := make([]Element, len(elems))
		copy(cp, elems)
		out.Elements[t] = cp
	}
	if len(d.Groups) > 0 {
		out.Groups = make([]Group, len(d.Groups))
		for i, g := range d.Groups {
			ids := make([]string, len(g.ElementIDs))
			copy(ids, g.ElementIDs)
			g.ElementIDs = ids
			out.Groups[i] = g
		}
	}
	return out
}

// Equal reports deep structural equality. Documents maintain the invariant
// that no type key maps to an empty slice and Groups is nil when empty, so
// a plain deep comparison is sound.
func (d Document) Equal(other Document) bool {
	return reflect.DeepEqual(d.normalize(), other.normalize())
}

func (d Document) normalize() Document {
	var out Document
	for t, elems := range d.Elements {
		if len(elems) == 0 {
			continue
		}
		if out.Elements == nil {
			out.Elements = make(map[ElementType][]Element, len(d.Elements))
		}
		out.Elements[t] = elems
	}
	if len(d.Groups) > 0 {
		out.Groups = d.Groups
	}
	return out
}

// FindByKey locates an element by its stable ID.
func (d Document) FindByKey(key string) (ElementRef, bool) {
	for _, t := range AllElementTypes {
		for i, el := range d.Elements[t] {
			if el.ID == key {
				return ElementRef{Type: t, Index: i}, true
			}
		}
	}
	return ElementRef{}, false
}

// Get returns the element with the given ID.
func (d Document) Get(key string) (Element, bool) {
	ref, ok := d.FindByKey(key)
	if !ok {
		return Element{}, false
	}
	return d.Elements[ref.Type][ref.Index], true
}

// AllElements returns every element in canonical type order.
func (d Document) AllElements() []Element {
	var all []Element
	for _, t := range AllElementTypes {
		all = append(all, d.Elements[t]...)
	}
	return all
}

func (d Document) CountElements() int {
	n := 0
	for _, elems := range d.Elements {
		n += len(elems)
	}
	return n
}

// UpdatePosition returns a new Document with only that element's position
// changed. Unknown keys are a no-op.
func (d Document) UpdatePosition(key string, x, y float64) Document {
	ref, ok := d.FindByKey(key)
	if !ok {
		return d
	}
	out := d.Clone()
	el := &out.Elements[ref.Type][ref.Index]
	el.Position = Position{X: x, Y: y}
	return out
}

// UpdateStyleField sets a single style attribute by its wire field name.
// Out-of-range opacity/rotation values are clamped rather than rejected.
func (d Document) UpdateStyleField(key, field string, value interface{}) Document {
	ref, ok := d.FindByKey(key)
	if !ok {
		return d
	}
	out := d.Clone()
	s := &out.Elements[ref.Type][ref.Index].Style
	switch field {
	case "text":
		s.Text = toString(value)
	case "image_url":
		s.ImageURL = toString(value)
	case "font_size":
		s.FontSize = toFloat(value)
	case "font_family":
		s.FontFamily = toString(value)
	case "color":
		s.Color = toString(value)
	case "opacity":
		s.Opacity = clampF(toFloat(value), 0, 100)
	case "rotation":
		s.Rotation = clampF(toFloat(value), -180, 180)
	case "width":
		s.Width = toFloat(value)
	case "height":
		s.Height = toFloat(value)
	case "border":
		s.Border = toFloat(value)
	case "border_color":
		s.BorderCol = toString(value)
	case "background":
		s.Background = toString(value)
	case "shadow_enabled":
		s.Shadow.Enabled = toBool(value)
	case "shadow_offset_x":
		s.Shadow.OffsetX = toFloat(value)
	case "shadow_offset_y":
		s.Shadow.OffsetY = toFloat(value)
	case "shadow_blur":
		s.Shadow.Blur = toFloat(value)
	case "shadow_color":
		s.Shadow.Color = toString(value)
	default:
		return d
	}
	return out
}

// UpdateField sets a single element-level flag by its wire field name.
func (d Document) UpdateField(key, field string, value interface{}) Document {
	ref, ok := d.FindByKey(key)
	if !ok {
		return d
	}
	out := d.Clone()
	el := &out.Elements[ref.Type][ref.Index]
	switch field {
	case "visible":
		el.Visible = toBool(value)
	case "locked":
		el.Locked = toBool(value)
	case "deletable":
		el.Deletable = toBool(value)
	default:
		return d
	}
	return out
}

// AddElement inserts a new element of the given kind with a fresh ID,
// kind-appropriate default style and a centered position.
func (d Document) AddElement(t ElementType) (Document, string) {
	if !ValidElementType(t) {
		return d, ""
	}
	out := d.Clone()
	el := Element{
		ID:        uuid.New().String(),
		Type:      t,
		Position:  Position{X: 50, Y: 50},
		Style:     DefaultStyle(t),
		Visible:   true,
		Deletable: true,
	}
	out.Elements[t] = append(out.Elements[t], el)
	return out, el.ID
}

// DeleteElement removes the element only if it is deletable; otherwise the
// call is a no-op (a user-facing convenience policy, not an error).
func (d Document) DeleteElement(key string) Document {
	ref, ok := d.FindByKey(key)
	if !ok || !d.Elements[ref.Type][ref.Index].Deletable {
		return d
	}
	out := d.Clone()
	elems := out.Elements[ref.Type]
	out.Elements[ref.Type] = append(elems[:ref.Index], elems[ref.Index+1:]...)
	if len(out.Elements[ref.Type]) == 0 {
		delete(out.Elements, ref.Type)
	}
	out.removeFromGroups(key)
	return out
}

// DuplicateElement deep-clones the element under a new ID, offsets its
// position so the copy is visibly distinct, and always marks the duplicate
// deletable regardless of the source's setting. The copy does not inherit
// group membership.
func (d Document) DuplicateElement(key string) (Document, string) {
	ref, ok := d.FindByKey(key)
	if !ok {
		return d, ""
	}
	out := d.Clone()
	el := out.Elements[ref.Type][ref.Index] // value copy; Style is a value type
	el.ID = uuid.New().String()
	el.Position.X = clampF(el.Position.X+duplicateOffset, placementBound, 100-placementBound)
	el.Position.Y = clampF(el.Position.Y+duplicateOffset, placementBound, 100-placementBound)
	el.Deletable = true
	el.GroupID = ""
	out.Elements[ref.Type] = append(out.Elements[ref.Type], el)
	return out, el.ID
}

// Groups

// CreateGroup forms a group from the given element IDs. Unknown IDs are
// skipped; elements already grouped elsewhere are moved (an element belongs
// to at most one group). Creating a group with no resolvable members is a
// no-op.
func (d Document) CreateGroup(name, color string, elementIDs []string) (Document, string) {
	var members []string
	for _, id := range elementIDs {
		if _, ok := d.FindByKey(id); ok {
			members = append(members, id)
		}
	}
	if len(members) == 0 {
		return d, ""
	}
	out := d.Clone()
	gid := uuid.New().String()
	for _, id := range members {
		out.removeFromGroups(id)
		ref, _ := out.FindByKey(id)
		out.Elements[ref.Type][ref.Index].GroupID = gid
	}
	out.Groups = append(out.Groups, Group{ID: gid, Name: name, Color: color, ElementIDs: members})
	return out, gid
}

// DeleteGroup detaches the group's members and removes the group; the
// member elements themselves are kept.
func (d Document) DeleteGroup(groupID string) Document {
	idx := d.groupIndex(groupID)
	if idx < 0 {
		return d
	}
	out := d.Clone()
	for _, id := range out.Groups[idx].ElementIDs {
		if ref, ok := out.FindByKey(id); ok {
			out.Elements[ref.Type][ref.Index].GroupID = ""
		}
	}
	out.Groups = append(out.Groups[:idx], out.Groups[idx+1:]...)
	if len(out.Groups) == 0 {
		out.Groups = nil
	}
	return out
}

// AddToGroup moves an element into a group, detaching it from any other.
func (d Document) AddToGroup(groupID, key string) Document {
	gIdx := d.groupIndex(groupID)
	if gIdx < 0 {
		return d
	}
	ref, ok := d.FindByKey(key)
	if !ok {
		return d
	}
	out := d.Clone()
	out.removeFromGroups(key) // may prune the element's old group
	gIdx = out.groupIndex(groupID)
	if gIdx < 0 {
		return d
	}
	out.Elements[ref.Type][ref.Index].GroupID = groupID
	out.Groups[gIdx].ElementIDs = append(out.Groups[gIdx].ElementIDs, key)
	return out
}

// RemoveFromGroup detaches an element from its group, if any.
func (d Document) RemoveFromGroup(key string) Document {
	ref, ok := d.FindByKey(key)
	if !ok || d.Elements[ref.Type][ref.Index].GroupID == "" {
		return d
	}
	out := d.Clone()
	out.Elements[ref.Type][ref.Index].GroupID = ""
	out.removeFromGroups(key)
	return out
}

// SetGroupLocked locks/unlocks every member of a group atomically.
func (d Document) SetGroupLocked(groupID string, locked bool) Document {
	return d.eachGroupMember(groupID, func(el *Element) { el.Locked = locked })
}

// SetGroupVisible shows/hides every member of a group atomically.
func (d Document) SetGroupVisible(groupID string, visible bool) Document {
	return d.eachGroupMember(groupID, func(el *Element) { el.Visible = visible })
}

// GroupByID returns the group with the given ID.
func (d Document) GroupByID(groupID string) (Group, bool) {
	idx := d.groupIndex(groupID)
	if idx < 0 {
		return Group{}, false
	}
	return d.Groups[idx], true
}

// GroupFullyLocked reports whether the group exists, has members, and every
// member is locked.
func (d Document) GroupFullyLocked(groupID string) bool {
	g, ok := d.GroupByID(groupID)
	if !ok || len(g.ElementIDs) == 0 {
		return false
	}
	for _, id := range g.ElementIDs {
		el, ok := d.Get(id)
		if !ok {
			continue
		}
		if !el.Locked {
			return false
		}
	}
	return true
}

func (d Document) groupIndex(groupID string) int {
	for i, g := range d.Groups {
		if g.ID == groupID {
			return i
		}
	}
	return -1
}

func (d Document) eachGroupMember(groupID string, fn func(*Element)) Document {
	idx := d.groupIndex(groupID)
	if idx < 0 {
		return d
	}
	out := d.Clone()
	for _, id := range out.Groups[idx].ElementIDs {
		if ref, ok := out.FindByKey(id); ok {
			fn(&out.Elements[ref.Type][ref.Index])
		}
	}
	return out
}

// removeFromGroups drops the element ID from every group member list,
// pruning groups that become empty. Mutates the receiver; callers must hold
// a cloned Document.
func (d *Document) removeFromGroups(key string) {
	groups := d.Groups[:0]
	for _, g := range d.Groups {
		ids := g.ElementIDs[:0]
		for _, id := range g.ElementIDs {
			if id != key {
				ids = append(ids, id)
			}
		}
		g.ElementIDs = ids
		if len(g.ElementIDs) > 0 {
			groups = append(groups, g)
		}
	}
	d.Groups = groups
	if len(d.Groups) == 0 {
		d.Groups = nil
	}
}

// conversion helpers for wire-typed field updates (JSON numbers arrive as
// float64, but callers may also pass native ints/bools)

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func toBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
