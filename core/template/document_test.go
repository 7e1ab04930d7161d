package template

import (
	"testing"
)

func testDoc(elems ...Element) Document {
	doc := NewDocument()
	for _, el := range elems {
		doc.Elements[el.Type] = append(doc.Elements[el.Type], el)
	}
	return doc
}

func testElement(id string, t ElementType, x, y float64) Element {
	return Element{
		ID:        id,
		Type:      t,
		Position:  Position{X: x, Y: y},
		Style:     DefaultStyle(t),
		Visible:   true,
		Deletable: true,
	}
}

func TestDocumentAddElement(t *testing.T) {
	doc := NewDocument()

	got, id := doc.AddElement(ElementFreeText)
	if id == "" {
		t.Fatal("AddElement() returned empty ID")
	}
	el, ok := got.Get(id)
	if !ok {
		t.Fatal("added element not found")
	}
	if el.Position != (Position{X: 50, Y: 50}) {
		t.Errorf("Position = %+v, want centered (50, 50)", el.Position)
	}
	if !el.Visible || !el.Deletable || el.Locked {
		t.Errorf("flags = visible:%t deletable:%t locked:%t, want true/true/false", el.Visible, el.Deletable, el.Locked)
	}
	if el.Style != DefaultStyle(ElementFreeText) {
		t.Errorf("Style = %+v, want kind defaults", el.Style)
	}

	// unknown kinds are refused
	if got, id := doc.AddElement(ElementType("nope")); id != "" || got.CountElements() != 0 {
		t.Errorf("AddElement(unknown) = %d elements, id %q; want no-op", got.CountElements(), id)
	}
}

func TestDocumentDeleteElement(t *testing.T) {
	builtin := testElement("logo-1", ElementLogo, 10, 10)
	builtin.Deletable = false
	doc := testDoc(builtin, testElement("box-1", ElementBox, 40, 40))

	got := doc.DeleteElement("box-1")
	if _, ok := got.Get("box-1"); ok {
		t.Error("deletable element survived DeleteElement()")
	}
	if _, ok := got.Elements[ElementBox]; ok {
		t.Error("emptied type key not pruned")
	}

	// non-deletable elements are kept; the call is a silent no-op
	got = doc.DeleteElement("logo-1")
	if _, ok := got.Get("logo-1"); !ok {
		t.Error("non-deletable element was deleted")
	}

	// unknown keys are a no-op
	if got := doc.DeleteElement("ghost"); !got.Equal(doc) {
		t.Error("DeleteElement(unknown) changed the document")
	}
}

func TestDocumentDuplicateElement(t *testing.T) {
	src := testElement("box-1", ElementBox, 40, 40)
	src.Deletable = false
	src.Style.Background = "#ff0000"
	doc := testDoc(src)

	got, id := doc.DuplicateElement("box-1")
	if id == "" || id == "box-1" {
		t.Fatalf("DuplicateElement() id = %q, want a fresh ID", id)
	}
	dup, ok := got.Get(id)
	if !ok {
		t.Fatal("duplicate not found")
	}
	if dup.Position != (Position{X: 45, Y: 45}) {
		t.Errorf("Position = %+v, want offset copy (45, 45)", dup.Position)
	}
	if !dup.Deletable {
		t.Error("duplicate must always be deletable")
	}
	if dup.Style != src.Style {
		t.Errorf("Style = %+v, want deep copy of source style", dup.Style)
	}
	// the source is untouched
	orig, _ := got.Get("box-1")
	if orig.Position != src.Position || orig.Deletable {
		t.Errorf("source mutated: %+v", orig)
	}
}

func TestDocumentDuplicateNearEdge(t *testing.T) {
	doc := testDoc(testElement("box-1", ElementBox, 97, 3))
	got, id := doc.DuplicateElement("box-1")
	dup, _ := got.Get(id)
	if dup.Position != (Position{X: 98, Y: 8}) {
		t.Errorf("Position = %+v, want offset clamped into [2, 98]", dup.Position)
	}
}

func TestDocumentUpdateStyleField(t *testing.T) {
	doc := testDoc(testElement("t-1", ElementFreeText, 50, 50))

	tests := []struct {
		name  string
		field string
		value interface{}
		check func(s Style) bool
	}{
		{name: "text", field: "text", value: "Hello", check: func(s Style) bool { return s.Text == "Hello" }},
		{name: "font size as json number", field: "font_size", value: float64(18), check: func(s Style) bool { return s.FontSize == 18 }},
		{name: "color", field: "color", value: "#1a2b3c", check: func(s Style) bool { return s.Color == "#1a2b3c" }},
		{name: "opacity clamped high", field: "opacity", value: float64(250), check: func(s Style) bool { return s.Opacity == 100 }},
		{name: "opacity clamped low", field: "opacity", value: float64(-10), check: func(s Style) bool { return s.Opacity == 0 }},
		{name: "rotation clamped", field: "rotation", value: float64(270), check: func(s Style) bool { return s.Rotation == 180 }},
		{name: "shadow toggle", field: "shadow_enabled", value: true, check: func(s Style) bool { return s.Shadow.Enabled }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := doc.UpdateStyleField("t-1", tt.field, tt.value)
			el, _ := got.Get("t-1")
			if !tt.check(el.Style) {
				t.Errorf("UpdateStyleField(%q, %v) -> %+v", tt.field, tt.value, el.Style)
			}
		})
	}

	// unknown fields and keys are no-ops
	if got := doc.UpdateStyleField("t-1", "nope", 1); !got.Equal(doc) {
		t.Error("unknown field changed the document")
	}
	if got := doc.UpdateStyleField("ghost", "text", "x"); !got.Equal(doc) {
		t.Error("unknown key changed the document")
	}
}

func TestDocumentSnapshotIsolation(t *testing.T) {
	doc := testDoc(testElement("box-1", ElementBox, 40, 40))
	snapshot := doc.Clone()

	_ = doc.UpdatePosition("box-1", 80, 80)
	_ = doc.UpdateStyleField("box-1", "color", "#000000")
	mutated, _ := doc.CreateGroup("g", "#fff", []string{"box-1"})
	_ = mutated.SetGroupLocked(mutated.Groups[0].ID, true)

	if !doc.Equal(snapshot) {
		t.Error("mutating operations wrote through the receiver")
	}
	el, _ := snapshot.Get("box-1")
	if el.Position != (Position{X: 40, Y: 40}) || el.Locked {
		t.Errorf("retained snapshot changed: %+v", el)
	}
}

func TestDocumentGroups(t *testing.T) {
	doc := testDoc(
		testElement("a", ElementBox, 10, 10),
		testElement("b", ElementCircle, 20, 20),
		testElement("c", ElementLine, 30, 30),
	)

	grouped, gid := doc.CreateGroup("header", "#00ff00", []string{"a", "b", "ghost"})
	if gid == "" {
		t.Fatal("CreateGroup() returned empty ID")
	}
	g, ok := grouped.GroupByID(gid)
	if !ok || len(g.ElementIDs) != 2 {
		t.Fatalf("group = %+v, want 2 resolvable members", g)
	}
	for _, id := range []string{"a", "b"} {
		if el, _ := grouped.Get(id); el.GroupID != gid {
			t.Errorf("element %q GroupID = %q, want %q", id, el.GroupID, gid)
		}
	}

	// group-wide lock applies to every member
	locked := grouped.SetGroupLocked(gid, true)
	if !locked.GroupFullyLocked(gid) {
		t.Error("GroupFullyLocked() = false after SetGroupLocked(true)")
	}
	if el, _ := locked.Get("c"); el.Locked {
		t.Error("non-member was locked")
	}

	// moving a member to another group detaches it from the first
	grouped2, gid2 := grouped.CreateGroup("footer", "#0000ff", []string{"c"})
	moved := grouped2.AddToGroup(gid2, "a")
	if el, _ := moved.Get("a"); el.GroupID != gid2 {
		t.Errorf("moved element GroupID = %q, want %q", el.GroupID, gid2)
	}
	g1, _ := moved.GroupByID(gid)
	for _, id := range g1.ElementIDs {
		if id == "a" {
			t.Error("element still listed in its old group")
		}
	}

	// deleting a group keeps the member elements
	ungrouped := moved.DeleteGroup(gid2)
	if _, ok := ungrouped.GroupByID(gid2); ok {
		t.Error("deleted group still present")
	}
	for _, id := range []string{"a", "c"} {
		el, ok := ungrouped.Get(id)
		if !ok {
			t.Fatalf("element %q deleted with its group", id)
		}
		if el.GroupID != "" {
			t.Errorf("element %q GroupID = %q, want detached", id, el.GroupID)
		}
	}
}

func TestDocumentGroupPrunedWithLastMember(t *testing.T) {
	doc := testDoc(testElement("a", ElementBox, 10, 10), testElement("b", ElementBox, 20, 20))
	doc, gid := doc.CreateGroup("g", "", []string{"a"})

	got := doc.DeleteElement("a")
	if _, ok := got.GroupByID(gid); ok {
		t.Error("emptied group not pruned after deleting its last member")
	}
	if got.Groups != nil {
		t.Errorf("Groups = %+v, want nil when empty", got.Groups)
	}
}

func TestDocumentEqual(t *testing.T) {
	a := testDoc(testElement("x", ElementBox, 10, 10))
	b := testDoc(testElement("x", ElementBox, 10, 10))
	if !a.Equal(b) {
		t.Error("structurally identical documents compare unequal")
	}
	if !a.Equal(a.Clone()) {
		t.Error("clone compares unequal to its source")
	}
	if a.Equal(b.UpdatePosition("x", 11, 10)) {
		t.Error("moved document compares equal")
	}

	// an empty slice under a type key is equivalent to the key being absent
	c := a.Clone()
	c.Elements[ElementCircle] = []Element{}
	if !a.Equal(c) {
		t.Error("empty type slice breaks equality")
	}
}

func TestDocumentGroupFullyLocked(t *testing.T) {
	a := testElement("a", ElementBox, 10, 10)
	a.Locked = true
	b := testElement("b", ElementBox, 20, 20)
	doc := testDoc(a, b)
	doc, gid := doc.CreateGroup("g", "", []string{"a", "b"})

	if doc.GroupFullyLocked(gid) {
		t.Error("partially locked group reported fully locked")
	}
	if doc.GroupFullyLocked("ghost") {
		t.Error("unknown group reported fully locked")
	}
	if all := doc.SetGroupLocked(gid, true); !all.GroupFullyLocked(gid) {
		t.Error("fully locked group not reported as such")
	}
}
