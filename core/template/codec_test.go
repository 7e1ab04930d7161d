package template

import (
	"encoding/json"
	"testing"
)

func TestDecodeDocumentUnified(t *testing.T) {
	data := []byte(`{
		"elements": {
			"logo": [{"id": "logo-1", "position": {"x": 10, "y": 12}, "deletable": false}],
			"free-text": [
				{"id": "t-1", "style": {"text": "Course Notes", "font_size": 20}},
				{"id": "t-2", "visible": false, "group_id": "g-1"}
			],
			"bogus-type": [{"id": "skipped"}]
		},
		"groups": [{"id": "g-1", "name": "header", "color": "#fff", "element_ids": ["t-2"]}]
	}`)

	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if n := doc.CountElements(); n != 3 {
		t.Fatalf("CountElements() = %d, want 3 (unknown types skipped)", n)
	}

	logo, _ := doc.Get("logo-1")
	if logo.Position != (Position{X: 10, Y: 12}) || logo.Deletable {
		t.Errorf("logo = %+v, want kept position and deletable:false", logo)
	}

	// omitted style fields are completed from the kind defaults
	txt, _ := doc.Get("t-1")
	if txt.Style.Text != "Course Notes" || txt.Style.FontSize != 20 {
		t.Errorf("explicit style fields lost: %+v", txt.Style)
	}
	if txt.Style.FontFamily != DefaultStyle(ElementFreeText).FontFamily {
		t.Errorf("FontFamily = %q, want kind default", txt.Style.FontFamily)
	}
	if !txt.Visible || !txt.Deletable {
		t.Errorf("omitted flags = visible:%t deletable:%t, want defaults true/true", txt.Visible, txt.Deletable)
	}

	hidden, _ := doc.Get("t-2")
	if hidden.Visible {
		t.Error("explicit visible:false lost")
	}
	if hidden.GroupID != "g-1" {
		t.Errorf("GroupID = %q, want g-1", hidden.GroupID)
	}
	if g, ok := doc.GroupByID("g-1"); !ok || g.Name != "header" {
		t.Errorf("group = %+v, want header group kept", g)
	}
}

func TestDecodeDocumentLegacy(t *testing.T) {
	data := []byte(`{
		"logo": {"position": {"x": 5, "y": 5}},
		"text": {"id": "t-1", "style": {"text": "hello"}},
		"url": {"id": "u-1"},
		"customElements": {
			"c-1": {"type": "circle", "position": {"x": 30, "y": 30}},
			"c-2": {"type": "martian"}
		}
	}`)

	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if n := doc.CountElements(); n != 5 {
		t.Fatalf("CountElements() = %d, want 5", n)
	}

	// flat slots are built-ins: non-deletable, fresh ID when missing
	logos := doc.Elements[ElementLogo]
	if len(logos) != 1 {
		t.Fatalf("logos = %d, want 1", len(logos))
	}
	if logos[0].ID == "" || logos[0].Deletable {
		t.Errorf("logo = %+v, want generated ID and deletable:false", logos[0])
	}
	if txt, ok := doc.Get("t-1"); !ok || txt.Type != ElementFreeText || txt.Deletable {
		t.Errorf("text slot = %+v, want free-text built-in", txt)
	}
	if url, ok := doc.Get("u-1"); !ok || url.Type != ElementURL {
		t.Errorf("url slot = %+v", url)
	}

	// custom elements are deletable; the map key backfills a missing ID
	circ, ok := doc.Get("c-1")
	if !ok || circ.Type != ElementCircle || !circ.Deletable {
		t.Errorf("custom element = %+v, want deletable circle keyed c-1", circ)
	}
	// unknown custom types degrade to a box rather than being dropped
	if box, ok := doc.Get("c-2"); !ok || box.Type != ElementBox {
		t.Errorf("unknown-typed custom element = %+v, want box", box)
	}
}

func TestDecodeDocumentEmptyAndInvalid(t *testing.T) {
	doc, err := DecodeDocument(nil)
	if err != nil {
		t.Fatalf("DecodeDocument(nil) error = %v", err)
	}
	if doc.CountElements() != 0 {
		t.Error("empty input must yield an empty document")
	}

	if _, err := DecodeDocument([]byte(`{"elements": `)); err == nil {
		t.Error("truncated input must fail")
	}
}

func TestEncodeUnifiedRoundTrip(t *testing.T) {
	doc := testDoc(
		testElement("logo-1", ElementLogo, 10, 10),
		testElement("t-1", ElementFreeText, 20, 20),
	)
	doc, gid := doc.CreateGroup("header", "#fff", []string{"logo-1", "t-1"})

	data, err := EncodeUnified(doc)
	if err != nil {
		t.Fatalf("EncodeUnified() error = %v", err)
	}
	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if !got.Equal(doc) {
		t.Errorf("round trip changed the document:\n got %+v\nwant %+v", got, doc)
	}
	if g, ok := got.GroupByID(gid); !ok || len(g.ElementIDs) != 2 {
		t.Errorf("group lost in round trip: %+v", g)
	}
}

func TestDecodeDocumentKeepsExplicitZeroStyle(t *testing.T) {
	// A watermark faded all the way out (opacity 0) and straightened
	// (rotation 0) must come back unchanged; its kind defaults are 30/-45,
	// so any refill of explicit zeros shows up immediately.
	wm := testElement("wm-1", ElementWatermarkText, 50, 50)
	wm.Style.Opacity = 0
	wm.Style.Rotation = 0
	doc := testDoc(wm)

	for _, encode := range []struct {
		name string
		fn   func(Document) ([]byte, error)
	}{
		{"unified", EncodeUnified},
		{"legacy", EncodeLegacy},
	} {
		data, err := encode.fn(doc)
		if err != nil {
			t.Fatalf("%s encode error = %v", encode.name, err)
		}
		got, err := DecodeDocument(data)
		if err != nil {
			t.Fatalf("%s decode error = %v", encode.name, err)
		}
		el, ok := got.Get("wm-1")
		if !ok {
			t.Fatalf("%s: element lost in round trip", encode.name)
		}
		if el.Style.Opacity != 0 {
			t.Errorf("%s: Opacity = %v after round trip, want 0", encode.name, el.Style.Opacity)
		}
		if el.Style.Rotation != 0 {
			t.Errorf("%s: Rotation = %v after round trip, want 0", encode.name, el.Style.Rotation)
		}
	}

	// absent fields still resolve to the kind defaults
	partial := []byte(`{"elements": {"watermark-text": [{"id": "wm-2", "style": {"text": "DRAFT"}}]}}`)
	got, err := DecodeDocument(partial)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	el, _ := got.Get("wm-2")
	if el.Style.Opacity != 30 || el.Style.Rotation != -45 {
		t.Errorf("omitted fields = opacity:%v rotation:%v, want kind defaults 30/-45", el.Style.Opacity, el.Style.Rotation)
	}
}

func TestEncodeLegacy(t *testing.T) {
	doc := testDoc(
		testElement("logo-1", ElementLogo, 10, 10),
		testElement("logo-2", ElementLogo, 15, 15),
		testElement("t-1", ElementFreeText, 20, 20),
		testElement("c-1", ElementCircle, 30, 30),
	)

	data, err := EncodeLegacy(doc)
	if err != nil {
		t.Fatalf("EncodeLegacy() error = %v", err)
	}
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"logo", "text", "customElements"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("legacy shape missing %q", key)
		}
	}

	// the first logo fills the flat slot; the rest overflow to customElements
	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error = %v", err)
	}
	if n := got.CountElements(); n != 4 {
		t.Fatalf("CountElements() = %d after legacy round trip, want 4", n)
	}
	if _, ok := got.Get("logo-2"); !ok {
		t.Error("overflow logo lost in legacy encoding")
	}
	if circ, ok := got.Get("c-1"); !ok || circ.Type != ElementCircle {
		t.Errorf("custom element = %+v, want circle kept", circ)
	}
}
