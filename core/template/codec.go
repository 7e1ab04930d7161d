package template

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Two persisted document shapes are supported for backward compatibility:
//
//	unified: {"elements": {"logo": [...], "free-text": [...], ...}, "groups": [...]}
//	legacy:  {"logo": {...}, "text": {...}, "url": {...}, "customElements": {"<id>": {...}}}
//
// Both are normalized into a single in-memory Document right here at the
// boundary; no other code branches on the shape. Documents are written back
// in the unified shape unless the legacy encoder is asked for explicitly.

type elementWire struct {
	ID        string      `json:"id,omitempty"`
	Type      ElementType `json:"type,omitempty"`
	Position  *Position   `json:"position,omitempty"`
	Style     *styleWire  `json:"style,omitempty"`
	Visible   *bool       `json:"visible,omitempty"`
	Locked    bool        `json:"locked,omitempty"`
	Deletable *bool       `json:"deletable,omitempty"`
	GroupID   string      `json:"group_id,omitempty"`
}

// styleWire keeps the numeric fields as pointers so that an absent field and
// an explicit zero are distinct on the wire. Zero is a valid value for most
// of them (opacity 0, rotation 0) and must survive a round trip.
type styleWire struct {
	Text       string   `json:"text,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
	FontSize   *float64 `json:"font_size,omitempty"`
	FontFamily string   `json:"font_family,omitempty"`
	Color      string   `json:"color,omitempty"`
	Opacity    *float64 `json:"opacity,omitempty"`
	Rotation   *float64 `json:"rotation,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	Border     *float64 `json:"border,omitempty"`
	BorderCol  string   `json:"border_color,omitempty"`
	Background string   `json:"background,omitempty"`
	Shadow     *Shadow  `json:"shadow,omitempty"`
}

// style resolves the wire record against the kind defaults: absent fields
// take the default, present fields are kept as sent, zero or not.
func (sw styleWire) style(t ElementType) Style {
	s := DefaultStyle(t)
	if sw.Text != "" {
		s.Text = sw.Text
	}
	if sw.ImageURL != "" {
		s.ImageURL = sw.ImageURL
	}
	if sw.FontSize != nil {
		s.FontSize = *sw.FontSize
	}
	if sw.FontFamily != "" {
		s.FontFamily = sw.FontFamily
	}
	if sw.Color != "" {
		s.Color = sw.Color
	}
	if sw.Opacity != nil {
		s.Opacity = *sw.Opacity
	}
	if sw.Rotation != nil {
		s.Rotation = *sw.Rotation
	}
	if sw.Width != nil {
		s.Width = *sw.Width
	}
	if sw.Height != nil {
		s.Height = *sw.Height
	}
	if sw.Border != nil {
		s.Border = *sw.Border
	}
	if sw.BorderCol != "" {
		s.BorderCol = sw.BorderCol
	}
	if sw.Background != "" {
		s.Background = sw.Background
	}
	if sw.Shadow != nil {
		s.Shadow = *sw.Shadow
	}
	return s
}

func styleToWire(s Style) styleWire {
	sw := styleWire{
		Text:       s.Text,
		ImageURL:   s.ImageURL,
		FontSize:   &s.FontSize,
		FontFamily: s.FontFamily,
		Color:      s.Color,
		Opacity:    &s.Opacity,
		Rotation:   &s.Rotation,
		Width:      &s.Width,
		Height:     &s.Height,
		Border:     &s.Border,
		BorderCol:  s.BorderCol,
		Background: s.Background,
	}
	if s.Shadow != (Shadow{}) {
		sh := s.Shadow
		sw.Shadow = &sh
	}
	return sw
}

type unifiedWire struct {
	Elements map[ElementType][]elementWire `json:"elements"`
	Groups   []Group                       `json:"groups,omitempty"`
}

type legacyWire struct {
	Logo           *elementWire           `json:"logo,omitempty"`
	Text           *elementWire           `json:"text,omitempty"`
	URL            *elementWire           `json:"url,omitempty"`
	CustomElements map[string]elementWire `json:"customElements,omitempty"`
}

// DecodeDocument parses persisted document data in either supported shape.
// Empty input yields an empty document.
func DecodeDocument(data []byte) (Document, error) {
	if len(data) == 0 {
		return NewDocument(), nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, errors.Wrap(err, "decoding document")
	}
	if _, ok := probe["elements"]; ok {
		return decodeUnified(data)
	}
	return decodeLegacy(data)
}

func decodeUnified(data []byte) (Document, error) {
	var wire unifiedWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Document{}, errors.Wrap(err, "decoding unified document")
	}

	doc := NewDocument()
	for t, elems := range wire.Elements {
		if !ValidElementType(t) || len(elems) == 0 {
			continue
		}
		for _, ew := range elems {
			doc.Elements[t] = append(doc.Elements[t], ew.element(t, true /* deletable */))
		}
	}
	if len(wire.Groups) > 0 {
		doc.Groups = wire.Groups
	}
	return doc, nil
}

func decodeLegacy(data []byte) (Document, error) {
	var wire legacyWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Document{}, errors.Wrap(err, "decoding legacy document")
	}

	doc := NewDocument()
	// The flat slots are built-in elements: they default to non-deletable.
	addBuiltin := func(ew *elementWire, t ElementType) {
		if ew == nil {
			return
		}
		doc.Elements[t] = append(doc.Elements[t], ew.element(t, false /* deletable */))
	}
	addBuiltin(wire.Logo, ElementLogo)
	addBuiltin(wire.Text, ElementFreeText)
	addBuiltin(wire.URL, ElementURL)

	for id, ew := range wire.CustomElements {
		if ew.ID == "" {
			ew.ID = id
		}
		t := ew.Type
		if !ValidElementType(t) {
			t = ElementBox
		}
		doc.Elements[t] = append(doc.Elements[t], ew.element(t, true /* deletable */))
	}
	return doc, nil
}

// element materializes a wire entry, assigning a fresh ID when missing and
// completing the style against the kind defaults.
func (ew elementWire) element(t ElementType, deletable bool) Element {
	el := Element{
		ID:        ew.ID,
		Type:      t,
		Position:  Position{X: 50, Y: 50},
		Style:     DefaultStyle(t),
		Visible:   true,
		Locked:    ew.Locked,
		Deletable: deletable,
		GroupID:   ew.GroupID,
	}
	if el.ID == "" {
		el.ID = uuid.New().String()
	}
	if ew.Position != nil {
		el.Position = *ew.Position
	}
	if ew.Style != nil {
		el.Style = ew.Style.style(t)
	}
	if ew.Visible != nil {
		el.Visible = *ew.Visible
	}
	if ew.Deletable != nil {
		el.Deletable = *ew.Deletable
	}
	return el
}

// EncodeUnified serializes a Document in the unified persisted shape.
func EncodeUnified(d Document) ([]byte, error) {
	data, err := json.Marshal(d.normalize())
	return data, errors.Wrap(err, "encoding unified document")
}

// EncodeLegacy serializes a Document in the legacy flat shape. The first
// logo/free-text/url elements fill the flat slots; everything else goes into
// customElements. Group metadata has no legacy representation and is dropped.
func EncodeLegacy(d Document) ([]byte, error) {
	wire := legacyWire{}
	slotTaken := make(map[ElementType]bool, 3)

	for _, el := range d.AllElements() {
		ew := toWire(el)
		switch {
		case el.Type == ElementLogo && !slotTaken[ElementLogo]:
			wire.Logo = &ew
			slotTaken[ElementLogo] = true
		case el.Type == ElementFreeText && !slotTaken[ElementFreeText]:
			wire.Text = &ew
			slotTaken[ElementFreeText] = true
		case el.Type == ElementURL && !slotTaken[ElementURL]:
			wire.URL = &ew
			slotTaken[ElementURL] = true
		default:
			if wire.CustomElements == nil {
				wire.CustomElements = make(map[string]elementWire)
			}
			wire.CustomElements[el.ID] = ew
		}
	}

	data, err := json.Marshal(wire)
	return data, errors.Wrap(err, "encoding legacy document")
}

func toWire(el Element) elementWire {
	pos := el.Position
	style := styleToWire(el.Style)
	visible := el.Visible
	deletable := el.Deletable
	return elementWire{
		ID:        el.ID,
		Type:      el.Type,
		Position:  &pos,
		Style:     &style,
		Visible:   &visible,
		Locked:    el.Locked,
		Deletable: &deletable,
		GroupID:   el.GroupID,
	}
}
