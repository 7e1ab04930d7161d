package template

import (
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/chapa-studio/chapa/core"
)

// Template kinds: the underlying document a design is overlaid on.
const (
	KindPDF = "pdf"
	KindSVG = "svg"
)

var AllKinds = []string{KindPDF, KindSVG}

// ElementType identifies the kind of a positioned element on the canvas.
type ElementType string

const (
	ElementLogo          ElementType = "logo"
	ElementFreeText      ElementType = "free-text"
	ElementCopyrightText ElementType = "copyright-text"
	ElementURL           ElementType = "url"
	ElementUserInfo      ElementType = "user-info"
	ElementBox           ElementType = "box"
	ElementLine          ElementType = "line"
	ElementDottedLine    ElementType = "dotted-line"
	ElementCircle        ElementType = "circle"
	ElementWatermarkLogo ElementType = "watermark-logo"
	ElementWatermarkText ElementType = "watermark-text"
)

// AllElementTypes fixes the canonical type order of a document.
var AllElementTypes = []ElementType{
	ElementLogo,
	ElementFreeText,
	ElementCopyrightText,
	ElementURL,
	ElementUserInfo,
	ElementBox,
	ElementLine,
	ElementDottedLine,
	ElementCircle,
	ElementWatermarkLogo,
	ElementWatermarkText,
}

func ValidElementType(t ElementType) bool {
	for _, et := range AllElementTypes {
		if et == t {
			return true
		}
	}
	return false
}

// Position is expressed as percentages of the document width/height;
// (0,0) is the top-left corner, (100,100) the bottom-right.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Shadow struct {
	Enabled bool    `json:"enabled"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Blur    float64 `json:"blur"`
	Color   string  `json:"color"`
}

// Style holds the kind-dependent visual attributes of an element.
// A Style is always complete: defaults are filled in per ElementType at
// element creation and at the decoding boundary, never looked up lazily.
type Style struct {
	Text       string  `json:"text,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	FontSize   float64 `json:"font_size"`
	FontFamily string  `json:"font_family,omitempty"`
	Color      string  `json:"color"`
	Opacity    float64 `json:"opacity"`  // 0-100
	Rotation   float64 `json:"rotation"` // degrees, -180..180
	Width      float64 `json:"width"`    // document pixels
	Height     float64 `json:"height"`   // document pixels
	Border     float64 `json:"border"`
	BorderCol  string  `json:"border_color"`
	Background string  `json:"background,omitempty"`
	Shadow     Shadow  `json:"shadow"`
}

// Element is a single positioned, styled visual object on the canvas.
type Element struct {
	ID        string      `json:"id"`
	Type      ElementType `json:"type"`
	Position  Position    `json:"position"`
	Style     Style       `json:"style"`
	Visible   bool        `json:"visible"`
	Locked    bool        `json:"locked"`
	Deletable bool        `json:"deletable"`
	GroupID   string      `json:"group_id,omitempty"`
}

// Group is a named set of elements that move/lock/hide together.
// An element belongs to at most one group.
type Group struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	ElementIDs []string `json:"element_ids"`
}

// Template is the persisted entity: a designed document owned by a user.
type Template struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	SourceURL string    `json:"source_url"` // the underlying PDF/SVG being branded
	Document  Document  `json:"document"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewTemplate contains information needed to create a new Template.
type NewTemplate struct {
	Name      string `json:"name" validate:"required"`
	Kind      string `json:"kind" validate:"required,templatekind"`
	SourceURL string `json:"source_url" validate:"omitempty,url"`
}

func (nt *NewTemplate) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Kind = core.CleanString(nt.Kind, true /* lower */)
	return validate.Struct(nt)
}

// UpdateTemplate defines what information may be provided to modify an existing Template.
// The document payload, if present, is raw wire data in either supported shape.
type UpdateTemplate struct {
	Name      string          `json:"name"`
	SourceURL string          `json:"source_url" validate:"omitempty,url"`
	Document  json.RawMessage `json:"document"`
}

func (ut *UpdateTemplate) Validate(orig Template, validate *validator.Validate) error {
	name := core.CleanString(ut.Name)
	if name != "" {
		ut.Name = name
	} else {
		ut.Name = orig.Name
	}
	if ut.SourceURL == "" {
		ut.SourceURL = orig.SourceURL
	}
	return validate.Struct(ut)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Kind        string    `query:"kind"`
	OwnerID     string    `query:"owner_id"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Kind == "" && qf.OwnerID == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Kind = core.CleanString(qf.Kind, true /* lower */)
}

var (
	templateKindTag  = "templatekind"
	templateKindText = "invalid template kind"
)

// InitValidators registers template-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(templateKindTag, templateKindValidation)
	core.RegisterCustomTranslation(validate, translator, templateKindTag, templateKindText)
}

func templateKindValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, k := range AllKinds {
		if k == val {
			return true
		}
	}
	return false
}
