// Package docinfosvc reports intrinsic document dimensions for the files
// templates are designed over. The editor needs the true page size of the
// underlying PDF or SVG to map pointer coordinates precisely; until it is
// known, coordinate normalization degrades to the overlay-ratio fallback.
package docinfosvc

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pkg/errors"

	"github.com/chapa-studio/chapa/core/editor"
	"github.com/chapa-studio/chapa/core/template"
)

var ErrUnknownKind = errors.New("unknown document kind")

type Info struct {
	Size      editor.DocSize `json:"size"` // PDF: points; SVG: user units
	PageCount int            `json:"page_count"`
}

type Service struct {
	conf *model.Configuration
}

func NewService() *Service {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Service{conf: conf}
}

// Inspect reads the document of the given template kind and reports its
// intrinsic dimensions.
func (svc *Service) Inspect(kind string, r io.ReadSeeker) (Info, error) {
	switch kind {
	case template.KindPDF:
		return svc.inspectPDF(r)
	case template.KindSVG:
		return svc.inspectSVG(r)
	}
	return Info{}, ErrUnknownKind
}

// inspectPDF returns the first page's media box dimensions. Pages of mixed
// sizes are rare in branded documents; the first page is what the editor
// overlays.
func (svc *Service) inspectPDF(r io.ReadSeeker) (Info, error) {
	ctx, err := api.ReadValidateAndOptimize(r, svc.conf)
	if err != nil {
		return Info{}, errors.Wrap(err, "reading pdf")
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return Info{}, errors.Wrap(err, "reading pdf page dimensions")
	}
	if len(dims) == 0 {
		return Info{}, errors.New("pdf has no pages")
	}
	return Info{
		Size:      editor.DocSize{Width: dims[0].Width, Height: dims[0].Height},
		PageCount: ctx.PageCount,
	}, nil
}

// svgRoot captures just the sizing attributes of the <svg> root element.
type svgRoot struct {
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	ViewBox string `xml:"viewBox,attr"`
}

// inspectSVG reads width/height off the root element, falling back to the
// viewBox when they are missing or non-numeric (e.g. "100%").
func (svc *Service) inspectSVG(r io.Reader) (Info, error) {
	var root svgRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return Info{}, errors.Wrap(err, "parsing svg")
	}

	w, wOK := parseSVGLength(root.Width)
	h, hOK := parseSVGLength(root.Height)
	if !wOK || !hOK {
		if vw, vh, ok := parseViewBox(root.ViewBox); ok {
			w, h = vw, vh
			wOK, hOK = true, true
		}
	}
	if !wOK || !hOK {
		return Info{}, errors.New("svg has no usable dimensions")
	}
	return Info{Size: editor.DocSize{Width: w, Height: h}, PageCount: 1}, nil
}

// parseSVGLength parses an SVG length attribute, tolerating a unit suffix.
// Percentage lengths are relative to a container the service cannot know,
// so they do not count as usable.
func parseSVGLength(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseViewBox(s string) (w, h float64, ok bool) {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n'
	})
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, errW := strconv.ParseFloat(fields[2], 64)
	h, errH := strconv.ParseFloat(fields[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
