// Package rendersvc rasterizes template documents into PNG previews: the
// same elements the editor manipulates as percentages, painted at their
// denormalized pixel positions over a blank page.
package rendersvc

import (
	"image/color"
	"io"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/chapa-studio/chapa/core/editor"
	"github.com/chapa-studio/chapa/core/template"
)

type Service struct {
	font *truetype.Font
}

func NewService() (*Service, error) {
	ttf, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "parsing builtin font")
	}
	return &Service{font: ttf}, nil
}

// Render paints the document onto a page of the given intrinsic size and
// writes it as PNG. Elements are drawn in canonical type order; hidden
// elements are skipped.
func (svc *Service) Render(doc template.Document, size editor.DocSize, w io.Writer) error {
	if !size.Known() {
		return errors.New("document size unknown")
	}

	dc := gg.NewContext(int(size.Width), int(size.Height))
	dc.SetColor(color.White)
	dc.Clear()

	for _, el := range doc.AllElements() {
		if !el.Visible {
			continue
		}
		svc.drawElement(dc, el, size)
	}
	return errors.Wrap(dc.EncodePNG(w), "encoding png")
}

func (svc *Service) drawElement(dc *gg.Context, el template.Element, size editor.DocSize) {
	x := el.Position.X / 100 * size.Width
	y := el.Position.Y / 100 * size.Height
	s := el.Style

	dc.Push()
	defer dc.Pop()
	if s.Rotation != 0 {
		dc.RotateAbout(gg.Radians(s.Rotation), x, y)
	}

	switch el.Type {
	case template.ElementFreeText, template.ElementCopyrightText,
		template.ElementURL, template.ElementUserInfo, template.ElementWatermarkText:
		svc.drawText(dc, s, x, y)
	case template.ElementLogo, template.ElementWatermarkLogo:
		svc.drawImagePlaceholder(dc, s, x, y)
	case template.ElementBox:
		svc.drawRect(dc, s, x, y)
	case template.ElementCircle:
		svc.drawCircle(dc, s, x, y)
	case template.ElementLine:
		svc.drawLine(dc, s, x, y, false)
	case template.ElementDottedLine:
		svc.drawLine(dc, s, x, y, true)
	}
}

func (svc *Service) drawText(dc *gg.Context, s template.Style, x, y float64) {
	fontSize := s.FontSize
	if fontSize <= 0 {
		fontSize = 12
	}
	dc.SetFontFace(truetype.NewFace(svc.font, &truetype.Options{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	dc.SetColor(parseColor(s.Color, s.Opacity, color.Black))
	dc.DrawStringAnchored(s.Text, x, y, 0.5, 0.5)
}

// drawImagePlaceholder stands in for the remote logo image: the preview is a
// layout proof, not a pixel-accurate render, so no fetching happens here.
func (svc *Service) drawImagePlaceholder(dc *gg.Context, s template.Style, x, y float64) {
	w, h := s.Width, s.Height
	x0, y0 := x-w/2, y-h/2

	dc.SetLineWidth(1)
	dc.SetColor(parseColor("#cccccc", s.Opacity, color.Black))
	dc.DrawRectangle(x0, y0, w, h)
	dc.Stroke()
	dc.DrawLine(x0, y0, x0+w, y0+h)
	dc.Stroke()
	dc.DrawLine(x0+w, y0, x0, y0+h)
	dc.Stroke()
}

func (svc *Service) drawRect(dc *gg.Context, s template.Style, x, y float64) {
	w, h := s.Width, s.Height
	x0, y0 := x-w/2, y-h/2

	if s.Background != "" {
		dc.SetColor(parseColor(s.Background, s.Opacity, color.White))
		dc.DrawRectangle(x0, y0, w, h)
		dc.Fill()
	}
	if s.Border > 0 {
		dc.SetLineWidth(s.Border)
		dc.SetColor(parseColor(s.BorderCol, s.Opacity, color.Black))
		dc.DrawRectangle(x0, y0, w, h)
		dc.Stroke()
	}
}

func (svc *Service) drawCircle(dc *gg.Context, s template.Style, x, y float64) {
	r := s.Width / 2
	if s.Background != "" {
		dc.SetColor(parseColor(s.Background, s.Opacity, color.White))
		dc.DrawCircle(x, y, r)
		dc.Fill()
	}
	if s.Border > 0 {
		dc.SetLineWidth(s.Border)
		dc.SetColor(parseColor(s.BorderCol, s.Opacity, color.Black))
		dc.DrawCircle(x, y, r)
		dc.Stroke()
	}
}

func (svc *Service) drawLine(dc *gg.Context, s template.Style, x, y float64, dotted bool) {
	w := s.Width
	dc.SetLineWidth(s.Border)
	dc.SetColor(parseColor(s.BorderCol, s.Opacity, color.Black))
	if dotted {
		dc.SetDash(4, 4)
		defer dc.SetDash()
	}
	dc.DrawLine(x-w/2, y, x+w/2, y)
	dc.Stroke()
}

// parseColor resolves a #rgb/#rrggbb hex color with the element opacity
// (0-100) applied as alpha; malformed values fall back to deflt.
func parseColor(hex string, opacity float64, deflt color.Color) color.Color {
	alpha := uint8(clampOpacity(opacity) / 100 * 255)

	if len(hex) == 4 && hex[0] == '#' {
		// expand #abc to #aabbcc
		hex = "#" + string([]byte{hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	if len(hex) != 7 || hex[0] != '#' {
		return withAlpha(deflt, alpha)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return withAlpha(deflt, alpha)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: alpha,
	}
}

func withAlpha(c color.Color, alpha uint8) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

func clampOpacity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
