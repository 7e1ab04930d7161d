package docinfosvc

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/chapa-studio/chapa/core/template"
)

func TestInspectPDF(t *testing.T) {
	svc := NewService()

	info, err := svc.Inspect(template.KindPDF, bytes.NewReader(buildMinimalPDF(612, 792)))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Size.Width != 612 || info.Size.Height != 792 {
		t.Errorf("Size = %+v, want 612x792 (US Letter in points)", info.Size)
	}
	if info.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", info.PageCount)
	}

	if _, err := svc.Inspect(template.KindPDF, bytes.NewReader([]byte("not a pdf"))); err == nil {
		t.Error("Inspect() accepted garbage input")
	}
}

func TestInspectSVG(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name    string
		svg     string
		wantW   float64
		wantH   float64
		wantErr bool
	}{
		{
			name:  "numeric width and height",
			svg:   `<svg xmlns="http://www.w3.org/2000/svg" width="1000" height="1600"></svg>`,
			wantW: 1000, wantH: 1600,
		},
		{
			name:  "unit suffix",
			svg:   `<svg xmlns="http://www.w3.org/2000/svg" width="210mm" height="297mm"></svg>`,
			wantW: 210, wantH: 297,
		},
		{
			name:  "percentage sizes fall back to viewBox",
			svg:   `<svg xmlns="http://www.w3.org/2000/svg" width="100%" height="100%" viewBox="0 0 800 600"></svg>`,
			wantW: 800, wantH: 600,
		},
		{
			name:  "no sizes, viewBox only",
			svg:   `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0,0,640,480"></svg>`,
			wantW: 640, wantH: 480,
		},
		{
			name:    "nothing usable",
			svg:     `<svg xmlns="http://www.w3.org/2000/svg"></svg>`,
			wantErr: true,
		},
		{
			name:    "not xml",
			svg:     `hello`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := svc.Inspect(template.KindSVG, strings.NewReader(tt.svg))
			if tt.wantErr {
				if err == nil {
					t.Error("Inspect() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if info.Size.Width != tt.wantW || info.Size.Height != tt.wantH {
				t.Errorf("Size = %+v, want %vx%v", info.Size, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestInspectUnknownKind(t *testing.T) {
	svc := NewService()
	if _, err := svc.Inspect("docx", strings.NewReader("")); err != ErrUnknownKind {
		t.Errorf("Inspect() error = %v, want ErrUnknownKind", err)
	}
}

// buildMinimalPDF assembles a single empty page with the given media box.
func buildMinimalPDF(w, h int) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 4)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString(fmt.Sprintf("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] >>\nendobj\n", w, h))

	xrefOffset := b.Len()
	b.WriteString("xref\n0 4\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 3; i++ {
		b.WriteString(fmt.Sprintf("%010d 00000 n \n", offsets[i]))
	}
	b.WriteString("trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n")
	b.WriteString(fmt.Sprintf("%d", xrefOffset))
	b.WriteString("\n%%EOF\n")

	return []byte(b.String())
}
