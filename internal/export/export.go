// Package export renders generated papers as downloadable documents.
package export

import (
	"errors"
	"io"
	"strings"

	"github.com/stemsi/qbank-backend/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrPDFFontRequired   = errors.New("pdf export requires a UTF-8 TrueType font (PDF_FONT_PATH)")
)

// Renderer writes a paper in one document format.
type Renderer interface {
	Render(w io.Writer, p *model.Paper) error
	ContentType() string
	Extension() string
}

// Options configures renderers that need external resources.
type Options struct {
	// FontPath is a TrueType font with CJK coverage, required for PDF.
	FontPath string
}

// New returns the renderer for format.
func New(format model.ExportFormat, opts Options) (Renderer, error) {
	switch format {
	case model.ExportFormatMarkdown, "":
		return Markdown{}, nil
	case model.ExportFormatPDF:
		if opts.FontPath == "" {
			return nil, ErrPDFFontRequired
		}
		return PDF{FontPath: opts.FontPath}, nil
	case model.ExportFormatXLSX:
		return XLSX{}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// Filename builds a download name from the paper title.
func Filename(p *model.Paper, r Renderer) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\r', '\t':
			return '_'
		}
		return r
	}, strings.TrimSpace(p.Title))
	if name == "" {
		name = "paper"
	}
	return name + r.Extension()
}
