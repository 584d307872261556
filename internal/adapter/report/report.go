// Package report builds the multi-page PDF around the static map.
package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/couchcryptid/state-energy-map/internal/domain"
)

// ReportFile is the file name of the PDF report.
const ReportFile = "energy_production_report.pdf"

// Title is printed on the cover page.
const Title = "U.S. Energy Production Analysis"

// DataSource credits the input data on the insights page.
const DataSource = "Data Source: U.S. Energy Information Administration (EIA) State Energy Data System (SEDS), " +
	"which provides comprehensive state energy statistics. The data includes production and consumption " +
	"figures for all energy sources, allowing for detailed analysis of energy flows and dependencies " +
	"between states. More information available at: https://www.eia.gov/state/seds/"

const mapImageName = "static-map"

// MapImager draws the static map embedded on page two.
type MapImager interface {
	Render(ctx context.Context, data domain.MapData) ([]byte, error)
}

// Options are the free-text parts of the report.
type Options struct {
	Author    string
	Course    string
	HostedURL string
	// Insights replaces the generated observations when set. Paragraphs are
	// separated by blank lines.
	Insights string
}

// Renderer builds the PDF.
type Renderer struct {
	imager MapImager
	opts   Options
	logger *slog.Logger
}

// NewRenderer creates a report renderer.
func NewRenderer(imager MapImager, opts Options, logger *slog.Logger) *Renderer {
	return &Renderer{imager: imager, opts: opts, logger: logger}
}

// Name returns the output file name.
func (r *Renderer) Name() string { return ReportFile }

// Render builds the cover, map and insights pages. When the map image cannot
// be drawn the map page carries an error line instead of the image.
func (r *Renderer) Render(ctx context.Context, data domain.MapData) ([]byte, error) {
	img, err := r.imager.Render(ctx, data)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("static map unavailable for report", "error", err)
		img = nil
	}
	return BuildPDF(data, img, r.opts)
}

// BuildPDF renders the report. mapPNG may be nil.
func BuildPDF(data domain.MapData, mapPNG []byte, opts Options) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Cover
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 24)
	pdf.CellFormat(0, 60, "", "", 1, "", false, 0, "")
	pdf.CellFormat(0, 10, tr(Title), "", 1, "C", false, 0, "")
	pdf.Ln(20)
	pdf.SetFont("Arial", "", 18)
	if opts.Author != "" {
		pdf.CellFormat(0, 10, tr("Name: "+opts.Author), "", 1, "C", false, 0, "")
	}
	if opts.Course != "" {
		pdf.CellFormat(0, 10, tr("Class: "+opts.Course), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(10)
	pdf.CellFormat(0, 8, fmt.Sprintf("Data year: %s", data.Year), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", data.GeneratedAt.UTC().Format(time.RFC3339)), "", 1, "C", false, 0, "")

	// Map
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
	pdf.Ln(10)
	if len(mapPNG) > 0 {
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader(mapImageName, opt, bytes.NewReader(mapPNG))
		pdf.ImageOptions(mapImageName, 10, pdf.GetY(), 190, 0, true, opt, 0, "")
	} else {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 10, "Error: map image not found.", "", 1, "C", false, 0, "")
	}
	writeLink(pdf, tr, opts.HostedURL, "C")

	// Insights
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Insights & Observations", "", 1, "L", false, 0, "")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 12)
	paragraphs := splitParagraphs(opts.Insights)
	if len(paragraphs) == 0 {
		paragraphs = Observations(domain.Summarize(data.Profiles(), 3))
	}
	for _, p := range paragraphs {
		pdf.MultiCell(0, 8, tr(p), "", "", false)
		pdf.Ln(5)
	}
	pdf.Ln(5)
	pdf.SetFont("Arial", "I", 10)
	pdf.MultiCell(0, 8, DataSource, "", "", false)
	writeLink(pdf, tr, opts.HostedURL, "L")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeLink(pdf *gofpdf.Fpdf, tr func(string) string, url, align string) {
	if url == "" {
		return
	}
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "View the interactive map here:", "", 1, align, false, 0, "")
	pdf.SetTextColor(0, 0, 255)
	pdf.CellFormat(0, 10, tr(url), "", 1, align, false, 0, url)
	pdf.SetTextColor(0, 0, 0)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
