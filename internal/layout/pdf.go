package layout

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFDocument reads pages through ledongthuc/pdf, exposing positioned
// text blocks with font metrics.
type PDFDocument struct {
	file   *os.File
	reader *pdflib.Reader
	tmp    string // temp file path when opened from a stream
}

// OpenPDF opens a PDF by path.
func OpenPDF(path string) (*PDFDocument, error) {
	f, r, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFDocument{file: f, reader: r}, nil
}

// OpenPDFReader opens a PDF from a stream. ledongthuc/pdf requires a
// ReadSeeker+size, so the stream is spooled to a temp file first.
func OpenPDFReader(r io.Reader) (*PDFDocument, error) {
	tmp, err := os.CreateTemp("", "docsift-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := OpenPDF(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	doc.tmp = tmpPath
	return doc, nil
}

func (d *PDFDocument) PageCount() int { return d.reader.NumPage() }

func (d *PDFDocument) Close() error {
	err := d.file.Close()
	if d.tmp != "" {
		os.Remove(d.tmp)
	}
	return err
}

func (d *PDFDocument) Page(n int) (Page, error) {
	p := d.reader.Page(n)
	if p.V.IsNull() {
		return Page{}, nil
	}

	height := mediaBoxHeight(p)
	texts := p.Content().Text

	raw, err := p.GetPlainText(nil)
	if err != nil {
		raw = ""
	}

	return Page{
		Blocks: groupBlocks(texts, height),
		Text:   raw,
		Height: height,
	}, nil
}

// mediaBoxHeight reads the page height from the MediaBox entry.
func mediaBoxHeight(p pdflib.Page) float64 {
	mb := p.V.Key("MediaBox")
	if mb.IsNull() || mb.Len() < 4 {
		return 792 // US Letter
	}
	h := mb.Index(3).Float64() - mb.Index(1).Float64()
	if h <= 0 {
		return 792
	}
	return h
}

// line is a row of text runs sharing a baseline.
type line struct {
	text     string
	fontSize float64
	bold     bool
	y        float64 // top-origin
	x        float64
}

const (
	rowTolerance    = 3.0 // y distance treated as the same baseline
	wordSpaceFactor = 0.3 // fraction of font size treated as a word gap
)

// groupBlocks reconstructs lines from raw text runs and merges adjacent
// lines into blocks. Runs arrive in stream order with PDF coordinates
// (y grows upward); output uses top-origin coordinates.
func groupBlocks(texts []pdflib.Text, pageHeight float64) []TextBlock {
	var runs []pdflib.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			runs = append(runs, t)
		}
	}
	if len(runs) == 0 {
		return nil
	}

	// Group runs into rows by baseline.
	sort.SliceStable(runs, func(i, j int) bool {
		if abs(runs[i].Y-runs[j].Y) > rowTolerance {
			return runs[i].Y > runs[j].Y // higher Y = higher on page
		}
		return runs[i].X < runs[j].X
	})

	var lines []line
	start := 0
	for i := 1; i <= len(runs); i++ {
		if i == len(runs) || abs(runs[i].Y-runs[start].Y) > rowTolerance {
			lines = append(lines, buildLine(runs[start:i], pageHeight))
			start = i
		}
	}

	// Merge consecutive lines into blocks when the vertical gap fits
	// normal line spacing and the font size matches.
	var blocks []TextBlock
	cur := TextBlock{
		Text:     lines[0].text,
		FontSize: lines[0].fontSize,
		Bold:     lines[0].bold,
		Top:      lines[0].y,
		Bottom:   lines[0].y,
		Indent:   lines[0].x,
	}
	for _, ln := range lines[1:] {
		gap := ln.y - cur.Bottom
		sameFont := abs(ln.fontSize-cur.FontSize) < 0.6
		if sameFont && gap > 0 && gap < cur.FontSize*1.6 {
			cur.Text += " " + ln.text
			cur.Bottom = ln.y
			if ln.fontSize > cur.FontSize {
				cur.FontSize = ln.fontSize
			}
			cur.Bold = cur.Bold || ln.bold
			if ln.x < cur.Indent {
				cur.Indent = ln.x
			}
			continue
		}
		blocks = append(blocks, cur)
		cur = TextBlock{
			Text:     ln.text,
			FontSize: ln.fontSize,
			Bold:     ln.bold,
			Top:      ln.y,
			Bottom:   ln.y,
			Indent:   ln.x,
		}
	}
	blocks = append(blocks, cur)
	return blocks
}

// buildLine joins the runs of one row left-to-right, inserting a space
// wherever the horizontal gap exceeds a fraction of the font size.
func buildLine(row []pdflib.Text, pageHeight float64) line {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var sb strings.Builder
	ln := line{y: pageHeight - row[0].Y, x: row[0].X}
	prevEnd := row[0].X
	for i, t := range row {
		if i > 0 && t.X-prevEnd > t.FontSize*wordSpaceFactor && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.S)
		prevEnd = t.X + t.W
		if t.FontSize > ln.fontSize {
			ln.fontSize = t.FontSize
		}
		if isBoldFont(t.Font) {
			ln.bold = true
		}
	}
	ln.text = strings.TrimSpace(sb.String())
	return ln
}

func isBoldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black") || strings.Contains(n, "heavy")
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
