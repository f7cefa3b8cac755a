package outline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docsift/internal/layout"
	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Markup formats carry explicit heading structure, so the outline comes
// straight from the markup instead of font heuristics. Each heading opens
// a synthetic page in the returned document, which keeps the page-span
// segmentation model intact: a section ends where the next heading's page
// begins.

// markupDoc accumulates headings and page text while walking markup.
type markupDoc struct {
	o     Outline
	pages []strings.Builder
	seen  map[string]bool
}

func newMarkupDoc(title string) *markupDoc {
	d := &markupDoc{seen: map[string]bool{}}
	d.o.Title = title
	d.pages = make([]strings.Builder, 1)
	return d
}

// synthetic font sizes keep (page, -size) ordering stable downstream
var levelSizes = map[Level]float64{H1: 16, H2: 14, H3: 12}

func markupLevel(n int) Level {
	switch n {
	case 1:
		return H1
	case 2:
		return H2
	default:
		return H3
	}
}

func (d *markupDoc) addHeading(title string, level int) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	norm := normalizeTitle(title)
	if d.seen[norm] {
		return
	}
	d.seen[norm] = true

	if d.pages[len(d.pages)-1].Len() > 0 || len(d.o.Headings) > 0 {
		d.pages = append(d.pages, strings.Builder{})
	}
	lv := markupLevel(level)
	d.o.Headings = append(d.o.Headings, Heading{
		Title:    title,
		Page:     len(d.pages),
		FontSize: levelSizes[lv],
		Level:    lv,
	})
	d.addText(title)
}

func (d *markupDoc) addText(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	cur := &d.pages[len(d.pages)-1]
	if cur.Len() > 0 {
		cur.WriteString("\n")
	}
	cur.WriteString(s)
}

func (d *markupDoc) finish() (Outline, *layout.MemDocument) {
	mem := &layout.MemDocument{Pages: make([]layout.Page, len(d.pages))}
	for i := range d.pages {
		mem.Pages[i] = layout.Page{Text: d.pages[i].String(), Height: 792}
	}
	return d.o, mem
}

// FromMarkdown builds an outline from ATX/setext headings via goldmark.
func FromMarkdown(src []byte, title string) (Outline, *layout.MemDocument, error) {
	md := goldmark.New()
	root := md.Parser().Parse(gmtext.NewReader(src))

	d := newMarkupDoc(title)
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			d.addHeading(string(h.Text(src)), h.Level)
			continue
		}
		d.addText(mdText(n, src))
	}
	o, mem := d.finish()
	return o, mem, nil
}

// mdText gets the text content of a goldmark AST node.
func mdText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(mdText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// FromHTML builds an outline from h1-h3 tags.
func FromHTML(r io.Reader, title string) (Outline, *layout.MemDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Outline{}, nil, fmt.Errorf("parse html: %w", err)
	}
	if t := htmlTitle(root); t != "" {
		title = t
	}
	d := newMarkupDoc(title)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := htmlHeadingLevel(n.Data); level > 0 {
				d.addHeading(htmlText(n), level)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote":
				d.addText(htmlText(n))
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findBody(root); body != nil {
		walk(body)
	} else {
		walk(root)
	}

	o, mem := d.finish()
	return o, mem, nil
}

func htmlHeadingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	}
	return 0
}

func htmlText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func htmlTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return htmlText(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := htmlTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// FromDOCX builds an outline from paragraph heading styles.
// go-docx needs a ReadSeeker+size, so the stream is spooled to a temp file.
func FromDOCX(r io.Reader, title string) (Outline, *layout.MemDocument, error) {
	tmp, err := os.CreateTemp("", "docsift-docx-*.docx")
	if err != nil {
		return Outline{}, nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return Outline{}, nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return Outline{}, nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return Outline{}, nil, fmt.Errorf("parse docx: %w", err)
	}

	d := newMarkupDoc(title)
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			d.addHeading(text, level)
		} else {
			d.addText(text)
		}
	}
	o, mem := d.finish()
	return o, mem, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	switch style {
	case "heading1":
		return 1
	case "heading2":
		return 2
	case "heading3":
		return 3
	case "heading4", "heading5", "heading6":
		return 3
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// FromText wraps unstructured plain text: no headings, one synthetic page
// per blank-line-separated run of roughly pageChars characters.
func FromText(r io.Reader, title string) (Outline, *layout.MemDocument, error) {
	const pageChars = 3000
	data, err := io.ReadAll(r)
	if err != nil {
		return Outline{}, nil, err
	}

	mem := &layout.MemDocument{}
	var cur strings.Builder
	for _, para := range strings.Split(string(data), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(para) > pageChars {
			mem.Pages = append(mem.Pages, layout.Page{Text: cur.String(), Height: 792})
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(para)
	}
	if cur.Len() > 0 {
		mem.Pages = append(mem.Pages, layout.Page{Text: cur.String(), Height: 792})
	}
	return Outline{Title: title}, mem, nil
}
