package layout

// TextBlock is a contiguous run of text on a page with its layout metrics.
// Vertical coordinates are measured from the top edge of the page.
type TextBlock struct {
	Text     string
	FontSize float64 // largest font size observed in the block
	Bold     bool
	Top      float64 // y of the block's first line
	Bottom   float64 // y of the block's last line
	Indent   float64 // smallest left x-coordinate
}

// Page holds everything the outline builder needs from one page.
type Page struct {
	Blocks []TextBlock
	Text   string // raw full text, reading order
	Height float64
}

// Document is the text-layout source consumed by outline extraction and
// section segmentation. Page numbers are 1-indexed.
type Document interface {
	PageCount() int
	Page(n int) (Page, error)
	Close() error
}

// MemDocument is an in-memory Document, used for tests and for formats
// whose structure is assembled directly from markup.
type MemDocument struct {
	Pages []Page
}

func (d *MemDocument) PageCount() int { return len(d.Pages) }

func (d *MemDocument) Page(n int) (Page, error) {
	if n < 1 || n > len(d.Pages) {
		return Page{}, nil
	}
	return d.Pages[n-1], nil
}

func (d *MemDocument) Close() error { return nil }
