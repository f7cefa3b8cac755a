package outline

// Level is the heading prominence tag.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Heading is a detected document heading. Immutable once created.
type Heading struct {
	Title    string  `json:"title"`
	Page     int     `json:"page_number"` // 1-indexed
	FontSize float64 `json:"font_size"`
	Bold     bool    `json:"bold"`
	Level    Level   `json:"level"`
	Indent   float64 `json:"indent"`
}

// Outline is the structural summary of one document. An empty Headings
// slice is a valid result (form documents, unstructured text), distinct
// from extraction failure.
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"headings"`
	Language string    `json:"detected_language,omitempty"`
}
