package outline

import (
	"testing"

	"github.com/dgallion1/docsift/internal/layout"
)

func blockAt(text string, size float64, top float64) layout.TextBlock {
	return layout.TextBlock{Text: text, FontSize: size, Top: top, Bottom: top + size, Indent: 40}
}

func TestBodyFontSize_ModeOfRoundedSizes(t *testing.T) {
	doc := &layout.MemDocument{Pages: []layout.Page{
		{Blocks: []layout.TextBlock{
			blockAt("Introduction to the topic", 11.96, 100),
			blockAt("Some body text on page one", 12.0, 130),
			blockAt("A Large Title", 16.0, 60),
		}},
		{Blocks: []layout.TextBlock{
			blockAt("More body text follows here", 12.04, 100),
		}},
	}}

	if got := BodyFontSize(doc); got != 12.0 {
		t.Errorf("expected body size 12.0, got %v", got)
	}
}

func TestBodyFontSize_TieGoesToSmaller(t *testing.T) {
	doc := &layout.MemDocument{Pages: []layout.Page{
		{Blocks: []layout.TextBlock{
			blockAt("one block", 10.0, 100),
			blockAt("another block", 14.0, 130),
		}},
	}}
	if got := BodyFontSize(doc); got != 10.0 {
		t.Errorf("expected tie to resolve to 10.0, got %v", got)
	}
}

func TestBodyFontSize_EmptyDocument(t *testing.T) {
	doc := &layout.MemDocument{}
	if got := BodyFontSize(doc); got != DefaultBodySize {
		t.Errorf("expected default body size %v, got %v", DefaultBodySize, got)
	}
}

func TestClassifier_Exclusions(t *testing.T) {
	c := Classifier{BodySize: 12.0}
	const pageHeight = 792.0

	tests := []struct {
		name  string
		block layout.TextBlock
	}{
		{"too short", blockAt("Hi", 16, 100)},
		{"bullet prefix", blockAt("• First do this thing", 16, 100)},
		{"generic term", blockAt("Introduction", 16, 100)},
		{"barely alphabetic", blockAt("1 2 3 4", 16, 100)},
		{"header band", blockAt("Running Header Text", 16, 10)},
		{"footer band", layout.TextBlock{Text: "Confidential footer notice", FontSize: 16, Top: 770, Bottom: 786, Indent: 40}},
		{"body text", blockAt("this is just a normal sentence of body text that keeps going on and on for quite a while without being a heading at all, certainly longer than any plausible section title would ever reasonably be in a real document", 12, 400)},
	}
	for _, tt := range tests {
		if c.IsHeading(tt.block, pageHeight) {
			t.Errorf("%s: expected block to be rejected", tt.name)
		}
	}
}

func TestClassifier_Inclusions(t *testing.T) {
	c := Classifier{BodySize: 12.0}
	const pageHeight = 792.0

	tests := []struct {
		name  string
		block layout.TextBlock
	}{
		{"larger font", blockAt("Planning Your Itinerary", 13.0, 100)},
		{"bold at body size", layout.TextBlock{Text: "Packing Essentials", FontSize: 12.0, Bold: true, Top: 200, Bottom: 212, Indent: 40}},
		{"all caps", blockAt("LOCAL CUISINE", 12.0, 300)},
		{"numbered", blockAt("3. Booking Accommodation", 12.0, 300)},
	}
	for _, tt := range tests {
		if !c.IsHeading(tt.block, pageHeight) {
			t.Errorf("%s: expected block to qualify as heading", tt.name)
		}
	}
}

func TestClassifier_LanguagePackHeadings(t *testing.T) {
	c := Classifier{BodySize: 12.0, Pack: Packs["french"]}
	b := layout.TextBlock{Text: "Table des matières", FontSize: 11.0, Top: 200, Bottom: 212, Indent: 200}
	if !c.IsHeading(b, 792) {
		t.Errorf("expected pack heading hint to qualify the block")
	}
}

func TestClassifier_LevelFor(t *testing.T) {
	c := Classifier{BodySize: 12.0}
	tests := []struct {
		name  string
		block layout.TextBlock
		want  Level
	}{
		{"well above body", blockAt("Major Part", 14.5, 100), H1},
		{"slightly above body", blockAt("Sub Part", 13.2, 100), H2},
		{"numbered at body size", blockAt("2. Steps", 12.0, 100), H2},
		{"all caps at body size", blockAt("NOTES", 12.0, 100), H2},
		{"plain at body size", blockAt("Side remark", 12.0, 100), H3},
	}
	for _, tt := range tests {
		if got := c.LevelFor(tt.block); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.name, tt.want, got)
		}
	}
}

func TestIsUpper(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ALL CAPS HEADING", true},
		{"MIXED Case", false},
		{"123 456", false},
		{"A1 B2", true},
	}
	for _, tt := range tests {
		if got := isUpper(tt.in); got != tt.want {
			t.Errorf("isUpper(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
