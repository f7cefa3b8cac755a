package outline

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsift/internal/layout"
)

// SupportedExtensions lists file extensions this pipeline can handle.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".md":   true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

// IsSupportedExtension checks if a filename's extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Load dispatches on file extension, returning the document's outline and
// a layout document for section segmentation. PDF goes through the font
// classifier; markup formats carry their structure explicitly. The caller
// owns closing the returned document.
func Load(r io.Reader, filename string) (Outline, layout.Document, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		doc, err := layout.OpenPDFReader(r)
		if err != nil {
			return Outline{}, nil, err
		}
		o, err := Build(doc)
		if err != nil {
			doc.Close()
			return Outline{}, nil, err
		}
		return o, doc, nil
	case ".docx":
		return asDocument(FromDOCX(r, base))
	case ".md", ".markdown":
		src, err := io.ReadAll(r)
		if err != nil {
			return Outline{}, nil, err
		}
		return asDocument(FromMarkdown(src, base))
	case ".html", ".htm":
		return asDocument(FromHTML(r, base))
	case ".txt":
		return asDocument(FromText(r, base))
	default:
		return Outline{}, nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// asDocument widens a markup builder result to the Document interface
// without letting a nil *MemDocument escape as a non-nil interface.
func asDocument(o Outline, mem *layout.MemDocument, err error) (Outline, layout.Document, error) {
	if err != nil {
		return Outline{}, nil, err
	}
	return o, mem, nil
}
