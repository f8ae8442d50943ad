package bolparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// ErrNoText is returned when neither the PDF text layer nor OCR yields any text.
var ErrNoText = errors.New("no text could be extracted from the document")

// Parser extracts structured data from Bill of Lading PDFs of the MSC template family.
type Parser struct {
	debug   bool
	useOCR  bool
	ocrLang string
}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{
		ocrLang: "eng",
	}
}

// SetDebug enables or disables printing of the extracted text.
func (p *Parser) SetDebug(debug bool) {
	p.debug = debug
}

// SetOCR switches text extraction to OCR on the embedded page images.
// Requires tesseract to be installed.
func (p *Parser) SetOCR(enabled bool) {
	p.useOCR = enabled
}

// SetOCRLanguage sets the tesseract language code, e.g. "eng" or "por".
func (p *Parser) SetOCRLanguage(lang string) {
	if lang != "" {
		p.ocrLang = lang
	}
}

// ParseFile parses a Bill of Lading PDF file and returns the extracted record.
func (p *Parser) ParseFile(path string) (*BillOfLading, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func(file *os.File) {
		if err := file.Close(); err != nil {
			logrus.Warnf("could not close file: %v", err)
		}
	}(file)

	bol, err := p.Parse(file)
	if err != nil {
		return nil, err
	}
	bol.Filename = filepath.Base(path)
	return bol, nil
}

// Parse parses a Bill of Lading PDF from a reader and returns the extracted record.
// The record's Filename field is left empty; ParseFile fills it in.
func (p *Parser) Parse(reader io.Reader) (*BillOfLading, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF data: %w", err)
	}

	var pages []page
	if p.useOCR {
		pages, err = p.ocrPages(data)
		if err != nil {
			logrus.Warnf("OCR extraction failed, falling back to text layer: %v", err)
		}
	}
	if !hasText(pages) {
		pages = p.textLayerPages(data)
	}
	if !hasText(pages) {
		pages = p.contentStreamPages(data)
	}
	if !hasText(pages) {
		return nil, ErrNoText
	}

	combined := combinedText(pages)
	if p.debug {
		fmt.Println("Extracted Text:")
		fmt.Println(combined)
	}

	bol := &BillOfLading{
		DocumentType: DocumentType,
		Containers:   []Container{},
		RawText:      combined,
	}
	p.extractFields(bol, pages)

	return bol, nil
}

// page holds the extracted text and positioned words of a single PDF page.
type page struct {
	text   string
	words  []pdf.Text
	height float64
}

func hasText(pages []page) bool {
	for _, pg := range pages {
		if strings.TrimSpace(pg.text) != "" {
			return true
		}
	}
	return false
}

func combinedText(pages []page) string {
	var sb strings.Builder
	for _, pg := range pages {
		sb.WriteString(pg.text)
		if !strings.HasSuffix(pg.text, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// textLayerPages extracts the PDF text layer page by page. Returns nil when the
// document has no usable text layer.
func (p *Parser) textLayerPages(data []byte) (pages []page) {
	// The pdf package panics on some malformed cross reference tables.
	defer func() {
		if r := recover(); r != nil {
			logrus.Warnf("panic while reading text layer: %v", r)
			pages = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		logrus.Warnf("could not open PDF text layer: %v", err)
		return nil
	}

	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		pg := reader.Page(pageNr)
		if pg.V.IsNull() {
			continue
		}
		content := pg.Content()
		pages = append(pages, page{
			text:   pageLayerText(pg),
			words:  content.Text,
			height: pageHeight(pg),
		})
	}
	return pages
}

// pageLayerText assembles a page's text rows top to bottom, inserting spaces
// where glyph runs leave a horizontal gap.
func pageLayerText(pg pdf.Page) string {
	rows, err := pg.GetTextByRow()
	if err != nil {
		text, err := pg.GetPlainText(nil)
		if err != nil {
			return ""
		}
		return text
	}

	// Larger Y is higher on the page.
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Position > rows[j].Position
	})

	var sb strings.Builder
	for _, row := range rows {
		line := joinRowText(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// joinRowText joins the glyph runs of one text row left to right.
func joinRowText(words []pdf.Text) string {
	if len(words) == 0 {
		return ""
	}

	sorted := make([]pdf.Text, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var sb strings.Builder
	for i, word := range sorted {
		sb.WriteString(word.S)
		if i == len(sorted)-1 {
			break
		}
		gap := sorted[i+1].X - (word.X + word.W)
		fontSize := word.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		// A gap wider than a fifth of the font size separates two words.
		if gap > fontSize*0.2 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func pageHeight(pg pdf.Page) float64 {
	mediaBox := pg.V.Key("MediaBox")
	if mediaBox.Kind() == pdf.Array && mediaBox.Len() == 4 {
		if h := mediaBox.Index(3).Float64() - mediaBox.Index(1).Float64(); h > 0 {
			return h
		}
	}
	// A4 height in points
	return 842
}
