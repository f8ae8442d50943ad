package bolparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	p := NewParser()
	require.NotNil(t, p)
	assert.False(t, p.debug)
	assert.False(t, p.useOCR)
	assert.Equal(t, "eng", p.ocrLang)
}

func TestSetDebug(t *testing.T) {
	p := NewParser()
	p.SetDebug(true)
	assert.True(t, p.debug)
	p.SetDebug(false)
	assert.False(t, p.debug)
}

func TestSetOCR(t *testing.T) {
	p := NewParser()
	p.SetOCR(true)
	assert.True(t, p.useOCR)
}

func TestSetOCRLanguage(t *testing.T) {
	p := NewParser()
	p.SetOCRLanguage("por")
	assert.Equal(t, "por", p.ocrLang)

	// An empty code keeps the current language.
	p.SetOCRLanguage("")
	assert.Equal(t, "por", p.ocrLang)
}

func TestParseFileMissing(t *testing.T) {
	p := NewParser()
	_, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to open file")
}

func TestParseNoText(t *testing.T) {
	p := NewParser()
	_, err := p.Parse(strings.NewReader("not a pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestHasText(t *testing.T) {
	assert.False(t, hasText(nil))
	assert.False(t, hasText([]page{{text: "  \n"}}))
	assert.True(t, hasText([]page{{text: ""}, {text: "BILL OF LADING"}}))
}

func TestCombinedText(t *testing.T) {
	pages := []page{
		{text: "page one\n"},
		{text: "page two"},
	}
	assert.Equal(t, "page one\npage two\n", combinedText(pages))
}

func TestJoinRowText(t *testing.T) {
	tests := []struct {
		name  string
		words []pdf.Text
		want  string
	}{
		{
			name: "words separated by gaps, sorted by X",
			words: []pdf.Text{
				{S: "LADING", X: 60, W: 40, FontSize: 10},
				{S: "BILL", X: 0, W: 18, FontSize: 10},
				{S: "OF", X: 22, W: 12, FontSize: 10},
			},
			want: "BILL OF LADING",
		},
		{
			name: "adjacent glyph runs joined",
			words: []pdf.Text{
				{S: "LAD", X: 0, W: 30, FontSize: 12},
				{S: "ING", X: 30.5, W: 30, FontSize: 12},
			},
			want: "LADING",
		},
		{
			name:  "empty row",
			words: nil,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinRowText(tt.words))
		})
	}
}
