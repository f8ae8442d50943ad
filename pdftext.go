package bolparser

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// contentStreamPages is the fallback text extractor: it decodes the string
// operands of each page's content stream directly. It produces no word
// positions, so region-based rules do not apply to its output.
func (p *Parser) contentStreamPages(data []byte) []page {
	conf := model.NewDefaultConfiguration()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		logrus.Warnf("could not read PDF content streams: %v", err)
		return nil
	}

	var pages []page
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		contentReader, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || contentReader == nil {
			continue
		}
		contentBytes, err := io.ReadAll(contentReader)
		if err != nil {
			continue
		}
		pages = append(pages, page{text: decodeContentStream(string(contentBytes))})
	}
	return pages
}

// decodeContentStream pulls the text-showing operands out of a PDF content
// stream: literal strings in parentheses and hex strings in angle brackets.
func decodeContentStream(content string) string {
	var result strings.Builder

	for _, s := range literalStrings(content) {
		result.WriteString(decodeLiteralString(s))
		result.WriteString("\n")
	}

	i := 0
	for i < len(content) {
		if content[i] == '<' {
			end := strings.IndexByte(content[i+1:], '>')
			if end < 0 {
				break
			}
			hex := content[i+1 : i+1+end]
			if isHex(hex) {
				if text := decodeHexString(hex); text != "" {
					result.WriteString(text)
					result.WriteString("\n")
				}
			}
			i += end + 2
			continue
		}
		i++
	}

	return result.String()
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// literalStrings extracts parenthesized strings, handling escapes and nesting.
func literalStrings(content string) []string {
	var results []string
	i := 0
	for i < len(content) {
		if content[i] == '(' {
			str, endIdx := literalString(content, i)
			if endIdx > i {
				results = append(results, str)
				i = endIdx
				continue
			}
		}
		i++
	}
	return results
}

// literalString extracts one parenthesized string starting at start. It
// returns the content without the outer parens and the index after the
// closing paren.
func literalString(content string, start int) (string, int) {
	if start >= len(content) || content[start] != '(' {
		return "", start
	}

	var result strings.Builder
	depth := 0
	i := start

	for i < len(content) {
		ch := content[i]
		if ch == '\\' && i+1 < len(content) {
			result.WriteByte(ch)
			result.WriteByte(content[i+1])
			i += 2
			continue
		}
		switch {
		case ch == '(':
			depth++
			if depth > 1 {
				result.WriteByte(ch)
			}
		case ch == ')':
			depth--
			if depth == 0 {
				return result.String(), i + 1
			}
			result.WriteByte(ch)
		case depth > 0:
			result.WriteByte(ch)
		}
		i++
	}
	return result.String(), i
}

// decodeLiteralString decodes the escape sequences of a PDF literal string.
func decodeLiteralString(s string) string {
	var result strings.Builder
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				result.WriteRune('\n')
			case 'r':
				result.WriteRune('\r')
			case 't':
				result.WriteRune('\t')
			case 'b':
				result.WriteRune('\b')
			case 'f':
				result.WriteRune('\f')
			case '(':
				result.WriteRune('(')
			case ')':
				result.WriteRune(')')
			case '\\':
				result.WriteRune('\\')
			default:
				if s[i+1] >= '0' && s[i+1] <= '7' {
					octal := string(s[i+1])
					j := i + 2
					for k := 0; k < 2 && j < len(s) && s[j] >= '0' && s[j] <= '7'; k++ {
						octal += string(s[j])
						j++
					}
					// Octal escapes are raw bytes in the font
					// encoding; the charmap pass below maps them.
					if val, err := strconv.ParseInt(octal, 8, 32); err == nil {
						result.WriteByte(byte(val))
					}
					i = j - 1
				} else {
					result.WriteByte(s[i+1])
				}
			}
			i += 2
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	decoded := result.String()
	if containsHighBytes(decoded) || strings.ContainsRune(decoded, '�') {
		if converted, err := decodeWindows1252(decoded); err == nil {
			return converted
		}
	}
	return decoded
}

func containsHighBytes(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return true
		}
	}
	return false
}

// decodeWindows1252 converts a cp1252-encoded string to UTF-8. The template's
// fonts carry WinAnsiEncoding.
func decodeWindows1252(s string) (string, error) {
	result, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s, err
	}
	return result, nil
}

// decodeHexString decodes a hex string operand, detecting UTF-16BE content.
func decodeHexString(hex string) string {
	if len(hex)%2 != 0 {
		hex += "0"
	}

	byteData := make([]byte, len(hex)/2)
	for i := 0; i+1 < len(hex); i += 2 {
		val, err := strconv.ParseInt(hex[i:i+2], 16, 32)
		if err != nil {
			continue
		}
		byteData[i/2] = byte(val)
	}

	if len(byteData) >= 2 && byteData[0] == 0xFE && byteData[1] == 0xFF {
		return decodeUTF16BE(byteData[2:])
	}
	if len(byteData) >= 4 && looksLikeUTF16BE(byteData) {
		return decodeUTF16BE(byteData)
	}

	var result strings.Builder
	for _, b := range byteData {
		if b >= 32 {
			result.WriteByte(b)
		}
	}

	decoded := result.String()
	if containsHighBytes(decoded) {
		if converted, err := decodeWindows1252(decoded); err == nil {
			return converted
		}
	}
	return decoded
}

// looksLikeUTF16BE reports whether the high bytes are mostly zero, as they are
// for UTF-16BE encoded Latin text.
func looksLikeUTF16BE(data []byte) bool {
	if len(data) < 4 || len(data)%2 != 0 {
		return false
	}
	zeroCount := 0
	for i := 0; i < len(data); i += 2 {
		if data[i] == 0 {
			zeroCount++
		}
	}
	return zeroCount > len(data)/4
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = append(data, 0)
	}

	u16 := make([]uint16, len(data)/2)
	for i := 0; i < len(data); i += 2 {
		u16[i/2] = uint16(data[i])<<8 | uint16(data[i+1])
	}

	var result strings.Builder
	for _, r := range utf16.Decode(u16) {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			result.WriteRune(r)
		}
	}
	return result.String()
}
