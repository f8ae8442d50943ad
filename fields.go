package bolparser

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// datePattern matches dates as printed on the template, either "12-Mar-2024"
// style or fully numeric.
const datePattern = `(\d{1,2}[-\s./][A-Za-z]{3}[-\s./]\d{2,4}|\d{1,2}[-\s./]\d{1,2}[-\s./]\d{2,4})`

// extractFields populates the record from the loaded pages. Each field has its
// own independent rule set; the first match wins and a miss leaves the field
// empty.
func (p *Parser) extractFields(bol *BillOfLading, pages []page) {
	bol.BOLNumber = extractBOLNumber(pages)

	bol.Shipper = extractParty(pages,
		`(?is)SHIPPER(?:\s*:|.*?)(?:\n)(.*?)(?:CONSIGNEE|NOTIFY PARTY)`,
		rect{20, 80, 300, 120})
	bol.Consignee = extractParty(pages,
		`(?is)CONSIGNEE(?:\s*:|.*?)(?:\n)(.*?)(?:NOTIFY PARTY|VESSEL AND VOYAGE)`,
		rect{20, 130, 300, 180})
	bol.NotifyParty = extractParty(pages,
		`(?is)NOTIFY PARTY(?:\s*:|.*?)(?:\n)(.*?)(?:VESSEL AND VOYAGE|PORT OF LOADING)`,
		rect{20, 180, 300, 240})

	bol.Vessel = extractVessel(pages)
	bol.Containers = extractContainers(pages, bol.BOLNumber)

	bol.IssueDate = extractField(combinedText(pages), []string{
		`(?is)(?:PLACE AND DATE OF ISSUE|DATE OF ISSUE).*?` + datePattern,
	})
	bol.ShippedDate = extractField(combinedText(pages), []string{
		`(?is)(?:SHIPPED ON BOARD DATE|SHIPPED ON BOARD).*?` + datePattern,
	})

	extractPorts(bol, pages)

	bol.Cargo = extractCargo(pages)
}

// extractField tries the patterns in order against the text and returns the
// first capture, trimmed. An empty string means no pattern matched.
func extractField(text string, patterns []string) string {
	for _, pattern := range patterns {
		re := regexp.MustCompile(pattern)
		if matches := re.FindStringSubmatch(text); len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}
	return ""
}

// firstPages bounds a rule to the document header pages.
func firstPages(pages []page, n int) []page {
	if len(pages) > n {
		return pages[:n]
	}
	return pages
}

// extractBOLNumber finds the Bill of Lading number. The label match is
// preferred; the top-right corner of the first page and label-proximity
// candidates are fallbacks.
func extractBOLNumber(pages []page) string {
	for _, pg := range firstPages(pages, 2) {
		if m := extractField(pg.text, []string{`(?i)BILL OF LADING No\.?\s*([A-Z0-9]+)`}); m != "" {
			return m
		}
	}

	if len(pages) > 0 {
		corner := regionText(pages[0], rect{400, 20, 580, 60})
		if m := extractField(corner, []string{`([A-Z]{5}\d{6,})`}); m != "" {
			return m
		}
	}

	for _, pg := range firstPages(pages, 2) {
		if m := extractField(pg.text, []string{`(?i)(?:BOL|B/L|BILL).*?([A-Z]{4,}\d{6,})`}); m != "" {
			return m
		}
	}
	return ""
}

// partyNoiseRe matches boilerplate lines that are not part of a party block.
var partyNoiseRe = regexp.MustCompile(`(?i)This B/L is not negotiable|^NO\.\s+OF|^:`)

// extractParty captures the section between a party label and the next section
// label. The first line is the company name, the rest the address. The page
// region is a fallback for documents where the label match fails.
func extractParty(pages []page, sectionPattern string, region rect) *Party {
	sectionRe := regexp.MustCompile(sectionPattern)
	for _, pg := range firstPages(pages, 2) {
		matches := sectionRe.FindStringSubmatch(pg.text)
		if len(matches) < 2 {
			continue
		}
		section := strings.TrimSpace(matches[1])
		party := &Party{RawText: section}
		party.CompanyName, party.Address = splitPartyLines(section)
		return party
	}

	party := &Party{}
	if len(pages) > 0 {
		party.RawText = regionText(pages[0], region)
		party.CompanyName, party.Address = splitPartyLines(party.RawText)
	}
	return party
}

func splitPartyLines(section string) (company, address string) {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || partyNoiseRe.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "", ""
	}
	return lines[0], strings.Join(lines[1:], " ")
}

// extractVessel finds the vessel name and voyage number.
func extractVessel(pages []page) *Vessel {
	nameVoyageRe := regexp.MustCompile(`(?i)VESSEL AND VOYAGE.*?([A-Z\s]+)/\s*([A-Z0-9]+)`)
	labelPairRe := regexp.MustCompile(`(?is)VESSEL.*?:?\s*([A-Z\s]+).*?VOYAGE.*?:?\s*([A-Z0-9]+)`)

	for _, pg := range firstPages(pages, 2) {
		for _, re := range []*regexp.Regexp{nameVoyageRe, labelPairRe} {
			if matches := re.FindStringSubmatch(pg.text); len(matches) > 2 {
				name := strings.TrimSpace(matches[1])
				voyage := strings.TrimSpace(matches[2])
				return &Vessel{Name: name, Voyage: voyage, RawText: name + "/" + voyage}
			}
		}
	}

	vessel := &Vessel{}
	if len(pages) > 0 {
		vessel.RawText = regionText(pages[0], rect{20, 260, 150, 280})
		if matches := regexp.MustCompile(`([A-Z\s]+)/\s*([A-Z0-9]+)`).FindStringSubmatch(vessel.RawText); len(matches) > 2 {
			vessel.Name = strings.TrimSpace(matches[1])
			vessel.Voyage = strings.TrimSpace(matches[2])
		}
	}
	return vessel
}

// locationNoiseRe rejects captures that grabbed a neighboring column instead
// of a place name.
var locationNoiseRe = regexp.MustCompile(`(?i)BOOKING|REF|AGENT|PLACE OF RECEIPT`)

// extractPorts fills the four routing fields.
func extractPorts(bol *BillOfLading, pages []page) {
	for _, pg := range pages {
		if bol.PortOfLoading == "" {
			bol.PortOfLoading = extractLocation(pg.text, `PORT\s+OF\s+LOADING`)
		}
		if bol.PortOfDischarge == "" {
			bol.PortOfDischarge = extractLocation(pg.text, `PORT\s+OF\s+DISCHARGE`)
		}
		if bol.PlaceOfReceipt == "" {
			bol.PlaceOfReceipt = extractLocation(pg.text, `PLACE\s+OF\s+RECEIPT`)
		}
		if bol.PlaceOfDelivery == "" {
			bol.PlaceOfDelivery = extractLocation(pg.text, `PLACE\s+OF\s+DELIVERY`)
		}
	}

	// Region fallbacks for the two ports, next to the vessel box on page 1.
	if len(pages) > 0 {
		if bol.PortOfLoading == "" {
			if text := regionText(pages[0], rect{280, 260, 400, 280}); text != "" && !locationNoiseRe.MatchString(text) {
				bol.PortOfLoading = text
			}
		}
		if bol.PortOfDischarge == "" {
			if text := regionText(pages[0], rect{280, 280, 400, 300}); text != "" && !locationNoiseRe.MatchString(text) {
				bol.PortOfDischarge = text
			}
		}
	}
}

func extractLocation(text, label string) string {
	re := regexp.MustCompile(`(?is)` + label + `\s*:?\s*([A-Za-z\s,.]+?)(?:PORT|PLACE|$)`)
	matches := re.FindStringSubmatch(text)
	if len(matches) < 2 {
		return ""
	}
	place := strings.TrimSpace(matches[1])
	if place == "" || locationNoiseRe.MatchString(place) {
		return ""
	}
	return place
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// extractCargo finds the document-level cargo totals.
func extractCargo(pages []page) *Cargo {
	cargo := &Cargo{}
	for _, pg := range pages {
		if cargo.PackageCount == "" {
			cargo.PackageCount = extractField(pg.text, []string{
				`(?i)Total\s*(?:Items|Packages|Pkgs)?\s*:?\s*(\d+)`,
			})
		}
		if cargo.GrossWeightKg == "" {
			cargo.GrossWeightKg = extractField(pg.text, []string{
				`(?i)(?:Total\s*)?Gross\s*Weight\s*:?\s*(\d+[\.,]\d+)\s*(?:Kgs|kg)`,
			})
		}
		if cargo.Description == "" {
			desc := extractField(pg.text, []string{
				`(?is)Description of Packages and Goods.*?(?:\n)(.*?)(?:Gross|Weight|Total|FREIGHT)`,
			})
			cargo.Description = strings.TrimSpace(whitespaceRe.ReplaceAllString(desc, " "))
		}
	}
	return cargo
}

// rect is a page region given in top-left-origin coordinates, matching the
// template's layout notes. Word positions use the PDF's bottom-left origin;
// regionText converts using the page height.
type rect struct {
	x0, y0, x1, y1 float64
}

// regionText joins the words whose anchor falls inside the region, in reading
// order. It returns "" when the page carries no positioned words, as with
// content-stream or OCR extraction.
func regionText(pg page, r rect) string {
	if len(pg.words) == 0 {
		return ""
	}

	minY := pg.height - r.y1
	maxY := pg.height - r.y0

	var inside []pdf.Text
	for _, word := range pg.words {
		if word.X >= r.x0 && word.X <= r.x1 && word.Y >= minY && word.Y <= maxY {
			inside = append(inside, word)
		}
	}
	sort.Slice(inside, func(i, j int) bool {
		if inside[i].Y != inside[j].Y {
			return inside[i].Y > inside[j].Y
		}
		return inside[i].X < inside[j].X
	})

	parts := make([]string, 0, len(inside))
	for _, word := range inside {
		if s := strings.TrimSpace(word.S); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
