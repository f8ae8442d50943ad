package bolparser

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleBOLText mirrors the text layer of a typical document of the template:
// header with the document number, the three party blocks, the vessel and
// routing box, the container table and the totals.
const sampleBOLText = `MSC MEDITERRANEAN SHIPPING COMPANY S.A.
BILL OF LADING No. MEDUP1966175
SHIPPER:
INTERCROMA SA
RUA CONDE FRANCISCO MATARAZZO 100 PONTA GROSSA PR BRAZIL
CONSIGNEE: This B/L is not negotiable unless consigned to order.
MUSCAT WOODEN PALLETS L.L.C.
PO BOX 112 PC 124 RUSAYL MUSCAT SULTANATE OF OMAN
NOTIFY PARTY:
GULF CLEARING AGENCY L.L.C.
PO BOX 55 JEBEL ALI FREE ZONE UNITED ARAB EMIRATES
VESSEL AND VOYAGE: MSC CLEA / NU436R
PLACE OF RECEIPT: PARANAGUA
PORT OF LOADING: PARANAGUA, PR, BRAZIL
PORT OF DISCHARGE: JEBEL ALI, DUBAI
PLACE OF DELIVERY: JEBEL ALI PORT, DUBAI
Container Numbers, Seal Numbers and Marks
MSMU4806730 Seal Number: FX20163107 40' HIGH CUBE
10 PALLETS 11550.000 kgs
SAID TO CONTAIN NEW WOODEN PALLETS HEAT TREATED AND FUMIGATED ACCORDING TO ISPM15 STANDARDS
FREIGHT PREPAID CARGO STOWED WEIGHED AND COUNTED BY SHIPPER LOADED ON BOARD IN APPARENT GOOD ORDER
GLDU7608379 Seal Number: FX20163108 40' HIGH CUBE
12 PALLETS 12423.500 kgs
Description of Packages and Goods
22 PACKAGES OF NEW WOODEN PALLETS HS CODE 44152000
Total Items 22
Total Gross Weight 23973.500 Kgs
SHIPPED ON BOARD DATE 12-Mar-2024
PLACE AND DATE OF ISSUE PARANAGUA 12-Mar-2024
`

func samplePages() []page {
	return []page{{text: sampleBOLText, height: 842}}
}

func TestExtractField(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		patterns []string
		want     string
	}{
		{
			name:     "first pattern wins",
			text:     "BILL OF LADING No. MEDUP1966175",
			patterns: []string{`No\.\s*([A-Z0-9]+)`, `(MEDUP\d+)`},
			want:     "MEDUP1966175",
		},
		{
			name:     "falls through to second pattern",
			text:     "Document MEDUP1966175",
			patterns: []string{`No\.\s*([A-Z0-9]+)`, `(MEDUP\d+)`},
			want:     "MEDUP1966175",
		},
		{
			name:     "capture is trimmed",
			text:     "Voyage:  NU436R \n",
			patterns: []string{`Voyage:\s*(.+?)(?:\n|$)`},
			want:     "NU436R",
		},
		{
			name:     "no match",
			text:     "some random text",
			patterns: []string{`No\.\s*([A-Z0-9]+)`},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractField(tt.text, tt.patterns))
		})
	}
}

func TestExtractBOLNumber(t *testing.T) {
	t.Run("label match", func(t *testing.T) {
		got := extractBOLNumber(samplePages())
		assert.Equal(t, "MEDUP1966175", got)
	})

	t.Run("lowercase label", func(t *testing.T) {
		got := extractBOLNumber([]page{{text: "Bill of Lading No. MEDUAB123456\n"}})
		assert.Equal(t, "MEDUAB123456", got)
	})

	t.Run("top right corner fallback", func(t *testing.T) {
		pg := page{
			text:   "illegible scan without a label",
			height: 842,
			words: []pdf.Text{
				{S: "MEDUP1966175", X: 450, Y: 802},
				{S: "MSC", X: 30, Y: 802},
			},
		}
		got := extractBOLNumber([]page{pg})
		assert.Equal(t, "MEDUP1966175", got)
	})

	t.Run("no number anywhere", func(t *testing.T) {
		got := extractBOLNumber([]page{{text: "nothing to see here"}})
		assert.Equal(t, "", got)
	})
}

func TestSplitPartyLines(t *testing.T) {
	tests := []struct {
		name        string
		section     string
		wantCompany string
		wantAddress string
	}{
		{
			name:        "company and two address lines",
			section:     "INTERCROMA SA\nRUA CONDE 100\nPONTA GROSSA PR BRAZIL",
			wantCompany: "INTERCROMA SA",
			wantAddress: "RUA CONDE 100 PONTA GROSSA PR BRAZIL",
		},
		{
			name:        "boilerplate line skipped",
			section:     "This B/L is not negotiable unless consigned to order\nMUSCAT WOODEN PALLETS L.L.C.\nPO BOX 112 MUSCAT",
			wantCompany: "MUSCAT WOODEN PALLETS L.L.C.",
			wantAddress: "PO BOX 112 MUSCAT",
		},
		{
			name:        "stray label colon skipped",
			section:     ": \nGULF CLEARING AGENCY L.L.C.",
			wantCompany: "GULF CLEARING AGENCY L.L.C.",
			wantAddress: "",
		},
		{
			name:        "empty section",
			section:     "  \n ",
			wantCompany: "",
			wantAddress: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			company, address := splitPartyLines(tt.section)
			assert.Equal(t, tt.wantCompany, company)
			assert.Equal(t, tt.wantAddress, address)
		})
	}
}

func TestExtractParty(t *testing.T) {
	shipperPattern := `(?is)SHIPPER(?:\s*:|.*?)(?:\n)(.*?)(?:CONSIGNEE|NOTIFY PARTY)`

	t.Run("section between labels", func(t *testing.T) {
		party := extractParty(samplePages(), shipperPattern, rect{20, 80, 300, 120})
		require.NotNil(t, party)
		assert.Equal(t, "INTERCROMA SA", party.CompanyName)
		assert.Equal(t, "RUA CONDE FRANCISCO MATARAZZO 100 PONTA GROSSA PR BRAZIL", party.Address)
		assert.Contains(t, party.RawText, "INTERCROMA SA")
	})

	t.Run("region fallback", func(t *testing.T) {
		pg := page{
			text:   "scan with no section labels",
			height: 842,
			words: []pdf.Text{
				// rect{20, 80, 300, 120} spans Y 722..762 on an A4 page.
				{S: "INTERCROMA", X: 30, Y: 750},
				{S: "SA", X: 95, Y: 750},
				{S: "elsewhere", X: 400, Y: 400},
			},
		}
		party := extractParty([]page{pg}, shipperPattern, rect{20, 80, 300, 120})
		require.NotNil(t, party)
		assert.Equal(t, "INTERCROMA SA", party.CompanyName)
	})

	t.Run("nothing found still returns a party", func(t *testing.T) {
		party := extractParty([]page{{text: "blank"}}, shipperPattern, rect{20, 80, 300, 120})
		require.NotNil(t, party)
		assert.Equal(t, "", party.CompanyName)
	})
}

func TestExtractVessel(t *testing.T) {
	t.Run("name and voyage on one line", func(t *testing.T) {
		vessel := extractVessel(samplePages())
		require.NotNil(t, vessel)
		assert.Equal(t, "MSC CLEA", vessel.Name)
		assert.Equal(t, "NU436R", vessel.Voyage)
	})

	t.Run("separate labels", func(t *testing.T) {
		vessel := extractVessel([]page{{text: "VESSEL: MAERSK SELETAR\nVOYAGE: 412W\n"}})
		require.NotNil(t, vessel)
		assert.Equal(t, "MAERSK SELETAR", vessel.Name)
		assert.Equal(t, "412W", vessel.Voyage)
	})

	t.Run("region fallback", func(t *testing.T) {
		pg := page{
			text:   "illegible scan",
			height: 842,
			words: []pdf.Text{
				// rect{20, 260, 150, 280} spans Y 562..582.
				{S: "MSC", X: 25, Y: 570},
				{S: "CLEA", X: 50, Y: 570},
				{S: "/", X: 85, Y: 570},
				{S: "NU436R", X: 95, Y: 570},
			},
		}
		vessel := extractVessel([]page{pg})
		require.NotNil(t, vessel)
		assert.Equal(t, "MSC CLEA", vessel.Name)
		assert.Equal(t, "NU436R", vessel.Voyage)
	})

	t.Run("nothing found", func(t *testing.T) {
		vessel := extractVessel([]page{{text: "blank"}})
		require.NotNil(t, vessel)
		assert.Equal(t, "", vessel.Name)
		assert.Equal(t, "", vessel.Voyage)
	})
}

func TestExtractLocation(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		label string
		want  string
	}{
		{
			name:  "stops at the next routing label",
			text:  "PORT OF LOADING: PARANAGUA, PR, BRAZIL\nPORT OF DISCHARGE: JEBEL ALI\n",
			label: `PORT\s+OF\s+LOADING`,
			want:  "PARANAGUA, PR, BRAZIL",
		},
		{
			name:  "stops at end of text",
			text:  "PORT OF DISCHARGE: JEBEL ALI, DUBAI\n",
			label: `PORT\s+OF\s+DISCHARGE`,
			want:  "JEBEL ALI, DUBAI",
		},
		{
			name:  "neighboring column noise rejected",
			text:  "PORT OF LOADING: BOOKING AGENT\n",
			label: `PORT\s+OF\s+LOADING`,
			want:  "",
		},
		{
			name:  "label absent",
			text:  "no routing box on this page",
			label: `PORT\s+OF\s+LOADING`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractLocation(tt.text, tt.label))
		})
	}
}

func TestExtractPorts(t *testing.T) {
	bol := &BillOfLading{}
	extractPorts(bol, samplePages())

	assert.Equal(t, "PARANAGUA, PR, BRAZIL", bol.PortOfLoading)
	assert.Equal(t, "JEBEL ALI, DUBAI", bol.PortOfDischarge)
	assert.Equal(t, "PARANAGUA", bol.PlaceOfReceipt)
	assert.Equal(t, "JEBEL ALI", bol.PlaceOfDelivery)
}

func TestExtractCargo(t *testing.T) {
	cargo := extractCargo(samplePages())
	require.NotNil(t, cargo)

	assert.Equal(t, "22", cargo.PackageCount)
	assert.Equal(t, "23973.500", cargo.GrossWeightKg)
	assert.Equal(t, "22 PACKAGES OF NEW WOODEN PALLETS HS CODE 44152000", cargo.Description)
}

func TestExtractFields(t *testing.T) {
	p := NewParser()
	bol := &BillOfLading{DocumentType: DocumentType, Containers: []Container{}}
	p.extractFields(bol, samplePages())

	assert.Equal(t, "MEDUP1966175", bol.BOLNumber)

	require.NotNil(t, bol.Shipper)
	assert.Equal(t, "INTERCROMA SA", bol.Shipper.CompanyName)
	require.NotNil(t, bol.Consignee)
	assert.Equal(t, "MUSCAT WOODEN PALLETS L.L.C.", bol.Consignee.CompanyName)
	assert.Equal(t, "PO BOX 112 PC 124 RUSAYL MUSCAT SULTANATE OF OMAN", bol.Consignee.Address)
	require.NotNil(t, bol.NotifyParty)
	assert.Equal(t, "GULF CLEARING AGENCY L.L.C.", bol.NotifyParty.CompanyName)

	require.NotNil(t, bol.Vessel)
	assert.Equal(t, "MSC CLEA", bol.Vessel.Name)
	assert.Equal(t, "NU436R", bol.Vessel.Voyage)

	require.Len(t, bol.Containers, 2)
	assert.Equal(t, "MSMU4806730", bol.Containers[0].ContainerNumber)
	assert.Equal(t, "FX20163107", bol.Containers[0].SealNumber)
	assert.Equal(t, "GLDU7608379", bol.Containers[1].ContainerNumber)
	assert.Equal(t, "FX20163108", bol.Containers[1].SealNumber)

	assert.Equal(t, "12-Mar-2024", bol.IssueDate)
	assert.Equal(t, "12-Mar-2024", bol.ShippedDate)

	assert.Equal(t, "PARANAGUA, PR, BRAZIL", bol.PortOfLoading)
	assert.Equal(t, "JEBEL ALI, DUBAI", bol.PortOfDischarge)

	require.NotNil(t, bol.Cargo)
	assert.Equal(t, "22", bol.Cargo.PackageCount)
	assert.Equal(t, "23973.500", bol.Cargo.GrossWeightKg)
}

func TestRegionText(t *testing.T) {
	pg := page{
		height: 842,
		words: []pdf.Text{
			// rect{0, 0, 100, 100} spans Y 742..842.
			{S: "second", X: 50, Y: 800},
			{S: "first", X: 10, Y: 800},
			{S: "below", X: 10, Y: 780},
			{S: "outside", X: 200, Y: 800},
		},
	}

	t.Run("reading order inside region", func(t *testing.T) {
		assert.Equal(t, "first second below", regionText(pg, rect{0, 0, 100, 100}))
	})

	t.Run("empty region", func(t *testing.T) {
		assert.Equal(t, "", regionText(pg, rect{300, 0, 400, 100}))
	})

	t.Run("no positioned words", func(t *testing.T) {
		assert.Equal(t, "", regionText(page{text: "content stream text"}, rect{0, 0, 100, 100}))
	})
}
