package bolparser

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DocumentType is the constant document type emitted for every record.
const DocumentType = "Bill of Lading"

// BillOfLading represents the structured data extracted from a Bill of Lading PDF.
// Every field is optional: an absent pattern match leaves the field empty.
type BillOfLading struct {
	DocumentType string `json:"document_type"`
	Filename     string `json:"filename,omitempty"`

	// Bill of Lading number printed on the document
	BOLNumber string `json:"bol_number,omitempty"`

	// Parties named on the document
	Shipper     *Party `json:"shipper,omitempty"`
	Consignee   *Party `json:"consignee,omitempty"`
	NotifyParty *Party `json:"notify_party,omitempty"`

	// Carrying vessel and voyage number
	Vessel *Vessel `json:"vessel,omitempty"`

	// Containers in document order
	Containers []Container `json:"containers"`

	// Dates as printed, e.g. "12-Mar-2024"
	IssueDate   string `json:"issue_date,omitempty"`
	ShippedDate string `json:"shipped_date,omitempty"`

	// Routing
	PortOfLoading   string `json:"port_of_loading,omitempty"`
	PortOfDischarge string `json:"port_of_discharge,omitempty"`
	PlaceOfReceipt  string `json:"place_of_receipt,omitempty"`
	PlaceOfDelivery string `json:"place_of_delivery,omitempty"`

	// Cargo totals
	Cargo *Cargo `json:"cargo,omitempty"`

	// Raw text extracted from the PDF
	RawText string `json:"-"`
}

// Party is a shipper, consignee or notify party block.
type Party struct {
	CompanyName string `json:"company_name,omitempty"`
	Address     string `json:"address,omitempty"`
	RawText     string `json:"raw_text"`
}

// Vessel holds the vessel name and voyage number.
type Vessel struct {
	Name    string `json:"name,omitempty"`
	Voyage  string `json:"voyage,omitempty"`
	RawText string `json:"raw_text"`
}

// Container is one container entry from the container table.
type Container struct {
	ContainerNumber string `json:"container_number"`
	SealNumber      string `json:"seal_number,omitempty"`
	PackageCount    string `json:"package_count,omitempty"`
	Weight          string `json:"weight,omitempty"`

	// Context is the text surrounding the container number on the page.
	Context string `json:"context,omitempty"`
}

// Cargo holds the document-level cargo totals.
type Cargo struct {
	PackageCount  string `json:"package_count,omitempty"`
	GrossWeightKg string `json:"gross_weight_kg,omitempty"`
	Description   string `json:"description,omitempty"`
}

// ISO 6346: four-letter owner/equipment code followed by a seven-digit serial.
var containerNumberRe = regexp.MustCompile(`^[A-Z]{4}\d{7}$`)

// Validate checks that the container number has the ISO 6346 shape.
func (c Container) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ContainerNumber, validation.Required, validation.Match(containerNumberRe)),
	)
}
