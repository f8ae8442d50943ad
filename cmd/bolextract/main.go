package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	formatter "github.com/bluexlab/logrus-formatter"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	bolparser "github.com/freightdocs/bol-parser-go"
)

type CLI struct {
	Paths     []string `arg:"" name:"pdf-path" help:"Bill of Lading PDF file(s) to process." type:"path"`
	Output    string   `short:"o" help:"Output JSON file path (single input only)."`
	OutputDir string   `help:"Directory for the JSON files when processing multiple inputs." type:"path"`
	OCR       bool     `help:"Use OCR on the page images instead of the PDF text layer."`
	Lang      string   `default:"eng" help:"OCR language code passed to tesseract."`
	Summary   bool     `short:"s" help:"Write a summary.json with the key fields of every document."`
	Debug     bool     `help:"Print the extracted text."`
}

// summaryEntry is one row of summary.json.
type summaryEntry struct {
	Filename        string `json:"filename"`
	BOLNumber       string `json:"bol_number,omitempty"`
	Shipper         string `json:"shipper,omitempty"`
	Consignee       string `json:"consignee,omitempty"`
	Vessel          string `json:"vessel,omitempty"`
	ContainerCount  int    `json:"container_count"`
	IssueDate       string `json:"issue_date,omitempty"`
	PortOfLoading   string `json:"port_of_loading,omitempty"`
	PortOfDischarge string `json:"port_of_discharge,omitempty"`
}

func main() {
	formatter.InitLogger()

	var cli CLI
	kong.Parse(&cli,
		kong.Description("Extract structured fields from Bill of Lading PDFs and emit JSON."),
		kong.UsageOnError())

	if cli.Output != "" && len(cli.Paths) > 1 {
		logrus.Error("--output only applies to a single input; use --output-dir for multiple inputs")
		os.Exit(2)
	}
	if cli.OutputDir != "" {
		if err := os.MkdirAll(cli.OutputDir, 0o755); err != nil {
			logrus.Errorf("failed to create output directory: %v", err)
			os.Exit(1)
		}
	}

	succeeded := color.New(color.FgGreen)
	failed := color.New(color.FgRed)

	var summary []summaryEntry
	failures := 0
	for _, path := range cli.Paths {
		bol, outFile, err := processFile(cli, path)
		if err != nil {
			failed.Printf("✗ %s: %v\n", path, err)
			failures++
			continue
		}
		succeeded.Printf("✓ %s -> %s\n", path, outFile)
		printKeyFields(bol)
		if cli.Summary {
			summary = append(summary, summarize(bol))
		}
	}

	if cli.Summary && len(summary) > 0 {
		dir := cli.OutputDir
		if dir == "" {
			dir = "."
		}
		summaryPath := filepath.Join(dir, "summary.json")
		if err := writeSummary(summaryPath, summary); err != nil {
			logrus.Errorf("failed to write summary: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Summary saved to %s\n", summaryPath)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func processFile(cli CLI, path string) (*bolparser.BillOfLading, string, error) {
	parser := bolparser.NewParser()
	parser.SetDebug(cli.Debug)
	if cli.OCR {
		parser.SetOCR(true)
		parser.SetOCRLanguage(cli.Lang)
	}

	bol, err := parser.ParseFile(path)
	if err != nil {
		return nil, "", err
	}

	output := cli.Output
	if output == "" && cli.OutputDir != "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		output = filepath.Join(cli.OutputDir, base+".json")
	}
	outFile, err := bol.SaveJSON(output)
	if err != nil {
		return nil, "", err
	}
	return bol, outFile, nil
}

func printKeyFields(bol *bolparser.BillOfLading) {
	fmt.Printf("  BOL Number: %s\n", orNotFound(bol.BOLNumber))
	fmt.Printf("  Shipper: %s\n", orNotFound(companyName(bol.Shipper)))
	fmt.Printf("  Consignee: %s\n", orNotFound(companyName(bol.Consignee)))
	fmt.Printf("  Vessel: %s\n", orNotFound(vesselName(bol.Vessel)))
	fmt.Printf("  Containers: %d\n", len(bol.Containers))
}

func summarize(bol *bolparser.BillOfLading) summaryEntry {
	return summaryEntry{
		Filename:        bol.Filename,
		BOLNumber:       bol.BOLNumber,
		Shipper:         companyName(bol.Shipper),
		Consignee:       companyName(bol.Consignee),
		Vessel:          vesselName(bol.Vessel),
		ContainerCount:  len(bol.Containers),
		IssueDate:       bol.IssueDate,
		PortOfLoading:   bol.PortOfLoading,
		PortOfDischarge: bol.PortOfDischarge,
	}
}

func writeSummary(path string, entries []summaryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func companyName(p *bolparser.Party) string {
	if p == nil {
		return ""
	}
	return p.CompanyName
}

func vesselName(v *bolparser.Vessel) string {
	if v == nil {
		return ""
	}
	return v.Name
}

func orNotFound(s string) string {
	if s == "" {
		return "Not found"
	}
	return s
}
