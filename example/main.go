package main

import (
	"fmt"
	"log"
	"os"

	json "github.com/goccy/go-json"

	bolparser "github.com/freightdocs/bol-parser-go"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run example/main.go <path-to-pdf>")
		os.Exit(1)
	}

	parser := bolparser.NewParser()

	result, err := parser.ParseFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to parse PDF: %v", err)
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal JSON: %v", err)
	}
	fmt.Println(string(jsonData))

	fmt.Println("\n=== Extracted Information ===")
	if result.BOLNumber != "" {
		fmt.Printf("BOL Number: %s\n", result.BOLNumber)
	}
	if result.Shipper != nil && result.Shipper.CompanyName != "" {
		fmt.Printf("Shipper: %s\n", result.Shipper.CompanyName)
	}
	if result.Consignee != nil && result.Consignee.CompanyName != "" {
		fmt.Printf("Consignee: %s\n", result.Consignee.CompanyName)
	}
	if result.Vessel != nil && result.Vessel.Name != "" {
		fmt.Printf("Vessel: %s / %s\n", result.Vessel.Name, result.Vessel.Voyage)
	}
	for _, c := range result.Containers {
		fmt.Printf("Container: %s (seal %s)\n", c.ContainerNumber, c.SealNumber)
	}
}
