package bolparser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// SaveJSON serializes the record to a two-space-indented UTF-8 JSON file and
// returns the path written. An empty outputPath derives the name from the
// record's filename, basename plus ".json".
func (b *BillOfLading) SaveJSON(outputPath string) (string, error) {
	if outputPath == "" {
		if b.Filename == "" {
			return "", fmt.Errorf("no output path given and record has no filename")
		}
		base := strings.TrimSuffix(b.Filename, filepath.Ext(b.Filename))
		outputPath = base + ".json"
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return outputPath, nil
}
