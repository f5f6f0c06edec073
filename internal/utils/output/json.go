// internal/utils/output/json.go
package output

import (
	"encoding/json"
	"os"

	"github.com/law-makers/rostercrawl/pkg/models"
)

// SaveJSON writes records as an indented JSON array. An empty run still
// produces "[]".
func SaveJSON(records []models.Record, filepath string) error {
	if records == nil {
		records = []models.Record{}
	}
	content, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, append(content, '\n'), 0644)
}
