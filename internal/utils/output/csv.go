// internal/utils/output/csv.go
package output

import (
	"encoding/csv"
	"os"

	"github.com/law-makers/rostercrawl/pkg/models"
)

// SaveCSV writes the header and one row per record to filepath
func SaveCSV(records []models.Record, header []string, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write(row(r)); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}
