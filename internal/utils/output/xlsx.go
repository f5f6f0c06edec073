// internal/utils/output/xlsx.go
package output

import (
	"github.com/law-makers/rostercrawl/pkg/models"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Records"

// SaveXLSX writes records to a single-sheet workbook with a filterable
// header row.
func SaveXLSX(records []models.Record, header []string, filepath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return err
	}

	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(r)
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(header), len(records)+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(xlsxSheet, "A1:"+last, nil); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "A", "A", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "B", "C", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "D", "D", 48); err != nil {
		return err
	}

	return f.SaveAs(filepath)
}
