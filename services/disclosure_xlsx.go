package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// RenderDisclosureXLSX renders the disclosure rows as an XLSX index with the
// same ordering and flags as the PDF report
func RenderDisclosureXLSX(result *DisclosureResult, caseNumber string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Disclosure"
	f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	categoryStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	groupStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	institutionStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Italic: true}})
	newStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Color: "B00020"}})

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Disclosure of Documents - Case %s", caseNumber))
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Generated %s - %d documents (%d new since last disclosure)",
		result.GeneratedAt.Format("02 Jan 2006 15:04"), result.DocumentCount, result.NewCount))

	headers := []string{"Number", "Description", "Dated", "Status", "New"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, groupStyle)
	}

	row := 5
	for _, r := range result.Rows {
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		switch r.Type {
		case RowTypeCategory:
			f.SetCellValue(sheet, cellA, r.Label)
			f.SetCellStyle(sheet, cellA, cellA, categoryStyle)
		case RowTypeGroup:
			f.SetCellValue(sheet, cellA, r.Label)
			f.SetCellStyle(sheet, cellA, cellA, groupStyle)
		case RowTypeInstitution:
			f.SetCellValue(sheet, cellA, r.Label)
			f.SetCellStyle(sheet, cellA, cellA, institutionStyle)
		case RowTypeDocument:
			f.SetCellValue(sheet, cellA, r.DocumentNumber)
			cellB, _ := excelize.CoordinatesToCellName(2, row)
			f.SetCellValue(sheet, cellB, r.DisplayName)
			cellC, _ := excelize.CoordinatesToCellName(3, row)
			f.SetCellValue(sheet, cellC, r.Dated)
			cellD, _ := excelize.CoordinatesToCellName(4, row)
			f.SetCellValue(sheet, cellD, r.Status)
			if r.IsNew {
				cellE, _ := excelize.CoordinatesToCellName(5, row)
				f.SetCellValue(sheet, cellE, "NEW")
				f.SetCellStyle(sheet, cellE, cellE, newStyle)
			}
		}
		row++
	}

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 48)
	f.SetColWidth(sheet, "C", "C", 26)
	f.SetColWidth(sheet, "D", "D", 18)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write disclosure workbook: %w", err)
	}
	return buf.Bytes(), nil
}
