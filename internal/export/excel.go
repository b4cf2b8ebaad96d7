package export

import (
	"github.com/xuri/excelize/v2"

	"github.com/rohmanhakim/webgrab/internal/config"
)

const excelSheetName = "Pages"

// ExcelWriter mirrors the CSV schema into a workbook, one row per
// record, so both tabular formats always agree.
type ExcelWriter struct{}

func (ExcelWriter) Format() string {
	return config.FormatExcel
}

func (ExcelWriter) Write(bundle *Bundle, outputDir string, baseName string) (string, error) {
	book := excelize.NewFile()
	defer book.Close()

	if err := book.SetSheetName(book.GetSheetName(0), excelSheetName); err != nil {
		return "", err
	}

	if err := setRow(book, 1, tableHeader); err != nil {
		return "", err
	}
	for i, record := range bundle.Records() {
		if err := setRow(book, i+2, tableRow(record)); err != nil {
			return "", err
		}
	}

	path := artifactPath(outputDir, baseName, "xlsx")
	if err := book.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}

func setRow(book *excelize.File, rowIndex int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIndex)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return book.SetSheetRow(excelSheetName, cell, &row)
}
