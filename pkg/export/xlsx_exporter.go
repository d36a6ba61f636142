package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// XLSXExporter renders datasets into a single-sheet Excel workbook.
type XLSXExporter struct{}

// NewXLSXExporter constructs an Excel exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType implements Renderer.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the dataset into a workbook with a bold header row.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("xlsx"); err != nil {
		return nil, err
	}
	file := excelize.NewFile()
	defer file.Close()

	sheet := data.Title
	if sheet == "" {
		sheet = "Schedule"
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := writeRow(file, sheet, 1, toCells(data.Headers)); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(data.Headers), 1)
		_ = file.SetCellStyle(sheet, start, end, style)
	}

	for i, row := range data.Rows {
		if err := writeRow(file, sheet, i+2, toCells(data.record(row))); err != nil {
			return nil, fmt.Errorf("write xlsx row: %w", err)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(file *excelize.File, sheet string, rowIdx int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return err
	}
	return file.SetSheetRow(sheet, cell, &values)
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
