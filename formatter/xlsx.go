package formatter

import (
	"call-insights/models"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's limit on sheet name length.
const maxSheetName = 31

// WriteXLSX writes the dashboard as a workbook with one sheet per table.
// Numeric cells are written as numbers so they stay sortable in Excel.
func WriteXLSX(d *models.Dashboard, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range prepareTables(d) {
		name := sheetName(t.Title)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := f.SetSheetRow(name, "A1", &t.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		if len(t.Rows) == 0 {
			if err := f.SetCellValue(name, "A2", t.Empty); err != nil {
				return fmt.Errorf("failed to write empty marker: %w", err)
			}
			continue
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]interface{}, len(row))
			for c, v := range row {
				values[c] = cellValue(v)
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("failed to write row %d of %q: %w", r+1, name, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func sheetName(title string) string {
	if len(title) > maxSheetName {
		return strings.TrimSpace(title[:maxSheetName])
	}
	return title
}

func cellValue(v string) interface{} {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
