package xlsx

import "github.com/xuri/excelize/v2"

func writeHeader(f *excelize.File, sheet string, columns []string) error {
	return writeRow(f, sheet, 1, columns)
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

// highlightMissing fills the given rows red across width columns
func highlightMissing(f *excelize.File, sheet string, width int, rows []int) error {
	if len(rows) == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FF0000"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	for _, row := range rows {
		first, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(width, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, first, last, style); err != nil {
			return err
		}
	}
	return nil
}
