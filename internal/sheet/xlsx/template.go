package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

const templateSheet = "Sheet1"

// Summary formulas. The average ignores the header and stops at the last
// numeric cell; the BFI line counts ON/OFF rows and the ON share.
const (
	avgLabelCell   = "F5"
	avgFormulaCell = "G5"
	avgFormula     = `IFERROR(AVERAGE(B2:INDEX(B:B,MATCH(1E+306,B:B))), 0)`

	bfiLabelCell   = "H2"
	bfiFormulaCell = "I2"
	bfiFormula     = `CONCATENATE("ON: ", COUNTIF(E:E, "ON"), ", OFF: ", COUNTIF(E:E, "OFF"), ` +
		`" , ON%: ", TEXT(IF(COUNTIF(E:E, "ON")+COUNTIF(E:E, "OFF")>0, ` +
		`COUNTIF(E:E, "ON")/(COUNTIF(E:E, "ON")+COUNTIF(E:E, "OFF")), 0), "0.00%"))`
)

// Generate writes an empty workbook with the styled header row and the two
// summary cells. An existing file at path is overwritten.
func Generate(path string) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFFF00"}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "000000"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, title := range profile.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(templateSheet, cell, title); err != nil {
			return fmt.Errorf("set header %s: %w", cell, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(profile.Columns), 1)
	if err := f.SetCellStyle(templateSheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	summary := []struct {
		label, labelCell, formula, formulaCell string
	}{
		{"avg eDPI:", avgLabelCell, avgFormula, avgFormulaCell},
		{"BFI:", bfiLabelCell, bfiFormula, bfiFormulaCell},
	}
	for _, s := range summary {
		if err := f.SetCellValue(templateSheet, s.labelCell, s.label); err != nil {
			return fmt.Errorf("set %s: %w", s.labelCell, err)
		}
		if err := f.SetCellFormula(templateSheet, s.formulaCell, s.formula); err != nil {
			return fmt.Errorf("set formula %s: %w", s.formulaCell, err)
		}
		if err := f.SetCellStyle(templateSheet, s.labelCell, s.labelCell, style); err != nil {
			return fmt.Errorf("style %s: %w", s.labelCell, err)
		}
		if err := f.SetCellStyle(templateSheet, s.formulaCell, s.formulaCell, style); err != nil {
			return fmt.Errorf("style %s: %w", s.formulaCell, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save template %s: %w", path, err)
	}
	return nil
}
