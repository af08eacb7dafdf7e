package roster

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the sheet name of exported templates.
const TemplateSheet = "FUNCIONARIOS"

// rotationChoices feed the JORNADA drop-down.
var rotationChoices = []string{"5X1", "5X2", "6X1 (FIXO)", "6X1 (INTERCALADA)", "12X36"}

var templateExamples = [][]string{
	{"JOÃO DA SILVA", "123.456.789-00", "2024001", "VIGILANTE", "SHOPPING CENTER", "01/01/2024",
		"MATRIZ RECIFE", "12.345.678/0001-90", "RUA DA AURORA, 123 - BOA VISTA", "RECIFE", "6X1 (FIXO)", "06/01/2025"},
	{"MARIA SANTOS", "987.654.321-00", "2024002", "SUPERVISOR", "HOSPITAL MUNICIPAL", "15/02/2024",
		"FILIAL OLINDA", "98.765.432/0001-10", "AV. GETÚLIO VARGAS, 456 - CENTRO", "OLINDA", "5X2", "18/02/2025"},
}

// WriteTemplate writes a blank roster workbook: the header row, a
// drop-down on JORNADA and, optionally, example rows.
func WriteTemplate(w io.Writer, withExamples bool) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(templateHeaders))
	for i, h := range templateHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(templateHeaders), 1)
	if err := f.SetCellStyle(TemplateSheet, "A1", last, bold); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(templateHeaders))
	if err := f.SetColWidth(TemplateSheet, "A", lastCol, 22); err != nil {
		return err
	}

	if withExamples {
		for i, ex := range templateExamples {
			row := make([]any, len(ex))
			for j, v := range ex {
				row[j] = v
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(TemplateSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write example: %w", err)
			}
		}
	}

	rotCol, _ := excelize.ColumnNumberToName(rotationColumn())
	dv := excelize.NewDataValidation(true)
	dv.Sqref = fmt.Sprintf("%s2:%s1000", rotCol, rotCol)
	if err := dv.SetDropList(rotationChoices); err != nil {
		return err
	}
	if err := f.AddDataValidation(TemplateSheet, dv); err != nil {
		return fmt.Errorf("failed to add rotation list: %w", err)
	}

	return f.Write(w)
}

// rotationColumn is the 1-based template column of JORNADA.
func rotationColumn() int {
	for i, h := range templateHeaders {
		if h == RotationHeader {
			return i + 1
		}
	}
	return len(templateHeaders)
}
