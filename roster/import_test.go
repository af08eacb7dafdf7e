package roster

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "funcao", NormalizeHeader("Função"))
	assert.Equal(t, "funcao", NormalizeHeader(" FUNCAO. "))
	assert.Equal(t, "primeirodiadefolga", NormalizeHeader("Primeiro Dia de Folga"))
	assert.Equal(t, "admissao", NormalizeHeader("ADMISSÃO"))
}

func TestIsTaxIDLike(t *testing.T) {
	assert.True(t, IsTaxIDLike("123.456.789-00"))
	assert.True(t, IsTaxIDLike("12345678900"))
	assert.False(t, IsTaxIDLike("POSTO 12"))
	assert.False(t, IsTaxIDLike(""))
}

func TestImportXLSX(t *testing.T) {
	// GIVEN: a roster with shuffled columns, loose header spelling and mixed date cells
	buf := workbook(t, [][]any{
		{"Posto", "Nome", "Função", "Admissão", "Tipo de Jornada", "1 Folga", "CPF"},
		{"shopping", "maria silva", "vigilante", "15/02/2024", "5x1", "06/01/2025", "111.222.333-44"},
		{"", "", "porteiro", "", "", "", ""},
		{"123.456.789-00", "joão souza", "", "2024-03-10", "escala livre", "31/02/2025", ""},
		{"HOSPITAL", "ana lima", "", 45292, "6x1 intercalada", "", ""},
	})

	// WHEN: imported
	res, err := NewImporter(rota.SixOneFixed).ImportXLSX(buf)

	// THEN: three employees, one skipped row, warnings for the bad values
	require.NoError(t, err)
	require.Len(t, res.Employees, 3)
	assert.NotEmpty(t, res.BatchID)

	maria := res.Employees[0]
	assert.Equal(t, "MARIA SILVA", maria.Name)
	assert.Equal(t, "SHOPPING", maria.Post)
	assert.Equal(t, "VIGILANTE", maria.Profile.Role)
	assert.Equal(t, "111.222.333-44", maria.Profile.TaxID)
	assert.Equal(t, rota.FiveOne, maria.Rotation)
	require.NotNil(t, maria.Admission)
	assert.Equal(t, "2024-02-15", maria.Admission.String())
	require.NotNil(t, maria.Anchor)
	assert.Equal(t, "2025-01-06", maria.Anchor.String())

	joao := res.Employees[1]
	assert.Equal(t, "JOÃO SOUZA", joao.Name)
	assert.Equal(t, rota.SixOneFixed, joao.Rotation, "unknown rotation uses the default")
	assert.Nil(t, joao.Anchor)

	ana := res.Employees[2]
	require.NotNil(t, ana.Admission)
	assert.Equal(t, "2024-01-01", ana.Admission.String(), "excel serial date")
	assert.Equal(t, rota.SixOneIntercalated, ana.Rotation)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Row)
	assert.Len(t, res.Warnings, 2)

	assert.Equal(t, []string{"SHOPPING", "HOSPITAL"}, res.Posts, "CPF-looking posts are not registered")
}

func TestImport_MissingNameColumn(t *testing.T) {
	_, err := NewImporter("").FromRows([][]string{{"CPF", "POSTO"}, {"1", "A"}})
	assert.ErrorIs(t, err, generic.ErrInvalidImport)
	assert.True(t, generic.IsClientError(err))

	_, err = NewImporter("").ImportXLSX(strings.NewReader("not a workbook"))
	assert.ErrorIs(t, err, generic.ErrInvalidImport)
}

func TestImport_DuplicateNameReplaces(t *testing.T) {
	res, err := NewImporter(rota.FiveTwo).FromRows([][]string{
		{"NOME", "POSTO"},
		{"ANA", "A"},
		{"ana", "B"},
	})
	require.NoError(t, err)
	require.Len(t, res.Employees, 1)
	assert.Equal(t, "B", res.Employees[0].Post)
	assert.Len(t, res.Warnings, 1)
}

func TestImportCSV(t *testing.T) {
	t.Run("semicolon utf-8", func(t *testing.T) {
		data := "\xef\xbb\xbfNOME;ESCALA;PRIMEIRO DIA DE FOLGA\nCARLOS;12x36;11032025\n"
		res, err := NewImporter(rota.FiveTwo).ImportCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, res.Employees, 1)
		assert.Equal(t, rota.TwelveThirtySix, res.Employees[0].Rotation)
		assert.Equal(t, "2025-03-11", res.Employees[0].Anchor.String())
	})

	t.Run("latin-1", func(t *testing.T) {
		encoded, err := charmap.ISO8859_1.NewEncoder().String("NOME,FUNÇÃO\nJOSÉ,PORTEIRO\n")
		require.NoError(t, err)
		res, err := NewImporter(rota.FiveTwo).ImportCSV(strings.NewReader(encoded))
		require.NoError(t, err)
		require.Len(t, res.Employees, 1)
		assert.Equal(t, "JOSÉ", res.Employees[0].Name)
		assert.Equal(t, "PORTEIRO", res.Employees[0].Profile.Role)
	})
}

func TestFormatFromFilename(t *testing.T) {
	f, err := FormatFromFilename("Roster.XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = FormatFromFilename("roster.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromFilename("roster.xls")
	assert.ErrorIs(t, err, generic.ErrInvalidImport)
}

func TestWriteTemplate_RoundTrip(t *testing.T) {
	// GIVEN: an exported template with examples
	buf := new(bytes.Buffer)
	require.NoError(t, WriteTemplate(buf, true))

	// WHEN: the template is imported back
	res, err := NewImporter(rota.FiveTwo).ImportXLSX(bytes.NewReader(buf.Bytes()))

	// THEN: every header is recognized and examples parse cleanly
	require.NoError(t, err)
	require.Len(t, res.Employees, 2)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, rota.SixOneFixed, res.Employees[0].Rotation)
	assert.Equal(t, "JOÃO DA SILVA", res.Employees[0].Name)
	assert.Equal(t, "RECIFE", res.Employees[0].Profile.City)
	assert.Equal(t, "12.345.678/0001-90", res.Employees[0].Profile.BranchTaxID)
	assert.Equal(t, rota.FiveTwo, res.Employees[1].Rotation)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{TemplateSheet}, f.GetSheetList())

	blank := new(bytes.Buffer)
	require.NoError(t, WriteTemplate(blank, false))
	res, err = NewImporter(rota.FiveTwo).ImportXLSX(blank)
	require.NoError(t, err)
	assert.Empty(t, res.Employees)
}
