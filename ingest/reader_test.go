package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/clinsuite/payroll-engine/ingest"
	"github.com/clinsuite/payroll-engine/payroll"
)

var workbookHeader = []interface{}{
	"Legajo", "Nombre completo", "Sector", "Subsector", "Puesto", "Sede",
	"Categoría", "Modalidad contratación", "Fecha ingreso", "Fecha de fin",
	"Horario completo", "Sueldo bruto pactado", "Adicionales",
}

func buildWorkbook(t *testing.T, rows ...[]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &workbookHeader))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	return f
}

func readWorkbook(t *testing.T, f *excelize.File) ([]*payroll.EmployeeRecord, []*payroll.RecordValidationError) {
	t.Helper()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	records, invalid, err := ingest.NewReader(nil, nil).Read(buf)
	require.NoError(t, err)
	return records, invalid
}

func TestRead_ValidRow(t *testing.T) {
	// GIVEN: a well-formed personnel row with hand-typed field spellings
	f := buildWorkbook(t, []interface{}{
		1234, "Perez, Juan", "Administracion", "", "Administrativo", "CDS",
		"1° ADM (DC)", "TIEMPO COMPLETO", "01/03/2020", "",
		"Lunes a Viernes de 9 a 17", "$ 950.000,00", "PPR; Capacitación",
	})

	// WHEN: ingesting
	records, invalid := readWorkbook(t, f)

	// THEN: one normalized record, no validation failures
	require.Empty(t, invalid)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, 1234, rec.Legajo)
	assert.Equal(t, "Clinica del Sol", rec.Personal.Site)
	assert.Equal(t, "dc_1_adm", rec.Contract.Category)
	assert.Equal(t, "tiempo_completo", rec.Contract.Modality)
	assert.Equal(t, "2020-03-01", rec.Contract.Dates.Start)
	require.NotNil(t, rec.Compensation.BaseSalary)
	assert.Equal(t, 950000.0, *rec.Compensation.BaseSalary)
	assert.Equal(t, []string{"PPR", "Capacitación"}, rec.Compensation.Extras)
	assert.Equal(t, "Lunes a Viernes de 9 a 17", rec.Schedule.OriginalText)
}

func TestRead_InvalidRowsReported(t *testing.T) {
	// GIVEN: rows with a bad legajo and an ambiguous schedule
	f := buildWorkbook(t,
		[]interface{}{
			"abc", "Sin Legajo", "Laboratorio", "", "Técnico", "SM",
			"2° ADM (DC)", "TIEMPO COMPLETO", "01/03/2020", "",
			"lunes a viernes de 9 a 17", "", "",
		},
		[]interface{}{
			77, "Horario Dudoso", "Laboratorio", "", "Técnico", "SM",
			"2° ADM (DC)", "TIEMPO COMPLETO", "01/03/2020", "",
			"horario variable", "", "",
		},
	)

	// WHEN: ingesting
	records, invalid := readWorkbook(t, f)

	// THEN: both rows are rejected with specific issues
	assert.Empty(t, records)
	require.Len(t, invalid, 2)
	assert.Contains(t, invalid[0].Issues, "legajo invalido")
	assert.Equal(t, 77, invalid[1].Legajo)
	assert.Contains(t, invalid[1].Issues[0], "horario ambiguo")
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	// GIVEN: a workbook without the schedule column
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"Legajo", "Sector", "Categoría", "Fecha ingreso"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	row := []interface{}{1, "Laboratorio", "PFC", "01/01/2024"}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &row))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	// WHEN: ingesting
	_, _, err = ingest.NewReader(nil, nil).Read(buf)

	// THEN: the missing column is named
	assert.ErrorIs(t, err, payroll.ErrUnknownColumn)
}

func TestRead_EmptyWorkbook(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, _, err = ingest.NewReader(nil, nil).Read(buf)
	assert.ErrorIs(t, err, payroll.ErrEmptyWorkbook)
}

// =============================================================================
// FIELD NORMALIZATION
// =============================================================================

func TestNormalizeCategory(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1° ADM (DC)", "dc_1_adm"},
		{"2° ADM", "dc_2_adm"},
		{"PFC (FC)", "fc_pfc"},
		{"PFC", "fc_pfc"},
		{"FC", "fc_pfc"},
		{"Otra (DC)", "dc_otra"},
		{"Fuera de convenio", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ingest.NormalizeCategory(c.in), "category %q", c.in)
	}
}

func TestNormalizeSite(t *testing.T) {
	assert.Equal(t, "Clinica del Sol", ingest.NormalizeSite("C del Sol"))
	assert.Equal(t, "Bazterrica", ingest.NormalizeSite("CONS EXT CL BAZTERRICA"))
	assert.Equal(t, "San Miguel", ingest.NormalizeSite("sm"))
	assert.Equal(t, "Sede Nueva", ingest.NormalizeSite("  Sede Nueva "))
}

func TestParseDate(t *testing.T) {
	// ISO, Argentine and Excel-serial spellings all land on ISO output.
	for _, c := range []struct{ in, want string }{
		{"2020-03-01", "2020-03-01"},
		{"01/03/2020", "2020-03-01"},
		{"1/3/2020", "2020-03-01"},
		{"45000", "2023-03-15"},
	} {
		got, ok := ingest.ParseDate(c.in)
		require.True(t, ok, "input %q", c.in)
		assert.Equal(t, c.want, got)
	}

	_, ok := ingest.ParseDate("pronto")
	assert.False(t, ok)
	_, ok = ingest.ParseDate("")
	assert.False(t, ok)
}

func TestParseSalary(t *testing.T) {
	for _, c := range []struct {
		in   string
		want float64
	}{
		{"$ 1.234.567,89", 1234567.89},
		{"1234567.89", 1234567.89},
		{"1,234,567", 1234567},
		{"950000", 950000},
		{"1.234", 1234},
		{"950000,5", 950000.5},
	} {
		got, ok := ingest.ParseSalary(c.in)
		require.True(t, ok, "input %q", c.in)
		assert.Equal(t, c.want, got, "input %q", c.in)
	}

	for _, in := range []string{"", "a convenir", "-"} {
		_, ok := ingest.ParseSalary(in)
		assert.False(t, ok, "input %q", in)
	}
}
