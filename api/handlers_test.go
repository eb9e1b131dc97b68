package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/clinsuite/payroll-engine/api"
	"github.com/clinsuite/payroll-engine/config"
	"github.com/clinsuite/payroll-engine/export"
	"github.com/clinsuite/payroll-engine/ingest"
	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/schedule"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	parser := schedule.DefaultParser()
	engine := payroll.NewEngine(payroll.DefaultTables(), nil)
	h := api.NewHandler(
		store,
		ingest.NewReader(parser, nil),
		pipeline.New(parser, engine, nil),
		export.NewWriter(nil),
		parser,
		nil,
	)
	return api.NewRouter(h, config.CORSConfig{AllowOrigins: []string{"*"}})
}

var uploadHeader = []interface{}{
	"Legajo", "Nombre completo", "Sector", "Subsector", "Puesto", "Sede",
	"Categoría", "Modalidad contratación", "Fecha ingreso", "Fecha de fin",
	"Horario completo", "Sueldo bruto pactado", "Adicionales",
}

func workbookUpload(t *testing.T, rows ...[]interface{}) (*bytes.Buffer, string) {
	t.Helper()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &uploadHeader))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	content, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("archivo", "nomina.xlsx")
	require.NoError(t, err)
	_, err = io.Copy(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func createRun(t *testing.T, srv http.Handler) api.UploadResponse {
	t.Helper()

	body, contentType := workbookUpload(t, []interface{}{
		1234, "Perez, Juan", "Administracion", "", "Administrativo", "CDS",
		"1° ADM (DC)", "TIEMPO COMPLETO", "01/03/2020", "",
		"Lunes a Viernes de 9 a 17", "$ 950.000,00", "",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateRun_ProcessesWorkbook(t *testing.T) {
	srv := newTestServer(t)

	// GIVEN: one valid personnel row
	// WHEN: uploading the workbook
	resp := createRun(t, srv)

	// THEN: the run is stored with its counters
	require.NotNil(t, resp.Run)
	assert.NotEmpty(t, resp.Run.ID)
	assert.Equal(t, "nomina.xlsx", resp.Run.SourceName)
	assert.Equal(t, 1, resp.Run.Stats.Processed)
	assert.Empty(t, resp.InvalidRows)
}

func TestCreateRun_MissingFile(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRun_EmptyWorkbook(t *testing.T) {
	srv := newTestServer(t)

	// GIVEN: a workbook with a header and no data rows
	body, contentType := workbookUpload(t)

	req := httptest.NewRequest(http.MethodPost, "/api/runs", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	// THEN: a client error, not a stored empty run
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunRetrieval_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	created := createRun(t, srv)
	runID := created.Run.ID

	// Run detail
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var run sqlite.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, runID, run.ID)

	// History contains the run
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list api.RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, runID, list.Runs[0].ID)

	// Results carry the weekly-hours variable with its label
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/results", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var results api.ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.NotEmpty(t, results.Variables)

	var weekly *api.VariableDTO
	for i := range results.Variables {
		if results.Variables[i].Code == payroll.CodeWeeklyHours {
			weekly = &results.Variables[i]
		}
	}
	require.NotNil(t, weekly)
	assert.Equal(t, 1234, weekly.Legajo)
	assert.Equal(t, "Horas semanales", weekly.Description)
	assert.False(t, weekly.Value.IsText)

	// Audit has the employee's review line
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID+"/audit", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var audit api.AuditResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &audit))
	require.Contains(t, audit.Audit, 1234)
	assert.Equal(t, 40.0, audit.Audit[1234].WeeklyHours)

	// Per-employee audit line
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/runs/"+runID+"/employees/1234", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var line pipeline.RecordAudit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &line))
	assert.Equal(t, "Perez, Juan", line.Name)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/runs/"+runID+"/employees/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportRun_DownloadsWorkbook(t *testing.T) {
	srv := newTestServer(t)
	created := createRun(t, srv)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/api/runs/"+created.Run.ID+"/export", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), created.Run.ID)

	// The body is a readable workbook with the expected header.
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Variables")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"LEGAJO", "CODIGO VARIABLE", "VALOR"}, rows[0])
}

func TestGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{
		"/api/runs/missing-id",
		"/api/runs/missing-id/results",
		"/api/runs/missing-id/audit",
		"/api/runs/missing-id/export",
	} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestParseSchedule(t *testing.T) {
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"texto": "lunes a viernes de 9 a 17"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/schedule/parse", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp api.ParseScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "09:00", resp.Blocks[0].Start)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 40.0, resp.Summary.TotalWeeklyHours)
}

func TestParseSchedule_EmptyText(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/schedule/parse",
		bytes.NewBufferString(`{"texto": ""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCatalog(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Variables)

	codes := make(map[int]bool, len(resp.Variables))
	for _, v := range resp.Variables {
		codes[v.Code] = true
	}
	assert.True(t, codes[payroll.CodeWeeklyHours])
	assert.True(t, codes[payroll.CodeGuard])
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
