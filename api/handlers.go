/*
handlers.go - HTTP handlers for the payroll variable engine

PURPOSE:
  The request handlers behind the router: workbook upload and
  processing, run history, result and audit retrieval, the workbook
  download and the single-schedule parse endpoint the review UI uses for
  live feedback.

ERROR MAPPING:
  Domain errors map onto HTTP status codes through the payroll
  predicates: IsClientError -> 400, IsNotFound -> 404, everything else
  -> 500. Handlers never leak raw SQL or parser internals in the error
  field; details carry the wrapped error text.

SEE ALSO:
  - dto.go: the request/response shapes
  - server.go: routing and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clinsuite/payroll-engine/export"
	"github.com/clinsuite/payroll-engine/ingest"
	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/schedule"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

// maxUploadBytes bounds the multipart workbook upload (32 MiB covers
// the largest personnel file seen so far by an order of magnitude).
const maxUploadBytes = 32 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store     *sqlite.Store
	reader    *ingest.Reader
	processor *pipeline.Processor
	writer    *export.Writer
	parser    *schedule.Parser
	log       *zap.Logger
}

// NewHandler wires the handler dependencies. A nil logger disables
// logging.
func NewHandler(store *sqlite.Store, reader *ingest.Reader, processor *pipeline.Processor,
	writer *export.Writer, parser *schedule.Parser, log *zap.Logger) *Handler {
	if parser == nil {
		parser = schedule.DefaultParser()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		store:     store,
		reader:    reader,
		processor: processor,
		writer:    writer,
		parser:    parser,
		log:       log,
	}
}

// ===== RUNS =====

// CreateRun handles POST /api/runs: multipart upload of a personnel
// workbook (field "archivo"), full processing, and persistence.
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("archivo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing workbook upload (field 'archivo')", err)
		return
	}
	defer file.Close()

	records, invalid, err := h.reader.Read(file)
	if err != nil {
		writeError(w, statusFor(err), "Failed to read workbook", err)
		return
	}

	result, err := h.processor.Process(r.Context(), records)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Processing aborted", err)
		return
	}

	run, err := h.store.SaveRun(r.Context(), header.Filename, result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save run", err)
		return
	}

	h.log.Info("run created",
		zap.String("run_id", run.ID),
		zap.String("source", run.SourceName),
		zap.Int("processed", run.Stats.Processed),
		zap.Int("invalid_rows", len(invalid)))

	writeJSON(w, http.StatusCreated, UploadResponse{
		Run:         run,
		InvalidRows: invalidRowDTOs(invalid),
	})
}

// ListRuns handles GET /api/runs?limit=N, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter",
				fmt.Errorf("limit %q must be a positive integer", raw))
			return
		}
		limit = n
	}

	runs, err := h.store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	if runs == nil {
		runs = []*sqlite.Run{}
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{runID}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	run, err := h.store.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get run", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetResults handles GET /api/runs/{runID}/results.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	results, err := h.store.Results(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get results", err)
		return
	}
	writeJSON(w, http.StatusOK, ResultsResponse{
		RunID:     runID,
		Variables: variableDTOs(results),
	})
}

// GetAudit handles GET /api/runs/{runID}/audit.
func (h *Handler) GetAudit(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	audit, err := h.store.Audit(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get audit", err)
		return
	}
	writeJSON(w, http.StatusOK, AuditResponse{RunID: runID, Audit: audit})
}

// GetEmployeeAudit handles GET /api/runs/{runID}/employees/{legajo}:
// one employee's review line within a run.
func (h *Handler) GetEmployeeAudit(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	legajo, err := strconv.Atoi(chi.URLParam(r, "legajo"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid legajo", err)
		return
	}

	audit, err := h.store.Audit(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get audit", err)
		return
	}
	line, ok := audit[legajo]
	if !ok {
		writeError(w, http.StatusNotFound, "Employee not in run",
			fmt.Errorf("legajo %d has no audit line in run %s", legajo, runID))
		return
	}
	writeJSON(w, http.StatusOK, line)
}

// ExportRun handles GET /api/runs/{runID}/export: the three-column
// liquidation workbook as an attachment.
func (h *Handler) ExportRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	results, err := h.store.Results(r.Context(), runID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to get results", err)
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "Run has no results", payroll.ErrNoResults)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="variables_%s.xlsx"`, runID))
	if err := h.writer.WriteTo(w, results); err != nil {
		// Headers are already out; the truncated body is the best we can do.
		h.log.Error("export stream failed",
			zap.String("run_id", runID), zap.Error(err))
	}
}

// ===== SCHEDULE =====

// ParseSchedule handles POST /api/schedule/parse: one free-text
// schedule in, the interpreted blocks and weekly summary out. The
// review UI calls this while a corrector edits a rejected row.
func (h *Handler) ParseSchedule(w http.ResponseWriter, r *http.Request) {
	var req ParseScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Field 'texto' is required", nil)
		return
	}

	blocks := h.parser.Parse(req.Text)
	writeJSON(w, http.StatusOK, ParseScheduleResponse{
		Blocks:  blocks,
		Summary: schedule.Summarize(blocks),
	})
}

// ===== CATALOG =====

// GetCatalog handles GET /api/catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogResponse{Variables: payroll.Catalog()})
}

// Health handles GET /api/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== HELPERS =====

func statusFor(err error) int {
	switch {
	case payroll.IsNotFound(err):
		return http.StatusNotFound
	case payroll.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
