package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	appmiddleware "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/middleware"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/services"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

const (
	// multipartOverhead is allowed on top of the table limit for form boundaries and headers
	multipartOverhead = 1 << 20
	// maxRecordsLimit caps the ?limit= query parameter
	maxRecordsLimit = 1000000
	// defaultUploadName names raw-body uploads without ?name=
	defaultUploadName = "upload.csv"
)

var exportFormats = []string{string(exporter.FormatCSV), string(exporter.FormatXLSX)}

// SessionHandler exposes the analytics session over HTTP
type SessionHandler struct {
	service      SessionServiceInterface
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
	validation   *appmiddleware.ValidationMiddleware
	query        *appmiddleware.QueryParamValidator
	maxUpload    int64
}

// NewSessionHandler creates a session handler. maxUpload bounds uploaded tables.
func NewSessionHandler(service SessionServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler, maxUpload int64) *SessionHandler {
	if maxUpload <= 0 {
		maxUpload = config.DefaultMaxUploadBytes
	}
	return &SessionHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "session_handler")),
		errorHandler: errorHandler,
		validation:   appmiddleware.NewValidationMiddleware(logger, errorHandler),
		query:        appmiddleware.NewQueryParamValidator(errorHandler),
		maxUpload:    maxUpload,
	}
}

// Routes returns the session routes, mounted under /api/session
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// State-changing routes are audited
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.AuditLog(h.logger))
		r.Post("/upload", h.Upload)
		r.Delete("/", h.Reset)
		r.With(h.validation.ValidateJSON).Put("/selection", h.PutSelection)
	})

	r.Get("/", h.GetSummary)
	r.Get("/filters", h.GetFilters)
	r.Get("/selection", h.GetSelection)
	r.Get("/records", h.GetRecords)
	r.Get("/display", h.GetDisplay)
	r.Get("/overview", h.GetOverview)
	r.Get("/pareto", h.GetPareto)
	r.Get("/strategic", h.GetStrategic)
	r.With(h.validation.ValidateJSON).Post("/simulate", h.Simulate)

	r.Route("/export", func(r chi.Router) {
		r.Get("/records", h.ExportRecords)
		r.With(h.validation.ValidateJSON).Post("/simulation", h.ExportSimulation)
	})

	return r
}

// respond writes the success envelope
func respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

// fail logs and converts a service error into a problem response
func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.DebugContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	h.errorHandler.HandleError(w, r, err)
}

// Upload handles POST /api/session/upload. The table comes from the multipart
// field "file" or, for any other content type, from the raw body.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	delimiter, ok := h.query.ValidateRune(w, r, "delimiter")
	if !ok {
		return
	}

	name, body, err := h.uploadBody(w, r)
	if err != nil {
		h.fail(w, r, "invalid upload", err)
		return
	}

	summary, err := h.service.Load(r.Context(), name, body, delimiter)
	if err != nil {
		h.fail(w, r, "failed to load table", err)
		return
	}

	h.logger.InfoContext(r.Context(), "table uploaded",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("source", summary.Source),
		slog.Int("rows", summary.RowCount),
		slog.Int("columns", summary.ColumnCount),
	)

	respond(w, r, summary)
}

func (h *SessionHandler) uploadBody(w http.ResponseWriter, r *http.Request) (string, io.Reader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
		return uploadName(r.URL.Query().Get("name")), r.Body, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, apperrors.InvalidRequestWithError(err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, apperrors.ErrValidation("file", "multipart field file is required")
		}
		if err != nil {
			return "", nil, apperrors.InvalidRequestWithError(err)
		}
		if part.FormName() == "file" {
			return uploadName(part.FileName()), part, nil
		}
		_ = part.Close()
	}
}

func uploadName(name string) string {
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return defaultUploadName
	}
	return name
}

// GetSummary handles GET /api/session
func (h *SessionHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get summary", err)
		return
	}
	respond(w, r, summary)
}

// Reset handles DELETE /api/session
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.service.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// GetFilters handles GET /api/session/filters
func (h *SessionHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get filter options", err)
		return
	}
	respond(w, r, options)
}

// GetSelection handles GET /api/session/selection
func (h *SessionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.service.Selection(r.Context()))
}

// PutSelection handles PUT /api/session/selection
func (h *SessionHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var sel domain.FilterSelection
	if err := h.decode(r, &sel); err != nil {
		h.fail(w, r, "invalid selection", err)
		return
	}
	respond(w, r, h.service.SetSelection(r.Context(), sel))
}

// GetRecords handles GET /api/session/records?limit=
func (h *SessionHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.query.ValidateInt(w, r, "limit", 0, maxRecordsLimit, 0)
	if !ok {
		return
	}

	view, err := h.service.Records(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "failed to get records", err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(view.Matched))
	respond(w, r, view)
}

// GetDisplay handles GET /api/session/display
func (h *SessionHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.Display(r.Context())
	if err != nil {
		h.fail(w, r, "failed to build display table", err)
		return
	}
	respond(w, r, table)
}

// GetOverview handles GET /api/session/overview
func (h *SessionHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context())
	if err != nil {
		h.fail(w, r, "failed to compute overview", err)
		return
	}
	respond(w, r, ov)
}

// GetPareto handles GET /api/session/pareto?value=&group=
func (h *SessionHandler) GetPareto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.service.Pareto(r.Context(),
		domain.ValueField(q.Get("value")),
		domain.GroupField(q.Get("group")))
	if err != nil {
		h.fail(w, r, "failed to compute pareto", err)
		return
	}
	respond(w, r, res)
}

// GetStrategic handles GET /api/session/strategic
func (h *SessionHandler) GetStrategic(w http.ResponseWriter, r *http.Request) {
	sa, err := h.service.Strategic(r.Context())
	if err != nil {
		h.fail(w, r, "failed to compute strategic analysis", err)
		return
	}
	respond(w, r, sa)
}

// Simulate handles POST /api/session/simulate
func (h *SessionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req services.SimulationRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "invalid simulation request", err)
		return
	}

	report, err := h.service.Simulate(r.Context(), req)
	if err != nil {
		h.fail(w, r, "failed to simulate", err)
		return
	}
	respond(w, r, report)
}

// ExportRecords handles GET /api/session/export/records?format=
func (h *SessionHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	f, ok := h.exportFormat(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	name, err := h.service.ExportRecords(r.Context(), &buf, f)
	if err != nil {
		h.fail(w, r, "failed to export records", err)
		return
	}
	h.attachment(w, r, name, f, buf.Bytes())
}

// ExportSimulation handles POST /api/session/export/simulation?format=
func (h *SessionHandler) ExportSimulation(w http.ResponseWriter, r *http.Request) {
	f, ok := h.exportFormat(w, r)
	if !ok {
		return
	}

	var req services.SimulationRequest
	if err := h.decode(r, &req); err != nil {
		h.fail(w, r, "invalid simulation request", err)
		return
	}

	var buf bytes.Buffer
	name, err := h.service.ExportSimulation(r.Context(), &buf, f, req)
	if err != nil {
		h.fail(w, r, "failed to export simulation", err)
		return
	}
	h.attachment(w, r, name, f, buf.Bytes())
}

func (h *SessionHandler) exportFormat(w http.ResponseWriter, r *http.Request) (exporter.Format, bool) {
	value, ok := h.query.ValidateEnum(w, r, "format", exportFormats, string(exporter.FormatCSV))
	if !ok {
		return "", false
	}
	f, err := exporter.ParseFormat(value)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return "", false
	}
	return f, true
}

// attachment writes a fully rendered export so a failed export never sends a partial file
func (h *SessionHandler) attachment(w http.ResponseWriter, r *http.Request, name string, f exporter.Format, data []byte) {
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
	}
}

// decode reads an optional JSON body into v and validates it. An empty body leaves v zero.
func (h *SessionHandler) decode(r *http.Request, v interface{}) error {
	if r.Body != nil && r.Body != http.NoBody {
		if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
			return apperrors.InvalidRequestWithError(err)
		}
	}
	return h.validation.ValidateStruct(v)
}
