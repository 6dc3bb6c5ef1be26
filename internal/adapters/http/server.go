package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"acolhimento/internal/domain"
	"acolhimento/internal/ports"
	contactsvc "acolhimento/internal/services/contacts"
	"acolhimento/internal/services/extraction"
	"acolhimento/internal/services/validation"
)

// Pinger reports storage connectivity for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	extractor ports.Extractor
	validator *validation.Validator
	models    ports.ModelCatalog
	contacts  *contactsvc.Service
	db        Pinger
	cors      []string
	log       *zap.Logger
}

func New(extractor ports.Extractor, validator *validation.Validator, models ports.ModelCatalog, contacts *contactsvc.Service, db Pinger, corsOrigins []string, log *zap.Logger) *Server {
	return &Server{
		extractor: extractor,
		validator: validator,
		models:    models,
		contacts:  contacts,
		db:        db,
		cors:      corsOrigins,
		log:       log,
	}
}

// Routes returns a chi.Router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/mcp", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/validate", s.handleValidate)
		r.Get("/models", s.handleModels)
		r.Get("/health", s.handleMCPHealth)
	})

	r.Route("/api/v1/contacts", func(r chi.Router) {
		r.Post("/", s.handleCreateContact)
		r.Get("/", s.handleListContacts)
		r.Get("/export/xlsx", s.handleExportContacts)
		r.Get("/{id}", s.handleGetContact)
		r.Put("/{id}", s.handleUpdateContact)
		r.Delete("/{id}", s.handleDeleteContact)
	})

	return r
}

// MCP surface

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Entities   domain.CandidateRecord `json:"entities"`
	Confidence float64                `json:"confidence"`
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.extractor.Extract(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, extraction.ErrEmptyText) || errors.Is(err, extraction.ErrTextTooLong) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "extraction failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{
		Entities:   rec,
		Confidence: s.validator.Confidence(rec),
		Success:    true,
		Message:    "entities extracted successfully",
	})
}

type validateRequest struct {
	Data map[string]any `json:"data"`
}

type validateResponse struct {
	Valid         bool                   `json:"valid"`
	CorrectedData domain.CandidateRecord `json:"corrected_data"`
	Errors        []string               `json:"errors"`
	Success       bool                   `json:"success"`
	Message       string                 `json:"message,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := s.validator.Validate(req.Data)
	if res.Errors == nil {
		res.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:         res.IsValid,
		CorrectedData: res.Corrected,
		Errors:        res.Errors,
		Success:       true,
		Message:       "data validated successfully",
	})
}

type modelsResponse struct {
	Models       []ports.ModelInfo `json:"models"`
	CurrentModel string            `json:"current_model"`
	Success      bool              `json:"success"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.models.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list models: "+err.Error())
		return
	}
	if models == nil {
		models = []ports.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, modelsResponse{
		Models:       models,
		CurrentModel: s.models.CurrentModel(),
		Success:      true,
	})
}

// handleMCPHealth never fails the call; an unreachable runtime degrades the
// reported status instead.
func (s *Server) handleMCPHealth(w http.ResponseWriter, r *http.Request) {
	available := s.models.CheckModel(r.Context(), "")
	status := "healthy"
	if !available {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           status,
		"service":          "mcp",
		"ollama_available": available,
		"current_model":    s.models.CurrentModel(),
	})
}

// Probes

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Contacts surface

type createContactRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Reason      string `json:"reason"`
	ContactDate string `json:"contact_date"`
	FreeText    string `json:"free_text"`
}

type contactResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	Email       *string        `json:"email"`
	Reason      string         `json:"reason"`
	ContactDate *string        `json:"contact_date"`
	SyncStatus  string         `json:"sync_status"`
	SyncedAt    *time.Time     `json:"synced_at,omitempty"`
	SyncError   *string        `json:"sync_error,omitempty"`
	ExtraData   map[string]any `json:"extra_data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at,omitempty"`
}

func toContactResponse(c domain.Contact) contactResponse {
	return contactResponse{
		ID:          c.ID,
		Name:        c.Name,
		Phone:       c.Phone,
		Email:       c.Email,
		Reason:      c.Reason,
		ContactDate: c.ContactDate,
		SyncStatus:  c.SyncStatus,
		SyncedAt:    c.SyncedAt,
		SyncError:   c.SyncError,
		ExtraData:   c.ExtraData,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.contacts.Create(r.Context(), contactsvc.CreateInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Reason:      req.Reason,
		ContactDate: req.ContactDate,
		FreeText:    req.FreeText,
	})
	if err != nil {
		s.writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactResponse(c))
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	list, err := s.contacts.List(r.Context(), ports.ContactFilter{
		Offset:     offset,
		Limit:      limit,
		Reason:     q.Get("reason"),
		SyncStatus: q.Get("sync_status"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	out := make([]contactResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toContactResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	c, err := s.contacts.Get(r.Context(), id)
	if err != nil {
		s.writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c))
}

type updateContactRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Reason      *string `json:"reason"`
	ContactDate *string `json:"contact_date"`
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := s.contacts.Update(r.Context(), id, contactsvc.UpdateInput{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Reason:      req.Reason,
		ContactDate: req.ContactDate,
	})
	if err != nil {
		s.writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	if err := s.contacts.Delete(r.Context(), id); err != nil {
		s.writeContactError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportContacts(w http.ResponseWriter, r *http.Request) {
	data, err := s.contacts.ExportXLSX(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.xlsx"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contactsvc.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, contactsvc.ErrDuplicatePhone):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, contactsvc.ErrMissingFields), errors.Is(err, contactsvc.ErrExtraction):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("contact_handler_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return 0, false
	}
	return id, true
}

// JSON helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}
