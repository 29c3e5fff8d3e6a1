package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	contacts "atrium/contexts/customer-relations/contact-service"
	contacterrors "atrium/contexts/customer-relations/contact-service/domain/errors"
	contacthttp "atrium/contexts/customer-relations/contact-service/transport/http"
	tenancy "atrium/contexts/identity-access/tenancy-service"
	tenancyerrors "atrium/contexts/identity-access/tenancy-service/domain/errors"
	tenancyhttp "atrium/contexts/identity-access/tenancy-service/transport/http"
	platformdb "atrium/internal/platform/db"
	_ "atrium/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

type Server struct {
	mux      *http.ServeMux
	handler  http.Handler
	logger   *slog.Logger
	addr     string
	tenancy  tenancy.Module
	contacts contacts.Module
}

// Options carries transport configuration from the composition root.
type Options struct {
	Addr            string
	OverrideEnabled bool
}

func New(tenancyModule tenancy.Module, contactsModule contacts.Module, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     opts.Addr,
		tenancy:  tenancyModule,
		contacts: contactsModule,
	}
	s.registerRoutes()

	// Resolution runs before every route; handlers on exempt paths
	// check for a tenant themselves when they need one.
	s.handler = Chain(s.mux,
		RequestID(),
		AccessLog(logger),
		TenantResolution(tenancyModule.Resolver, opts.OverrideEnabled, logger),
	)
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.handler)
}

// Handler exposes the composed pipeline for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /api/organizations", s.handleRegisterTenant)
	s.mux.HandleFunc("POST /api/organizations/{tenant_id}/suspend", s.handleSuspendTenant)
	s.mux.HandleFunc("POST /api/organizations/{tenant_id}/activate", s.handleActivateTenant)

	s.mux.HandleFunc("GET /api/contacts", s.handleListContacts)
	s.mux.HandleFunc("POST /api/contacts", s.handleCreateContact)
	s.mux.HandleFunc("GET /api/contacts/{contact_id}", s.handleGetContact)
	s.mux.HandleFunc("PUT /api/contacts/{contact_id}", s.handleUpdateContact)
	s.mux.HandleFunc("DELETE /api/contacts/{contact_id}", s.handleDeleteContact)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req tenancyhttp.RegisterTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.tenancy.Handler.RegisterTenantHandler(r.Context(), req)
	if err != nil {
		writeTenancyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSuspendTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.tenancy.Handler.SuspendTenantHandler(r.Context(), r.PathValue("tenant_id")); err != nil {
		writeTenancyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "suspended"})
}

func (s *Server) handleActivateTenant(w http.ResponseWriter, r *http.Request) {
	if err := s.tenancy.Handler.ActivateTenantHandler(r.Context(), r.PathValue("tenant_id")); err != nil {
		writeTenancyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contacts.Handler.ListContactsHandler(r.Context())
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req contacthttp.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.contacts.Handler.CreateContactHandler(r.Context(), req)
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	resp, err := s.contacts.Handler.GetContactHandler(r.Context(), r.PathValue("contact_id"))
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	var req contacthttp.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.contacts.Handler.UpdateContactHandler(r.Context(), r.PathValue("contact_id"), req)
	if err != nil {
		writeContactError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.contacts.Handler.DeleteContactHandler(r.Context(), r.PathValue("contact_id")); err != nil {
		writeContactError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeTenancyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenancyerrors.ErrInvalidRoutingKey),
		errors.Is(err, tenancyerrors.ErrInvalidTenantName):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, tenancyerrors.ErrRoutingKeyTaken):
		writeError(w, http.StatusConflict, "routing_key_taken", err.Error())
	case errors.Is(err, tenancyerrors.ErrTenantNotFound):
		writeNotFound(w)
	case errors.Is(err, tenancyerrors.ErrCatalogUnavailable):
		writeError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contacterrors.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "contact_not_found", err.Error())
	case errors.Is(err, contacterrors.ErrInvalidContact):
		writeError(w, http.StatusBadRequest, "invalid_contact", err.Error())
	case errors.Is(err, contacterrors.ErrDuplicateContact):
		writeError(w, http.StatusConflict, "duplicate_contact", err.Error())
	case errors.Is(err, platformdb.ErrScopeViolation),
		errors.Is(err, platformdb.ErrTenantMismatch):
		// Programming contract violations: visible, never degraded.
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeNotFound is the deliberately generic unresolved-tenant payload:
// it never distinguishes "tenant does not exist" from "resource hidden".
func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, tenancyhttp.ErrorResponse{
		Code:    "not_found",
		Message: "resource not found",
	})
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, tenancyhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
