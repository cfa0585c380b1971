package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	evidenceledger "archeli/contexts/audit-ledger/evidence-ledger"
	ledgererrors "archeli/contexts/audit-ledger/evidence-ledger/domain/errors"
	ledgerhttp "archeli/contexts/audit-ledger/evidence-ledger/transport/http"
	skillregistry "archeli/contexts/capability-runtime/skill-registry"
	skillerrors "archeli/contexts/capability-runtime/skill-registry/domain/errors"
	skillhttp "archeli/contexts/capability-runtime/skill-registry/transport/http"
	ruleengine "archeli/contexts/routing-core/rule-engine"
	ruleerrors "archeli/contexts/routing-core/rule-engine/domain/errors"
	rulehttp "archeli/contexts/routing-core/rule-engine/transport/http"
	workorchestrator "archeli/contexts/routing-core/work-orchestrator"
	orchestratorerrors "archeli/contexts/routing-core/work-orchestrator/domain/errors"
	orchestratorhttp "archeli/contexts/routing-core/work-orchestrator/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "archeli/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	apiKey       string
	orchestrator workorchestrator.Module
	rules        ruleengine.Module
	skills       skillregistry.Module
	evidence     evidenceledger.Module
}

func New(
	orchestrator workorchestrator.Module,
	rules ruleengine.Module,
	skills skillregistry.Module,
	evidence evidenceledger.Module,
	logger *slog.Logger,
	addr string,
	apiKey string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		apiKey:       apiKey,
		orchestrator: orchestrator,
		rules:        rules,
		skills:       skills,
		evidence:     evidence,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

// Handler wraps the mux with API key enforcement. Health and the swagger UI
// stay open; everything else requires X-Api-Key when a key is configured.
func (s *Server) Handler() http.Handler {
	if s.apiKey == "" {
		return s.mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/health" || strings.HasPrefix(r.URL.Path, "/swagger/") {
			s.mux.ServeHTTP(w, r)
			return
		}
		if !s.authorized(r) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid API key")
			return
		}
		s.mux.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if r.Header.Get("X-Api-Key") == s.apiKey {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.apiKey
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /v1/health", s.handleHealth)

	s.mux.HandleFunc("POST /v1/items", s.handleSubmitItem)
	s.mux.HandleFunc("GET /v1/items", s.handleListItems)
	s.mux.HandleFunc("GET /v1/items/{item_id}", s.handleItemStatus)
	s.mux.HandleFunc("POST /v1/items/{item_id}/cancel", s.handleCancelItem)
	s.mux.HandleFunc("POST /v1/items/{item_id}/retry", s.handleRetryItem)

	s.mux.HandleFunc("GET /v1/items/{item_id}/evidence", s.handleItemEvidence)
	s.mux.HandleFunc("GET /v1/evidence", s.handleEvidenceRange)

	s.mux.HandleFunc("GET /v1/skills", s.handleListSkills)
	s.mux.HandleFunc("POST /v1/skills/invoke", s.handleInvokeSkill)

	s.mux.HandleFunc("GET /v1/rules", s.handleRuleSnapshot)
	s.mux.HandleFunc("POST /v1/rules/reload", s.handleRuleReload)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	rules := "ready"
	if _, err := s.rules.Service.Current(); err != nil {
		rules = "not_configured"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rules":  rules,
		"skills": s.skills.Service.Count(),
	})
}

func (s *Server) handleSubmitItem(w http.ResponseWriter, r *http.Request) {
	var req orchestratorhttp.SubmitItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeOrchestratorError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.orchestrator.Handler.SubmitHandler(r.Context(), req)
	if err != nil {
		writeOrchestratorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleItemStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.orchestrator.Handler.StatusHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeOrchestratorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelItem(w http.ResponseWriter, r *http.Request) {
	resp, err := s.orchestrator.Handler.CancelHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeOrchestratorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleRetryItem(w http.ResponseWriter, r *http.Request) {
	resp, err := s.orchestrator.Handler.RetryHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeOrchestratorDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleItemEvidence(w http.ResponseWriter, r *http.Request) {
	resp, err := s.evidence.Handler.ListItemEvidenceHandler(r.Context(), r.PathValue("item_id"))
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvidenceRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var from, to time.Time
	var err error
	if raw := query.Get("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_from", "from must be RFC3339")
			return
		}
	}
	if raw := query.Get("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_to", "to must be RFC3339")
			return
		}
	}
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
	}

	resp, err := s.evidence.Handler.ListEvidenceRangeHandler(r.Context(), from, to, limit)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeLedgerError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	resp, err := s.evidence.Handler.ListRecentItemsHandler(r.Context(), limit)
	if err != nil {
		writeLedgerDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInvokeSkill(w http.ResponseWriter, r *http.Request) {
	var req skillhttp.InvokeSkillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSkillError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.SkillID) == "" {
		writeSkillError(w, http.StatusBadRequest, "validation", "skill_id is required")
		return
	}
	resp, err := s.skills.Handler.InvokeSkillHandler(r.Context(), req)
	if err != nil {
		writeSkillDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	resp, err := s.skills.Handler.ListSkillsHandler(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuleSnapshot(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rules.Handler.SnapshotHandler(r.Context())
	if err != nil {
		writeRuleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRuleReload(w http.ResponseWriter, r *http.Request) {
	resp, err := s.rules.Handler.ReloadHandler(r.Context())
	if err != nil {
		writeRuleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeOrchestratorDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestratorerrors.ErrValidation):
		writeOrchestratorError(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, orchestratorerrors.ErrItemNotFound):
		writeOrchestratorError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, orchestratorerrors.ErrNotTerminal):
		writeOrchestratorError(w, http.StatusConflict, "item_in_flight", err.Error())
	case errors.Is(err, orchestratorerrors.ErrAlreadyTerminal):
		writeOrchestratorError(w, http.StatusConflict, "item_terminal", err.Error())
	default:
		writeOrchestratorError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRuleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ruleerrors.ErrNotConfigured):
		writeRuleError(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, ruleerrors.ErrValidation):
		writeRuleError(w, http.StatusUnprocessableEntity, "validation", err.Error())
	default:
		writeRuleError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSkillDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, skillerrors.ErrUnknownSkill):
		writeSkillError(w, http.StatusNotFound, "unknown_skill", err.Error())
	case errors.Is(err, skillerrors.ErrSkillUnavailable):
		writeSkillError(w, http.StatusServiceUnavailable, "skill_unavailable", err.Error())
	case errors.Is(err, skillerrors.ErrSkillBusy):
		writeSkillError(w, http.StatusConflict, "skill_busy", err.Error())
	default:
		writeSkillError(w, http.StatusInternalServerError, "handler_failure", err.Error())
	}
}

func writeLedgerDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledgererrors.ErrInvalidRecord):
		writeLedgerError(w, http.StatusBadRequest, "invalid_record", err.Error())
	case errors.Is(err, ledgererrors.ErrOutcomeNotFound):
		writeLedgerError(w, http.StatusNotFound, "outcome_not_found", err.Error())
	default:
		writeLedgerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeOrchestratorError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orchestratorhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeRuleError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, rulehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeSkillError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, skillhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeLedgerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ledgerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, orchestratorhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
