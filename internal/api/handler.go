// Package api serves the dashboard's JSON HTTP API on top of TransmissionService.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/and161185/secure-query-proxy/internal/auth"
	"github.com/and161185/secure-query-proxy/internal/convert"
	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/rpc"
	"github.com/and161185/secure-query-proxy/internal/service"
)

const maxBodyBytes = 1 << 20

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	svc      service.TransmissionService
	tokens   TokenVerifier
	log      *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(svc service.TransmissionService, tokens TokenVerifier, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:      svc,
		tokens:   tokens,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

type createRequest struct {
	Sender    string `json:"sender"`
	Receiver  string `json:"receiver" validate:"required"`
	Query     string `json:"query" validate:"required"`
	Signature string `json:"signature"`
	Schema    string `json:"schema"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed rejected"`
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	h.respondWithJSON(w, code, body)
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("marshal response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"internal"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithMessage writes a TransmissionService message in its proto3 JSON form.
func (h *Handler) respondWithMessage(w http.ResponseWriter, code int, m rpc.Message) {
	response, err := rpc.MarshalJSON(m)
	if err != nil {
		h.log.Error("marshal message", zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "internal")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithServiceError maps sentinel errors to HTTP statuses.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, "transmission not found")
	case errors.Is(err, errs.ErrInvalidTransition):
		h.respondWithError(w, http.StatusConflict, "transmission already processed")
	case errors.Is(err, errs.ErrInvalidStatus):
		h.respondWithError(w, http.StatusBadRequest, "status must be completed or rejected")
	case errors.Is(err, errs.ErrUnauthorized):
		h.respondWithError(w, http.StatusUnauthorized, "unauthorized")
	default:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		h.respondWithError(w, http.StatusInternalServerError, "internal")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondWithError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "oneof":
		return strings.ToLower(fe.Field()) + " must be one of: " + fe.Param()
	default:
		return strings.ToLower(fe.Field()) + " is invalid"
	}
}

// handleHealth (GET /healthz)
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListTransmissions (GET /v1/transmissions[?status=])
func (h *Handler) handleListTransmissions(w http.ResponseWriter, r *http.Request) {
	var filter model.TransmissionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		filter = model.TransmissionStatus(strings.ToLower(s))
		if !filter.Valid() {
			h.respondWithError(w, http.StatusBadRequest, "status must be pending, completed or rejected")
			return
		}
	}

	ts, err := h.svc.List(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if filter != "" {
		kept := ts[:0]
		for _, t := range ts {
			if t.Status == filter {
				kept = append(kept, t)
			}
		}
		ts = kept
	}
	h.respondWithMessage(w, http.StatusOK, &rpc.ListTransmissionsResponse{Transmissions: convert.ToWireTransmissions(ts)})
}

// handleCreateTransmission (POST /v1/transmissions)
func (h *Handler) handleCreateTransmission(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Receiver = strings.TrimSpace(req.Receiver)
	if strings.TrimSpace(req.Query) == "" || req.Receiver == "" {
		h.respondWithError(w, http.StatusBadRequest, "query and receiver are required")
		return
	}
	if strings.TrimSpace(req.Sender) == "" {
		req.Sender, _ = auth.SubjectFromCtx(r.Context())
	}

	t, err := h.svc.Create(r.Context(), model.NewTransmission{
		Sender:    req.Sender,
		Receiver:  req.Receiver,
		Query:     req.Query,
		Signature: req.Signature,
		Schema:    req.Schema,
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	wire := convert.ToWireTransmission(t)
	h.respondWithMessage(w, http.StatusCreated, &wire)
}

// handleUpdateStatus (PATCH /v1/transmissions/{id})
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req updateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	st, err := convert.ParseStatus(req.Status)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	t, err := h.svc.UpdateStatus(r.Context(), id, st)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	wire := convert.ToWireTransmission(t)
	h.respondWithMessage(w, http.StatusOK, &wire)
}

// handleListAuditLogs (GET /v1/audit-logs)
func (h *Handler) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	es, err := h.svc.AuditLogs(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithMessage(w, http.StatusOK, &rpc.ListAuditLogsResponse{AuditLogs: convert.ToWireAuditLogs(es)})
}

// handleListKeyPairs (GET /v1/keys)
func (h *Handler) handleListKeyPairs(w http.ResponseWriter, r *http.Request) {
	ks, err := h.svc.KeyPairs(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithMessage(w, http.StatusOK, &rpc.ListKeyPairsResponse{KeyPairs: convert.ToWireKeyPairs(ks, h.now())})
}

// handleGetSchema (GET /v1/schema)
func (h *Handler) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Schema(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	h.respondWithMessage(w, http.StatusOK, convert.ToWireSchema(s))
}
