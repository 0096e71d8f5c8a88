package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/models"
	"ahliwaris/internal/declaration/scenario"
	rlmodels "ahliwaris/internal/ratelimit/models"
	id "ahliwaris/pkg/domain"
	dErrors "ahliwaris/pkg/domain-errors"
	"ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/httputil"
	"ahliwaris/pkg/requestcontext"
)

// Service defines the declaration operations exposed over HTTP.
type Service interface {
	Validate(ctx context.Context, c models.Case) (*scenario.ValidatedCase, error)
	Issue(ctx context.Context, c models.Case) (*models.Declaration, error)
	Get(ctx context.Context, declID id.DeclarationID) (*models.Declaration, error)
	Document(ctx context.Context, declID id.DeclarationID) (document.Document, error)
	AuditTrail(ctx context.Context, declID id.DeclarationID) ([]audit.Event, error)
	AssembleBatch(ctx context.Context, cases []models.Case) ([]document.Document, error)
}

// RouteLimiter returns middleware enforcing the budget of an endpoint class.
type RouteLimiter interface {
	RateLimit(class rlmodels.EndpointClass) func(http.Handler) http.Handler
}

// Handler wires declaration endpoints to the declaration service.
type Handler struct {
	service Service
	logger  *slog.Logger
	limiter RouteLimiter
}

type Option func(*Handler)

// WithRateLimit applies per-class request budgets to the routes.
func WithRateLimit(l RouteLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) limit(class rlmodels.EndpointClass) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.RateLimit(class)
}

// Register mounts declaration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/declarations", func(r chi.Router) {
		r.With(h.limit(rlmodels.ClassIssue)).Post("/", h.HandleIssue)
		r.With(h.limit(rlmodels.ClassRead)).Post("/validate", h.HandleValidate)
		r.With(h.limit(rlmodels.ClassIssue)).Post("/batch", h.HandleBatch)
		r.With(h.limit(rlmodels.ClassRead)).Get("/{id}", h.HandleGet)
		r.With(h.limit(rlmodels.ClassRead)).Get("/{id}/document", h.HandleDocument)
		r.With(h.limit(rlmodels.ClassRead)).Get("/{id}/audit", h.HandleAuditTrail)
	})
}

// HandleValidate handles POST /declarations/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	vc, err := h.service.Validate(ctx, req.Case)
	if err != nil {
		h.writeError(ctx, w, err, "validation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromValidated(vc))
}

// HandleIssue handles POST /declarations.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CaseRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	decl, err := h.service.Issue(ctx, req.Case)
	if err != nil {
		h.writeError(ctx, w, err, "issue declaration failed")
		return
	}
	w.Header().Set("Location", "/declarations/"+decl.ID.String())
	httputil.WriteJSON(w, http.StatusCreated, FromDeclaration(decl))
}

// HandleBatch handles POST /declarations/batch. Nothing is stored.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	docs, err := h.service.AssembleBatch(ctx, req.Cases)
	if err != nil {
		h.writeError(ctx, w, err, "batch assembly failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BatchResponse{Documents: docs})
}

// HandleGet handles GET /declarations/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	declID, ok := h.declarationID(w, r)
	if !ok {
		return
	}

	decl, err := h.service.Get(ctx, declID)
	if err != nil {
		h.writeError(ctx, w, err, "get declaration failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDeclaration(decl))
}

// HandleDocument handles GET /declarations/{id}/document. ?format=text
// returns the plain-text preview instead of the block model.
func (h *Handler) HandleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	declID, ok := h.declarationID(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "text" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "format must be json or text"))
		return
	}

	doc, err := h.service.Document(ctx, declID)
	if err != nil {
		h.writeError(ctx, w, err, "get document failed")
		return
	}

	if format != "text" {
		httputil.WriteJSON(w, http.StatusOK, doc)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := document.RenderText(w, doc); err != nil {
		h.logger.WarnContext(ctx, "failed to write document",
			"request_id", requestcontext.RequestID(ctx),
			"declaration_id", declID,
			"error", err,
		)
	}
}

// HandleAuditTrail handles GET /declarations/{id}/audit.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	declID, ok := h.declarationID(w, r)
	if !ok {
		return
	}

	events, err := h.service.AuditTrail(ctx, declID)
	if err != nil {
		h.writeError(ctx, w, err, "get audit trail failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAuditTrail(declID.String(), events))
}

func (h *Handler) declarationID(w http.ResponseWriter, r *http.Request) (id.DeclarationID, bool) {
	declID, err := id.ParseDeclarationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid declaration id"))
		return id.DeclarationID{}, false
	}
	return declID, true
}

// writeError answers a rejected case with its violations and everything else
// through the shared error mapping.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if resp, ok := rejection(err); ok {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
