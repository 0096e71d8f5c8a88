package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/metrics"
	"ahliwaris/internal/declaration/models"
	"ahliwaris/internal/declaration/narrative"
	"ahliwaris/internal/declaration/scenario"
	id "ahliwaris/pkg/domain"
	dErrors "ahliwaris/pkg/domain-errors"
	"ahliwaris/pkg/platform/audit"
	"ahliwaris/pkg/platform/sentinel"
	"ahliwaris/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, decl *models.Declaration) error
	FindByID(ctx context.Context, declID id.DeclarationID) (*models.Declaration, error)
}

// DocumentCache misses with sentinel.ErrNotFound.
type DocumentCache interface {
	Get(ctx context.Context, declID id.DeclarationID) (document.Document, error)
	Set(ctx context.Context, declID id.DeclarationID, doc document.Document) error
}

// AuditPublisher persists compliance events. A failure must fail the issuance.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

// OpsTracker records operational events best-effort.
type OpsTracker interface {
	Track(ctx context.Context, event audit.OpsEvent)
}

// AuditReader lists the trail of one declaration.
type AuditReader interface {
	List(ctx context.Context, declID id.DeclarationID) ([]audit.Event, error)
}

// Tx runs fn atomically. Stores joined to the transaction find it in ctx.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service validates heir declarations, assembles their letters and keeps the
// issued record.
type Service struct {
	store       Store
	tx          Tx
	cache       DocumentCache
	auditor     AuditPublisher
	ops         OpsTracker
	auditReader AuditReader
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	letterhead  narrative.Options
	batchLimit  int
}

type Option func(*Service)

func WithTx(tx Tx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func WithCache(c DocumentCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func WithOpsTracker(t OpsTracker) Option {
	return func(s *Service) {
		s.ops = t
	}
}

func WithAuditReader(r AuditReader) Option {
	return func(s *Service) {
		s.auditReader = r
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLetterhead sets the signing place and officials printed on every letter.
// Its Today field is ignored; the request time dates each letter.
func WithLetterhead(opts narrative.Options) Option {
	return func(s *Service) {
		s.letterhead = opts
	}
}

// WithBatchLimit bounds how many cases AssembleBatch works on at once.
func WithBatchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchLimit = n
		}
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		tx:         NewLockTx(),
		tracer:     otel.Tracer("ahliwaris/declaration"),
		batchLimit: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Validate checks a case against its declared scenario. A rejected case
// returns a CodeUnprocessable error wrapping scenario.ValidationErrors.
func (s *Service) Validate(ctx context.Context, c models.Case) (*scenario.ValidatedCase, error) {
	ctx, span := s.tracer.Start(ctx, "declaration.Validate")
	defer span.End()

	vc, err := s.validate(c)
	sc := c.Scenario.Parse()
	span.SetAttributes(attribute.Int("declaration.scenario", sc.ID()))
	if err != nil {
		s.recordRejection(ctx, sc, err)
		span.SetStatus(codes.Error, "rejected")
		return nil, err
	}

	s.track(ctx, audit.OpsEvent{
		Action:   string(audit.EventDeclarationValidated),
		Subject:  vc.Deceased().FullName(),
		Scenario: strconv.Itoa(sc.ID()),
	})
	return vc, nil
}

func (s *Service) validate(c models.Case) (*scenario.ValidatedCase, error) {
	sc, deceased, heirs := c.ToDomain()
	vc, err := scenario.Validate(sc, deceased, heirs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnprocessable, "declaration rejected")
	}
	return vc, nil
}

func (s *Service) recordRejection(ctx context.Context, sc scenario.Scenario, err error) {
	violations, _ := scenario.AsValidationErrors(err)
	kinds := make([]string, 0, len(violations))
	for _, k := range violations.Kinds() {
		kinds = append(kinds, string(k))
	}
	for _, v := range violations {
		s.metrics.IncrementRejection(string(v.Kind))
	}
	s.logger.InfoContext(ctx, "declaration rejected",
		"request_id", requestcontext.RequestID(ctx),
		"scenario", sc.ID(),
		"violations", len(violations),
		"kinds", kinds,
	)
	s.track(ctx, audit.OpsEvent{
		Action:   string(audit.EventDeclarationRejected),
		Scenario: strconv.Itoa(sc.ID()),
		Reason:   strings.Join(kinds, ","),
	})
}

// Issue validates and assembles a case, then stores it together with its
// compliance audit record. The letter is dated with the request time.
func (s *Service) Issue(ctx context.Context, c models.Case) (*models.Declaration, error) {
	ctx, span := s.tracer.Start(ctx, "declaration.Issue")
	defer span.End()

	vc, err := s.Validate(ctx, c)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	doc := s.assemble(vc, now)
	requestID := requestcontext.RequestID(ctx)
	decl := models.NewDeclaration(id.NewDeclarationID(), vc, doc, now, requestID)
	span.SetAttributes(attribute.String("declaration.id", decl.ID.String()))

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, decl); err != nil {
			return err
		}
		return s.emitIssued(txCtx, decl, vc)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "declaration already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue declaration")
	}

	s.cacheDocument(ctx, decl.ID, doc)
	s.metrics.IncrementIssued(strconv.Itoa(decl.Scenario))
	s.logger.InfoContext(ctx, "declaration issued",
		"request_id", requestID,
		"declaration_id", decl.ID,
		"scenario", decl.Scenario,
		"heirs", len(decl.Heirs),
	)
	return decl, nil
}

func (s *Service) emitIssued(ctx context.Context, decl *models.Declaration, vc *scenario.ValidatedCase) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Emit(ctx, audit.ComplianceEvent{
		Timestamp:     decl.IssuedAt,
		DeclarationID: decl.ID,
		Subject:       vc.Deceased().FullName(),
		Action:        string(audit.EventDeclarationIssued),
		Scenario:      strconv.Itoa(decl.Scenario),
		Decision:      "issued",
		SubjectIDHash: audit.HashSubjectID(vc.Deceased().NationalID),
		RequestID:     decl.RequestID,
		ActorID:       requestcontext.ClientIP(ctx),
	})
}

func (s *Service) assemble(vc *scenario.ValidatedCase, today time.Time) document.Document {
	opts := s.letterhead
	opts.Today = today
	start := time.Now()
	doc := narrative.Assemble(vc, opts)
	s.metrics.ObserveAssembleLatency(time.Since(start))
	return doc
}

// Get returns an issued declaration.
func (s *Service) Get(ctx context.Context, declID id.DeclarationID) (*models.Declaration, error) {
	ctx, span := s.tracer.Start(ctx, "declaration.Get")
	defer span.End()

	decl, err := s.find(ctx, declID)
	if err != nil {
		return nil, err
	}
	s.track(ctx, audit.OpsEvent{
		DeclarationID: declID,
		Action:        string(audit.EventDeclarationViewed),
		Scenario:      strconv.Itoa(decl.Scenario),
	})
	return decl, nil
}

func (s *Service) find(ctx context.Context, declID id.DeclarationID) (*models.Declaration, error) {
	decl, err := s.store.FindByID(ctx, declID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "declaration not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load declaration")
	}
	return decl, nil
}

// Document returns the letter of an issued declaration, from cache when possible.
func (s *Service) Document(ctx context.Context, declID id.DeclarationID) (document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "declaration.Document")
	defer span.End()

	if doc, ok := s.cachedDocument(ctx, declID); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.trackRendered(ctx, declID)
		return doc, nil
	}

	decl, err := s.find(ctx, declID)
	if err != nil {
		return document.Document{}, err
	}
	s.cacheDocument(ctx, declID, decl.Document)
	s.trackRendered(ctx, declID)
	return decl.Document, nil
}

func (s *Service) trackRendered(ctx context.Context, declID id.DeclarationID) {
	s.track(ctx, audit.OpsEvent{
		DeclarationID: declID,
		Action:        string(audit.EventDocumentRendered),
	})
}

func (s *Service) cachedDocument(ctx context.Context, declID id.DeclarationID) (document.Document, bool) {
	if s.cache == nil {
		return document.Document{}, false
	}
	doc, err := s.cache.Get(ctx, declID)
	switch {
	case err == nil:
		s.metrics.IncrementCacheLookup("hit")
		return doc, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementCacheLookup("miss")
	default:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "document cache read failed",
			"declaration_id", declID,
			"error", err,
		)
	}
	return document.Document{}, false
}

func (s *Service) cacheDocument(ctx context.Context, declID id.DeclarationID, doc document.Document) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, declID, doc); err != nil {
		s.logger.WarnContext(ctx, "document cache write failed",
			"declaration_id", declID,
			"error", err,
		)
	}
}

// AuditTrail lists the recorded events of an issued declaration.
func (s *Service) AuditTrail(ctx context.Context, declID id.DeclarationID) ([]audit.Event, error) {
	if _, err := s.find(ctx, declID); err != nil {
		return nil, err
	}
	if s.auditReader == nil {
		return []audit.Event{}, nil
	}
	events, err := s.auditReader.List(ctx, declID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return events, nil
}

// AssembleBatch validates and assembles several cases concurrently. Results
// keep input order. If any case is rejected the batch fails with the lowest
// rejected index; nothing is stored.
func (s *Service) AssembleBatch(ctx context.Context, cases []models.Case) ([]document.Document, error) {
	ctx, span := s.tracer.Start(ctx, "declaration.AssembleBatch")
	defer span.End()
	span.SetAttributes(attribute.Int("batch.size", len(cases)))

	today := requestcontext.Now(ctx)
	docs := make([]document.Document, len(cases))
	errs := make([]error, len(cases))

	var g errgroup.Group
	g.SetLimit(s.batchLimit)
	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			vc, err := s.validate(c)
			if err != nil {
				errs[i] = err
				return nil
			}
			docs[i] = s.assemble(vc, today)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		span.SetStatus(codes.Error, "batch rejected")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, dErrors.Wrap(ctxErr, dErrors.CodeInternal, "batch cancelled")
		}
		return nil, &BatchError{Index: i, Err: err}
	}
	return docs, nil
}

// BatchError reports the first rejected case of a batch.
type BatchError struct {
	Index int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("case %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

func (s *Service) track(ctx context.Context, event audit.OpsEvent) {
	if s.ops == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	s.ops.Track(ctx, event)
}
