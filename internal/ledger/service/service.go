// Package service applies the ledger's operations.
//
// Every mutation runs inside one store.RunInTx call that locks the records it
// touches, checks every precondition through the model Can* guards, and only
// then applies the Apply* transitions. Audit events and metrics are recorded
// after the transaction commits and never undo it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"offsetledger/internal/ledger/authz"
	"offsetledger/internal/ledger/metrics"
	"offsetledger/internal/ledger/store"
	"offsetledger/pkg/attrs"
	"offsetledger/pkg/domain"
	dErrors "offsetledger/pkg/domain-errors"
	"offsetledger/pkg/platform/audit"
	"offsetledger/pkg/platform/sentinel"
	"offsetledger/pkg/requestcontext"
)

// Settler moves value from payer to payee. Any error aborts the purchase.
type Settler interface {
	Settle(ctx context.Context, amount uint64, payer, payee domain.Principal) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service is the ledger core.
type Service struct {
	store          store.Store
	settler        Settler
	gate           *authz.Gate
	categories     domain.CategorySet
	minVintage     domain.VintageYear
	reverification bool
	admins         []domain.Principal

	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithAdmins sets the principals allowed to run administrative operations.
func WithAdmins(admins ...domain.Principal) Option {
	return func(s *Service) {
		s.admins = append(s.admins, admins...)
	}
}

// WithCategories sets the closed category set. Empty keeps the defaults.
func WithCategories(categories ...domain.Category) Option {
	return func(s *Service) {
		s.categories = domain.NewCategorySet(categories...)
	}
}

func WithMinVintageYear(year domain.VintageYear) Option {
	return func(s *Service) {
		s.minVintage = year
	}
}

// WithReverification lets active initiatives accept further verifications.
func WithReverification(allow bool) Option {
	return func(s *Service) {
		s.reverification = allow
	}
}

// New constructs a Service. The store and settler are required.
func New(st store.Store, settler Settler, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("ledger store is required")
	}
	if settler == nil {
		return nil, errors.New("settler is required")
	}
	s := &Service{
		store:      st,
		settler:    settler,
		categories: domain.NewCategorySet(),
		minVintage: 2020,
		tracer:     otel.Tracer("offsetledger/ledger"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.gate = authz.New(s.admins, authz.FromReader(st))
	return s, nil
}

// Categories returns the configured category set.
func (s *Service) Categories() domain.CategorySet {
	return s.categories
}

// begin opens a span for op and returns a finisher that records the outcome.
// Use with a named error result: defer done(&err).
func (s *Service) begin(ctx context.Context, op string, kv ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(kv...))
	start := time.Now()
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
			if s.metrics != nil {
				s.metrics.IncrementOperationError(op, string(dErrors.CodeOf(err)))
			}
		}
		if s.metrics != nil {
			s.metrics.ObserveOperation(op, start)
		}
		span.End()
	}
}

// translate turns store facts and model guard failures into caller-facing
// coded errors.
func translate(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		if de.Code == dErrors.CodeInvariantViolation {
			return dErrors.New(dErrors.CodeValidation, de.Message)
		}
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFound)
	case errors.Is(err, sentinel.ErrAlreadyExists):
		return dErrors.Wrap(err, dErrors.CodeConflict, "record already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "record is in the wrong state")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger store failure")
	}
}

func unauthorized(msg string) error {
	return dErrors.New(dErrors.CodeUnauthorized, msg)
}

func (s *Service) requireAdmin(caller domain.Principal) error {
	if !s.gate.IsAdmin(caller) {
		return unauthorized("caller is not an administrator")
	}
	return nil
}

// logAudit writes the audit log line and emits the matching event. Known keys
// (actor, subject, initiative_id, counterparty, quantity, amount, reason) are
// lifted into the event.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:       string(event),
		Actor:        attrs.ExtractString(attributes, "actor"),
		Subject:      attrs.ExtractString(attributes, "subject"),
		InitiativeID: attrs.ExtractUint64(attributes, "initiative_id"),
		Counterparty: attrs.ExtractString(attributes, "counterparty"),
		Quantity:     attrs.ExtractUint64(attributes, "quantity"),
		Amount:       attrs.ExtractUint64(attributes, "amount"),
		Reason:       attrs.ExtractString(attributes, "reason"),
		Timestamp:    requestcontext.Now(ctx),
		RequestID:    requestID,
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) observeIssued(n uint64) {
	if s.metrics != nil {
		s.metrics.CreditsIssued.Add(float64(n))
	}
}

func (s *Service) observeBatched(n uint64) {
	if s.metrics != nil {
		s.metrics.CreditsBatched.Add(float64(n))
	}
}

func (s *Service) observePurchased(n uint64) {
	if s.metrics != nil {
		s.metrics.CreditsPurchased.Add(float64(n))
	}
}

func (s *Service) observeTransferred(n uint64) {
	if s.metrics != nil {
		s.metrics.CreditsTransferred.Add(float64(n))
	}
}

func (s *Service) observeRetired(n uint64) {
	if s.metrics != nil {
		s.metrics.CreditsRetired.Add(float64(n))
	}
}

func (s *Service) incrementSettlementFailure() {
	if s.metrics != nil {
		s.metrics.SettlementFailures.Inc()
	}
}
