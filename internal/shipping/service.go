package shipping

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
)

var (
	serviceTracer = otel.Tracer("shipping/service")
	serviceMeter  = otel.Meter("shipping/service")
)

// DefaultShippingTypes is the carrier allow-list used when no explicit
// configuration is given.
var DefaultShippingTypes = []string{
	"Нова Пошта",
	"Укр Пошта",
	"Meest Express",
	"Самовивіз",
}

const DefaultBatchSize = 10

// Store owns the shipping records. GetShipping returns a snapshot copy, so
// callers can never mutate stored state without going back through the
// service. Both GetShipping and UpdateStatus return
// domain.ErrShippingNotFound for unknown ids.
type Store interface {
	CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, status domain.ShippingStatus, dueDate time.Time) (string, error)
	GetShipping(ctx context.Context, id string) (*domain.Shipping, error)
	UpdateStatus(ctx context.Context, id string, status domain.ShippingStatus) error
}

// Queue hands shipping ids from producers to the batch consumer. Poll is
// non-blocking: it returns up to batchSize pending ids in enqueue order and
// an empty slice when nothing is waiting. Each id is delivered to exactly
// one poller.
type Queue interface {
	SendNewShipping(ctx context.Context, id string) error
	PollShippings(ctx context.Context, batchSize int) ([]string, error)
}

// Service enforces the shipping state machine and is the only component
// coordinating the store and the queue.
type Service struct {
	store        Store
	queue        Queue
	allowedTypes []string
	batchSize    int
	now          func() time.Time
	logger       *slog.Logger

	processedCounter metric.Int64Counter
	outcomeCounter   metric.Int64Counter
}

type Option func(*Service)

func WithAllowedTypes(types []string) Option {
	return func(s *Service) {
		s.allowedTypes = slices.Clone(types)
	}
}

func WithBatchSize(size int) Option {
	return func(s *Service) {
		s.batchSize = size
	}
}

// WithClock overrides the time source, used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, queue Queue, logger *slog.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		store:        store,
		queue:        queue,
		allowedTypes: DefaultShippingTypes,
		batchSize:    DefaultBatchSize,
		now:          time.Now,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	var err error
	s.processedCounter, err = serviceMeter.Int64Counter("shipping.batch.processed",
		metric.WithDescription("Number of shipping ids resolved by batch processing"),
	)
	if err != nil {
		return nil, err
	}

	s.outcomeCounter, err = serviceMeter.Int64Counter("shipping.batch.outcomes",
		metric.WithDescription("Batch outcomes by resulting status"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// CreateShipping validates the request, persists the record with status
// in_progress and only then enqueues the id, so a racing consumer that
// dequeues it always finds the backing record.
func (s *Service) CreateShipping(ctx context.Context, shippingType string, productIDs []string, orderID string, dueDate time.Time) (string, error) {
	if !slices.Contains(s.allowedTypes, shippingType) {
		return "", domain.NewValidationError("shipping type is not available")
	}

	if !dueDate.After(s.now()) {
		return "", domain.NewValidationError("shipping due datetime must be greater than datetime now")
	}

	id, err := s.store.CreateShipping(ctx, shippingType, productIDs, orderID, domain.ShippingStatusInProgress, dueDate)
	if err != nil {
		return "", fmt.Errorf("create shipping: %w", err)
	}

	if err := s.queue.SendNewShipping(ctx, id); err != nil {
		return "", fmt.Errorf("enqueue shipping %s: %w", id, err)
	}

	s.logger.Info("shipping created", "shipping_id", id, "order_id", orderID, "shipping_type", shippingType, "due_date", dueDate)
	return id, nil
}

// ProcessShippingBatch drains up to the configured batch size from the queue
// and resolves each shipping against its due date: past or at due date means
// failed, otherwise completed. A dequeued id with no backing record aborts
// the batch with an error wrapping domain.ErrShippingNotFound; ids resolved
// before the fault keep their new status.
func (s *Service) ProcessShippingBatch(ctx context.Context) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "process shipping batch",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	defer span.End()

	ids, err := s.queue.PollShippings(ctx, s.batchSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("poll shippings: %w", err)
	}

	processed := 0
	for _, id := range ids {
		status, err := s.processShipping(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return processed, err
		}

		processed++
		s.processedCounter.Add(ctx, 1)
		s.outcomeCounter.Add(ctx, 1, metric.WithAttributes(statusAttr(status)))
		s.logger.Info("shipping processed", "shipping_id", id, "shipping_status", status)
	}

	return processed, nil
}

func (s *Service) processShipping(ctx context.Context, id string) (domain.ShippingStatus, error) {
	record, err := s.store.GetShipping(ctx, id)
	if err != nil {
		return "", fmt.Errorf("read queued shipping %s: %w", id, err)
	}

	status := domain.ShippingStatusCompleted
	if !s.now().Before(record.DueDate) {
		status = domain.ShippingStatusFailed
	}

	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return "", fmt.Errorf("update shipping %s: %w", id, err)
	}

	return status, nil
}

func (s *Service) CheckStatus(ctx context.Context, id string) (domain.ShippingStatus, error) {
	record, err := s.store.GetShipping(ctx, id)
	if err != nil {
		return "", err
	}
	return record.Status, nil
}

// FailShipping forces the status to failed regardless of due date or current
// state.
func (s *Service) FailShipping(ctx context.Context, id string) error {
	if err := s.store.UpdateStatus(ctx, id, domain.ShippingStatusFailed); err != nil {
		return err
	}
	s.logger.Info("shipping failed manually", "shipping_id", id)
	return nil
}

// CompleteShipping forces the status to completed regardless of due date or
// current state.
func (s *Service) CompleteShipping(ctx context.Context, id string) error {
	if err := s.store.UpdateStatus(ctx, id, domain.ShippingStatusCompleted); err != nil {
		return err
	}
	s.logger.Info("shipping completed manually", "shipping_id", id)
	return nil
}

func (s *Service) ListAvailableShippingTypes() []string {
	return slices.Clone(s.allowedTypes)
}

func statusAttr(status domain.ShippingStatus) attribute.KeyValue {
	return attribute.String("shipping.status", string(status))
}
