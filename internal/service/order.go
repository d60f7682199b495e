package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rivermark/aqualink/internal/domain"
	"github.com/rivermark/aqualink/internal/events"
	"github.com/rivermark/aqualink/internal/repository"
	"github.com/rivermark/aqualink/internal/telemetry"
)

// OrderService owns the server-side truth of order status and the
// inventory side effect of acceptance.
type OrderService interface {
	// Create validates the request and persists a new Pending order with a
	// generated order number. Validation failures enumerate every violated
	// field in a single ValidationError.
	Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error)

	// Get retrieves a single order by ID.
	Get(ctx context.Context, orderID string) (*domain.Order, error)

	// GetByNumber retrieves a single order by order number.
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// List returns orders newest first, optionally filtered by status.
	List(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)

	// Accept transitions a Pending order to Accepted, reserving inventory
	// for every line item atomically. A non-Pending order fails with
	// ErrInvalidTransition; any stock shortfall fails the whole call with
	// ErrInsufficientStock and changes nothing.
	Accept(ctx context.Context, orderID, actor string) (*AcceptResult, error)

	// UpdateStatus unconditionally overwrites the order's status. This is
	// the manual operator override channel; it enforces no transition graph
	// beyond status validity.
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error)

	// Delete permanently removes an order.
	Delete(ctx context.Context, orderID string) error
}

// CreateOrderRequest is the validated input for order creation.
type CreateOrderRequest struct {
	BranchName   string               `json:"branchName" validate:"required"`
	Location     string               `json:"location" validate:"required"`
	ContactName  string               `json:"contactName" validate:"required"`
	ContactPhone string               `json:"contactPhone" validate:"required,phone"`
	Priority     domain.OrderPriority `json:"priority"`
	ExpectedDate time.Time            `json:"expectedDeliveryDate" validate:"required"`
	Source       domain.OrderSource   `json:"source"`
	Items        []CreateOrderItem    `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItem is one requested line item.
type CreateOrderItem struct {
	ItemName  string `json:"itemName" validate:"required"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
}

// AcceptResult reports a successful acceptance together with the inventory
// adjustments it applied.
type AcceptResult struct {
	Order       *domain.Order                `json:"order"`
	Adjustments []domain.InventoryAdjustment `json:"adjustments"`
}

// Config tunes order validation and observability.
type Config struct {
	// MaxLineItemQty is the per-line-item quantity ceiling.
	MaxLineItemQty int32

	// Metrics records business counters. Nil disables recording.
	Metrics *telemetry.BusinessMetrics
}

type orderService struct {
	repo      repository.Repository
	publisher events.Publisher
	validate  *validator.Validate
	maxQty    int32
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// phoneRE accepts phone-shaped contact numbers: optional +, digits with
// spaces or dashes, 7-15 digits overall.
var phoneRE = regexp.MustCompile(`^\+?[0-9](?:[0-9 \-]{5,13})[0-9]$`)

// NewOrderService creates an OrderService instance.
func NewOrderService(repo repository.Repository, publisher events.Publisher, cfg Config, logger *slog.Logger) OrderService {
	if cfg.MaxLineItemQty == 0 {
		cfg.MaxLineItemQty = 1000
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})

	return &orderService{
		repo:      repo,
		publisher: publisher,
		validate:  v,
		maxQty:    cfg.MaxLineItemQty,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Create validates required fields, persists a Pending order, and returns it.
func (s *orderService) Create(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.Priority == "" {
		req.Priority = domain.PriorityMedium
	}
	if req.Source == "" {
		req.Source = domain.SourceBranchRequest
	}

	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:           uuid.New().String(),
		OrderNumber:  generateOrderNumber(now),
		BranchName:   req.BranchName,
		Location:     req.Location,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Priority:     req.Priority,
		ExpectedDate: req.ExpectedDate,
		Status:       domain.StatusPending,
		Source:       req.Source,
		CreatedAt:    now,
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, domain.LineItem{
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, asUnavailable(err, "order.create", "failed to save order")
	}

	var value int64
	for _, item := range order.Items {
		value += item.UnitPrice * int64(item.Quantity)
	}
	s.metrics.RecordOrderCreated(string(order.Source), value)

	s.logger.Info("order created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"source", order.Source,
		"items", len(order.Items),
	)
	return order, nil
}

// validateCreate collects every violated field into one ValidationError.
func (s *orderService) validateCreate(req CreateOrderRequest) error {
	var verr error

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.Internal(err, "order.validate", "request validation failed")
		}
		for _, fe := range verrs {
			verr = domain.AddFieldError(verr, fieldPath(fe), messageFor(fe))
		}
	}

	if !domain.ValidPriority(req.Priority) {
		verr = domain.AddFieldError(verr, "priority", "must be one of Low, Medium, High, Urgent")
	}
	if req.Source != domain.SourceDirect && req.Source != domain.SourceBranchRequest {
		verr = domain.AddFieldError(verr, "source", "must be Direct or Branch Request")
	}
	if !req.ExpectedDate.IsZero() && req.ExpectedDate.Before(startOfToday()) {
		verr = domain.AddFieldError(verr, "expectedDeliveryDate", "must not be in the past")
	}
	for i, item := range req.Items {
		if item.Quantity > s.maxQty {
			verr = domain.AddFieldError(verr, fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must not exceed %d", s.maxQty))
		}
	}

	if verr == nil {
		return nil
	}
	var ve *domain.ValidationError
	errors.As(verr, &ve)
	ve.Op = "order.create"
	return ve
}

func (s *orderService) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, asUnavailable(err, "order.get", "failed to load order")
	}
	return order, nil
}

func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	order, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return nil, asUnavailable(err, "order.get_by_number", "failed to load order")
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx, status)
	if err != nil {
		return nil, asUnavailable(err, "order.list", "failed to list orders")
	}
	return orders, nil
}

func (s *orderService) Accept(ctx context.Context, orderID, actor string) (*AcceptResult, error) {
	order, adjustments, err := s.repo.AcceptOrder(ctx, orderID, actor, time.Now().UTC())
	if err != nil {
		s.metrics.RecordAcceptRejected(rejectReason(err))
		return nil, asUnavailable(err, "order.accept", "failed to accept order")
	}
	s.metrics.RecordOrderAccepted()

	s.logger.Info("order accepted",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"accepted_by", actor,
		"adjustments", len(adjustments),
	)
	s.publishInventoryEvent(ctx, events.ActionOrderAccepted, order)

	return &AcceptResult{Order: order, Adjustments: adjustments}, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.Errorf(domain.EINVALID, "order.update_status", "unknown status: %s", status)
	}

	order, err := s.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, asUnavailable(err, "order.update_status", "failed to update order status")
	}

	s.logger.Info("order status updated", "order_id", order.ID, "status", status)

	switch status {
	case domain.StatusShipped:
		s.publishInventoryEvent(ctx, events.ActionOrderShipped, order)
	case domain.StatusDelivered:
		s.publishInventoryEvent(ctx, events.ActionOrderDelivered, order)
	}

	return order, nil
}

func (s *orderService) Delete(ctx context.Context, orderID string) error {
	if err := s.repo.DeleteOrder(ctx, orderID); err != nil {
		return asUnavailable(err, "order.delete", "failed to delete order")
	}
	s.logger.Info("order deleted", "order_id", orderID)
	return nil
}

// publishInventoryEvent broadcasts a refresh signal. Publish failures are
// logged only; the business operation already committed.
func (s *orderService) publishInventoryEvent(ctx context.Context, action string, order *domain.Order) {
	names := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		names = append(names, item.ItemName)
	}

	err := s.publisher.PublishInventoryUpdated(ctx, events.InventoryUpdated{
		Action:     action,
		OrderID:    order.ID,
		ItemNames:  names,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error("failed to publish inventory event",
			"action", action, "order_id", order.ID, "error", err)
	}
}

// generateOrderNumber builds ORD-YYYYMMDD-XXXX with a random alphanumeric
// suffix.
func generateOrderNumber(now time.Time) string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failure is effectively unreachable; fall back to time.
		return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), now.UnixNano()%10000)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), string(b))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrItemNotFound):
		return "not_found"
	default:
		return "other"
	}
}

func startOfToday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// fieldPath converts a validator namespace like
// "CreateOrderRequest.items[0].quantity" into "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must contain at least one line item"
	case "gt":
		return "must be a positive integer"
	case "gte":
		return "must not be negative"
	case "phone":
		return "must be a valid phone number"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
