package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/order-management/internal/product"
	"github.com/vasiliy-maslov/order-management/internal/user"
)

// LineItemInput is what a caller submits per ordered product. The price is
// captured from the catalog at placement time, not trusted from the caller.
type LineItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, items []LineItemInput) (*Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error
}

type service struct {
	orderRepo Repository
	users     UserDirectory
	catalog   Catalog
	payments  Payments
	shipments Shipments

	maxLookups int
}

func NewService(orderRepo Repository, users UserDirectory, catalog Catalog, payments Payments, shipments Shipments) Service {
	return &service{
		orderRepo:  orderRepo,
		users:      users,
		catalog:    catalog,
		payments:   payments,
		shipments:  shipments,
		maxLookups: 10,
	}
}

// PlaceOrder runs the order placement sequence: validate references, reserve
// inventory, persist the order, capture payment, dispatch the shipment
// notification. There is no transaction spanning the collaborators; any
// failure after a reservation triggers a compensating release before the
// error is returned, and the persisted order status is the record a
// reconciliation job can act on.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, items []LineItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, stageErr(StageValidate, ErrEmptyOrder)
	}
	if userID == uuid.Nil {
		return nil, stageErr(StageValidate, fmt.Errorf("%w: user id is nil", ErrInvalidReference))
	}
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, stageErr(StageValidate, fmt.Errorf("%w: product id is nil", ErrInvalidReference))
		}
		if item.Quantity <= 0 {
			return nil, stageErr(StageValidate, fmt.Errorf("quantity for product %s must be greater than zero", item.ProductID))
		}
	}

	prices, err := s.validateReferences(ctx, userID, items)
	if err != nil {
		return nil, stageErr(StageValidate, err)
	}

	reserved, err := s.reserveItems(ctx, items)
	if err != nil {
		return nil, stageErr(StageReserve, err)
	}

	o := &Order{
		UserID: userID,
		Status: StatusCreated,
	}
	for i, item := range items {
		o.OrderItems = append(o.OrderItems, OrderItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			PricePerUnit: prices[i],
		})
		o.TotalAmount += float64(item.Quantity) * prices[i]
	}

	if _, err := s.orderRepo.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to persist order, releasing reservations")
		s.releaseItems(ctx, reserved)
		return nil, stageErr(StagePersist, fmt.Errorf("service: failed to create order: %w", err))
	}

	result, err := s.payments.Capture(ctx, o.ID, o.TotalAmount)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", o.ID).Msg("service: payment capture failed, cancelling order")
		s.cancelOrder(ctx, o, reserved)
		return nil, stageErr(StagePayment, fmt.Errorf("service: payment capture failed: %w", err))
	}
	if result == PaymentDeclined {
		log.Info().Stringer("order_id", o.ID).Msg("service: payment declined, cancelling order")
		s.cancelOrder(ctx, o, reserved)
		return nil, stageErr(StagePayment, ErrPaymentDeclined)
	}

	if err := s.orderRepo.UpdateStatus(ctx, o.ID, StatusCreated, StatusPaid); err != nil {
		// Payment is captured; the order stays CREATED for the
		// reconciliation job rather than being cancelled here.
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to advance order to PAID after capture")
		return nil, stageErr(StagePayment, fmt.Errorf("service: failed to advance order to paid: %w", err))
	}
	o.Status = StatusPaid

	s.dispatchFulfillment(ctx, o)

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).Stringer("status", o.Status).Msg("service: order placed")
	return o, nil
}

// validateReferences checks the user and every product exist, fanning the
// lookups out concurrently. It returns the catalog price per line item in
// input order.
func (s *service) validateReferences(ctx context.Context, userID uuid.UUID, items []LineItemInput) ([]float64, error) {
	prices := make([]float64, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxLookups)

	g.Go(func() error {
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return fmt.Errorf("%w: user %s", ErrInvalidReference, userID)
			}
			return fmt.Errorf("service: failed to resolve user %s: %w", userID, err)
		}
		return nil
	})

	for i := range items {
		i := i
		g.Go(func() error {
			item := items[i]
			p, err := s.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, product.ErrProductNotFound) {
					return fmt.Errorf("%w: product %s", ErrInvalidReference, item.ProductID)
				}
				return fmt.Errorf("service: failed to resolve product %s: %w", item.ProductID, err)
			}
			prices[i] = p.Price
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

// reserveItems reserves stock line by line. On any failure the already
// reserved prefix is released before the error is returned.
func (s *service) reserveItems(ctx context.Context, items []LineItemInput) ([]LineItemInput, error) {
	reserved := make([]LineItemInput, 0, len(items))
	for _, item := range items {
		if err := s.catalog.ReserveStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.releaseItems(ctx, reserved)
			switch {
			case errors.Is(err, product.ErrInsufficientStock):
				return nil, fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
			case errors.Is(err, product.ErrProductNotFound):
				return nil, fmt.Errorf("%w: product %s", ErrInvalidReference, item.ProductID)
			default:
				return nil, fmt.Errorf("service: failed to reserve stock for product %s: %w", item.ProductID, err)
			}
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

// releaseItems is the compensating action for reserveItems. It must run
// even when the caller's context is already cancelled.
func (s *service) releaseItems(ctx context.Context, reserved []LineItemInput) {
	ctx = context.WithoutCancel(ctx)
	for _, item := range reserved {
		if err := s.catalog.ReleaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Error().Err(err).Stringer("product_id", item.ProductID).Int("quantity", item.Quantity).
				Msg("service: compensating stock release failed, reconciliation required")
		}
	}
}

func (s *service) cancelOrder(ctx context.Context, o *Order, reserved []LineItemInput) {
	s.releaseItems(ctx, reserved)
	if err := s.orderRepo.UpdateStatus(context.WithoutCancel(ctx), o.ID, StatusCreated, StatusCancelled); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to cancel order, reconciliation required")
		return
	}
	o.Status = StatusCancelled
}

// dispatchFulfillment makes one attempt to notify the shipment channel. An
// acknowledged notification advances the order to FULFILLED; anything else
// leaves it PAID for the reconciliation job to retry.
func (s *service) dispatchFulfillment(ctx context.Context, o *Order) {
	result, err := s.shipments.Notify(ctx, o.ID)
	if err != nil {
		log.Warn().Err(err).Stringer("order_id", o.ID).Msg("service: shipment notification failed, order stays PAID")
		return
	}
	if result != ShipmentAccepted {
		log.Warn().Stringer("order_id", o.ID).Str("result", string(result)).Msg("service: shipment notification rejected, order stays PAID")
		return
	}
	if err := s.orderRepo.UpdateStatus(ctx, o.ID, StatusPaid, StatusFulfilled); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("service: failed to advance order to FULFILLED")
		return
	}
	o.Status = StatusFulfilled
}

func (s *service) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus applies a manual status change, honoring the monotonic
// transition table. Used by reconciliation tooling.
func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, newStatus OrderStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, newStatus)
	}

	current, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		return nil
	}
	if !current.Status.CanTransitionTo(newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, current.Status, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrStatusConflict) {
			return err
		}
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}
