package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/psfastpay/core/logger"
)

// Repository is the persistence contract the service runs on.
type Repository interface {
	CreateOrder(ctx context.Context, draft DraftOrder) (int64, error)
	Order(ctx context.Context, id int64) (Order, error)
	AttachProof(ctx context.Context, id int64, proof string) error
	MarkPaid(ctx context.Context, id int64) error
	RecentOrders(ctx context.Context, limit int) ([]Order, error)

	AddGiftCode(ctx context.Context, code GiftCode) (int64, error)
	AvailableGiftCodes(ctx context.Context) ([]GiftCode, error)
	MarkGiftCodeUsed(ctx context.Context, code string) error
}

// Service wraps the repository with logging and the small amount of policy
// the ledger owns (status semantics, listing defaults).
type Service struct {
	repo Repository
}

// NewService constructs the ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const defaultListLimit = 50

// Place persists a draft order and returns its assigned identifier.
func (s *Service) Place(ctx context.Context, draft DraftOrder) (int64, error) {
	start := time.Now()
	id, err := s.repo.CreateOrder(ctx, draft)
	if err != nil {
		logger.SVCOrders.Error("order create failed",
			slog.String("event", "order.create"),
			slog.Int64("user_id", draft.UserID),
			slog.String("product_id", draft.ProductID),
			slog.String("err", err.Error()),
		)
		return 0, fmt.Errorf("create order: %w", err)
	}
	logger.SVCOrders.Info("order created",
		slog.String("event", "order.create"),
		slog.Int64("order_id", id),
		slog.Int64("user_id", draft.UserID),
		slog.String("product_id", draft.ProductID),
		slog.String("variant", draft.Variant),
		slog.String("region", draft.Region),
		slog.String("method", string(draft.Method)),
		slog.String("price_display", draft.PriceDisplay),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}

// SubmitProof attaches payment proof to the order and moves it to
// manual_submitted. Resubmission overwrites the previous proof: last write
// wins. A paid order keeps its status but still records the proof.
func (s *Service) SubmitProof(ctx context.Context, id int64, proof string) (Order, error) {
	if err := s.repo.AttachProof(ctx, id, proof); err != nil {
		return Order{}, err
	}
	order, err := s.repo.Order(ctx, id)
	if err != nil {
		return Order{}, err
	}
	logger.SVCOrders.Info("proof attached",
		slog.String("event", "order.proof"),
		slog.Int64("order_id", id),
		slog.Int64("user_id", order.UserID),
		slog.String("status_to", string(order.Status)),
	)
	return order, nil
}

// ConfirmPaid marks the order paid and returns the updated order so callers
// can notify its owner. Confirming an already-paid order is a no-op.
func (s *Service) ConfirmPaid(ctx context.Context, id int64) (Order, error) {
	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return Order{}, err
	}
	order, err := s.repo.Order(ctx, id)
	if err != nil {
		return Order{}, err
	}
	logger.SVCOrders.Info("order paid",
		slog.String("event", "order.paid"),
		slog.Int64("order_id", id),
		slog.Int64("user_id", order.UserID),
	)
	return order, nil
}

// Get returns the order by id.
func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	return s.repo.Order(ctx, id)
}

// Recent returns up to limit most recently created orders, newest first.
// A non-positive limit falls back to the default.
func (s *Service) Recent(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.RecentOrders(ctx, limit)
}

// AddCode stores a new gift code in inventory.
func (s *Service) AddCode(ctx context.Context, code, denomination, region string) (int64, error) {
	gc := GiftCode{
		Code:         code,
		Denomination: denomination,
		Region:       region,
		AddedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	id, err := s.repo.AddGiftCode(ctx, gc)
	if err != nil {
		return 0, err
	}
	logger.SVCCodes.Info("gift code added",
		slog.String("event", "code.add"),
		slog.String("code", code),
		slog.String("region", region),
	)
	return id, nil
}

// AvailableCodes lists unused gift codes.
func (s *Service) AvailableCodes(ctx context.Context) ([]GiftCode, error) {
	return s.repo.AvailableGiftCodes(ctx)
}

// UseCode flips a gift code to used. Using an unknown code returns
// ErrNotFound; using a spent one returns ErrCodeUsed.
func (s *Service) UseCode(ctx context.Context, code string) error {
	if err := s.repo.MarkGiftCodeUsed(ctx, code); err != nil {
		return err
	}
	logger.SVCCodes.Info("gift code used",
		slog.String("event", "code.use"),
		slog.String("code", code),
	)
	return nil
}
