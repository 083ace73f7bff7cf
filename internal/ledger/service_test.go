package ledger

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/psfastpay/core/logger"
)

func TestMain(m *testing.M) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger.SVCOrders = discard
	logger.SVCCodes = discard
	os.Exit(m.Run())
}

// fakeRepo mirrors the persistence semantics of the real repository in
// memory: sequential ids, forward-only status, unique codes.
type fakeRepo struct {
	nextID int64
	orders map[int64]*Order
	codes  map[string]*GiftCode
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: make(map[int64]*Order),
		codes:  make(map[string]*GiftCode),
	}
}

func (r *fakeRepo) CreateOrder(_ context.Context, draft DraftOrder) (int64, error) {
	r.nextID++
	id := r.nextID
	r.orders[id] = &Order{
		ID:           id,
		UserID:       draft.UserID,
		Username:     draft.Username,
		ProductID:    draft.ProductID,
		ProductTitle: draft.ProductTitle,
		Variant:      draft.Variant,
		Region:       draft.Region,
		PriceUSD:     draft.PriceUSD,
		PriceDisplay: draft.PriceDisplay,
		Currency:     draft.Currency,
		Status:       StatusPending,
		CreatedAt:    draft.CreatedAt.UTC().Format(time.RFC3339),
		Method:       draft.Method,
	}
	return id, nil
}

func (r *fakeRepo) Order(_ context.Context, id int64) (Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return *o, nil
}

func (r *fakeRepo) AttachProof(_ context.Context, id int64, proof string) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentProof = proof
	if o.Status != StatusPaid {
		o.Status = StatusManualSubmitted
	}
	return nil
}

func (r *fakeRepo) MarkPaid(_ context.Context, id int64) error {
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = StatusPaid
	return nil
}

func (r *fakeRepo) RecentOrders(_ context.Context, limit int) ([]Order, error) {
	var out []Order
	for id := r.nextID; id > 0 && len(out) < limit; id-- {
		if o, ok := r.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeRepo) AddGiftCode(_ context.Context, code GiftCode) (int64, error) {
	if _, dup := r.codes[code.Code]; dup {
		return 0, ErrCodeExists
	}
	r.nextID++
	code.ID = r.nextID
	r.codes[code.Code] = &code
	return code.ID, nil
}

func (r *fakeRepo) AvailableGiftCodes(_ context.Context) ([]GiftCode, error) {
	var out []GiftCode
	for _, c := range r.codes {
		if !c.Used {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkGiftCodeUsed(_ context.Context, code string) error {
	c, ok := r.codes[code]
	if !ok {
		return ErrNotFound
	}
	if c.Used {
		return ErrCodeUsed
	}
	c.Used = true
	return nil
}

func testDraft(userID int64) DraftOrder {
	return DraftOrder{
		UserID:       userID,
		Username:     "alice",
		ProductID:    "ps_plus_essential",
		ProductTitle: "PS Plus Essential",
		Variant:      "3 мес",
		Region:       "Турция",
		PriceUSD:     decimal.NewFromInt(14),
		PriceDisplay: "1400 RUB",
		Currency:     "RUB",
		Method:       MethodBank,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPlaceAssignsSequentialIDs(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	first, err := svc.Place(ctx, testDraft(1))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Place(ctx, testDraft(2))
	if err != nil {
		t.Fatal(err)
	}
	if second != first+1 {
		t.Fatalf("ids = %d, %d, want sequential", first, second)
	}

	o, err := svc.Get(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusPending {
		t.Errorf("status = %s, want pending", o.Status)
	}
	if o.PaymentProof != "" {
		t.Errorf("fresh order has proof %q", o.PaymentProof)
	}
}

func TestSubmitProofAdvancesAndOverwrites(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	id, err := svc.Place(ctx, testDraft(1))
	if err != nil {
		t.Fatal(err)
	}

	o, err := svc.SubmitProof(ctx, id, "file-1")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusManualSubmitted {
		t.Fatalf("status = %s, want manual_submitted", o.Status)
	}
	if o.PaymentProof != "file-1" {
		t.Fatalf("proof = %q", o.PaymentProof)
	}

	// Resubmission overwrites, last write wins.
	o, err = svc.SubmitProof(ctx, id, "file-2")
	if err != nil {
		t.Fatal(err)
	}
	if o.PaymentProof != "file-2" {
		t.Fatalf("proof after resubmit = %q", o.PaymentProof)
	}
	if o.Status != StatusManualSubmitted {
		t.Fatalf("status after resubmit = %s", o.Status)
	}
}

func TestSubmitProofNeverRegressesPaid(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	id, err := svc.Place(ctx, testDraft(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ConfirmPaid(ctx, id); err != nil {
		t.Fatal(err)
	}

	o, err := svc.SubmitProof(ctx, id, "late-proof")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusPaid {
		t.Fatalf("status = %s, want paid", o.Status)
	}
	if o.PaymentProof != "late-proof" {
		t.Fatalf("proof = %q, want recorded", o.PaymentProof)
	}
}

func TestConfirmPaidIdempotent(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	id, err := svc.Place(ctx, testDraft(1))
	if err != nil {
		t.Fatal(err)
	}

	// Direct pending -> paid is legal for out-of-band confirmations.
	o, err := svc.ConfirmPaid(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != StatusPaid {
		t.Fatalf("status = %s, want paid", o.Status)
	}

	o, err = svc.ConfirmPaid(ctx, id)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if o.Status != StatusPaid {
		t.Fatalf("status after second confirm = %s", o.Status)
	}
}

func TestUnknownOrder(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.Get(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: %v", err)
	}
	if _, err := svc.SubmitProof(ctx, 404, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SubmitProof: %v", err)
	}
	if _, err := svc.ConfirmPaid(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("ConfirmPaid: %v", err)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Place(ctx, testDraft(int64(i+1))); err != nil {
			t.Fatal(err)
		}
	}

	orders, err := svc.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 3 {
		t.Fatalf("len = %d, want 3", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].ID >= orders[i-1].ID {
			t.Fatalf("orders not newest first: %d before %d", orders[i-1].ID, orders[i].ID)
		}
	}

	// Non-positive limit falls back to the default.
	orders, err = svc.Recent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 5 {
		t.Fatalf("default limit returned %d orders", len(orders))
	}
}

func TestGiftCodeLifecycle(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.AddCode(ctx, "ABC-123", "$20", "Турция"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddCode(ctx, "ABC-123", "$20", "Турция"); !errors.Is(err, ErrCodeExists) {
		t.Fatalf("duplicate add: %v", err)
	}

	codes, err := svc.AvailableCodes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 1 || codes[0].Code != "ABC-123" {
		t.Fatalf("available = %+v", codes)
	}
	if codes[0].AddedAt == "" {
		t.Error("AddedAt not set")
	}

	if err := svc.UseCode(ctx, "ABC-123"); err != nil {
		t.Fatal(err)
	}
	if err := svc.UseCode(ctx, "ABC-123"); !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("second use: %v", err)
	}
	if err := svc.UseCode(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code: %v", err)
	}

	codes, err = svc.AvailableCodes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(codes) != 0 {
		t.Fatalf("used code still listed: %+v", codes)
	}
}
