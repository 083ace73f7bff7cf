package conversation

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/logger"
	"github.com/m3rciful/psfastpay/internal/ledger"
	"github.com/m3rciful/psfastpay/internal/notify"
)

func TestMain(m *testing.M) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger.SVCOrders = discard
	logger.SVCCodes = discard
	logger.SVCNotify = discard
	logger.SVCCatalog = discard
	os.Exit(m.Run())
}

type memRepo struct {
	nextID int64
	orders map[int64]*ledger.Order
}

func (r *memRepo) CreateOrder(_ context.Context, d ledger.DraftOrder) (int64, error) {
	r.nextID++
	r.orders[r.nextID] = &ledger.Order{
		ID:           r.nextID,
		UserID:       d.UserID,
		Username:     d.Username,
		ProductID:    d.ProductID,
		ProductTitle: d.ProductTitle,
		Variant:      d.Variant,
		Region:       d.Region,
		PriceUSD:     d.PriceUSD,
		PriceDisplay: d.PriceDisplay,
		Currency:     d.Currency,
		Status:       ledger.StatusPending,
		CreatedAt:    d.CreatedAt.UTC().Format(time.RFC3339),
		Method:       d.Method,
	}
	return r.nextID, nil
}

func (r *memRepo) Order(_ context.Context, id int64) (ledger.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return ledger.Order{}, ledger.ErrNotFound
	}
	return *o, nil
}

func (r *memRepo) AttachProof(_ context.Context, id int64, proof string) error {
	o, ok := r.orders[id]
	if !ok {
		return ledger.ErrNotFound
	}
	o.PaymentProof = proof
	if o.Status != ledger.StatusPaid {
		o.Status = ledger.StatusManualSubmitted
	}
	return nil
}

func (r *memRepo) MarkPaid(_ context.Context, id int64) error {
	o, ok := r.orders[id]
	if !ok {
		return ledger.ErrNotFound
	}
	o.Status = ledger.StatusPaid
	return nil
}

func (r *memRepo) RecentOrders(_ context.Context, limit int) ([]ledger.Order, error) {
	var out []ledger.Order
	for id := r.nextID; id > 0 && len(out) < limit; id-- {
		if o, ok := r.orders[id]; ok {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memRepo) AddGiftCode(context.Context, ledger.GiftCode) (int64, error) {
	return 0, nil
}

func (r *memRepo) AvailableGiftCodes(context.Context) ([]ledger.GiftCode, error) {
	return nil, nil
}

func (r *memRepo) MarkGiftCodeUsed(context.Context, string) error {
	return nil
}

type countingSender struct {
	sent []string
}

func (s *countingSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	text, _ := what.(string)
	s.sent = append(s.sent, to.Recipient()+":"+text)
	return &tele.Message{}, nil
}

// The bank-payment path end to end: conversation emits one draft, the
// ledger walks pending -> manual_submitted -> paid, and the buyer is
// notified exactly once.
func TestManualPaymentScenario(t *testing.T) {
	store := testStore(t)
	repo := &memRepo{orders: make(map[int64]*ledger.Order)}
	svc := ledger.NewService(repo)
	ctx := context.Background()
	const userID = int64(555)

	if _, err := store.SelectProduct(userID, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
	if err := store.SelectVariant(userID, "1 мес"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SelectRegion(userID, "Турция"); err != nil {
		t.Fatal(err)
	}
	if err := store.Proceed(userID); err != nil {
		t.Fatal(err)
	}
	draft, err := store.ChoosePayment(userID, "buyer", ledger.MethodBank)
	if err != nil {
		t.Fatal(err)
	}

	id, err := svc.Place(ctx, draft)
	if err != nil {
		t.Fatal(err)
	}
	o, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != ledger.StatusPending || o.Method != ledger.MethodBank {
		t.Fatalf("placed order: %+v", o)
	}
	if o.PriceUSD.String() != "5" || o.PriceDisplay != "500 RUB" {
		t.Fatalf("price: %s / %s", o.PriceUSD, o.PriceDisplay)
	}

	o, err = svc.SubmitProof(ctx, id, "photo-file-id")
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != ledger.StatusManualSubmitted {
		t.Fatalf("status after proof = %s", o.Status)
	}

	o, err = svc.ConfirmPaid(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != ledger.StatusPaid {
		t.Fatalf("status after confirm = %s", o.Status)
	}

	fs := &countingSender{}
	n := notify.NewTelegram(fs, nil, nil)
	if err := n.NotifyUser(ctx, o.UserID, "оплачен"); err != nil {
		t.Fatal(err)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "555:оплачен" {
		t.Fatalf("notifications = %v, want exactly one to the buyer", fs.sent)
	}
}
