package conversation

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/psfastpay/internal/catalog"
	"github.com/m3rciful/psfastpay/internal/ledger"
)

const testCatalogYAML = `
products:
  - id: ps_plus_essential
    title: "PS Plus Essential"
    base_price_usd: 5
    variants: ["1 мес", "3 мес", "12 мес"]
  - id: psn_gift_card
    title: "PSN Gift Card"
    variants: ["$10", "$20", "$50"]

regions:
  - "Турция"
  - "Польша"
  - "США"
`

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(cat, nil)
}

func advanceToPayment(t *testing.T, s *Store, userID int64) {
	t.Helper()
	if _, err := s.SelectProduct(userID, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectVariant(userID, "3 мес"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectRegion(userID, "Турция"); err != nil {
		t.Fatal(err)
	}
	if err := s.Proceed(userID); err != nil {
		t.Fatal(err)
	}
}

func TestFullFlowEmitsDraft(t *testing.T) {
	s := testStore(t)
	const userID = int64(100)

	advanceToPayment(t, s, userID)

	draft, err := s.ChoosePayment(userID, "alice", ledger.MethodBank)
	if err != nil {
		t.Fatal(err)
	}

	if draft.UserID != userID || draft.Username != "alice" {
		t.Errorf("unexpected draft identity: %+v", draft)
	}
	if draft.ProductID != "ps_plus_essential" || draft.ProductTitle != "PS Plus Essential" {
		t.Errorf("unexpected product: %+v", draft)
	}
	if draft.Variant != "3 мес" || draft.Region != "Турция" {
		t.Errorf("unexpected selection: %+v", draft)
	}
	if draft.PriceUSD.String() != "14" {
		t.Errorf("price = %s, want 14", draft.PriceUSD)
	}
	if draft.PriceDisplay != "1400 RUB" || draft.Currency != "RUB" {
		t.Errorf("display = %q %q", draft.PriceDisplay, draft.Currency)
	}
	if draft.Method != ledger.MethodBank {
		t.Errorf("method = %s", draft.Method)
	}
	if draft.CreatedAt.IsZero() {
		t.Error("draft timestamp not set")
	}

	// Terminal transition forgets the session.
	if got := s.StateOf(userID); got != StateIdle {
		t.Errorf("state after completion = %s, want idle", got)
	}
}

func TestGuardRejectionsLeaveStateUntouched(t *testing.T) {
	s := testStore(t)
	const userID = int64(101)

	// Out-of-order events from idle.
	if err := s.SelectVariant(userID, "3 мес"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("SelectVariant from idle: %v", err)
	}
	if err := s.Proceed(userID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Proceed from idle: %v", err)
	}
	if _, err := s.ChoosePayment(userID, "", ledger.MethodBank); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ChoosePayment from idle: %v", err)
	}
	if got := s.StateOf(userID); got != StateIdle {
		t.Fatalf("state after rejected events = %s, want idle", got)
	}

	// Unknown choices mid-flow do not advance.
	if _, err := s.SelectProduct(userID, "nope"); !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("unknown product: %v", err)
	}
	if _, err := s.SelectProduct(userID, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectVariant(userID, "6 мес"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("unknown variant: %v", err)
	}
	if got := s.StateOf(userID); got != StateChoosingVariant {
		t.Fatalf("state after unknown variant = %s, want choosing_variant", got)
	}
	if err := s.SelectVariant(userID, "3 мес"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectRegion(userID, "Франция"); !errors.Is(err, ErrUnknownRegion) {
		t.Fatalf("unknown region: %v", err)
	}
	if got := s.StateOf(userID); got != StateChoosingRegion {
		t.Fatalf("state after unknown region = %s, want choosing_region", got)
	}
}

func TestUnknownPaymentMethod(t *testing.T) {
	s := testStore(t)
	const userID = int64(102)

	advanceToPayment(t, s, userID)

	if _, err := s.ChoosePayment(userID, "bob", "paypal"); !errors.Is(err, ErrUnknownMethod) {
		t.Fatalf("unknown method: %v", err)
	}
	// A rejected method keeps the session alive for a retry.
	if got := s.StateOf(userID); got != StateChoosingPayment {
		t.Fatalf("state = %s, want choosing_payment", got)
	}
	if _, err := s.ChoosePayment(userID, "bob", ledger.MethodTON); err != nil {
		t.Fatal(err)
	}
}

func TestCancelFromAnyState(t *testing.T) {
	s := testStore(t)
	const userID = int64(103)

	if _, err := s.SelectProduct(userID, "psn_gift_card"); err != nil {
		t.Fatal(err)
	}
	s.Cancel(userID)
	if got := s.StateOf(userID); got != StateIdle {
		t.Fatalf("state after cancel = %s, want idle", got)
	}

	// Cancelling an idle user is a no-op.
	s.Cancel(userID)

	// The flow can restart cleanly after cancel.
	if _, err := s.SelectProduct(userID, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
}

func TestUsersAreIndependent(t *testing.T) {
	s := testStore(t)

	if _, err := s.SelectProduct(1, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectProduct(2, "psn_gift_card"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectVariant(1, "12 мес"); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectVariant(2, "$50"); err != nil {
		t.Fatal(err)
	}
	if got := s.StateOf(1); got != StateChoosingRegion {
		t.Fatalf("user 1 state = %s", got)
	}
	if got := s.StateOf(2); got != StateChoosingRegion {
		t.Fatalf("user 2 state = %s", got)
	}
}

func TestConcurrentEventsSerializePerUser(t *testing.T) {
	s := testStore(t)
	const userID = int64(200)

	// From idle, exactly one of N racing product selections may win.
	const n = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.SelectProduct(userID, "ps_plus_essential"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("winning transitions = %d, want 1", wins)
	}
	if got := s.StateOf(userID); got != StateChoosingVariant {
		t.Fatalf("state = %s, want choosing_variant", got)
	}
}

func TestConcurrentCompletionEmitsOneDraft(t *testing.T) {
	s := testStore(t)
	const userID = int64(201)

	advanceToPayment(t, s, userID)

	const n = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	drafts := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ChoosePayment(userID, "carol", ledger.MethodBank); err == nil {
				mu.Lock()
				drafts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if drafts != 1 {
		t.Fatalf("emitted drafts = %d, want 1", drafts)
	}
}

func TestEvictIdleSessions(t *testing.T) {
	s := testStore(t)

	if _, err := s.SelectProduct(1, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SelectProduct(2, "psn_gift_card"); err != nil {
		t.Fatal(err)
	}

	// Rewind user 1's last activity beyond the TTL.
	s.mu.RLock()
	s.sessions[1].touched.Store(time.Now().Add(-time.Hour).UnixNano())
	s.mu.RUnlock()

	s.evictIdle(30 * time.Minute)

	if got := s.StateOf(1); got != StateIdle {
		t.Errorf("evicted user state = %s, want idle", got)
	}
	if got := s.StateOf(2); got != StateChoosingVariant {
		t.Errorf("active user state = %s, want choosing_variant", got)
	}

	// The evicted user simply starts over.
	if _, err := s.SelectProduct(1, "ps_plus_essential"); err != nil {
		t.Fatal(err)
	}
}
