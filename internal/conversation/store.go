// Package conversation tracks each user's progress through the order flow:
// product -> variant -> region -> confirm -> payment method. Sessions are
// in-memory and per-user; a completed conversation emits a ledger.DraftOrder
// and forgets everything.
package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/psfastpay/internal/catalog"
	"github.com/m3rciful/psfastpay/internal/ledger"
	"github.com/m3rciful/psfastpay/internal/pricing"
)

// State identifies the step of the order conversation a user is in.
type State string

const (
	StateIdle            State = "idle"
	StateChoosingVariant State = "choosing_variant"
	StateChoosingRegion  State = "choosing_region"
	StateConfirming      State = "confirming"
	StateChoosingPayment State = "choosing_payment"
)

// Selection accumulates the user's choices. Which fields are populated is
// determined entirely by the session state; no transition skips a field.
type Selection struct {
	ProductID    string
	ProductTitle string
	Variant      string
	Region       string
	PriceUSD     decimal.Decimal
	PriceDisplay string
	Currency     string
}

type session struct {
	mu        sync.Mutex
	state     State
	selection Selection
	// touched holds the unix-nano timestamp of the last event. Atomic so
	// the janitor can read it without taking the session lock.
	touched atomic.Int64
}

func newSession() *session {
	sess := &session{state: StateIdle}
	sess.touched.Store(time.Now().UnixNano())
	return sess
}

// Store keeps one session per user. Events for the same user serialize on
// the session lock; events for different users run independently.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*session

	catalog *catalog.Catalog
	convert pricing.Converter
}

// NewStore constructs a session store over the given catalog. A nil
// converter falls back to the placeholder display rate.
func NewStore(cat *catalog.Catalog, convert pricing.Converter) *Store {
	if convert == nil {
		convert = pricing.PlaceholderRUB
	}
	return &Store{
		sessions: make(map[int64]*session),
		catalog:  cat,
		convert:  convert,
	}
}

// withSession runs fn with the user's session locked. Sessions are created
// on first interaction. If the session was destroyed while we waited for
// its lock (the user completed or cancelled concurrently), we retry against
// the current one so no event ever mutates a detached session.
func (s *Store) withSession(userID int64, fn func(*session) error) error {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[userID]
		if !ok {
			sess = newSession()
			s.sessions[userID] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		s.mu.RLock()
		current := s.sessions[userID] == sess
		s.mu.RUnlock()
		if !current {
			sess.mu.Unlock()
			continue
		}

		sess.touched.Store(time.Now().UnixNano())
		err := fn(sess)
		sess.mu.Unlock()
		return err
	}
}

func (s *Store) destroy(userID int64) {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

// StateOf returns the user's current conversation state.
func (s *Store) StateOf(userID int64) State {
	s.mu.RLock()
	sess, ok := s.sessions[userID]
	s.mu.RUnlock()
	if !ok {
		return StateIdle
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// SelectProduct starts a conversation from idle.
func (s *Store) SelectProduct(userID int64, productID string) (catalog.Product, error) {
	var picked catalog.Product
	err := s.withSession(userID, func(sess *session) error {
		if sess.state != StateIdle {
			return ErrInvalidTransition
		}
		p, ok := s.catalog.Find(productID)
		if !ok {
			return ErrUnknownProduct
		}
		picked = p
		sess.selection.ProductID = p.ID
		sess.selection.ProductTitle = p.Title
		sess.state = StateChoosingVariant
		return nil
	})
	return picked, err
}

// SelectVariant records the variant choice.
func (s *Store) SelectVariant(userID int64, variant string) error {
	return s.withSession(userID, func(sess *session) error {
		if sess.state != StateChoosingVariant {
			return ErrInvalidTransition
		}
		p, ok := s.catalog.Find(sess.selection.ProductID)
		if !ok {
			return ErrUnknownProduct
		}
		if !p.HasVariant(variant) {
			return ErrUnknownVariant
		}
		sess.selection.Variant = variant
		sess.state = StateChoosingRegion
		return nil
	})
}

// SelectRegion records the region and computes the price. The returned
// selection is the complete priced snapshot shown in the order summary.
func (s *Store) SelectRegion(userID int64, region string) (Selection, error) {
	var snapshot Selection
	err := s.withSession(userID, func(sess *session) error {
		if sess.state != StateChoosingRegion {
			return ErrInvalidTransition
		}
		if !s.catalog.HasRegion(region) {
			return ErrUnknownRegion
		}
		p, ok := s.catalog.Find(sess.selection.ProductID)
		if !ok {
			return ErrUnknownProduct
		}
		usd, err := pricing.Quote(p, sess.selection.Variant)
		if err != nil {
			return ErrUnknownVariant
		}
		display, currency := s.convert(usd)
		sess.selection.Region = region
		sess.selection.PriceUSD = usd
		sess.selection.PriceDisplay = display
		sess.selection.Currency = currency
		sess.state = StateConfirming
		snapshot = sess.selection
		return nil
	})
	return snapshot, err
}

// Proceed moves a confirmed order summary on to payment method selection.
func (s *Store) Proceed(userID int64) error {
	return s.withSession(userID, func(sess *session) error {
		if sess.state != StateConfirming {
			return ErrInvalidTransition
		}
		sess.state = StateChoosingPayment
		return nil
	})
}

// ChoosePayment is the terminal transition: it emits the draft order and
// destroys the session. The draft is built before destruction so the caller
// always receives a fully populated snapshot.
func (s *Store) ChoosePayment(userID int64, username string, method ledger.PaymentMethod) (ledger.DraftOrder, error) {
	var draft ledger.DraftOrder
	err := s.withSession(userID, func(sess *session) error {
		if sess.state != StateChoosingPayment {
			return ErrInvalidTransition
		}
		if !ledger.KnownMethod(method) {
			return ErrUnknownMethod
		}
		sel := sess.selection
		draft = ledger.DraftOrder{
			UserID:       userID,
			Username:     username,
			ProductID:    sel.ProductID,
			ProductTitle: sel.ProductTitle,
			Variant:      sel.Variant,
			Region:       sel.Region,
			PriceUSD:     sel.PriceUSD,
			PriceDisplay: sel.PriceDisplay,
			Currency:     sel.Currency,
			Method:       method,
			CreatedAt:    time.Now().UTC(),
		}
		s.destroy(userID)
		return nil
	})
	if err != nil {
		return ledger.DraftOrder{}, err
	}
	return draft, nil
}

// Cancel discards the user's session from any state.
func (s *Store) Cancel(userID int64) {
	s.destroy(userID)
}

// StartJanitor evicts sessions idle longer than ttl until ctx is done.
// Eviction is housekeeping only: a stale session simply returns the user to
// idle, which every guard already tolerates.
func (s *Store) StartJanitor(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle(ttl)
			}
		}
	}()
}

func (s *Store) evictIdle(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl).UnixNano()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.touched.Load() < cutoff {
			delete(s.sessions, id)
		}
	}
}
