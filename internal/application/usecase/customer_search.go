package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pawnworks/origination/internal/domain/model"
	"github.com/pawnworks/origination/internal/domain/port"
)

// DefaultSearchDebounce is the quiet period before a query actually runs.
const DefaultSearchDebounce = 300 * time.Millisecond

// CustomerSearch debounces directory lookups while the user types. Only the
// settled value after the quiet period triggers a search, and a superseded
// search never updates the result set after a more recent one has started.
type CustomerSearch struct {
	searcher  port.CustomerSearcher
	logger    *slog.Logger
	debounce  time.Duration
	onResults func([]model.Customer)
	onError   func(error)

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	closed bool
	wg     sync.WaitGroup

	// notifyMu serializes deliveries; callbacks run under it but never
	// under mu, so a callback may re-enter Query.
	notifyMu sync.Mutex
}

// NewCustomerSearch creates a debounced searcher delivering results through
// the given callbacks.
func NewCustomerSearch(
	ctx context.Context,
	searcher port.CustomerSearcher,
	logger *slog.Logger,
	onResults func([]model.Customer),
	onError func(error),
) *CustomerSearch {
	cctx, cancel := context.WithCancel(ctx)
	return &CustomerSearch{
		searcher:  searcher,
		logger:    logger,
		debounce:  DefaultSearchDebounce,
		onResults: onResults,
		onError:   onError,
		ctx:       cctx,
		cancel:    cancel,
	}
}

// SetDebounce overrides the quiet period (tests use a short one).
func (s *CustomerSearch) SetDebounce(d time.Duration) {
	s.mu.Lock()
	s.debounce = d
	s.mu.Unlock()
}

// Query records a keystroke. The lookup fires only after the debounce window
// passes without another call; an empty query clears results immediately.
func (s *CustomerSearch) Query(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.seq++
	tag := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		s.timer = nil
		s.mu.Unlock()
		if s.onResults != nil {
			s.onResults(nil)
		}
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(tag, query)
	})
	s.mu.Unlock()
}

func (s *CustomerSearch) run(tag uint64, query string) {
	s.mu.Lock()
	if s.closed || tag != s.seq {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		results, err := s.searcher.SearchCustomers(s.ctx, query)

		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		s.mu.Lock()
		stale := s.closed || tag != s.seq
		s.mu.Unlock()
		if stale {
			return
		}
		if err != nil {
			s.logger.Warn("customer search failed", "query", query, "error", err)
			if s.onError != nil {
				s.onError(err)
			}
			return
		}
		if s.onResults != nil {
			s.onResults(results)
		}
	}()
}

// Wait blocks until in-flight lookups settle; the recency guard still
// applies to their results.
func (s *CustomerSearch) Wait() {
	s.wg.Wait()
}

// Close stops the pending timer and drops any late results.
func (s *CustomerSearch) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.cancel()
}
