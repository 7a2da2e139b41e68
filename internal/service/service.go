// Package service implements the TabService Connect API on top of the
// settlement engine in internal/calculator and internal/exchange.
package service

import (
	"errors"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/ninjatab/internal/calculator"
	"github.com/mmynk/ninjatab/internal/events"
	"github.com/mmynk/ninjatab/internal/exchange"
	"github.com/mmynk/ninjatab/internal/metrics"
	"github.com/mmynk/ninjatab/internal/storage"
)

var (
	// ErrNoBills is returned when a tab has nothing to settle.
	ErrNoBills = errors.New("tab has no bills to settle")

	// ErrMixedCurrencies is returned when no settlement currency is set and
	// the tab's bills use more than one currency.
	ErrMixedCurrencies = errors.New("bills use more than one currency; set a settlement currency")
)

// TabService implements the Connect TabService.
type TabService struct {
	store     storage.Store
	converter *exchange.Converter
	publisher events.Publisher
	metrics   *metrics.Metrics
	locks     tabLocks
	now       func() time.Time
}

// Option configures a TabService.
type Option func(*TabService)

// WithPublisher sets where settlement events go. Defaults to events.NopPublisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *TabService) { s.publisher = p }
}

// WithMetrics records simplification results on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *TabService) { s.metrics = m }
}

// NewTabService creates a TabService with the given storage backend.
// Exchange rates are resolved from the same store.
func NewTabService(store storage.Store, opts ...Option) *TabService {
	s := &TabService{
		store:     store,
		converter: exchange.NewConverter(store),
		publisher: events.NopPublisher{},
		locks:     tabLocks{locks: make(map[string]*sync.Mutex)},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tabLocks serializes simplification per tab so two concurrent runs cannot
// interleave their replace of the settlement set.
type tabLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *tabLocks) lock(tabID string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.locks[tabID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tabID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (l *tabLocks) forget(tabID string) {
	l.mu.Lock()
	delete(l.locks, tabID)
	l.mu.Unlock()
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var rateErr *exchange.RateNotFoundError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrInvalidSplit):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &rateErr), errors.Is(err, ErrNoBills), errors.Is(err, ErrMixedCurrencies):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
