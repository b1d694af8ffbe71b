package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/repository"
)

// Option configures an in-memory store.
type Option func(*options)

type options struct {
	ids repository.IDFunc
	now func() time.Time
}

// WithIDs overrides identifier generation. The default is a Sequence that
// continues after the highest numeric seed id.
func WithIDs(f repository.IDFunc) Option { return func(o *options) { o.ids = f } }

// WithClock overrides the time source used for new records.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func buildOptions(seedIDs []string, opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = repository.Sequence(maxNumericID(seedIDs))
	}
	return o
}

// TransmissionStore implements repository.TransmissionRepository in memory.
// It is safe for concurrent use; status updates are serialized by the write lock.
type TransmissionStore struct {
	mu    sync.RWMutex
	items []model.Transmission
	index map[string]int
	opts  options
}

// NewTransmissionStore builds a store preloaded with seed, kept in the given order.
func NewTransmissionStore(seed []model.Transmission, opts ...Option) (*TransmissionStore, error) {
	ids := make([]string, 0, len(seed))
	s := &TransmissionStore{
		items: make([]model.Transmission, 0, len(seed)),
		index: make(map[string]int, len(seed)),
	}
	for _, t := range seed {
		if _, dup := s.index[t.ID]; dup || t.ID == "" {
			return nil, fmt.Errorf("seed transmission: bad or duplicate id %q", t.ID)
		}
		s.index[t.ID] = len(s.items)
		s.items = append(s.items, t)
		ids = append(ids, t.ID)
	}
	s.opts = buildOptions(ids, opts)
	return s, nil
}

// List returns a copy of all transmissions in insertion order.
func (s *TransmissionStore) List(_ context.Context) ([]model.Transmission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Transmission, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Create appends a new pending transmission.
func (s *TransmissionStore) Create(_ context.Context, in model.NewTransmission) (model.Transmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.opts.ids()
	for {
		if _, taken := s.index[id]; !taken {
			break
		}
		id = s.opts.ids()
	}
	t := model.Transmission{
		ID:        id,
		Sender:    in.Sender,
		Receiver:  in.Receiver,
		Query:     in.Query,
		Timestamp: s.opts.now(),
		Status:    model.StatusPending,
		Signature: in.Signature,
		Schema:    in.Schema,
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, t)
	return t, nil
}

// UpdateStatus sets a terminal status on a pending transmission.
func (s *TransmissionStore) UpdateStatus(_ context.Context, id string, status model.TransmissionStatus) (model.Transmission, error) {
	if !status.IsTerminal() {
		return model.Transmission{}, fmt.Errorf("status %q: %w", status, errs.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return model.Transmission{}, fmt.Errorf("transmission %s: %w", id, errs.ErrNotFound)
	}
	cur := s.items[i].Status
	if cur.IsTerminal() {
		return model.Transmission{}, fmt.Errorf("transmission %s is %s: %w", id, cur, errs.ErrInvalidTransition)
	}
	s.items[i].Status = status
	return s.items[i], nil
}
