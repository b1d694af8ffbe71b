package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/and161185/secure-query-proxy/internal/errs"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/repository"
	"github.com/and161185/secure-query-proxy/internal/seed"
	"github.com/stretchr/testify/require"
)

var (
	_ repository.TransmissionRepository = (*TransmissionStore)(nil)
	_ repository.AuditRepository        = (*AuditStore)(nil)
	_ repository.KeyPairRepository      = (*KeyPairStore)(nil)
)

func newStore(t *testing.T, opts ...Option) *TransmissionStore {
	t.Helper()
	s, err := NewTransmissionStore(nil, opts...)
	require.NoError(t, err)
	return s
}

func TestTransmissionStore_Create_Pending(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	before := time.Now()
	tr, err := s.Create(ctx, model.NewTransmission{
		Sender: "admin@hospital-a.com", Receiver: "Hospital B Database", Query: "SELECT 1",
		Signature: "0xabc...", Schema: "hospital_db",
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, tr.Status)
	require.Equal(t, "1", tr.ID)
	require.False(t, tr.Timestamp.Before(before.Truncate(time.Microsecond)))
	require.Equal(t, "0xabc...", tr.Signature)
	require.Equal(t, "hospital_db", tr.Schema)
}

func TestTransmissionStore_SeedContinuesSequence(t *testing.T) {
	now := time.Now().UTC()
	s, err := NewTransmissionStore(seed.Transmissions(now))
	require.NoError(t, err)

	tr, err := s.Create(context.Background(), model.NewTransmission{Query: "SELECT 1"})
	require.NoError(t, err)
	require.Equal(t, "3", tr.ID)

	all, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"1", "2", "3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestTransmissionStore_DuplicateSeed(t *testing.T) {
	_, err := NewTransmissionStore([]model.Transmission{{ID: "1"}, {ID: "1"}})
	require.Error(t, err)

	_, err = NewTransmissionStore([]model.Transmission{{ID: ""}})
	require.Error(t, err)
}

func TestTransmissionStore_UniqueIDs_Concurrent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	ids := make(chan string, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tr, err := s.Create(ctx, model.NewTransmission{Query: "q"})
				if err != nil {
					t.Errorf("create: %v", err)
					return
				}
				ids <- tr.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
}

func TestTransmissionStore_UUIDScheme(t *testing.T) {
	s := newStore(t, WithIDs(repository.UUIDs()))
	a, err := s.Create(context.Background(), model.NewTransmission{})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), model.NewTransmission{})
	require.NoError(t, err)
	require.Len(t, a.ID, 36)
	require.NotEqual(t, a.ID, b.ID)
}

func TestTransmissionStore_SkipsTakenIDs(t *testing.T) {
	calls := 0
	gen := func() string {
		calls++
		if calls == 1 {
			return "1"
		}
		return "x"
	}
	s, err := NewTransmissionStore([]model.Transmission{{ID: "1"}}, WithIDs(gen))
	require.NoError(t, err)
	tr, err := s.Create(context.Background(), model.NewTransmission{})
	require.NoError(t, err)
	require.Equal(t, "x", tr.ID)
}

func TestTransmissionStore_UpdateStatus_OnlyStatusChanges(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := newStore(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	created, err := s.Create(ctx, model.NewTransmission{
		Sender: "a", Receiver: "b", Query: "SELECT 1", Signature: "sig", Schema: "db",
	})
	require.NoError(t, err)

	updated, err := s.UpdateStatus(ctx, created.ID, model.StatusCompleted)
	require.NoError(t, err)

	want := created
	want.Status = model.StatusCompleted
	require.Equal(t, want, updated)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.Transmission{want}, all)
}

func TestTransmissionStore_UpdateStatus_Errors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.UpdateStatus(ctx, "404", model.StatusCompleted)
	require.ErrorIs(t, err, errs.ErrNotFound)
	all, _ := s.List(ctx)
	require.Empty(t, all)

	tr, err := s.Create(ctx, model.NewTransmission{Query: "q"})
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, tr.ID, model.StatusPending)
	require.ErrorIs(t, err, errs.ErrInvalidStatus)

	_, err = s.UpdateStatus(ctx, tr.ID, model.StatusRejected)
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, tr.ID, model.StatusCompleted)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)

	all, _ = s.List(ctx)
	require.Equal(t, model.StatusRejected, all[0].Status)
}

func TestTransmissionStore_ConcurrentUpdate_SingleWinner(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	tr, err := s.Create(ctx, model.NewTransmission{Query: "q"})
	require.NoError(t, err)

	const n = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st := model.StatusCompleted
			if i%2 == 0 {
				st = model.StatusRejected
			}
			if _, err := s.UpdateStatus(ctx, tr.ID, st); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestTransmissionStore_ListIsSnapshot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Create(ctx, model.NewTransmission{Query: "q1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, model.NewTransmission{Query: "q2"})
	require.NoError(t, err)

	first, err := s.List(ctx)
	require.NoError(t, err)
	second, err := s.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	first[0].Query = "mutated"
	third, _ := s.List(ctx)
	require.Equal(t, "q1", third[0].Query)
}
