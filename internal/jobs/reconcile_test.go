package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSweepRepository is a mock implementation of DocumentSweepRepository
type MockSweepRepository struct {
	mock.Mock
}

func (m *MockSweepRepository) SweepStaleProcessing(ctx context.Context, cutoff time.Time, reason string) (int, error) {
	args := m.Called(ctx, cutoff, reason)
	return args.Int(0), args.Error(1)
}

func TestReconciler_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("sweeps with a cutoff in the past", func(t *testing.T) {
		repo := new(MockSweepRepository)
		r := NewReconciler(repo, 15*time.Minute)

		before := time.Now().UTC().Add(-15 * time.Minute)
		repo.On("SweepStaleProcessing", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
			return !cutoff.After(time.Now().UTC()) && !cutoff.Before(before.Add(-time.Minute))
		}), staleReason).Return(2, nil)

		require.NoError(t, r.Run(ctx))
		repo.AssertExpectations(t)
	})

	t.Run("propagates sweep errors", func(t *testing.T) {
		repo := new(MockSweepRepository)
		r := NewReconciler(repo, time.Minute)

		repo.On("SweepStaleProcessing", mock.Anything, mock.Anything, mock.Anything).
			Return(0, errors.New("connection refused"))

		assert.Error(t, r.Run(ctx))
	})

	t.Run("zero timeout falls back to the default", func(t *testing.T) {
		r := NewReconciler(new(MockSweepRepository), 0)
		assert.Equal(t, 15*time.Minute, r.staleAfter)
	})
}

type countingProcessor struct {
	runs atomic.Int32
}

func (p *countingProcessor) Run(ctx context.Context) error {
	p.runs.Add(1)
	return nil
}

func TestWorker_StartStop(t *testing.T) {
	p := &countingProcessor{}
	w := NewWorker(p, 10*time.Millisecond)

	go w.Start(context.Background())

	assert.Eventually(t, func() bool {
		return p.runs.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	w.Stop()
	settled := p.runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, p.runs.Load())
}
