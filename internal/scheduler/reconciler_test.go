package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/service"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) ReconcileDocuments(ctx context.Context, limit int) (*service.ReconcileResult, error) {
	args := m.Called(limit)
	res, _ := args.Get(0).(*service.ReconcileResult)
	return res, args.Error(1)
}

func newJob(r Reconciler, schedule string, batch int) *ReconcileJob {
	return NewReconcileJob(r, config.TermoConfig{ReconcileSchedule: schedule, ReconcileBatchSize: batch}, util.NewNopLogger())
}

func TestRunOnceDrainsFullBatches(t *testing.T) {
	r := &mockReconciler{}
	r.On("ReconcileDocuments", 2).Return(&service.ReconcileResult{Checked: 2, Rebuilt: 2}, nil).Once()
	r.On("ReconcileDocuments", 2).Return(&service.ReconcileResult{Checked: 2, Rebuilt: 1, Failed: 1}, nil).Once()
	r.On("ReconcileDocuments", 2).Return(&service.ReconcileResult{Checked: 1, Rebuilt: 1}, nil).Once()

	total, err := newJob(r, "@every 1m", 2).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.ReconcileResult{Checked: 5, Rebuilt: 4, Failed: 1}, total)
	r.AssertExpectations(t)
}

func TestRunOnceStopsWhenNothingRebuilds(t *testing.T) {
	r := &mockReconciler{}
	r.On("ReconcileDocuments", 2).Return(&service.ReconcileResult{Checked: 2, Failed: 2}, nil).Once()

	total, err := newJob(r, "@every 1m", 2).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, total.Failed)
	r.AssertExpectations(t)
}

func TestRunOnceReturnsError(t *testing.T) {
	r := &mockReconciler{}
	r.On("ReconcileDocuments", DEFAULT_BATCH_SIZE).Return(nil, errors.New("db down")).Once()

	_, err := newJob(r, "@every 1m", 0).RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	err := newJob(&mockReconciler{}, "every now and then", 10).Start()
	assert.Error(t, err)
}

func TestScheduledRun(t *testing.T) {
	r := &mockReconciler{}
	ran := make(chan struct{}, 4)
	r.On("ReconcileDocuments", 10).Return(&service.ReconcileResult{}, nil).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	job := newJob(r, "@every 1s", 10)
	require.NoError(t, job.Start())
	defer job.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("reconcile job did not run")
	}
}
