package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"crmrelay/internal/models"

	"github.com/stretchr/testify/assert"
)

type mockCleanupService struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (m *mockCleanupService) SendMessage(ctx context.Context, draft *models.MessageDraft) (*models.Message, error) {
	return nil, nil
}

func (m *mockCleanupService) GetMessage(ctx context.Context, id string) (*models.Message, error) {
	return nil, nil
}

func (m *mockCleanupService) ListMessages(ctx context.Context, limit, offset int) ([]models.Message, error) {
	return nil, nil
}

func (m *mockCleanupService) CleanupOldRecords(ctx context.Context, retentionDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, retentionDays)
	return m.err
}

func (m *mockCleanupService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func TestSchedulerRunsCleanupImmediately(t *testing.T) {
	comms := &mockCleanupService{}
	scheduler := NewScheduler(comms, 30, 24, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return comms.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	comms.mu.Lock()
	assert.Equal(t, []int{30}, comms.calls)
	comms.mu.Unlock()
}

func TestSchedulerStop(t *testing.T) {
	comms := &mockCleanupService{}
	scheduler := NewScheduler(comms, 30, 24, testLogger())

	done := make(chan struct{})
	go func() {
		scheduler.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return comms.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	scheduler.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestSchedulerSurvivesCleanupFailure(t *testing.T) {
	comms := &mockCleanupService{err: errors.New("locked")}
	scheduler := NewScheduler(comms, 30, 24, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return comms.callCount() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSchedulerDefaultInterval(t *testing.T) {
	scheduler := NewScheduler(&mockCleanupService{}, 30, 0, testLogger())
	assert.Greater(t, scheduler.intervalHours, 0)
}
