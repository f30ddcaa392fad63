package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type mockHistoryDeleter struct {
	deleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockHistoryDeleter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteOlderThanFn != nil {
		return m.deleteOlderThanFn(ctx, cutoff)
	}
	return 0, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupJob_Run_DeletesOldHistory(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var gotCutoff time.Time
	history := &mockHistoryDeleter{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 42, nil
		},
	}

	job := NewCleanupJob(history, discardLogger())
	job.now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	wantCutoff := fixed.AddDate(0, 0, -365)
	if !gotCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, wantCutoff)
	}
}

func TestCleanupJob_Run_CustomRetentionDays(t *testing.T) {
	fixed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	var gotCutoff time.Time
	history := &mockHistoryDeleter{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 0, nil
		},
	}

	job := NewCleanupJob(history, discardLogger())
	job.now = func() time.Time { return fixed }
	job.RetentionDays = 30

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	wantCutoff := fixed.AddDate(0, 0, -30)
	if !gotCutoff.Equal(wantCutoff) {
		t.Errorf("cutoff = %v, want %v", gotCutoff, wantCutoff)
	}
}

func TestCleanupJob_Run_NoDeletions(t *testing.T) {
	history := &mockHistoryDeleter{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, nil
		},
	}

	job := NewCleanupJob(history, discardLogger())
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}

func TestCleanupJob_Run_PropagatesError(t *testing.T) {
	wantErr := errors.New("connection refused")
	history := &mockHistoryDeleter{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			return 0, wantErr
		},
	}

	job := NewCleanupJob(history, discardLogger())
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want error")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Run() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestCleanupJob_Start_StopsOnContextCancel(t *testing.T) {
	runs := make(chan struct{}, 10)
	history := &mockHistoryDeleter{
		deleteOlderThanFn: func(ctx context.Context, cutoff time.Time) (int64, error) {
			select {
			case runs <- struct{}{}:
			default:
			}
			return 0, nil
		},
	}

	job := NewCleanupJob(history, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	select {
	case <-runs:
	case <-time.After(time.Second):
		t.Fatal("initial run did not execute")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after context cancel")
	}
}
