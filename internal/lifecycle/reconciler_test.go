package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/logger"
	"clinic-app-server/internal/models"
)

type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	batches [][]models.Appointment
	err     error
}

func (f *fakeCompleter) ReconcilePast(context.Context) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingEmitter struct {
	entries []*models.LogEntry
}

func (r *recordingEmitter) Emit(entry *models.LogEntry) {
	r.entries = append(r.entries, entry)
}

func TestRunOnceEmitsSystemEntries(t *testing.T) {
	completer := &fakeCompleter{batches: [][]models.Appointment{{
		{AppointmentID: "APT-0007", DoctorID: "d", PatientID: "p", AppointmentDate: "2024-12-20", AppointmentTime: "10:00", Status: models.StatusCompleted},
	}}}
	emitter := &recordingEmitter{}
	r := NewReconciler(completer, emitter, time.Minute, logger.Discard().WithComponent("reconciler"))

	n, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, emitter.entries, 1)
	entry := emitter.entries[0]
	assert.Equal(t, "Appointment #APT-0007 marked as completed.", entry.Message)
	assert.Equal(t, models.SystemActorName, entry.CreatedByName)
	assert.Nil(t, entry.CreatedBy)
	assert.Nil(t, entry.CreatedByModel)
	assert.Equal(t, "Scheduled", entry.Metadata["previousStatus"])
}

func TestRunOncePropagatesErrors(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("db down")}
	r := NewReconciler(completer, nil, time.Minute, logger.Discard().WithComponent("reconciler"))

	_, err := r.RunOnce(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestRunStopsWithContext(t *testing.T) {
	completer := &fakeCompleter{}
	r := NewReconciler(completer, nil, 5*time.Millisecond, logger.Discard().WithComponent("reconciler"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return completer.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}
