package audit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/logger"
	"clinic-app-server/internal/models"
)

type memorySink struct {
	mu      sync.Mutex
	entries []*models.LogEntry
	err     error
	block   chan struct{}
}

func (s *memorySink) Append(_ context.Context, entry *models.LogEntry) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) all() []*models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.LogEntry(nil), s.entries...)
}

type staticResolver struct {
	names    map[string]string
	patients map[string]string
}

func (r staticResolver) DisplayName(_ context.Context, _ models.ActorKind, id string) (string, bool, error) {
	name, ok := r.names[id]
	return name, ok, nil
}

func (r staticResolver) PatientName(_ context.Context, appointmentID string) (string, error) {
	name, ok := r.patients[appointmentID]
	if !ok {
		return "", errors.New("not found")
	}
	return name, nil
}

func newTestLogger(sink Sink, queueSize int) *Logger {
	resolver := staticResolver{
		names:    map[string]string{"doc-1": "Gregory House"},
		patients: map[string]string{"APT-0001": "Jane Roe"},
	}
	return New(sink, resolver, logger.Discard().WithComponent("audit"), queueSize, 1)
}

func TestPublishWritesAttributedEntry(t *testing.T) {
	sink := &memorySink{}
	l := newTestLogger(sink, 8)

	l.Publish(Mutation{
		Method: http.MethodPost,
		Route:  "/api/record/:appointmentId",
		Path:   "/api/record/APT-0001",
		Params: map[string]string{"appointmentId": "APT-0001"},
		Actor:  &models.Actor{ID: "doc-1", Role: models.RoleDoctor, Name: "house"},
	})
	l.Close()

	entries := sink.all()
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "Dr. added medical record for patient Jane Roe", entry.Message)
	assert.Equal(t, models.LogInfo, entry.Type)
	assert.Equal(t, "Gregory House (Doctor)", entry.CreatedByName)
	require.NotNil(t, entry.CreatedBy)
	require.NotNil(t, entry.CreatedByModel)
	assert.Equal(t, "doc-1", *entry.CreatedBy)
	assert.Equal(t, models.ActorDoctor, *entry.CreatedByModel)
}

func TestActorNameFallsBackToToken(t *testing.T) {
	sink := &memorySink{}
	l := newTestLogger(sink, 8)

	l.Publish(Mutation{
		Method: http.MethodDelete,
		Route:  "/api/appointment/:id",
		Params: map[string]string{"id": "APT-0009"},
		Actor:  &models.Actor{ID: "admin", Role: models.RoleAdmin, Name: "Administrator"},
	})
	l.Publish(Mutation{Method: http.MethodPost, Route: "/api/appointment"})
	l.Close()

	entries := sink.all()
	require.Len(t, entries, 2)
	byMessage := map[string]*models.LogEntry{}
	for _, e := range entries {
		byMessage[e.Message] = e
	}

	admin := byMessage["Appointment #APT-0009 deleted."]
	require.NotNil(t, admin)
	assert.Equal(t, "Administrator (admin)", admin.CreatedByName)
	require.NotNil(t, admin.CreatedByModel)
	assert.Equal(t, models.ActorAdmin, *admin.CreatedByModel)

	system := byMessage["New appointment requested by patient."]
	require.NotNil(t, system)
	assert.Equal(t, models.SystemActorName, system.CreatedByName)
	assert.Nil(t, system.CreatedBy)
	assert.Nil(t, system.CreatedByModel)
}

func TestUnauditedRoutesAreSkipped(t *testing.T) {
	sink := &memorySink{}
	l := newTestLogger(sink, 8)

	l.Publish(Mutation{Method: http.MethodPost, Route: "/api/auth/admin/login"})
	l.Close()

	assert.Empty(t, sink.all())
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	l := newTestLogger(sink, 8)

	assert.NotPanics(t, func() {
		l.Publish(Mutation{Method: http.MethodPost, Route: "/api/appointment"})
		l.Close()
	})
	assert.Empty(t, sink.all())
}

func TestFullQueueDropsWithoutBlocking(t *testing.T) {
	sink := &memorySink{block: make(chan struct{})}
	l := newTestLogger(sink, 1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			l.Emit(&models.LogEntry{Message: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a full queue")
	}

	close(sink.block)
	l.Close()

	// One entry was in the worker, at most one waited in the queue.
	assert.LessOrEqual(t, len(sink.all()), 2)
	assert.NotEmpty(t, sink.all())
}

func TestPublishAfterCloseIsDropped(t *testing.T) {
	sink := &memorySink{}
	l := newTestLogger(sink, 8)
	l.Close()

	assert.NotPanics(t, func() {
		l.Emit(&models.LogEntry{Message: "late"})
	})
	l.Close()
	assert.Empty(t, sink.all())
}
