// Package audit narrates committed mutations into the activity log. Writing
// happens off the request path and never fails the request that caused it.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/metrics"
	"clinic-app-server/internal/models"
)

const writeTimeout = 5 * time.Second

// Sink persists log entries.
type Sink interface {
	Append(ctx context.Context, entry *models.LogEntry) error
}

// Resolver looks up the current display names used in narration.
type Resolver interface {
	DisplayName(ctx context.Context, kind models.ActorKind, id string) (name string, ok bool, err error)
	PatientName(ctx context.Context, appointmentID string) (string, error)
}

type job struct {
	mutation *Mutation
	entry    *models.LogEntry
}

// Logger is a best-effort, asynchronous activity log writer. Publish and Emit
// never block: when the queue is full the entry is dropped.
type Logger struct {
	sink     Sink
	resolver Resolver
	log      *logrus.Entry

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

// New starts workers draining a queue of queueSize entries.
func New(sink Sink, resolver Resolver, log *logrus.Entry, queueSize, workers int) *Logger {
	if queueSize < 1 {
		queueSize = 1
	}
	if workers < 1 {
		workers = 1
	}
	l := &Logger{
		sink:     sink,
		resolver: resolver,
		log:      log,
		queue:    make(chan job, queueSize),
	}
	l.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go l.run()
	}
	return l
}

// Publish queues a committed mutation for narration.
func (l *Logger) Publish(m Mutation) {
	l.enqueue(job{mutation: &m})
}

// Emit queues a ready-made entry, e.g. one produced by a background job.
func (l *Logger) Emit(entry *models.LogEntry) {
	l.enqueue(job{entry: entry})
}

// Close stops accepting entries and waits until the queue is drained.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	l.wg.Wait()
}

func (l *Logger) enqueue(j job) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		metrics.AuditEntries.WithLabelValues("dropped").Inc()
		return
	}
	select {
	case l.queue <- j:
	default:
		metrics.AuditEntries.WithLabelValues("dropped").Inc()
		l.log.Warn("activity log queue full, dropping entry")
	}
}

func (l *Logger) run() {
	defer l.wg.Done()
	for j := range l.queue {
		l.write(j)
	}
}

func (l *Logger) write(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	entry := j.entry
	if j.mutation != nil {
		var ok bool
		if entry, ok = l.entryFor(ctx, *j.mutation); !ok {
			metrics.AuditEntries.WithLabelValues("skipped").Inc()
			return
		}
	}

	if err := l.sink.Append(ctx, entry); err != nil {
		metrics.AuditEntries.WithLabelValues("failed").Inc()
		l.log.WithError(err).WithField("message", entry.Message).Error("failed to write activity log entry")
		return
	}
	metrics.AuditEntries.WithLabelValues("written").Inc()
}

func (l *Logger) entryFor(ctx context.Context, m Mutation) (*models.LogEntry, bool) {
	n, ok := Narrate(m, func(appointmentID string) string {
		name, err := l.resolver.PatientName(ctx, appointmentID)
		if err != nil {
			l.log.WithError(err).Debug("patient lookup for activity log failed")
			return ""
		}
		return name
	})
	if !ok {
		return nil, false
	}

	entry := &models.LogEntry{
		Message:  n.Message,
		Type:     models.LogInfo,
		Metadata: n.Metadata,
	}
	l.attribute(ctx, entry, m.Actor)
	return entry, true
}

// attribute resolves the actor's current name. Accounts that no longer exist
// keep the name carried by their token.
func (l *Logger) attribute(ctx context.Context, entry *models.LogEntry, actor *models.Actor) {
	if actor == nil || actor.ID == "" {
		entry.Attribute("", "", models.SystemActorName)
		return
	}
	kind, ok := models.KindForRole(actor.Role)
	if !ok {
		entry.Attribute("", "", models.SystemActorName)
		return
	}

	name := fmt.Sprintf("%s (%s)", actor.Name, actor.Role)
	if resolved, found, err := l.resolver.DisplayName(ctx, kind, actor.ID); err != nil {
		l.log.WithError(err).Debug("actor lookup for activity log failed")
	} else if found {
		name = fmt.Sprintf("%s (%s)", resolved, kind)
	}
	entry.Attribute(actor.ID, kind, name)
}
