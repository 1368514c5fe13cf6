package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
)

// Completer persists Scheduled to Completed for appointments whose slot has passed.
type Completer interface {
	ReconcilePast(ctx context.Context) ([]models.Appointment, error)
}

// Emitter receives system activity log entries.
type Emitter interface {
	Emit(entry *models.LogEntry)
}

// Reconciler periodically completes elapsed appointments so the stored
// status catches up with what readers already see.
type Reconciler struct {
	completer Completer
	emitter   Emitter
	interval  time.Duration
	log       *logrus.Entry
}

// NewReconciler creates a Reconciler. emitter may be nil.
func NewReconciler(completer Completer, emitter Emitter, interval time.Duration, log *logrus.Entry) *Reconciler {
	return &Reconciler{completer: completer, emitter: emitter, interval: interval, log: log}
}

// Run reconciles once immediately and then on every tick until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			r.log.WithError(err).Error("appointment reconciliation failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single pass and returns how many appointments it completed.
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	completed, err := r.completer.ReconcilePast(ctx)
	if err != nil {
		return 0, err
	}
	for _, apt := range completed {
		if r.emitter == nil {
			break
		}
		entry := &models.LogEntry{
			Message: fmt.Sprintf("Appointment #%s marked as completed.", apt.AppointmentID),
			Type:    models.LogInfo,
			Metadata: map[string]any{
				"resource":       "appointment",
				"resourceId":     apt.AppointmentID,
				"doctorId":       apt.DoctorID,
				"patientId":      apt.PatientID,
				"date":           apt.AppointmentDate,
				"time":           apt.AppointmentTime,
				"status":         string(models.StatusCompleted),
				"previousStatus": string(models.StatusScheduled),
			},
		}
		entry.Attribute("", "", models.SystemActorName)
		r.emitter.Emit(entry)
	}
	if len(completed) > 0 {
		r.log.WithField("count", len(completed)).Info("completed elapsed appointments")
	}
	return len(completed), nil
}
