// Package lifecycle decides appointment status transitions and keeps elapsed
// appointments reconciled.
package lifecycle

import (
	"strings"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// Change is the update an actor asks for. Empty fields are absent.
type Change struct {
	Status string
	Date   string
	Time   string
}

// Snapshot is the part of an appointment the decision depends on.
type Snapshot struct {
	Status    models.AppointmentStatus
	DoctorID  string
	PatientID string
	Date      string
	Time      string
}

// Outcome is the state the appointment moves to.
type Outcome struct {
	Status      models.AppointmentStatus
	Date        string
	Time        string
	Rescheduled bool
}

// Decide computes the next state of an appointment or rejects the change.
// Status tokens are matched case-insensitively after trimming.
func Decide(current Snapshot, actor models.Actor, change Change) (Outcome, error) {
	out := Outcome{Status: current.Status, Date: current.Date, Time: current.Time}
	token := strings.ToLower(strings.TrimSpace(change.Status))

	switch {
	case actor.Role == models.RolePatient && actor.ID == current.PatientID:
		if err := guardTerminal(current.Status); err != nil {
			return out, err
		}
		switch {
		case token == "cancelled":
			out.Status = models.StatusCancelled
		case change.Date != "" || change.Time != "":
			if change.Date != "" {
				out.Date = change.Date
			}
			if change.Time != "" {
				out.Time = change.Time
			}
			// A reschedule always needs a fresh approval.
			out.Status = models.StatusPending
			out.Rescheduled = true
		default:
			return out, utils.ValidationError("Invalid update request")
		}

	case actor.Role == models.RoleDoctor && actor.ID == current.DoctorID:
		next, ok := doctorTargets[token]
		if !ok {
			return out, utils.ValidationError("Doctors can only update status to Scheduled (Accepted), Rejected, or Completed")
		}
		if err := guardTerminal(current.Status); err != nil {
			return out, err
		}
		out.Status = next

	default:
		return out, utils.AuthorizationError("Access denied")
	}

	return out, nil
}

var doctorTargets = map[string]models.AppointmentStatus{
	"scheduled": models.StatusScheduled,
	"accepted":  models.StatusScheduled,
	"rejected":  models.StatusRejected,
	"completed": models.StatusCompleted,
}

func guardTerminal(status models.AppointmentStatus) error {
	if status.Terminal() {
		return utils.ValidationError("Appointment is already %s and can no longer be changed", strings.ToLower(string(status)))
	}
	return nil
}
